package chat

import (
	"errors"
	"strings"
	"testing"
	"time"

	"taskmate-backend/internal/tasks"
)

func turnErrKind(t *testing.T, err error) ErrorKind {
	t.Helper()
	var te *TurnError
	if !errors.As(err, &te) {
		t.Fatalf("want *TurnError, got %v", err)
	}
	return te.Kind
}

func TestEnhanceAddInfersPriorityAndDate(t *testing.T) {
	ra, err := EnhanceAdd(AddArgs{
		Title:   "fix login bug",
		DueDate: "tomorrow at 3pm",
	}, refNow)
	if err != nil {
		t.Fatal(err)
	}
	if ra.Priority != tasks.PriorityMedium {
		t.Fatalf("priority = %q, want medium", ra.Priority)
	}
	want := time.Date(2026, 3, 5, 15, 0, 0, 0, time.UTC)
	if ra.DueDate == nil || !ra.DueDate.Equal(want) {
		t.Fatalf("due = %v, want %v", ra.DueDate, want)
	}

	ra, err = EnhanceAdd(AddArgs{Title: "submit report", Description: "deadline friday"}, refNow)
	if err != nil {
		t.Fatal(err)
	}
	if ra.Priority != tasks.PriorityHigh {
		t.Fatalf("priority = %q, want inferred high", ra.Priority)
	}
}

func TestEnhanceAddKeepsExplicitPriority(t *testing.T) {
	ra, err := EnhanceAdd(AddArgs{Title: "urgent: call the bank", Priority: "low"}, refNow)
	if err != nil {
		t.Fatal(err)
	}
	if ra.Priority != tasks.PriorityLow {
		t.Fatalf("priority = %q, explicit value must win over keywords", ra.Priority)
	}
}

func TestEnhanceAddRejections(t *testing.T) {
	if _, err := EnhanceAdd(AddArgs{Title: "  "}, refNow); turnErrKind(t, err) != ValidationFailure {
		t.Error("blank title: want ValidationFailure")
	}
	if _, err := EnhanceAdd(AddArgs{Title: strings.Repeat("x", 201)}, refNow); turnErrKind(t, err) != ValidationFailure {
		t.Error("long title: want ValidationFailure")
	}
	if _, err := EnhanceAdd(AddArgs{Title: "ok", Priority: "extreme"}, refNow); turnErrKind(t, err) != ValidationFailure {
		t.Error("bad priority: want ValidationFailure, never coercion")
	}
	if _, err := EnhanceAdd(AddArgs{Title: "ok", DueDate: "whenever it rains"}, refNow); turnErrKind(t, err) != ParseFailure {
		t.Error("unparseable date: want ParseFailure")
	}
	if _, err := EnhanceAdd(AddArgs{Title: "ok", DueDate: "2099-01-01"}, refNow); turnErrKind(t, err) != ValidationFailure {
		t.Error("date beyond horizon: want ValidationFailure")
	}
}

// Length limits count characters, not bytes: a 150-character accented title
// is well within the 200 limit even though it is 300 bytes.
func TestLengthLimitsCountRunes(t *testing.T) {
	title := strings.Repeat("é", 150)
	ra, err := EnhanceAdd(AddArgs{Title: title}, refNow)
	if err != nil {
		t.Fatalf("150-character title rejected: %v", err)
	}
	if ra.Title != title {
		t.Fatalf("title mangled: %q", ra.Title)
	}

	if _, err := EnhanceAdd(AddArgs{Title: strings.Repeat("é", 201)}, refNow); turnErrKind(t, err) != ValidationFailure {
		t.Error("201-character title: want ValidationFailure")
	}

	desc := strings.Repeat("ü", 800)
	if _, err := EnhanceAdd(AddArgs{Title: "ok", Description: desc}, refNow); err != nil {
		t.Errorf("800-character description rejected: %v", err)
	}

	long := strings.Repeat("é", 150)
	if _, err := EnhanceUpdate(&UpdateArgs{Title: &long}, refNow); err != nil {
		t.Errorf("150-character title rejected on update: %v", err)
	}
}

func TestEnhanceUpdateDoesNotInferPriority(t *testing.T) {
	ru, err := EnhanceUpdate(&UpdateArgs{Title: strPtr("urgent: new title")}, refNow)
	if err != nil {
		t.Fatal(err)
	}
	if ru.Priority != nil {
		t.Fatal("update must not invent a priority from keywords")
	}
}

func TestEnhanceUpdateRemoveDueDate(t *testing.T) {
	due := "tomorrow"
	ru, err := EnhanceUpdate(&UpdateArgs{DueDate: &due, RemoveDueDate: true}, refNow)
	if err != nil {
		t.Fatal(err)
	}
	if !ru.ClearDueDate || ru.DueDate != nil {
		t.Fatalf("remove_due_date must win: %+v", ru)
	}
}

func TestResolveTarget(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	candidates := []tasks.Task{
		mkTask(7, "buy milk from the store", base),
		mkTask(8, "walk the dog", base),
	}

	m, err := ResolveTarget(TargetArgs{TaskID: 8}, candidates)
	if err != nil || m.Task.ID != 8 || m.Confidence != 100 {
		t.Fatalf("by id: %+v, %v", m, err)
	}

	m, err = ResolveTarget(TargetArgs{Reference: "task #7"}, candidates)
	if err != nil || m.Task.ID != 7 {
		t.Fatalf("by embedded id: %+v, %v", m, err)
	}

	m, err = ResolveTarget(TargetArgs{Reference: "the milk one"}, candidates)
	if err != nil || m.Task.ID != 7 {
		t.Fatalf("by fuzzy reference: %+v, %v", m, err)
	}

	if _, err = ResolveTarget(TargetArgs{TaskID: 99}, candidates); turnErrKind(t, err) != NotFound {
		t.Error("unknown id: want NotFound")
	}
	if _, err = ResolveTarget(TargetArgs{}, candidates); turnErrKind(t, err) != ParseFailure {
		t.Error("no reference at all: want ParseFailure")
	}
	if _, err = ResolveTarget(TargetArgs{Reference: "quantum physics"}, candidates); turnErrKind(t, err) != NotFound {
		t.Error("unmatchable reference: want NotFound")
	}
}

func strPtr(s string) *string { return &s }
