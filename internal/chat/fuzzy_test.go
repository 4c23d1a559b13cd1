package chat

import (
	"testing"
	"time"

	"taskmate-backend/internal/tasks"
)

func mkTask(id int, title string, created time.Time) tasks.Task {
	return tasks.Task{ID: id, Title: title, Priority: tasks.PriorityMedium, CreatedAt: created}
}

func TestTokenSetRatioSubsetScoresFull(t *testing.T) {
	if got := tokenSetRatio("milk", "buy milk from the store"); got != 100 {
		t.Fatalf("subset query scored %d, want 100", got)
	}
	if got := tokenSetRatio("Buy Milk!", "buy milk"); got != 100 {
		t.Fatalf("case/punctuation variant scored %d, want 100", got)
	}
}

func TestTokenSetRatioUnrelated(t *testing.T) {
	if got := tokenSetRatio("quantum physics", "buy milk from the store"); got >= MatchThreshold {
		t.Fatalf("unrelated strings scored %d, want < %d", got, MatchThreshold)
	}
}

func TestBestMatchPicksClosest(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	candidates := []tasks.Task{
		mkTask(1, "buy milk from the store", base),
		mkTask(2, "walk the dog", base.Add(time.Hour)),
		mkTask(3, "file tax return", base.Add(2*time.Hour)),
	}

	m, ok := BestMatch("milk", candidates)
	if !ok {
		t.Fatal("no match for milk")
	}
	if m.Task.ID != 1 {
		t.Fatalf("matched task %d, want 1", m.Task.ID)
	}
	if m.Confidence < CertainThreshold {
		t.Fatalf("confidence %d, want >= %d", m.Confidence, CertainThreshold)
	}
	if !m.Certain() {
		t.Fatal("expected certain match")
	}

	if _, ok := BestMatch("quantum physics", candidates); ok {
		t.Fatal("expected no match for unrelated query")
	}
}

func TestBestMatchTieGoesToMostRecent(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	candidates := []tasks.Task{
		mkTask(1, "buy milk", base),
		mkTask(2, "buy milk", base.Add(time.Hour)),
	}

	m, ok := BestMatch("buy milk", candidates)
	if !ok {
		t.Fatal("no match")
	}
	if !m.Tied {
		t.Fatal("expected tie to be flagged")
	}
	if m.Task.ID != 2 {
		t.Fatalf("tie resolved to task %d, want most recent (2)", m.Task.ID)
	}
	if m.Certain() {
		t.Fatal("a tied match must not be certain")
	}
}

func TestBestMatchTypoNeedsConfirmation(t *testing.T) {
	candidates := []tasks.Task{
		mkTask(1, "buy milk", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
	}
	m, ok := BestMatch("buy mlk", candidates)
	if !ok {
		t.Fatal("typo should still match")
	}
	if m.Confidence < MatchThreshold || m.Confidence >= CertainThreshold {
		t.Fatalf("confidence %d, want within [%d, %d)", m.Confidence, MatchThreshold, CertainThreshold)
	}
	if m.Certain() {
		t.Fatal("typo match must not be certain")
	}
}

func TestScoreTaskUsesDescription(t *testing.T) {
	task := tasks.Task{ID: 1, Title: "errands", Description: "pick up milk and eggs"}
	if got := scoreTask("milk", task); got < MatchThreshold {
		t.Fatalf("description match scored %d, want >= %d", got, MatchThreshold)
	}
}
