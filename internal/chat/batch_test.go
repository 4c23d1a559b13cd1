package chat

import (
	"testing"

	"taskmate-backend/internal/tasks"
)

func TestDetectBatchDelete(t *testing.T) {
	op, ok := DetectBatch("delete all completed tasks")
	if !ok {
		t.Fatal("not detected as batch")
	}
	if op.Action != BatchDelete {
		t.Fatalf("action = %q, want delete", op.Action)
	}
	if op.Filter.Completed == nil || !*op.Filter.Completed {
		t.Fatal("want completed=true filter")
	}

	op, ok = DetectBatch("clear finished tasks")
	if !ok || op.Action != BatchDelete || op.Filter.Completed == nil || !*op.Filter.Completed {
		t.Fatalf("clear finished tasks: got %+v ok=%v", op, ok)
	}

	op, ok = DetectBatch("remove all pending tasks")
	if !ok || op.Filter.Completed == nil || *op.Filter.Completed {
		t.Fatalf("remove all pending tasks: got %+v ok=%v", op, ok)
	}
}

func TestDetectBatchComplete(t *testing.T) {
	op, ok := DetectBatch("mark all high priority tasks as done")
	if !ok {
		t.Fatal("not detected as batch")
	}
	if op.Action != BatchComplete {
		t.Fatalf("action = %q, want complete", op.Action)
	}
	if op.Filter.Priority != tasks.PriorityHigh {
		t.Fatalf("priority filter = %q, want high", op.Filter.Priority)
	}
	if op.Filter.Completed == nil || *op.Filter.Completed {
		t.Fatal("batch complete must target pending tasks")
	}

	op, ok = DetectBatch("complete all my tasks")
	if !ok || op.Action != BatchComplete || op.Filter.Priority != "" {
		t.Fatalf("complete all my tasks: got %+v ok=%v", op, ok)
	}
}

func TestDetectBatchIgnoresSingleTaskPhrasing(t *testing.T) {
	for _, msg := range []string{
		"delete the milk task",
		"mark task 5 as complete",
		"add a task to buy milk",
		"complete the report task",
		"what tasks do I have",
		// "tall" must not read as the scoping word "all".
		"delete completed tasks from the tall pile",
	} {
		if op, ok := DetectBatch(msg); ok {
			t.Errorf("DetectBatch(%q) = %+v, want no batch", msg, op)
		}
	}
}
