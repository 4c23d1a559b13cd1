package chat

import (
	"regexp"
	"strings"

	"taskmate-backend/internal/tasks"
)

// Batch operations are detected from the raw message before the model sees
// it, so "delete all completed tasks" never turns into a single-task tool
// call. Detection is deliberately literal: only a handful of phrasings count.

// BatchAction is what a batch does to each matched task.
type BatchAction string

const (
	BatchDelete   BatchAction = "delete"
	BatchComplete BatchAction = "complete"
)

// BatchOp is a detected bulk operation and the filter selecting its targets.
type BatchOp struct {
	Action BatchAction
	Filter tasks.Filter
}

var (
	batchDeleteRe   = regexp.MustCompile(`\b(?:delete|remove|clear)\s+(?:all\s+)?(?:my\s+)?(completed|done|finished|pending|incomplete|unfinished|high(?:\s+priority)?|medium(?:\s+priority)?|low(?:\s+priority)?)?\s*tasks\b`)
	batchCompleteRe = regexp.MustCompile(`\b(?:mark|complete|finish)\s+all\s+(?:my\s+)?(?:(high|medium|low)(?:\s+priority)?\s+|urgent\s+)?tasks(?:\s+as\s+(?:complete|completed|done|finished))?\b`)
	// A delete only counts as a batch when scoped by the word "all" or the
	// verb "clear"; substrings ("tall") must not count.
	batchScopeRe = regexp.MustCompile(`\b(?:all|clear)\b`)
)

// DetectBatch reports whether the message is a bulk delete/complete request.
func DetectBatch(message string) (BatchOp, bool) {
	s := strings.ToLower(strings.Join(strings.Fields(message), " "))

	if m := batchDeleteRe.FindStringSubmatch(s); m != nil {
		if !batchScopeRe.MatchString(s) {
			return BatchOp{}, false
		}
		op := BatchOp{Action: BatchDelete}
		switch qualifier := strings.TrimSuffix(m[1], " priority"); qualifier {
		case "completed", "done", "finished":
			v := true
			op.Filter.Completed = &v
		case "pending", "incomplete", "unfinished":
			v := false
			op.Filter.Completed = &v
		case "high", "medium", "low":
			op.Filter.Priority = qualifier
		}
		return op, true
	}

	if m := batchCompleteRe.FindStringSubmatch(s); m != nil {
		op := BatchOp{Action: BatchComplete}
		// Completing an already-completed task is a no-op, so batch
		// completes always target pending tasks.
		pending := false
		op.Filter.Completed = &pending
		if strings.Contains(m[0], "urgent") {
			op.Filter.Priority = tasks.PriorityHigh
		} else if m[1] != "" {
			op.Filter.Priority = m[1]
		}
		return op, true
	}

	return BatchOp{}, false
}

// Describe renders the action for confirmation and cancellation messages.
func (b BatchOp) Describe() string {
	var what string
	switch {
	case b.Filter.Priority != "":
		what = b.Filter.Priority + " priority tasks"
	case b.Filter.Completed != nil && *b.Filter.Completed:
		what = "completed tasks"
	case b.Filter.Completed != nil:
		what = "pending tasks"
	default:
		what = "tasks"
	}
	if b.Action == BatchDelete {
		return "delete all " + what
	}
	return "mark all " + what + " as complete"
}
