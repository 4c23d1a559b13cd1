package chat

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"taskmate-backend/internal/tasks"
)

// Enhancement turns raw model arguments into fully resolved, validated
// operations: natural-language dates become timestamps, missing priorities
// are inferred, and every field is range-checked before anything touches the
// store. Values the user stated explicitly are never coerced; an invalid one
// is rejected with a message naming the problem.

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
	maxDueDateHorizon = 10 * 365 * 24 * time.Hour
)

// ResolvedAdd is an add operation ready for the store.
type ResolvedAdd struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// ResolvedUpdate is a validated patch. Staged as-is for confirmation, so the
// arguments the user approved are exactly the ones applied.
type ResolvedUpdate struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Priority     *string    `json:"priority,omitempty"`
	Completed    *bool      `json:"completed,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	ClearDueDate bool       `json:"clear_due_date,omitempty"`
}

func (r ResolvedUpdate) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Priority == nil &&
		r.Completed == nil && r.DueDate == nil && !r.ClearDueDate
}

func (r ResolvedUpdate) patch() tasks.Patch {
	return tasks.Patch{
		Title:        r.Title,
		Description:  r.Description,
		Priority:     r.Priority,
		Completed:    r.Completed,
		DueDate:      r.DueDate,
		ClearDueDate: r.ClearDueDate,
	}
}

// EnhanceAdd validates and normalizes add arguments. Priority is inferred
// from keywords only when the model supplied none.
func EnhanceAdd(a AddArgs, now time.Time) (ResolvedAdd, error) {
	title := strings.TrimSpace(a.Title)
	if title == "" {
		return ResolvedAdd{}, validationFailure("title", "I need a title for the task. What should I call it?")
	}
	// Limits are in characters, not bytes; multi-byte titles count per rune.
	if n := utf8.RuneCountInString(title); n > maxTitleLen {
		return ResolvedAdd{}, validationFailure("title", "That title is too long (%d characters, max %d). Could you shorten it?", n, maxTitleLen)
	}
	if utf8.RuneCountInString(a.Description) > maxDescriptionLen {
		return ResolvedAdd{}, validationFailure("description", "That description is too long (max %d characters).", maxDescriptionLen)
	}

	priority := a.Priority
	if priority == "" {
		priority = SuggestPriority(title, a.Description)
	} else if !tasks.ValidPriority(priority) {
		return ResolvedAdd{}, validationFailure("priority", "Priority must be high, medium or low, not %q.", a.Priority)
	}

	out := ResolvedAdd{Title: title, Description: a.Description, Priority: priority}
	if a.DueDate != "" {
		due, err := resolveDueDate(a.DueDate, now)
		if err != nil {
			return ResolvedAdd{}, err
		}
		out.DueDate = &due
	}
	return out, nil
}

// EnhanceUpdate validates update arguments into a patch. Unlike add, an
// absent priority means "leave it alone", never "infer one".
func EnhanceUpdate(u *UpdateArgs, now time.Time) (ResolvedUpdate, error) {
	var out ResolvedUpdate
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" || utf8.RuneCountInString(title) > maxTitleLen {
			return ResolvedUpdate{}, validationFailure("title", "The new title must be between 1 and %d characters.", maxTitleLen)
		}
		out.Title = &title
	}
	if u.Description != nil {
		if utf8.RuneCountInString(*u.Description) > maxDescriptionLen {
			return ResolvedUpdate{}, validationFailure("description", "That description is too long (max %d characters).", maxDescriptionLen)
		}
		out.Description = u.Description
	}
	if u.Priority != nil {
		if !tasks.ValidPriority(*u.Priority) {
			return ResolvedUpdate{}, validationFailure("priority", "Priority must be high, medium or low, not %q.", *u.Priority)
		}
		out.Priority = u.Priority
	}
	out.Completed = u.Completed
	if u.RemoveDueDate {
		out.ClearDueDate = true
	} else if u.DueDate != nil && *u.DueDate != "" {
		due, err := resolveDueDate(*u.DueDate, now)
		if err != nil {
			return ResolvedUpdate{}, err
		}
		out.DueDate = &due
	}
	return out, nil
}

func resolveDueDate(text string, now time.Time) (time.Time, error) {
	due, ok := ParseNaturalDate(text, now)
	if !ok {
		return time.Time{}, parseFailure("due_date", "I couldn't work out the date %q. Try something like \"tomorrow\", \"next friday at 3pm\" or \"2026-01-15\".", text)
	}
	if due.After(now.Add(maxDueDateHorizon)) {
		return time.Time{}, validationFailure("due_date", "That due date is more than 10 years away, which is probably not what you meant.")
	}
	return due, nil
}

var taskIDRe = regexp.MustCompile(`(?i)\b(?:task\s+#?|task\s+number\s+|id\s+|#)(\d+)\b`)

// extractTaskID pulls an explicit id out of a reference like "task 5" or "#12".
func extractTaskID(s string) (int, bool) {
	m := taskIDRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	return id, err == nil
}

// ResolveTarget finds the task an operation refers to among the candidates.
// An explicit id must exist exactly; a textual reference is matched fuzzily.
func ResolveTarget(target TargetArgs, candidates []tasks.Task) (Match, error) {
	if target.TaskID != 0 {
		return matchByID(target.TaskID, candidates)
	}

	ref := strings.TrimSpace(target.Reference)
	if ref == "" {
		return Match{}, parseFailure("reference", "Which task do you mean? You can say its name or its number.")
	}
	if id, ok := extractTaskID(ref); ok {
		return matchByID(id, candidates)
	}

	m, ok := BestMatch(ref, candidates)
	if !ok {
		return Match{}, notFound("I couldn't find a task matching %q. Say \"show my tasks\" to see what's on your list.", ref)
	}
	return m, nil
}

func matchByID(id int, candidates []tasks.Task) (Match, error) {
	for _, t := range candidates {
		if t.ID == id {
			return Match{Task: t, Confidence: 100}, nil
		}
	}
	return Match{}, notFound("I couldn't find task #%d on your list.", id)
}

// describeTask names a task in replies: #5 ('buy milk').
func describeTask(t tasks.Task) string {
	return fmt.Sprintf("#%d (%q)", t.ID, t.Title)
}
