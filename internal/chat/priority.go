package chat

import "taskmate-backend/internal/tasks"

// Keyword-driven priority inference for tasks created without an explicit
// priority. Matching is whole-word so "now" does not fire on "known".

var highPriorityWords = []string{
	"urgent", "asap", "critical", "emergency", "deadline", "today", "now", "immediately",
}

var lowPriorityWords = []string{
	"someday", "maybe", "later", "eventually", "optional", "minor", "trivial",
}

// SuggestPriority inspects the title and description and returns high, low or
// the default medium. High keywords win when both appear.
func SuggestPriority(title, description string) string {
	words := map[string]bool{}
	for _, w := range tokenize(title + " " + description) {
		words[w] = true
	}
	for _, kw := range highPriorityWords {
		if words[kw] {
			return tasks.PriorityHigh
		}
	}
	for _, kw := range lowPriorityWords {
		if words[kw] {
			return tasks.PriorityLow
		}
	}
	return tasks.PriorityMedium
}
