package chat

import (
	"testing"

	"taskmate-backend/internal/tasks"
)

func TestSuggestPriority(t *testing.T) {
	cases := []struct {
		title, description, want string
	}{
		{"urgent: fix the login bug", "", tasks.PriorityHigh},
		{"submit report", "deadline is friday", tasks.PriorityHigh},
		{"pay rent ASAP", "", tasks.PriorityHigh},
		{"buy milk", "", tasks.PriorityMedium},
		{"clean the garage", "maybe someday", tasks.PriorityLow},
		{"reorganize bookshelf", "optional", tasks.PriorityLow},
		// High keywords win over low ones.
		{"urgent thing", "could also wait, maybe later", tasks.PriorityHigh},
		// Whole words only: "now" must not fire inside "known".
		{"document known issues", "", tasks.PriorityMedium},
	}
	for _, c := range cases {
		if got := SuggestPriority(c.title, c.description); got != c.want {
			t.Errorf("SuggestPriority(%q, %q) = %q, want %q", c.title, c.description, got, c.want)
		}
	}
}
