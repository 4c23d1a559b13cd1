package chat

import "testing"

func TestClassifyReply(t *testing.T) {
	cases := []struct {
		in   string
		want Verdict
	}{
		{"yes", VerdictAffirmative},
		{"Yes!", VerdictAffirmative},
		{"yep", VerdictAffirmative},
		{"ok sure", VerdictAffirmative},
		{"go ahead", VerdictAffirmative},
		{"no", VerdictNegative},
		{"Nope.", VerdictNegative},
		{"no thanks", VerdictNegative},
		{"please don't", VerdictNegative},
		{"cancel", VerdictNegative},
		// Anything longer than three words is a fresh instruction.
		{"yes but first show me the list", VerdictUnrelated},
		{"show my tasks", VerdictUnrelated},
		{"add a task to buy milk", VerdictUnrelated},
		{"what?", VerdictUnrelated},
		{"", VerdictUnrelated},
	}
	for _, c := range cases {
		if got := ClassifyReply(c.in); got != c.want {
			t.Errorf("ClassifyReply(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestCancelMessagesNameTheOperation(t *testing.T) {
	kinds := []PendingKind{
		PendingDelete, PendingComplete, PendingUpdate,
		PendingBatchDelete, PendingBatchComplete,
	}
	for _, k := range kinds {
		if CancelMessage(k) == "" {
			t.Errorf("empty cancel message for %q", k)
		}
	}
	if CancelMessage(PendingDelete) == CancelMessage(PendingUpdate) {
		t.Error("delete and update cancellations should read differently")
	}
}
