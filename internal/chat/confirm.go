package chat

import (
	"strings"
	"time"
)

// Destructive and ambiguous operations are staged as a PendingConfirmation
// and only executed once the user says yes. The staged arguments are final:
// confirmation dispatches them unchanged, it never re-reads the conversation
// to work out what was meant.

// PendingKind identifies what a staged confirmation will do.
type PendingKind string

const (
	PendingDelete        PendingKind = "delete"
	PendingComplete      PendingKind = "complete"
	PendingUpdate        PendingKind = "update"
	PendingBatchDelete   PendingKind = "batch_delete"
	PendingBatchComplete PendingKind = "batch_complete"
)

// PendingConfirmation is a fully resolved operation awaiting a yes or no.
// It serializes to the conversation row, so a confirmation can span requests.
type PendingConfirmation struct {
	Kind      PendingKind     `json:"kind"`
	TaskIDs   []int           `json:"task_ids"`
	Update    *ResolvedUpdate `json:"update,omitempty"`
	Summary   string          `json:"summary"`
	CreatedAt time.Time       `json:"created_at"`
}

// Verdict classifies the user's reply to a pending confirmation.
type Verdict int

const (
	// VerdictUnrelated: the reply is a new instruction; the staged
	// operation is discarded and the message handled fresh.
	VerdictUnrelated Verdict = iota
	VerdictAffirmative
	VerdictNegative
)

var affirmativeWords = map[string]bool{
	"yes": true, "y": true, "yeah": true, "yep": true, "yup": true,
	"sure": true, "ok": true, "okay": true, "confirm": true, "confirmed": true,
	"do": true, "go": true, "proceed": true, "please": true, "definitely": true,
}

var negativeWords = map[string]bool{
	"no": true, "n": true, "nope": true, "nah": true, "cancel": true,
	"stop": true, "dont": true, "don't": true, "never": true, "abort": true,
}

// ClassifyReply decides whether a short message answers a pending
// confirmation. Anything longer than three words is a new instruction.
func ClassifyReply(message string) Verdict {
	s := strings.ToLower(strings.TrimSpace(message))
	s = strings.TrimRight(s, ".!?")
	words := strings.Fields(s)
	if len(words) == 0 || len(words) > 3 {
		return VerdictUnrelated
	}

	// Negations win: "no thanks", "please don't".
	for _, w := range words {
		if negativeWords[w] {
			return VerdictNegative
		}
	}
	for _, w := range words {
		if affirmativeWords[w] {
			return VerdictAffirmative
		}
	}
	return VerdictUnrelated
}

// CancelMessage is the reply when the user declines a staged operation.
func CancelMessage(kind PendingKind) string {
	switch kind {
	case PendingDelete, PendingBatchDelete:
		return "Deletion cancelled. No tasks were removed."
	case PendingComplete, PendingBatchComplete:
		return "Okay, I'll leave those tasks as they are."
	case PendingUpdate:
		return "Update cancelled. The task was not changed."
	default:
		return "Cancelled. No changes were made."
	}
}
