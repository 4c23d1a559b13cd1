package tasks

import (
	"errors"
	"time"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// ErrNotFound covers both a missing id and an owner mismatch: a task that
// belongs to someone else must be indistinguishable from one that does not
// exist.
var ErrNotFound = errors.New("task not found")

func ValidPriority(p string) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type Task struct {
	ID          int        `json:"id"`
	UserID      string     `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask carries the fields of a task to be created.
type NewTask struct {
	Title       string
	Description string
	Priority    string
	DueDate     *time.Time
}

// Patch describes a partial update. Nil fields are left untouched;
// ClearDueDate removes the due date regardless of DueDate.
type Patch struct {
	Title        *string
	Description  *string
	Priority     *string
	Completed    *bool
	DueDate      *time.Time
	ClearDueDate bool
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Completed == nil && p.DueDate == nil && !p.ClearDueDate
}

// Filter narrows List results.
type Filter struct {
	Completed *bool
	Priority  string
}
