package chat

import (
	"fmt"
	"strings"
	"time"

	"taskmate-backend/internal/tasks"
)

// Reply rendering. Lists and dates are formatted for a chat window, not an
// API client: relative day names, status and priority markers, and one task
// per line.

func priorityMarker(p string) string {
	switch p {
	case tasks.PriorityHigh:
		return "🔴"
	case tasks.PriorityLow:
		return "🟢"
	default:
		return "🟡"
	}
}

// FormatRelativeDate renders a timestamp the way a person would say it:
// "Today at 3:00 PM", "Tomorrow", "Friday at 9:30 AM", falling back to
// "Jan 15" (with a year when it differs from the current one).
func FormatRelativeDate(t time.Time, now time.Time) string {
	day := func(x time.Time) time.Time {
		return time.Date(x.Year(), x.Month(), x.Day(), 0, 0, 0, 0, x.Location())
	}
	var name string
	switch days := int(day(t).Sub(day(now)).Hours() / 24); {
	case days == 0:
		name = "Today"
	case days == 1:
		name = "Tomorrow"
	case days == -1:
		name = "Yesterday"
	case days > 1 && days < 7:
		name = t.Weekday().String()
	default:
		if t.Year() == now.Year() {
			name = t.Format("Jan 2")
		} else {
			name = t.Format("Jan 2, 2006")
		}
	}

	// End-of-day timestamps come from date-only phrases; the clock part
	// would just be noise.
	if t.Hour() == 23 && t.Minute() == 59 {
		return name
	}
	return name + " at " + t.Format("3:04 PM")
}

func formatTaskLine(t tasks.Task, now time.Time) string {
	status := "⏳"
	if t.Completed {
		status = "✅"
	}
	line := fmt.Sprintf("%s #%d: %s (%s %s priority)", status, t.ID, t.Title, priorityMarker(t.Priority), t.Priority)
	if t.DueDate != nil {
		line += " - 📅 Due: " + FormatRelativeDate(*t.DueDate, now)
	}
	return line
}

// FormatTaskList renders the full list reply.
func FormatTaskList(ts []tasks.Task, now time.Time) string {
	if len(ts) == 0 {
		return "📋 Your task list is empty. Tell me what you need to do and I'll add it!"
	}
	noun := "tasks"
	if len(ts) == 1 {
		noun = "task"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📋 You have %d %s:\n\n", len(ts), noun)
	for _, t := range ts {
		b.WriteString(formatTaskLine(t, now))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatAdded(t tasks.Task, now time.Time) string {
	msg := fmt.Sprintf("I've added %s with %s priority", describeTask(t), t.Priority)
	if t.DueDate != nil {
		msg += ", due " + FormatRelativeDate(*t.DueDate, now)
	}
	return msg + "."
}

func formatCompleted(t tasks.Task) string {
	return fmt.Sprintf("✅ Done! I've marked %s as complete.", describeTask(t))
}

func formatUpdated(t tasks.Task, u ResolvedUpdate, now time.Time) string {
	var changes []string
	if u.Title != nil {
		changes = append(changes, fmt.Sprintf("renamed it to %q", *u.Title))
	}
	if u.Description != nil {
		changes = append(changes, "updated the description")
	}
	if u.Priority != nil {
		changes = append(changes, "set priority to "+*u.Priority)
	}
	if u.Completed != nil {
		if *u.Completed {
			changes = append(changes, "marked it complete")
		} else {
			changes = append(changes, "reopened it")
		}
	}
	if u.ClearDueDate {
		changes = append(changes, "removed the due date")
	} else if u.DueDate != nil {
		changes = append(changes, "set the due date to "+FormatRelativeDate(*u.DueDate, now))
	}
	return fmt.Sprintf("I've updated task #%d (%s).", t.ID, strings.Join(changes, ", "))
}

func formatDeleted(t tasks.Task) string {
	return fmt.Sprintf("🗑️ Deleted %s.", describeTask(t))
}

// confirmDelete asks before removing a single task.
func confirmDelete(t tasks.Task) string {
	return fmt.Sprintf("Are you sure you want to delete %s? This can't be undone. (yes/no)", describeTask(t))
}

// confirmAmbiguous asks before acting on a fuzzy match that wasn't certain.
func confirmAmbiguous(verb string, m Match) string {
	return fmt.Sprintf("Did you mean %s? I'll %s it if you say yes. (yes/no)", describeTask(m.Task), verb)
}

// confirmBatch itemizes every task a batch would touch.
func confirmBatch(op BatchOp, ts []tasks.Task, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This will %s (%d in total):\n\n", op.Describe(), len(ts))
	for _, t := range ts {
		b.WriteString(formatTaskLine(t, now))
		b.WriteByte('\n')
	}
	b.WriteString("\nShould I go ahead? (yes/no)")
	return b.String()
}

// formatBatchOutcome enumerates what a batch actually did, including partial
// failures.
func formatBatchOutcome(kind PendingKind, out BatchOutcome) string {
	verb := "Completed"
	if kind == PendingBatchDelete {
		verb = "Deleted"
	}
	var b strings.Builder
	if len(out.Succeeded) > 0 {
		fmt.Fprintf(&b, "%s %d task(s):\n", verb, len(out.Succeeded))
		for _, it := range out.Succeeded {
			fmt.Fprintf(&b, "  • #%d: %s\n", it.ID, it.Title)
		}
	}
	if len(out.Failed) > 0 {
		fmt.Fprintf(&b, "%d task(s) could not be processed:\n", len(out.Failed))
		for _, it := range out.Failed {
			fmt.Fprintf(&b, "  • #%d: %v\n", it.ID, it.Err)
		}
	}
	if b.Len() == 0 {
		return "Nothing to do — those tasks are already gone."
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatFound(m Match, now time.Time) string {
	if m.Certain() {
		return "I found this task:\n" + formatTaskLine(m.Task, now)
	}
	return fmt.Sprintf("The closest match I found (%d%% sure) is:\n%s", m.Confidence, formatTaskLine(m.Task, now))
}
