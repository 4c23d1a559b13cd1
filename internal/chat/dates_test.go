package chat

import (
	"testing"
	"time"
)

// Wednesday, March 4 2026, mid-morning.
var refNow = time.Date(2026, time.March, 4, 10, 30, 0, 0, time.UTC)

func TestParseNaturalDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"today", time.Date(2026, 3, 4, 23, 59, 59, 0, time.UTC)},
		{"tomorrow", time.Date(2026, 3, 5, 23, 59, 59, 0, time.UTC)},
		{"Tomorrow at 3pm", time.Date(2026, 3, 5, 15, 0, 0, 0, time.UTC)},
		{"tomorrow at 9:30am", time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC)},
		{"3pm", time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)},
		{"at 12pm", time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)},
		{"14:30", time.Date(2026, 3, 4, 14, 30, 0, 0, time.UTC)},
		{"in 3 days", time.Date(2026, 3, 7, 23, 59, 59, 0, time.UTC)},
		{"in 2 weeks", time.Date(2026, 3, 18, 23, 59, 59, 0, time.UTC)},
		{"friday", time.Date(2026, 3, 6, 23, 59, 59, 0, time.UTC)},
		{"next monday", time.Date(2026, 3, 9, 23, 59, 59, 0, time.UTC)},
		// "next <weekday>" is the earliest strictly-future occurrence: from
		// Wednesday that is this week's Friday, but a week out when the
		// weekday is today (see TestWeekdayResolution).
		{"next friday at 3pm", time.Date(2026, 3, 6, 15, 0, 0, 0, time.UTC)},
		{"next wednesday", time.Date(2026, 3, 11, 23, 59, 59, 0, time.UTC)},
		{"next week", time.Date(2026, 3, 11, 23, 59, 59, 0, time.UTC)},
		{"january 15", time.Date(2026, 1, 15, 23, 59, 59, 0, time.UTC)},
		{"March 10th at 9:30am", time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)},
		{"15 of january", time.Date(2026, 1, 15, 23, 59, 59, 0, time.UTC)},
		{"2026-12-01", time.Date(2026, 12, 1, 23, 59, 59, 0, time.UTC)},
	}
	for _, c := range cases {
		got, ok := ParseNaturalDate(c.in, refNow)
		if !ok {
			t.Errorf("ParseNaturalDate(%q) not recognized", c.in)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("ParseNaturalDate(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

// "tomorrow" means the next calendar day at end of day no matter what time
// it is now.
func TestTomorrowIgnoresClock(t *testing.T) {
	want := time.Date(2026, 3, 5, 23, 59, 59, 0, time.UTC)
	for _, hour := range []int{0, 9, 23} {
		now := time.Date(2026, 3, 4, hour, 1, 0, 0, time.UTC)
		got, ok := ParseNaturalDate("tomorrow", now)
		if !ok || !got.Equal(want) {
			t.Errorf("at hour %d: got %v ok=%v, want %v", hour, got, ok, want)
		}
	}
}

// "next monday" on a monday is a week out; bare "monday" is today.
func TestWeekdayResolution(t *testing.T) {
	monday := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

	got, ok := ParseNaturalDate("next monday", monday)
	if !ok || got.Day() != 16 {
		t.Fatalf("next monday from a monday = %v ok=%v, want March 16", got, ok)
	}
	got, ok = ParseNaturalDate("monday", monday)
	if !ok || got.Day() != 9 {
		t.Fatalf("monday from a monday = %v ok=%v, want March 9", got, ok)
	}
}

func TestParseNaturalDateRejectsNonsense(t *testing.T) {
	for _, in := range []string{"", "   ", "banana sandwich", "whenever"} {
		if got, ok := ParseNaturalDate(in, refNow); ok {
			t.Errorf("ParseNaturalDate(%q) = %v, want no match", in, got)
		}
	}
}
