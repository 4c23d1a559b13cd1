package chat

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Natural-language due dates. The parser resolves phrases like "tomorrow",
// "next friday at 3pm", "in 2 weeks" or "january 15" against a caller-supplied
// reference time so results never depend on the wall clock. Date-only phrases
// resolve to end of day (23:59:59); an explicit clock time overrides that.

var (
	clockRe    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`)
	meridiemRe = regexp.MustCompile(`\b(\d{1,2})\s*(am|pm)\b`)
	inRe       = regexp.MustCompile(`\bin\s+(\d+)\s+(day|days|week|weeks)\b`)
	monthDayRe = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`)
	dayMonthRe = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\b`)
	absHintRe  = regexp.MustCompile(`\d{4}|\d[/-]\d`)
)

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ParseNaturalDate resolves text to a concrete timestamp relative to now.
// It returns false when the phrase is not recognized as a date at all.
func ParseNaturalDate(text string, now time.Time) (time.Time, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return time.Time{}, false
	}

	// Machine-formatted dates (ISO 8601, slashed) go straight to dateparse
	// before the fragment extraction can mangle them.
	if absHintRe.MatchString(s) {
		if t, err := dateparse.ParseIn(text, now.Location()); err == nil {
			if hasClockTime(s) {
				return t, true
			}
			return endOfDay(t), true
		}
	}

	hour, min, hasTime, rest := extractClockTime(s)

	day, ok := resolveDay(rest, now)
	if !ok {
		if !hasTime {
			return time.Time{}, false
		}
		// A bare time like "at 3pm" means today.
		day = now
	}

	if hasTime {
		return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, now.Location()), true
	}
	return endOfDay(day), true
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

func hasClockTime(s string) bool {
	return clockRe.MatchString(s) || meridiemRe.MatchString(s)
}

// extractClockTime pulls a "3pm" / "14:30" / "3:15 pm" fragment out of the
// phrase, returning the remainder for date resolution.
func extractClockTime(s string) (hour, min int, ok bool, rest string) {
	if m := clockRe.FindStringSubmatch(s); m != nil {
		hour, _ = strconv.Atoi(m[1])
		min, _ = strconv.Atoi(m[2])
		hour = applyMeridiem(hour, m[3])
		if hour > 23 || min > 59 {
			return 0, 0, false, s
		}
		return hour, min, true, stripFragment(s, m[0])
	}
	if m := meridiemRe.FindStringSubmatch(s); m != nil {
		hour, _ = strconv.Atoi(m[1])
		hour = applyMeridiem(hour, m[2])
		if hour > 23 {
			return 0, 0, false, s
		}
		return hour, 0, true, stripFragment(s, m[0])
	}
	return 0, 0, false, s
}

func applyMeridiem(hour int, meridiem string) int {
	switch meridiem {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

func stripFragment(s, frag string) string {
	s = strings.Replace(s, frag, " ", 1)
	s = strings.ReplaceAll(s, " at ", " ")
	if strings.HasPrefix(s, "at ") {
		s = s[3:]
	}
	return strings.Join(strings.Fields(s), " ")
}

// resolveDay turns the date part of a phrase into a calendar day. Only the
// year/month/day of the result are meaningful.
func resolveDay(s string, now time.Time) (time.Time, bool) {
	s = strings.Join(strings.Fields(s), " ")
	switch s {
	case "":
		return time.Time{}, false
	case "today", "tonight", "this evening", "end of day", "eod":
		return now, true
	case "tomorrow", "tmrw", "tmr":
		return now.AddDate(0, 0, 1), true
	case "yesterday":
		return now.AddDate(0, 0, -1), true
	case "next week":
		return now.AddDate(0, 0, 7), true
	case "next month":
		return now.AddDate(0, 1, 0), true
	}

	if m := inRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(m[2], "week") {
			n *= 7
		}
		return now.AddDate(0, 0, n), true
	}

	// "next friday" is always strictly in the future, even when today is
	// friday. A bare weekday means the upcoming one, today included.
	if rest, found := strings.CutPrefix(s, "next "); found {
		if wd, ok := weekdays[rest]; ok {
			delta := (int(wd) - int(now.Weekday()) + 7) % 7
			if delta == 0 {
				delta = 7
			}
			return now.AddDate(0, 0, delta), true
		}
	}
	if wd, ok := weekdays[strings.TrimPrefix(s, "this ")]; ok {
		delta := (int(wd) - int(now.Weekday()) + 7) % 7
		return now.AddDate(0, 0, delta), true
	}

	if m := monthDayRe.FindStringSubmatch(s); m != nil {
		return monthDay(m[1], m[2], m[3], now)
	}
	if m := dayMonthRe.FindStringSubmatch(s); m != nil {
		return monthDay(m[2], m[1], "", now)
	}

	if t, err := dateparse.ParseIn(s, now.Location()); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// monthDay resolves a "january 15" style phrase. Without an explicit year the
// current one is assumed.
func monthDay(month, day, year string, now time.Time) (time.Time, bool) {
	mo, ok := months[month]
	if !ok {
		return time.Time{}, false
	}
	d, _ := strconv.Atoi(day)
	if d < 1 || d > 31 {
		return time.Time{}, false
	}
	y := now.Year()
	if year != "" {
		y, _ = strconv.Atoi(year)
	}
	return time.Date(y, mo, d, 0, 0, 0, 0, now.Location()), true
}
