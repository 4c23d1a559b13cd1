package chat

import (
	"regexp"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"taskmate-backend/internal/tasks"
)

// Fuzzy resolution of spoken task references ("the milk one", "that dentist
// task") against the owner's task list. Scoring is a token-set ratio: both
// strings are reduced to word sets and compared on their intersection and
// remainders, so a query that is a subset of a title scores 100 regardless of
// the extra words.

const (
	// MatchThreshold is the minimum confidence to consider a candidate at all.
	MatchThreshold = 60
	// CertainThreshold separates confident matches from ones that need the
	// user to confirm first.
	CertainThreshold = 90
)

// Match is a scored candidate.
type Match struct {
	Task       tasks.Task
	Confidence int
	// Tied is set when another task scored the same; the caller should
	// confirm rather than guess.
	Tied bool
}

// Certain reports whether the match is safe to act on without confirmation.
func (m Match) Certain() bool { return m.Confidence >= CertainThreshold && !m.Tied }

var nonWordRe = regexp.MustCompile(`[^a-z0-9]+`)

func tokenize(s string) []string {
	s = nonWordRe.ReplaceAllString(strings.ToLower(s), " ")
	fields := strings.Fields(s)
	seen := make(map[string]bool, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

var levenshtein = metrics.NewLevenshtein()

// tokenSetRatio scores two strings 0..100 the token-set way: intersection and
// per-side remainders are recombined and the best pairwise similarity wins.
func tokenSetRatio(a, b string) int {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inB := make(map[string]bool, len(tb))
	for _, t := range tb {
		inB[t] = true
	}
	inA := make(map[string]bool, len(ta))
	for _, t := range ta {
		inA[t] = true
	}

	var common, restA, restB []string
	for _, t := range ta {
		if inB[t] {
			common = append(common, t)
		} else {
			restA = append(restA, t)
		}
	}
	for _, t := range tb {
		if !inA[t] {
			restB = append(restB, t)
		}
	}

	base := strings.Join(common, " ")
	full1 := strings.TrimSpace(base + " " + strings.Join(restA, " "))
	full2 := strings.TrimSpace(base + " " + strings.Join(restB, " "))

	best := similarity(full1, full2)
	if base != "" {
		if r := similarity(base, full1); r > best {
			best = r
		}
		if r := similarity(base, full2); r > best {
			best = r
		}
	}
	return int(best*100 + 0.5)
}

func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	return strutil.Similarity(a, b, levenshtein)
}

// scoreTask scores a query against one task, considering both the bare title
// and the title plus description.
func scoreTask(query string, t tasks.Task) int {
	score := tokenSetRatio(query, t.Title)
	if t.Description != "" {
		if s := tokenSetRatio(query, t.Title+" "+t.Description); s > score {
			score = s
		}
	}
	return score
}

// BestMatch picks the candidate that best matches the query. Ties go to the
// most recently created task, with Tied set so callers can ask instead of
// guessing. ok is false when nothing clears MatchThreshold.
func BestMatch(query string, candidates []tasks.Task) (Match, bool) {
	var best Match
	found := false
	for _, t := range candidates {
		score := scoreTask(query, t)
		if score < MatchThreshold {
			continue
		}
		switch {
		case !found || score > best.Confidence:
			best = Match{Task: t, Confidence: score}
			found = true
		case score == best.Confidence:
			best.Tied = true
			if t.CreatedAt.After(best.Task.CreatedAt) ||
				(t.CreatedAt.Equal(best.Task.CreatedAt) && t.ID > best.Task.ID) {
				best.Task = t
			}
		}
	}
	return best, found
}
