// Package fuzzy scores string similarity on a 0..100 scale.
package fuzzy

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/xrash/smetrics"
)

// Match is one scored candidate.
type Match struct {
	Value string `json:"value"`
	Score int    `json:"score"`
	Index int    `json:"index"`
}

// Process lowercases s, turns every non-alphanumeric rune into a space and
// collapses the spacing. Both sides of a comparison go through it.
func Process(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// Ratio is the normalized indel similarity of the processed strings:
// 100 * (1 - indel/(len(a)+len(b))), rounded half to even. Empty input
// scores 0.
func Ratio(a, b string) int {
	return ratio(Process(a), Process(b))
}

func ratio(a, b string) int {
	total := len(a) + len(b)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	// substitution costs 2 so the distance counts insertions and deletions only
	dist := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return int(math.RoundToEven(100 * (1 - float64(dist)/float64(total))))
}

// BestMatch returns the highest scoring choice. Ties keep the earliest
// choice in slice order. ok is false when query is empty after processing
// or choices is empty.
func BestMatch(query string, choices []string) (Match, bool) {
	q := Process(query)
	if q == "" || len(choices) == 0 {
		return Match{}, false
	}
	best := Match{Score: -1}
	for i, c := range choices {
		if s := ratio(q, Process(c)); s > best.Score {
			best = Match{Value: c, Score: s, Index: i}
		}
	}
	return best, true
}

// TopN returns up to n choices ordered by score descending; equal scores
// keep slice order.
func TopN(query string, choices []string, n int) []Match {
	q := Process(query)
	if q == "" || n <= 0 {
		return nil
	}
	matches := make([]Match, len(choices))
	for i, c := range choices {
		matches[i] = Match{Value: c, Score: ratio(q, Process(c)), Index: i}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches
}
