package wage

import (
	"strings"

	"github.com/classified-extractor/internal/normalizer"
)

// scan is the token window around one salary token.
type scan struct {
	tokens []string
	idx    int  // salary token
	dollar bool // salary token carries $
}

// forwardRule classifies the window tokens[idx:end] after stop-word
// removal. offset is end-idx (2 or 3).
type forwardRule struct {
	name  string
	match func(lx *normalizer.Lexicon, words []string, offset int) bool
	tier  func(dollar bool) Tier
}

// forwardRules run in order for each window; the first match sets its tier
// and ends the forward scan.
var forwardRules = []forwardRule{
	{
		// "$500 weekly", "$500 per week"
		name: "rate phrase",
		match: func(lx *normalizer.Lexicon, words []string, offset int) bool {
			switch offset {
			case 2:
				return lx.RatesSingle.Has(words[len(words)-1])
			case 3:
				return len(words) >= 2 && lx.RatesDouble.Has(strings.Join(words[len(words)-2:], " "))
			}
			return false
		},
		tier: func(dollar bool) Tier { return pick(dollar, Best, Potential) },
	},
	{
		// "$50 hour", "$500 wk"
		name: "time unit",
		match: func(lx *normalizer.Lexicon, words []string, _ int) bool {
			for _, w := range words {
				if isTimeUnit(lx, w) {
					return true
				}
			}
			return false
		},
		tier: func(dollar bool) Tier { return pick(dollar, Potential, Weak) },
	},
}

// backwardRule classifies the window tokens[start:idx+1]. tier decides from
// the candidate text and the filtered window length.
type backwardRule struct {
	name  string
	match func(lx *normalizer.Lexicon, words []string) bool
	tier  func(text string, n int) Tier
}

var backwardRules = []backwardRule{
	{
		// "salary $300", "pay 80 weekly"
		name: "wage marker lead",
		match: func(lx *normalizer.Lexicon, words []string) bool {
			return lx.WageMarkers.Has(words[0])
		},
		tier: func(text string, n int) Tier {
			return pick(strings.Contains(text, "$") || n == 2, Potential, Weak)
		},
	},
}

func pick(cond bool, yes, no Tier) Tier {
	if cond {
		return yes
	}
	return no
}

func isTimeUnit(lx *normalizer.Lexicon, w string) bool {
	return lx.TimeUnits.Has(w) || lx.TimeAbbreviations.Has(w)
}

// candidateWords lowercases tokens[start:end] and drops stop words other
// than "per" and "every". Windows mentioning "hours" describe a schedule and
// windows left with one word carry nothing beyond the salary; both yield
// nil. A forward window whose second word is "dollars" or "cash" also takes
// the token after it.
func candidateWords(lx *normalizer.Lexicon, tokens []string, start, end int, forward bool) []string {
	var words []string
	for _, t := range tokens[start:end] {
		l := strings.ToLower(t)
		if l != "per" && l != "every" && lx.IsStopWord(l) {
			continue
		}
		words = append(words, l)
	}
	if len(words) <= 1 {
		return nil
	}
	for _, w := range words {
		if w == "hours" {
			return nil
		}
	}
	if forward && (words[1] == "dollars" || words[1] == "cash") && end < len(tokens) {
		words = append(words, strings.ToLower(tokens[end]))
	}
	return words
}

// forward looks at the one or two tokens after the salary.
func (s scan) forward(lx *normalizer.Lexicon, slots *tierSlots) {
	for offset := 2; offset <= 3; offset++ {
		end := s.idx + offset
		if end > len(s.tokens) {
			continue
		}
		words := candidateWords(lx, s.tokens, s.idx, end, true)
		if words == nil {
			continue
		}
		for _, r := range forwardRules {
			if r.match(lx, words, offset) {
				slots.offer(r.tier(s.dollar), strings.Join(words, " "))
				return
			}
		}
	}
}

// backward looks at the one to three tokens before the salary. Every window
// is tried; the slots keep the first candidate per tier.
func (s scan) backward(lx *normalizer.Lexicon, slots *tierSlots) {
	for start := s.idx - 1; start >= s.idx-3; start-- {
		if start < 0 {
			continue
		}
		words := candidateWords(lx, s.tokens, start, s.idx+1, false)
		if words == nil {
			continue
		}
		for _, r := range backwardRules {
			if !r.match(lx, words) {
				continue
			}
			text := strings.Join(words, " ")
			if end := s.timeUnitEnd(lx); end > 0 {
				text = strings.Join(s.tokens[start:end], " ")
			}
			slots.offer(r.tier(text, len(words)), text)
			break
		}
	}
}

// timeUnitEnd returns the exclusive end of the span that reaches a time
// unit one or two tokens after the salary, or 0 when there is none.
func (s scan) timeUnitEnd(lx *normalizer.Lexicon) int {
	if i := s.idx + 2; i < len(s.tokens) && isTimeUnit(lx, s.tokens[i]) {
		return i + 1
	}
	if i := s.idx + 1; i < len(s.tokens) && isTimeUnit(lx, s.tokens[i]) {
		return i + 1
	}
	return 0
}
