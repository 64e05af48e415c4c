package spell

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Corrector rewrites phrases word by word against a Dictionary. Output is a
// pure function of the input and the dictionary; the memo only caches it.
type Corrector struct {
	dict *Dictionary
	memo *lru.Cache[string, string]
}

// NewCorrector creates a corrector. memoSize <= 0 disables memoization.
func NewCorrector(dict *Dictionary, memoSize int) (*Corrector, error) {
	c := &Corrector{dict: dict}
	if memoSize > 0 {
		memo, err := lru.New[string, string](memoSize)
		if err != nil {
			return nil, fmt.Errorf("create correction memo: %w", err)
		}
		c.memo = memo
	}
	return c, nil
}

var reWordTerm = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]*)?`)

// CorrectCompound lowercases text and corrects each term. With
// ignoreNonWords the text is split on whitespace and any term carrying
// non-letters (numbers, currency, punctuation) passes through untouched;
// otherwise only word characters are kept. Terms with digits are never
// rewritten in either mode.
func (c *Corrector) CorrectCompound(text string, maxEditDistance int, ignoreNonWords bool) string {
	key := fmt.Sprintf("%d|%t|%s", maxEditDistance, ignoreNonWords, text)
	if c.memo != nil {
		if v, ok := c.memo.Get(key); ok {
			return v
		}
	}

	lower := strings.ToLower(text)
	var terms []string
	if ignoreNonWords {
		terms = strings.Fields(lower)
	} else {
		terms = reWordTerm.FindAllString(lower, -1)
	}

	out := make([]string, 0, len(terms))
	var prev string // previous original term, "" when it was not correctable
	for _, term := range terms {
		if !isLetters(term) {
			out = append(out, term)
			prev = ""
			continue
		}
		if prev != "" {
			joined := prev + term
			if c.dict.Frequency(joined) > 0 && (c.dict.Frequency(prev) == 0 || c.dict.Frequency(term) == 0) {
				out[len(out)-1] = joined
				prev = ""
				continue
			}
		}
		out = append(out, c.correctTerm(term, maxEditDistance))
		prev = term
	}

	result := strings.Join(out, " ")
	if c.memo != nil {
		c.memo.Add(key, result)
	}
	return result
}

func (c *Corrector) correctTerm(term string, maxEdit int) string {
	if c.dict.Frequency(term) > 0 {
		return term
	}
	if w, ok := c.closest(term, maxEdit); ok {
		return w
	}
	if split, ok := c.split(term); ok {
		return split
	}
	return term
}

// closest finds the dictionary word with the smallest edit distance, ties
// broken by higher frequency then lexical order.
func (c *Corrector) closest(term string, maxEdit int) (string, bool) {
	if maxEdit <= 0 {
		return "", false
	}
	n := len([]rune(term))
	best, bestDist := "", maxEdit+1
	var bestFreq int64
	for l := n - maxEdit; l <= n+maxEdit; l++ {
		if l < 1 {
			continue
		}
		for _, w := range c.dict.wordsOfLength(l) {
			d := levenshtein.ComputeDistance(term, w)
			if d > maxEdit {
				continue
			}
			f := c.dict.Frequency(w)
			if d < bestDist || (d == bestDist && (f > bestFreq || (f == bestFreq && w < best))) {
				best, bestDist, bestFreq = w, d, f
			}
		}
	}
	return best, best != ""
}

// split tries to read term as two run-together words.
func (c *Corrector) split(term string) (string, bool) {
	runes := []rune(term)
	if len(runes) < 4 {
		return "", false
	}
	best := ""
	var bestScore int64
	for i := 2; i <= len(runes)-2; i++ {
		left, right := string(runes[:i]), string(runes[i:])
		fl, fr := c.dict.Frequency(left), c.dict.Frequency(right)
		if fl == 0 || fr == 0 {
			continue
		}
		score := fl
		if fr < score {
			score = fr
		}
		if score > bestScore {
			best, bestScore = left+" "+right, score
		}
	}
	return best, best != ""
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '\'' && r != '’' {
			return false
		}
	}
	return s != ""
}
