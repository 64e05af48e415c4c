package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/classified-extractor/app/models"
	"github.com/classified-extractor/internal/normalizer"
)

// ErrMalformedAddress is returned when a street marker has no usable tokens
// before it. It aborts the address pass of one ad only.
var ErrMalformedAddress = errors.New("malformed address")

// prefixRule decides whether the token farthest from the marker stays in a
// three-token street window.
type prefixRule struct {
	name     string
	when     func(lx *normalizer.Lexicon, w []string) bool
	dropLead bool
}

// threeTokenRules run in order; the first match wins.
//
//	"100 This That"      numeric lead, no numeric street   keep
//	"100 E 4th"          numeric lead, directional         keep
//	"5 100 Main"         numeric lead, numeric street      drop
//	"East North London"  directional lead                  keep
//	"Apply Oak Park"     anything else                     drop
var threeTokenRules = []prefixRule{
	{
		name: "numeric lead without numeric street",
		when: func(_ *normalizer.Lexicon, w []string) bool {
			return normalizer.StartsWithDigit(w[0]) && !normalizer.StartsWithDigit(w[1]) && !normalizer.StartsWithDigit(w[2])
		},
	},
	{
		name: "numeric lead then directional",
		when: func(lx *normalizer.Lexicon, w []string) bool {
			return normalizer.StartsWithDigit(w[0]) && lx.IsCardinal(w[1])
		},
	},
	{
		name:     "numeric lead",
		when:     func(_ *normalizer.Lexicon, w []string) bool { return normalizer.StartsWithDigit(w[0]) },
		dropLead: true,
	},
	{
		name: "directional lead",
		when: func(lx *normalizer.Lexicon, w []string) bool { return lx.IsCardinal(w[0]) },
	},
	{
		name:     "otherwise",
		when:     func(*normalizer.Lexicon, []string) bool { return true },
		dropLead: true,
	},
}

func applyThreeTokenRules(lx *normalizer.Lexicon, w []string) []string {
	for _, r := range threeTokenRules {
		if r.when(lx, w) {
			if r.dropLead {
				return w[1:]
			}
			return w
		}
	}
	return w
}

var ordinalSuffix = map[byte]string{'1': "st", '2': "nd", '3': "rd"}

// FindStreet builds the house number and street name from the up to three
// tokens before the street marker at i. An empty result with a nil error
// means the window held nothing but a zero.
func (b *AddressCandidateBuilder) FindStreet(tokens []string, i int) (models.AddressCandidate, error) {
	if i <= 0 || i >= len(tokens) {
		return models.AddressCandidate{}, fmt.Errorf("%w: no tokens before marker %d", ErrMalformedAddress, i)
	}
	start := i - 3
	if start < 0 {
		start = 0
	}
	addr := append([]string(nil), tokens[start:i]...)
	for _, t := range addr {
		if t == "" {
			return models.AddressCandidate{}, fmt.Errorf("%w: empty token in %q", ErrMalformedAddress, addr)
		}
	}

	marker := normalizer.CapWords(tokens[i])
	if marker == "Av" {
		marker = "Ave"
	}

	// OCR often reads a stray mark before the number as 0
	if addr[0][0] == '0' {
		if len(addr[0]) == 1 {
			addr = addr[1:]
		} else {
			addr[0] = addr[0][1:]
		}
	}
	if len(addr) == 0 {
		return models.AddressCandidate{}, nil
	}

	lx := b.normalizer.Lexicon()
	if len(addr) == 3 {
		addr = applyThreeTokenRules(lx, addr)
	}
	for len(addr) > 1 {
		if normalizer.StartsWithDigit(addr[0]) || (lx.IsCardinal(addr[0]) && !lx.IsStopWord(addr[1])) {
			break
		}
		addr = addr[1:]
	}

	var out models.AddressCandidate
	if len(addr) > 1 && normalizer.StartsWithDigit(addr[0]) {
		out.HouseNumber = normalizer.DigitsOnly(addr[0])
		addr = addr[1:]
	}
	out.Street = b.correctStreet(addr) + " " + marker
	return out, nil
}

// correctStreet spell-corrects the street words jointly, repairs a numbered
// street ("42n" -> "42nd") and capitalizes each word.
func (b *AddressCandidateBuilder) correctStreet(addr []string) string {
	words := addr
	if c := b.normalizer.Corrector(); c != nil {
		if corrected := strings.Fields(c.CorrectCompound(strings.Join(addr, " "), b.normalizer.MaxEditDistance(), false)); len(corrected) > 0 {
			words = corrected
		}
	}
	words = append([]string(nil), words...)

	last := words[len(words)-1]
	if normalizer.StartsWithDigit(last) {
		n := len(normalizer.DigitsOnly(last))
		if float64(n)/float64(len(last)) > 0.5 {
			words[len(words)-1] = ordinal(last[:n])
		}
	}
	return normalizer.CapWords(strings.Join(words, " "))
}

// ordinal appends the English ordinal suffix to a number written as s.
func ordinal(s string) string {
	if len(s) >= 2 && s[len(s)-2] == '1' {
		return s + "th"
	}
	if suf, ok := ordinalSuffix[s[len(s)-1]]; ok {
		return s + suf
	}
	return s + "th"
}
