package normalizer

import (
	"regexp"
	"strings"
)

// wageStep is one rewrite of the wage normalization pass. Steps run in
// slice order and each sees the output of the previous one.
type wageStep struct {
	name    string
	rewrite func(string) string
}

var (
	reShortDigits   = regexp.MustCompile(`^\d{1,3}$`)
	reAllDigits     = regexp.MustCompile(`^\d+$`)
	reDigitJoin     = regexp.MustCompile(`(\s\$?\s?\d+)\s?(\d+\$?\s)`)
	reDecimal       = regexp.MustCompile(`(\s\$?\s?\d+)\s?([.,])\s?(\d{1,3}\$?\s)`)
	reDollarBefore  = regexp.MustCompile(`\s[stfFS$]\s?(\d+[,.]?\d*)\$?\s`)
	reDollarAfter   = regexp.MustCompile(`\s(\d+[,.]?\d*)[stfFS$]\s`)
	reRange         = regexp.MustCompile(`(\d)\s*-\s*(\$?\d)`)
	reLoneSeparator = regexp.MustCompile(`\s\.\s|\s,\s|\s-|-\s`)
)

// wagePunctuation is removed outright; $ , . and - survive for the salary
// patterns.
const wagePunctuation = "!\"#%&'()*+/:;<>?@[\\]^_`{|}~"

var wageSteps = []wageStep{
	{"pad", padSpaces},
	{"join-short-digit-groups", joinShortDigitGroups},
	{"join-digit-fragments", func(s string) string { return reDigitJoin.ReplaceAllString(s, "${1}${2}") }},
	{"reattach-decimals", func(s string) string { return reDecimal.ReplaceAllString(s, "${1}${2}${3}") }},
	{"dollar-before-digits", func(s string) string { return replaceUntilStable(reDollarBefore, s, " $$${1} ") }},
	{"dollar-after-digits", func(s string) string { return replaceUntilStable(reDollarAfter, s, " ${1}$$ ") }},
	{"collapse-ranges", func(s string) string { return reRange.ReplaceAllString(s, "${1}-${2}") }},
	{"strip-punctuation", stripWagePunctuation},
	{"drop-lone-separators", func(s string) string { return reLoneSeparator.ReplaceAllString(s, " ") }},
}

// CleanForWage prepares ad text for salary scanning. Only the first ad of a
// multi-ad blob is expected; callers truncate beforehand.
func (tn *TextNormalizer) CleanForWage(text string) string {
	s := FoldOCR(text)
	for _, step := range wageSteps {
		s = step.rewrite(s)
	}
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	if s == "" || tn.corrector == nil {
		return s
	}
	return tn.corrector.CorrectCompound(s, tn.maxEdit, true)
}

func padSpaces(s string) string {
	return " " + strings.Join(strings.Fields(s), " ") + " "
}

// joinShortDigitGroups glues "5 00" and "12 500" style fragments: a group of
// at most three digits followed by another all-digit token.
func joinShortDigitGroups(s string) string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if n := len(out); n > 0 && reShortDigits.MatchString(out[n-1]) && reAllDigits.MatchString(f) {
			out[n-1] += f
			continue
		}
		out = append(out, f)
	}
	return " " + strings.Join(out, " ") + " "
}

func stripWagePunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(wagePunctuation, r) {
			return -1
		}
		return r
	}, s)
}

// replaceUntilStable reapplies re because adjacent matches share their
// delimiting whitespace and a single pass skips every second one.
func replaceUntilStable(re *regexp.Regexp, s, repl string) string {
	for i := 0; i < 8; i++ {
		next := re.ReplaceAllString(s, repl)
		if next == s {
			return next
		}
		s = next
	}
	return s
}
