package normalizer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Token is one cleaned word of an ad together with its position in the
// filtered token sequence.
type Token struct {
	Text  string `json:"text"`
	Lower string `json:"lower"`
	Index int    `json:"index"`
}

// WordChecker answers dictionary membership.
type WordChecker interface {
	IsKnownWord(word string) bool
}

// CompoundCorrector rewrites a phrase against a dictionary.
type CompoundCorrector interface {
	CorrectCompound(text string, maxEditDistance int, ignoreNonWords bool) string
}

// TextNormalizer turns raw OCR ad text into token sequences.
// All fields are read-only after construction.
type TextNormalizer struct {
	lexicon   *Lexicon
	words     WordChecker
	corrector CompoundCorrector
	maxEdit   int
	logger    *zap.Logger
}

// NewTextNormalizer wires a normalizer. corrector may be nil, in which case
// the wage pass skips spell correction.
func NewTextNormalizer(lexicon *Lexicon, words WordChecker, corrector CompoundCorrector, maxEditDistance int, logger *zap.Logger) *TextNormalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextNormalizer{
		lexicon:   lexicon,
		words:     words,
		corrector: corrector,
		maxEdit:   maxEditDistance,
		logger:    logger,
	}
}

// Lexicon exposes the shared word lists.
func (tn *TextNormalizer) Lexicon() *Lexicon { return tn.lexicon }

// Corrector exposes the compound corrector (may be nil).
func (tn *TextNormalizer) Corrector() CompoundCorrector { return tn.corrector }

// MaxEditDistance is the edit budget used for corrections.
func (tn *TextNormalizer) MaxEditDistance() int { return tn.maxEdit }

var (
	rePunct  = regexp.MustCompile(`[^\w\s]`)
	reSpaces = regexp.MustCompile(`\s+`)
)

// FirstAd returns the text before the first occurrence of delimiter.
func FirstAd(text, delimiter string) string {
	if delimiter == "" {
		return text
	}
	if i := strings.Index(text, delimiter); i >= 0 {
		return text[:i]
	}
	return text
}

// CleanTokenize keeps only the first ad of text, drops real-estate ads when
// excludeRealEstate is set, strips punctuation and filters short noise.
// The second return value is true when the ad was excluded; in that case the
// token slice is nil.
func (tn *TextNormalizer) CleanTokenize(text, adDelimiter string, excludeRealEstate bool, minTokenLength int) ([]Token, bool) {
	first := FoldOCR(FirstAd(text, adDelimiter))
	if excludeRealEstate && tn.lexicon.IsRealEstate(first) {
		tn.logger.Debug("ad excluded as real estate")
		return nil, true
	}

	cleaned := reSpaces.ReplaceAllString(rePunct.ReplaceAllString(first, " "), " ")
	fields := strings.Fields(cleaned)

	tokens := make([]Token, 0, len(fields))
	for _, f := range fields {
		if !tn.keep(f, minTokenLength) {
			continue
		}
		tokens = append(tokens, Token{Text: f, Lower: strings.ToLower(f), Index: len(tokens)})
	}
	return tokens, false
}

func (tn *TextNormalizer) keep(word string, minLen int) bool {
	switch {
	case utf8.RuneCountInString(word) >= minLen:
		return true
	case tn.isWord(word):
		return true
	case isDigits(word):
		return true
	default:
		return tn.lexicon.IsCardinal(word)
	}
}

func (tn *TextNormalizer) isWord(word string) bool {
	if tn.words == nil {
		return false
	}
	return tn.words.IsKnownWord(word)
}

// Texts returns the surface forms of tokens.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// StartsWithDigit reports whether the first rune of s is a digit.
func StartsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return s != "" && unicode.IsDigit(r)
}

// DigitsOnly keeps the digit runes of s.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
