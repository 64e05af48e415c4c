package normalizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wordSet map[string]bool

func (w wordSet) IsKnownWord(word string) bool {
	return w[strings.ToLower(word)]
}

type upperCorrector struct {
	calls []string
}

func (u *upperCorrector) CorrectCompound(text string, maxEdit int, ignoreNonWords bool) string {
	u.calls = append(u.calls, text)
	return text + " [checked]"
}

func newTestNormalizer(t *testing.T, corrector CompoundCorrector) *TextNormalizer {
	t.Helper()
	lx, err := LoadLexicon()
	require.NoError(t, err)
	return NewTextNormalizer(lx, wordSet{"st": true, "in": true}, corrector, 2, nil)
}

func TestLoadLexicon(t *testing.T) {
	lx, err := LoadLexicon()
	require.NoError(t, err)

	assert.True(t, lx.IsStreetMarker("Ave"))
	assert.True(t, lx.IsStreetMarker("circuit"))
	assert.False(t, lx.IsStreetMarker("way"))
	assert.True(t, lx.IsStopWord("per"))
	assert.True(t, lx.IsStopWord("The"))
	assert.False(t, lx.IsStopWord("hours"))
	assert.True(t, lx.RatesDouble.Has("per week"))
	assert.True(t, lx.RatesSingle.Has("hourly"))
	assert.True(t, lx.TimeAbbreviations.Has("wk"))
	assert.True(t, lx.WageMarkers.Has("starting"))
	assert.True(t, lx.IsCardinal("N"))
	assert.Equal(t, "annually", lx.RatePhrases[0])
}

func TestCleanTokenize(t *testing.T) {
	n := newTestNormalizer(t, nil)

	tests := []struct {
		name     string
		text     string
		want     []string
		excluded bool
	}{
		{
			name: "keeps numbers directions and dictionary words",
			text: "Apply at 100 N Main St, Chicago a b",
			want: []string{"Apply", "100", "N", "Main", "St", "Chicago"},
		},
		{
			name: "only first ad",
			text: "Clerk wanted ChT_classifiedad_ Driver wanted",
			want: []string{"Clerk", "wanted"},
		},
		{
			name:     "real estate excluded",
			text:     "Sunny APARTMENT near park",
			excluded: true,
		},
		{
			name:     "real estate phrase",
			text:     "House for sale by owner",
			excluded: true,
		},
		{
			name: "punctuation becomes space",
			text: "Typist--must know shorthand;apply",
			want: []string{"Typist", "must", "know", "shorthand", "apply"},
		},
		{
			name: "ocr ligatures folded",
			text: "ﬁling clerk",
			want: []string{"filing", "clerk"},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, excluded := n.CleanTokenize(tt.text, "ChT_classifiedad_", true, 3)
			assert.Equal(t, tt.excluded, excluded)
			if tt.excluded {
				assert.Nil(t, tokens)
				return
			}
			assert.Equal(t, tt.want, Texts(tokens))
			for i, tok := range tokens {
				assert.Equal(t, i, tok.Index)
				assert.Equal(t, strings.ToLower(tok.Text), tok.Lower)
			}
		})
	}
}

func TestCleanTokenize_RealEstateFilterOptional(t *testing.T) {
	n := newTestNormalizer(t, nil)

	tokens, excluded := n.CleanTokenize("Garage attendant wanted", "", false, 3)
	assert.False(t, excluded)
	assert.Equal(t, []string{"Garage", "attendant", "wanted"}, Texts(tokens))
}

func TestCleanForWage(t *testing.T) {
	n := newTestNormalizer(t, nil)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"split digits", "$5 00 per week", "$500 per week"},
		{"dollar read as S", "S500 weekly", "$500 weekly"},
		{"dollar after digits", "500s a week", "500$ a week"},
		{"split decimal", "Pay: $12 . 50 hourly!", "pay $12.50 hourly"},
		{"range", "$400 - 500 weekly", "$400-500 weekly"},
		{"phone digits joined", "call 555 1234", "call 5551234"},
		{"lone separators", "salary , open", "salary open"},
		{"blank", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.CleanForWage(tt.text))
		})
	}
}

func TestCleanForWage_UsesCorrector(t *testing.T) {
	c := &upperCorrector{}
	n := newTestNormalizer(t, c)

	got := n.CleanForWage("Salary $300")
	assert.Equal(t, "salary $300 [checked]", got)
	assert.Equal(t, []string{"salary $300"}, c.calls)
}

func TestCasing(t *testing.T) {
	assert.Equal(t, "Winston-Salem", TitleCase("winston-salem"))
	assert.Equal(t, "New York", TitleCase("NEW YORK"))
	assert.Equal(t, "E 4th Main", CapWords("e  4TH main"))
}

func TestTokenHelpers(t *testing.T) {
	assert.True(t, StartsWithDigit("4th"))
	assert.False(t, StartsWithDigit("Main"))
	assert.False(t, StartsWithDigit(""))
	assert.Equal(t, "123", DigitsOnly("12a3"))
	assert.Equal(t, "ad one ", FirstAd("ad one NYT_classifiedad_ad two", "NYT_classifiedad_"))
}
