package normalizer

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/lexicon.yaml
var lexiconYAML []byte

// lexiconFile mirrors data/lexicon.yaml.
type lexiconFile struct {
	CardinalDirections []string `yaml:"cardinal_directions"`
	RealEstate         []string `yaml:"real_estate"`
	LaborOverrides     []string `yaml:"labor_overrides"`
	StreetMarkers      struct {
		Abbreviated []string `yaml:"abbreviated"`
		Full        []string `yaml:"full"`
	} `yaml:"street_markers"`
	WageMarkers []string `yaml:"wage_markers"`
	Rates       struct {
		Single []string `yaml:"single"`
		Double []string `yaml:"double"`
	} `yaml:"rates"`
	TimeUnits         []string `yaml:"time_units"`
	TimeAbbreviations []string `yaml:"time_abbreviations"`
	StopWords         string   `yaml:"stop_words"`
}

// Lexicon holds the fixed word lists shared by the extractors.
// It is read-only after LoadLexicon returns.
type Lexicon struct {
	CardinalDirections set
	RealEstate         []string
	LaborOverrides     []string
	StreetMarkers      set
	WageMarkers        set
	RatesSingle        set
	RatesDouble        set
	TimeUnits          set
	TimeAbbreviations  set
	StopWords          set

	// RatePhrases lists single and double rate phrases for substring tests,
	// single forms first.
	RatePhrases []string
}

type set map[string]struct{}

func newSet(words []string) set {
	s := make(set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s set) Has(w string) bool {
	_, ok := s[w]
	return ok
}

// LoadLexicon parses the embedded lexicon.
func LoadLexicon() (*Lexicon, error) {
	var f lexiconFile
	if err := yaml.Unmarshal(lexiconYAML, &f); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	if len(f.StreetMarkers.Abbreviated) == 0 || len(f.StopWords) == 0 {
		return nil, fmt.Errorf("parse lexicon: missing street markers or stop words")
	}

	markers := append([]string{}, f.StreetMarkers.Abbreviated...)
	markers = append(markers, f.StreetMarkers.Full...)

	phrases := append([]string{}, f.Rates.Single...)
	phrases = append(phrases, f.Rates.Double...)

	return &Lexicon{
		CardinalDirections: newSet(f.CardinalDirections),
		RealEstate:         f.RealEstate,
		LaborOverrides:     f.LaborOverrides,
		StreetMarkers:      newSet(markers),
		WageMarkers:        newSet(f.WageMarkers),
		RatesSingle:        newSet(f.Rates.Single),
		RatesDouble:        newSet(f.Rates.Double),
		TimeUnits:          newSet(f.TimeUnits),
		TimeAbbreviations:  newSet(f.TimeAbbreviations),
		StopWords:          newSet(strings.Fields(f.StopWords)),
		RatePhrases:        phrases,
	}, nil
}

// MustLoadLexicon is LoadLexicon for package-level wiring; the lexicon is
// embedded so a failure is a build defect.
func MustLoadLexicon() *Lexicon {
	lx, err := LoadLexicon()
	if err != nil {
		panic(err)
	}
	return lx
}

// IsRealEstate reports whether text mentions a real-estate keyword
// (case-insensitive substring match).
func (lx *Lexicon) IsRealEstate(text string) bool {
	return containsAny(strings.ToLower(text), lx.RealEstate)
}

// HasLaborOverride reports whether text carries a hiring keyword that keeps
// an ad in scope despite real-estate vocabulary.
func (lx *Lexicon) HasLaborOverride(text string) bool {
	return containsAny(strings.ToLower(text), lx.LaborOverrides)
}

// IsCardinal reports whether word is a compass direction or its initial.
func (lx *Lexicon) IsCardinal(word string) bool {
	return lx.CardinalDirections.Has(strings.ToLower(word))
}

// IsStopWord reports stop-word membership of the lowercase form.
func (lx *Lexicon) IsStopWord(word string) bool {
	return lx.StopWords.Has(strings.ToLower(word))
}

// IsStreetMarker reports whether word is a street-type suffix.
func (lx *Lexicon) IsStreetMarker(word string) bool {
	return lx.StreetMarkers.Has(strings.ToLower(word))
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
