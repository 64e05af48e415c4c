package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classified-extractor/app/models"
	"github.com/classified-extractor/internal/geo/geotest"
	"github.com/classified-extractor/internal/normalizer"
	"github.com/classified-extractor/internal/spell"
)

func newTestNormalizer(t *testing.T) *normalizer.TextNormalizer {
	t.Helper()
	dict := spell.NewDictionary(map[string]int64{
		"main":   500,
		"st":     100,
		"street": 900,
		"il":     50,
		"ny":     50,
		"e":      30,
		"n":      30,
		"s":      30,
		"w":      30,
		"the":    5000,
		"at":     1000,
		"maple":  120,
		"oak":    80,
		"park":   200,
		"apply":  60,
		"clerk":  40,
		"wanted": 70,
		"office": 90,
	})
	corrector, err := spell.NewCorrector(dict, 64)
	require.NoError(t, err)
	return normalizer.NewTextNormalizer(normalizer.MustLoadLexicon(), dict, corrector, 2, nil)
}

func newTestBuilder(t *testing.T, newspaper string) *AddressCandidateBuilder {
	t.Helper()
	return NewAddressCandidateBuilder(geotest.Context(newspaper), newTestNormalizer(t), DefaultOptions(), nil)
}

func TestFindStreet(t *testing.T) {
	b := newTestBuilder(t, "ChT")

	tests := []struct {
		name   string
		tokens []string
		marker int
		want   models.AddressCandidate
	}{
		{"number and name", []string{"123", "Main", "St"}, 2, models.AddressCandidate{HouseNumber: "123", Street: "Main St"}},
		{"misspelled name corrected", []string{"123", "Mian", "St"}, 2, models.AddressCandidate{HouseNumber: "123", Street: "Main St"}},
		{"number then directional kept", []string{"Apply", "100", "E", "4th", "St"}, 4, models.AddressCandidate{HouseNumber: "100", Street: "E 4th St"}},
		{"number with two word name", []string{"Call", "100", "Oak", "Park", "Ave"}, 4, models.AddressCandidate{HouseNumber: "100", Street: "Oak Park Ave"}},
		{"leading words trimmed", []string{"Apply", "at", "Maple", "St"}, 3, models.AddressCandidate{Street: "Maple St"}},
		{"numeric street gets ordinal", []string{"9", "100", "42", "Av"}, 3, models.AddressCandidate{HouseNumber: "100", Street: "42nd Ave"}},
		{"teens take th", []string{"11", "St"}, 1, models.AddressCandidate{Street: "11th St"}},
		{"lone zero dropped", []string{"0", "Main", "St"}, 2, models.AddressCandidate{Street: "Main St"}},
		{"leading zero stripped", []string{"05", "Main", "St"}, 2, models.AddressCandidate{HouseNumber: "5", Street: "Main St"}},
		{"only a zero", []string{"0", "St"}, 1, models.AddressCandidate{}},
		{"directional before name", []string{"N", "Park", "St"}, 2, models.AddressCandidate{Street: "N Park St"}},
		{"directional before stop word trimmed", []string{"N", "the", "Park", "St"}, 3, models.AddressCandidate{Street: "Park St"}},
		{"marker capitalized", []string{"12", "maple", "STREET"}, 2, models.AddressCandidate{HouseNumber: "12", Street: "Maple Street"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.FindStreet(tt.tokens, tt.marker)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindStreet_Malformed(t *testing.T) {
	b := newTestBuilder(t, "ChT")

	_, err := b.FindStreet([]string{"St"}, 0)
	assert.ErrorIs(t, err, ErrMalformedAddress)

	_, err = b.FindStreet([]string{"12", "", "St"}, 2)
	assert.ErrorIs(t, err, ErrMalformedAddress)
}

func TestOrdinal(t *testing.T) {
	for in, want := range map[string]string{
		"1": "1st", "2": "2nd", "3": "3rd", "4": "4th",
		"11": "11th", "12": "12th", "13": "13th",
		"21": "21st", "42": "42nd", "103": "103rd", "111": "111th",
	} {
		assert.Equal(t, want, ordinal(in), in)
	}
}

func TestCityStateOptions(t *testing.T) {
	tests := []struct {
		name       string
		tokens     []string
		i          int
		wantCities []string
		wantStates []string
	}{
		{
			name:       "city then state",
			tokens:     []string{"Main", "St", "Springfield", "IL", "60601"},
			i:          1,
			wantCities: []string{"Springfield", "IL", "Springfield IL"},
			wantStates: []string{"Springfield", "IL"},
		},
		{
			name:   "single letters and numbers dropped",
			tokens: []string{"St", "N", "5"},
			i:      0,
		},
		{
			name:   "marker at end",
			tokens: []string{"Oak", "St"},
			i:      1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cities, states := CityStateOptions(tt.tokens, tt.i)
			assert.Equal(t, tt.wantCities, cities)
			assert.Equal(t, tt.wantStates, states)
		})
	}
}

func TestMatchCities(t *testing.T) {
	m := NewGeoMatcher(geotest.Context("ChT"), nil)

	got := m.MatchCities([]string{"springfield", "Chicgo", "Springfield IL", "Xyz"}, 70)

	assert.Equal(t, []string{"springfield", "Chicgo", "Springfield IL"}, got.Keys())
	assert.Equal(t, []GeoMatch{
		{Name: "Springfield", Confidence: 100, Type: MatchExact},
		{Name: "Chicago", Confidence: 92, Type: MatchNameFuzzy},
		{Name: "Springfield", Confidence: 88, Type: MatchNameFuzzy},
	}, got.Values())
}

func TestMatchCities_TieGoesToFirstListed(t *testing.T) {
	ctx := geotest.Context("ChT")
	m := NewGeoMatcher(ctx, nil)

	got := m.MatchCities([]string{"qqq"}, 0)
	match, ok := got.Get("qqq")
	require.True(t, ok)
	assert.Equal(t, ctx.BigCities[0], match.Name)
	assert.Equal(t, 0, match.Confidence)
}

func TestMatchStates(t *testing.T) {
	m := NewGeoMatcher(geotest.Context("ChT"), nil)

	tests := []struct {
		name   string
		tokens []string
		want   map[string]GeoMatch
		keys   []string
	}{
		{
			name:   "exact ids and names",
			tokens: []string{"IL", "Ilinois", "wisconsin", "IO", "KY"},
			keys:   []string{"Illinois", "Wisconsin", "Kentucky"},
			want: map[string]GeoMatch{
				"Illinois":  {Name: "Illinois", Confidence: 100, Type: MatchExact},
				"Wisconsin": {Name: "Wisconsin", Confidence: 100, Type: MatchExact},
				"Kentucky":  {Name: "Kentucky", Confidence: 100, Type: MatchExact},
			},
		},
		{
			name:   "fuzzy name",
			tokens: []string{"Indianna"},
			keys:   []string{"Indiana"},
			want:   map[string]GeoMatch{"Indiana": {Name: "Indiana", Confidence: 93, Type: MatchNameFuzzy}},
		},
		{
			name:   "fuzzy id",
			tokens: []string{"IL."},
			keys:   []string{"Illinois"},
			want:   map[string]GeoMatch{"Illinois": {Name: "Illinois", Confidence: 100, Type: MatchIDFuzzy}},
		},
		{
			name:   "far states ignored",
			tokens: []string{"NY", "New York"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.MatchStates(tt.tokens, 80, 90)
			assert.Equal(t, len(tt.keys), got.Len())
			if len(tt.keys) > 0 {
				assert.Equal(t, tt.keys, got.Keys())
			}
			for k, want := range tt.want {
				g, ok := got.Get(k)
				require.True(t, ok, k)
				assert.Equal(t, want, g)
			}
		})
	}
}

func TestPossibleCityState(t *testing.T) {
	m := NewGeoMatcher(geotest.Context("ChT"), nil)

	matches := func(names ...string) GeoMatches {
		var g GeoMatches
		for _, n := range names {
			g.set(n, GeoMatch{Name: n, Confidence: 100, Type: MatchExact})
		}
		return g
	}

	tests := []struct {
		name   string
		cities GeoMatches
		states GeoMatches
		want   []models.AddressCandidate
	}{
		{
			name:   "city in two nearby states",
			cities: matches("Springfield"),
			states: matches("Iowa"),
			want: []models.AddressCandidate{
				{City: "Springfield", State: "Illinois"},
				{City: "Springfield", State: "Missouri"},
			},
		},
		{
			name:   "unpaired city falls back to states",
			cities: matches("Gotham"),
			states: matches("Iowa"),
			want: []models.AddressCandidate{
				{City: "Gotham"},
				{State: "Iowa"},
				{State: "Illinois"},
			},
		},
		{
			name:   "home state not repeated",
			states: matches("Illinois"),
			want:   []models.AddressCandidate{{State: "Illinois"}},
		},
		{
			name: "nothing matched",
			want: []models.AddressCandidate{{State: "Illinois"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.PossibleCityState(tt.cities, tt.states))
		})
	}
}

func TestGeoMatches_OverwriteKeepsPosition(t *testing.T) {
	var g GeoMatches
	g.set("a", GeoMatch{Name: "A", Confidence: 70})
	g.set("b", GeoMatch{Name: "B"})
	g.set("a", GeoMatch{Name: "A", Confidence: 100})

	assert.Equal(t, []string{"a", "b"}, g.Keys())
	a, _ := g.Get("a")
	assert.Equal(t, 100, a.Confidence)
	assert.False(t, g.Has("c"))
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		newspaper string
		text      string
		want      []models.AddressCandidate
		excluded  bool
	}{
		{
			name:      "street with city and state id",
			newspaper: "ChT",
			text:      "Apply at 123 Main St Springfield IL",
			want: []models.AddressCandidate{
				{HouseNumber: "123", Street: "Main St", City: "Springfield", State: "Illinois"},
				{HouseNumber: "123", Street: "Main St", City: "Springfield", State: "Missouri"},
			},
		},
		{
			name:      "standalone zip in adjacent state",
			newspaper: "NYT",
			text:      "Office clerk wanted apply 07302",
			want:      []models.AddressCandidate{{Zipcode: "07302"}},
		},
		{
			name:      "zip matched to city named in ad",
			newspaper: "ChT",
			text:      "Clerk wanted Chicago office 60601 60601 and 53202 and 10001",
			want: []models.AddressCandidate{
				{City: "Chicago", State: "Illinois", County: "Cook", Zipcode: "60601"},
				{Zipcode: "53202"},
			},
		},
		{
			name:      "street without suffix gets home state",
			newspaper: "ChT",
			text:      "Help 12 Main St ChT_classifiedad_ Office 99 Oak St",
			want:      []models.AddressCandidate{{HouseNumber: "12", Street: "Main St", State: "Illinois"}},
		},
		{
			name:      "duplicates removed",
			newspaper: "ChT",
			text:      "12 Oak St 12 Oak St",
			want:      []models.AddressCandidate{{HouseNumber: "12", Street: "Oak St", State: "Illinois"}},
		},
		{
			name:      "real estate excluded",
			newspaper: "ChT",
			text:      "Sunny apartment on 12 Oak St 60601",
			excluded:  true,
		},
		{
			name:      "street window empty after zero strip",
			newspaper: "ChT",
			text:      "0 St Chicago",
		},
		{
			name:      "nothing to anchor on",
			newspaper: "ChT",
			text:      "Typist wanted immediately",
		},
		{
			name:      "empty",
			newspaper: "ChT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(t, tt.newspaper)
			got := b.Extract(tt.text)
			require.NoError(t, got.Err)
			assert.Equal(t, tt.excluded, got.Excluded)
			assert.Equal(t, tt.want, got.Candidates)
		})
	}
}

func TestExtract_Deterministic(t *testing.T) {
	b := newTestBuilder(t, "ChT")
	text := "Apply at 123 Main St Springfield IL or 40 N Park Ave Chicago 60601"

	first := b.Extract(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, b.Extract(text))
	}
}

func TestNearbyZips(t *testing.T) {
	b := newTestBuilder(t, "ChT")

	// six digit runs and far-away zips are not zips here
	got := b.NearbyZips("call 606011 or 60601, 53202;10001 x46204x")
	assert.Equal(t, []string{"60601", "53202", "46204"}, got)
}
