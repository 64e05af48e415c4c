package parser

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/classified-extractor/app/models"
	"github.com/classified-extractor/internal/fuzzy"
	"github.com/classified-extractor/internal/geo"
	"github.com/classified-extractor/internal/normalizer"
)

// MatchType says how a GeoMatch was obtained.
type MatchType string

const (
	MatchExact     MatchType = "exact"
	MatchNameFuzzy MatchType = "name-fuzzy"
	MatchIDFuzzy   MatchType = "id-fuzzy"
)

// GeoMatch is a token resolved to a canonical city or state name.
type GeoMatch struct {
	Name       string    `json:"name"`
	Confidence int       `json:"confidence"`
	Type       MatchType `json:"type"`
}

// GeoMatches is a mapping that remembers insertion order. Overwriting a key
// keeps its original position.
type GeoMatches struct {
	keys  []string
	byKey map[string]GeoMatch
}

func (m *GeoMatches) set(key string, match GeoMatch) {
	if m.byKey == nil {
		m.byKey = make(map[string]GeoMatch)
	}
	if _, ok := m.byKey[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.byKey[key] = match
}

// Has reports whether key is present.
func (m GeoMatches) Has(key string) bool {
	_, ok := m.byKey[key]
	return ok
}

// Get returns the match stored under key.
func (m GeoMatches) Get(key string) (GeoMatch, bool) {
	g, ok := m.byKey[key]
	return g, ok
}

// Len is the number of keys.
func (m GeoMatches) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m GeoMatches) Keys() []string { return append([]string(nil), m.keys...) }

// Values returns the matches in key insertion order.
func (m GeoMatches) Values() []GeoMatch {
	out := make([]GeoMatch, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.byKey[k]
	}
	return out
}

// GeoMatcher resolves noisy tokens against the cities and states around a
// newspaper. It only reads its Context and is safe for concurrent use.
type GeoMatcher struct {
	ctx    *geo.Context
	logger *zap.Logger
}

// NewGeoMatcher creates a matcher bound to ctx.
func NewGeoMatcher(ctx *geo.Context, logger *zap.Logger) *GeoMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeoMatcher{ctx: ctx, logger: logger}
}

// MatchCities maps each token to a nearby big city. A title-cased exact hit
// scores 100; otherwise the best fuzzy match at or above threshold is kept,
// ties going to the city listed first.
func (gm *GeoMatcher) MatchCities(tokens []string, threshold int) GeoMatches {
	var out GeoMatches
	for _, token := range tokens {
		title := normalizer.TitleCase(token)
		if gm.ctx.IsBigCity(title) {
			out.set(token, GeoMatch{Name: title, Confidence: 100, Type: MatchExact})
			continue
		}
		best, ok := fuzzy.BestMatch(title, gm.ctx.BigCities)
		if ok && best.Score >= threshold {
			out.set(token, GeoMatch{Name: best.Value, Confidence: best.Score, Type: MatchNameFuzzy})
		}
	}
	return out
}

// MatchStates maps tokens to nearby states, keyed by canonical state name.
// Per token the checks run in order: exact name, exact id, fuzzy name, fuzzy
// id. A later check never replaces a state an earlier one already found.
func (gm *GeoMatcher) MatchStates(tokens []string, nameThreshold, idThreshold int) GeoMatches {
	ref := gm.ctx.Reference()

	var out GeoMatches
	for _, token := range tokens {
		title := normalizer.TitleCase(token)
		upper := strings.ToUpper(token)

		if gm.ctx.IsNearbyState(title) {
			out.set(title, GeoMatch{Name: title, Confidence: 100, Type: MatchExact})
		}
		if gm.ctx.IsNearbyStateID(upper) {
			if name, err := ref.StateIDToName(upper); err == nil && !out.Has(name) {
				out.set(name, GeoMatch{Name: name, Confidence: 100, Type: MatchExact})
			}
		}
		if best, ok := fuzzy.BestMatch(title, gm.ctx.NearbyStates); ok && best.Score >= nameThreshold && !out.Has(best.Value) {
			out.set(best.Value, GeoMatch{Name: best.Value, Confidence: best.Score, Type: MatchNameFuzzy})
		}
		if best, ok := fuzzy.BestMatch(upper, gm.ctx.NearbyStateIDs); ok && best.Score >= idThreshold {
			name, err := ref.StateIDToName(best.Value)
			if err != nil {
				gm.logger.Warn("nearby state id missing from state table", zap.String("id", best.Value))
				continue
			}
			if !out.Has(name) {
				out.set(name, GeoMatch{Name: name, Confidence: best.Score, Type: MatchIDFuzzy})
			}
		}
	}
	return out
}

// PossibleCityState turns city and state matches into address suffixes.
// Each city pairs with every nearby state holding a city of that name, in
// state-table order, or stands alone when none does. When no pair came out
// at all, every matched state and then the home state is emitted once. The
// result is never empty.
func (gm *GeoMatcher) PossibleCityState(cities, states GeoMatches) []models.AddressCandidate {
	ref := gm.ctx.Reference()

	var out []models.AddressCandidate
	paired := false
	for _, city := range cities.Values() {
		added := false
		for _, state := range gm.ctx.NearbyStates {
			if ref.CityInState(city.Name, state) {
				out = append(out, models.AddressCandidate{City: city.Name, State: state})
				added = true
			}
		}
		if added {
			paired = true
		} else {
			out = append(out, models.AddressCandidate{City: city.Name})
		}
	}
	if paired {
		return out
	}

	for _, state := range append(states.Keys(), gm.ctx.StateName) {
		if !hasState(out, state) {
			out = append(out, models.AddressCandidate{State: state})
		}
	}
	return out
}

func hasState(cands []models.AddressCandidate, state string) bool {
	for _, c := range cands {
		if c.State == state {
			return true
		}
	}
	return false
}

// CityStateOptions returns the city and state fragments to try after the
// street marker at i. Cities come from tokens i+1, i+2, i+1..i+2 and
// i+2..i+3; states from i+1, i+2 and i+3. Single letters and numerals are
// dropped, empty fragments skipped, duplicates removed keeping order.
func CityStateOptions(tokens []string, i int) (cities, states []string) {
	cities = fragments(tokens, [][2]int{{i + 1, i + 2}, {i + 2, i + 3}, {i + 1, i + 3}, {i + 2, i + 4}})
	states = fragments(tokens, [][2]int{{i + 1, i + 2}, {i + 2, i + 3}, {i + 3, i + 4}})
	return cities, states
}

func fragments(tokens []string, spans [][2]int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, span := range spans {
		var words []string
		for _, w := range window(tokens, span[0], span[1]) {
			if utf8.RuneCountInString(w) > 1 && !isNumeral(w) {
				words = append(words, w)
			}
		}
		if len(words) == 0 {
			continue
		}
		frag := strings.Join(words, " ")
		if _, dup := seen[frag]; dup {
			continue
		}
		seen[frag] = struct{}{}
		out = append(out, frag)
	}
	return out
}

// window is tokens[start:end] clamped to the slice bounds.
func window(tokens []string, start, end int) []string {
	if start < 0 {
		start = 0
	}
	if end > len(tokens) {
		end = len(tokens)
	}
	if start >= end {
		return nil
	}
	return tokens[start:end]
}

func isNumeral(s string) bool {
	return s != "" && normalizer.DigitsOnly(s) == s
}
