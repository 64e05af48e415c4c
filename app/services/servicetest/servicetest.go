// Package servicetest builds an ExtractService over the geotest fixture.
package servicetest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classified-extractor/app/config"
	"github.com/classified-extractor/app/services"
	"github.com/classified-extractor/internal/geo/geotest"
	"github.com/classified-extractor/internal/normalizer"
	"github.com/classified-extractor/internal/spell"
)

// Words is the fixture dictionary with rough frequencies.
var Words = map[string]int64{
	"main": 500, "st": 100, "street": 900, "il": 50, "ny": 50,
	"the": 5000, "at": 1000, "oak": 80, "park": 200, "apply": 60,
	"clerk": 40, "wanted": 70, "office": 90, "driver": 60, "cook": 55,
	"per": 800, "week": 400, "weekly": 90, "monthly": 80, "salary": 50,
	"call": 300, "today": 200, "start": 150, "to": 4000,
	"e": 30, "n": 30, "s": 30, "w": 30, "maple": 120,
}

// Normalizer returns a normalizer over Words.
func Normalizer(t testing.TB) *normalizer.TextNormalizer {
	t.Helper()
	dict := spell.NewDictionary(Words)
	corrector, err := spell.NewCorrector(dict, 64)
	require.NoError(t, err)
	return normalizer.NewTextNormalizer(normalizer.MustLoadLexicon(), dict, corrector, 2, nil)
}

// ExtractService returns a service for the ChT and NYT fixture newspapers.
// cache may be nil.
func ExtractService(t testing.TB, cache services.ICacheService) *services.ExtractService {
	t.Helper()
	s, err := services.NewExtractService(geotest.Reference(), Normalizer(t), config.Default(), cache, nil)
	require.NoError(t, err)
	return s
}
