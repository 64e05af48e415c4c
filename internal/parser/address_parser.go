package parser

import (
	"regexp"
	"sort"

	"go.uber.org/zap"

	"github.com/classified-extractor/app/models"
	"github.com/classified-extractor/internal/geo"
	"github.com/classified-extractor/internal/normalizer"
)

// Options tunes address extraction. Zero thresholds are not defaulted;
// start from DefaultOptions.
type Options struct {
	// AdDelimiter separates ads in one OCR blob. Empty means
	// "<newspaper>_classifiedad_".
	AdDelimiter        string
	ExcludeRealEstate  bool
	MinTokenLength     int
	CityThreshold      int
	StateNameThreshold int
	StateIDThreshold   int
}

// DefaultOptions returns the thresholds the extractor was tuned with.
func DefaultOptions() Options {
	return Options{
		ExcludeRealEstate:  true,
		MinTokenLength:     3,
		CityThreshold:      70,
		StateNameThreshold: 80,
		StateIDThreshold:   90,
	}
}

// Extraction is the address output for one ad. Excluded is set when the ad
// was filtered out as real estate, which is distinct from finding nothing.
// Err carries ErrMalformedAddress when a street window could not be built;
// Candidates then holds what was found before it.
type Extraction struct {
	Candidates []models.AddressCandidate `json:"candidates"`
	Excluded   bool                      `json:"excluded"`
	Err        error                     `json:"-"`
}

// AddressCandidateBuilder finds street-marker and zip-code anchored address
// candidates in ad text for one newspaper. It holds no mutable state.
type AddressCandidateBuilder struct {
	ctx        *geo.Context
	normalizer *normalizer.TextNormalizer
	matcher    *GeoMatcher
	opts       Options
	logger     *zap.Logger
}

// NewAddressCandidateBuilder wires a builder for ctx.
func NewAddressCandidateBuilder(ctx *geo.Context, tn *normalizer.TextNormalizer, opts Options, logger *zap.Logger) *AddressCandidateBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.AdDelimiter == "" {
		opts.AdDelimiter = ctx.Newspaper + "_classifiedad_"
	}
	return &AddressCandidateBuilder{
		ctx:        ctx,
		normalizer: tn,
		matcher:    NewGeoMatcher(ctx, logger),
		opts:       opts,
		logger:     logger.With(zap.String("newspaper", ctx.Newspaper)),
	}
}

// Matcher exposes the geo matcher the builder uses.
func (b *AddressCandidateBuilder) Matcher() *GeoMatcher { return b.matcher }

var reDigitRun = regexp.MustCompile(`\d+`)

// Extract returns the address candidates of one ad: street-marker records in
// scan order, then zip records. Structurally equal records appear once.
func (b *AddressCandidateBuilder) Extract(adText string) Extraction {
	if adText == "" {
		return Extraction{}
	}
	tokens, excluded := b.normalizer.CleanTokenize(adText, b.opts.AdDelimiter, b.opts.ExcludeRealEstate, b.opts.MinTokenLength)
	if excluded {
		return Extraction{Excluded: true}
	}
	if len(tokens) == 0 {
		return Extraction{}
	}
	words := normalizer.Texts(tokens)

	var res Extraction
	seen := make(map[models.AddressCandidate]struct{})
	add := func(c models.AddressCandidate) {
		if _, dup := seen[c]; dup {
			return
		}
		seen[c] = struct{}{}
		res.Candidates = append(res.Candidates, c)
	}

	for _, tok := range tokens[1:] {
		if !b.normalizer.Lexicon().IsStreetMarker(tok.Lower) {
			continue
		}
		prefix, err := b.FindStreet(words, tok.Index)
		if err != nil {
			b.logger.Debug("street window rejected", zap.Int("marker", tok.Index), zap.Error(err))
			res.Err = err
			return res
		}
		if prefix.IsEmpty() {
			continue
		}
		for _, suffix := range b.suffixes(words, tok.Index) {
			add(prefix.Merge(suffix))
		}
	}

	for _, c := range b.zipCandidates(adText, words) {
		add(c)
	}
	return res
}

func (b *AddressCandidateBuilder) suffixes(words []string, i int) []models.AddressCandidate {
	cityOpts, stateOpts := CityStateOptions(words, i)
	cities := b.matcher.MatchCities(cityOpts, b.opts.CityThreshold)
	states := b.matcher.MatchStates(stateOpts, b.opts.StateNameThreshold, b.opts.StateIDThreshold)
	return b.matcher.PossibleCityState(cities, states)
}

// NearbyZips returns the five-digit numbers of text whose zip code is
// registered in a nearby state, in text order.
func (b *AddressCandidateBuilder) NearbyZips(text string) []string {
	var out []string
	for _, run := range reDigitRun.FindAllString(text, -1) {
		if len(run) != 5 {
			continue
		}
		rec, ok := b.ctx.Reference().ZipLookup(run)
		if ok && b.ctx.IsNearbyStateID(rec.StateID) {
			out = append(out, run)
		}
	}
	return out
}

// zipCandidates pairs nearby zips with cities named anywhere in the ad.
// A zip listed by a matched city yields a full record; the rest stand alone.
func (b *AddressCandidateBuilder) zipCandidates(adText string, words []string) []models.AddressCandidate {
	zips := b.NearbyZips(adText)
	if len(zips) == 0 {
		return nil
	}
	inAd := make(map[string]struct{}, len(zips))
	for _, z := range zips {
		inAd[z] = struct{}{}
	}

	var out []models.AddressCandidate
	consumed := make(map[string]struct{})
	for _, city := range b.matcher.MatchCities(words, b.opts.CityThreshold).Values() {
		for _, row := range b.ctx.Reference().CityRecordsByName(city.Name) {
			var hits []string
			for _, z := range row.Zips {
				if _, ok := inAd[z]; ok {
					hits = append(hits, z)
				}
			}
			sort.Strings(hits)
			for _, z := range hits {
				consumed[z] = struct{}{}
				out = append(out, models.AddressCandidate{
					City:    city.Name,
					State:   row.StateName,
					County:  row.County,
					Zipcode: z,
				})
			}
		}
	}
	for _, z := range zips {
		if _, ok := consumed[z]; !ok {
			out = append(out, models.AddressCandidate{Zipcode: z})
		}
	}
	return out
}
