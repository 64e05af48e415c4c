package resolve

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/classified-extractor/app/models"
	"github.com/classified-extractor/internal/geo"
)

// Summary is what one provider says about all candidates of an ad.
type Summary struct {
	// Addresses holds one entry per candidate, empty when unresolved.
	Addresses []string `json:"addresses"`
	// County is the most common county across candidates.
	County string `json:"county,omitempty"`
	// ZipCounty is the most common county of the zips the provider returned.
	ZipCounty string       `json:"zip_county,omitempty"`
	Requests  []RequestLog `json:"requests"`
}

// Resolution is the geocoding outcome of one ad. SameCounty and
// SameZipCounty compare the first two providers and are nil with fewer.
type Resolution struct {
	ID            string             `json:"id,omitempty"`
	Newspaper     string             `json:"newspaper"`
	Providers     map[string]Summary `json:"providers"`
	SameCounty    *bool              `json:"same_county,omitempty"`
	SameZipCounty *bool              `json:"same_zip_county,omitempty"`
}

// Resolver runs every configured geocoder over the candidates of an ad.
type Resolver struct {
	ref       *geo.Reference
	geocoders []Geocoder
	logger    *zap.Logger
}

// NewResolver creates a Resolver. Geocoders run in the given order.
func NewResolver(ref *geo.Reference, logger *zap.Logger, geocoders ...Geocoder) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{ref: ref, geocoders: geocoders, logger: logger}
}

// Resolve geocodes the addresses of result, accepting only answers located
// in a big city of the newspaper's region.
func (r *Resolver) Resolve(ctx context.Context, gctx *geo.Context, result *models.AdResult) (Resolution, error) {
	res := Resolution{ID: result.ID, Newspaper: result.Newspaper, Providers: make(map[string]Summary)}

	for _, g := range r.geocoders {
		sum := Summary{Addresses: []string{}, Requests: []RequestLog{}}
		var counties, zips []string
		for _, c := range result.Addresses {
			m, log, err := g.Geocode(ctx, FormatAddress(c), gctx.IsBigCity)
			if err != nil {
				return res, fmt.Errorf("%s geocode ad %s: %w", g.Name(), result.ID, err)
			}
			if log.Message != "" {
				r.logger.Debug("geocoder request failed",
					zap.String("provider", g.Name()),
					zap.Int("status", log.StatusCode),
					zap.String("message", log.Message))
			}
			sum.Addresses = append(sum.Addresses, m.Address)
			sum.Requests = append(sum.Requests, log)
			if m.County != "" {
				counties = append(counties, m.County)
			}
			if m.Zipcode != "" {
				zips = append(zips, m.Zipcode)
			}
		}
		sum.County = geo.Mode(counties)
		sum.ZipCounty = geo.Mode(r.ref.CountiesFromZips(zips))
		res.Providers[g.Name()] = sum
	}

	if len(r.geocoders) >= 2 {
		a := res.Providers[r.geocoders[0].Name()]
		b := res.Providers[r.geocoders[1].Name()]
		same, sameZip := a.County == b.County, a.ZipCounty == b.ZipCounty
		res.SameCounty, res.SameZipCounty = &same, &sameZip
	}
	return res, nil
}
