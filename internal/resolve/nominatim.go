package resolve

import (
	"context"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/classified-extractor/internal/geo"
)

// NominatimURL is the public OpenStreetMap Nominatim endpoint.
const NominatimURL = "https://nominatim.openstreetmap.org"

// Nominatim queries OpenStreetMap Nominatim. The public instance allows one
// request per second; every client shares its own limiter.
type Nominatim struct {
	client
	limiter *rate.Limiter
}

var _ Geocoder = (*Nominatim)(nil)

// NewNominatim creates a client limited to one request per interval.
func NewNominatim(interval time.Duration, opts ...Option) *Nominatim {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Nominatim{client: newClient(NominatimURL, opts), limiter: rate.NewLimiter(limit, 1)}
}

func (n *Nominatim) Name() string { return "nominatim" }

type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Address     *struct {
		City     string `json:"city"`
		County   string `json:"county"`
		Postcode string `json:"postcode"`
	} `json:"address"`
}

// Geocode keeps the first display name among accepted places and the most
// common county and postcode across them.
func (n *Nominatim) Geocode(ctx context.Context, query string, accept func(string) bool) (Match, RequestLog, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return Match{}, RequestLog{}, err
	}

	q := url.Values{}
	q.Set("addressdetails", "1")
	q.Set("q", query)
	q.Set("format", "jsonv2")

	var places []nominatimPlace
	log, err := n.getJSON(ctx, n.baseURL+"/search?"+q.Encode(), &places)
	if err != nil {
		return Match{}, log, err
	}

	var m Match
	var counties, zips []string
	for _, p := range places {
		if p.Address == nil || !accept(p.Address.City) {
			continue
		}
		if p.Address.County != "" {
			counties = append(counties, stripCounty(p.Address.County))
		}
		if p.Address.Postcode != "" {
			zips = append(zips, p.Address.Postcode)
		}
		if m.Address == "" {
			m.Address = p.DisplayName
		}
	}
	m.County = geo.Mode(counties)
	m.Zipcode = geo.Mode(zips)
	return m, log, nil
}
