package resolve

import (
	"context"
	"net/url"
)

// GeoapifyURL is the public Geoapify endpoint.
const GeoapifyURL = "https://api.geoapify.com"

// Geoapify queries the Geoapify geocoding search API.
type Geoapify struct {
	client
	apiKey string
}

var _ Geocoder = (*Geoapify)(nil)

// NewGeoapify creates a Geoapify client for apiKey.
func NewGeoapify(apiKey string, opts ...Option) *Geoapify {
	return &Geoapify{client: newClient(GeoapifyURL, opts), apiKey: apiKey}
}

func (g *Geoapify) Name() string { return "geoapify" }

type geoapifyResponse struct {
	Features []struct {
		Properties *struct {
			City      string `json:"city"`
			County    string `json:"county"`
			Postcode  string `json:"postcode"`
			Formatted string `json:"formatted"`
			Rank      struct {
				Confidence float64 `json:"confidence"`
			} `json:"rank"`
		} `json:"properties"`
	} `json:"features"`
}

// Geocode keeps, among accepted features with positive confidence, the
// county, postcode and formatted address of the most confident one. Ties
// keep the earlier feature.
func (g *Geoapify) Geocode(ctx context.Context, query string, accept func(string) bool) (Match, RequestLog, error) {
	q := url.Values{}
	q.Set("text", query)
	q.Set("apiKey", g.apiKey)

	var body geoapifyResponse
	log, err := g.getJSON(ctx, g.baseURL+"/v1/geocode/search?"+q.Encode(), &body)
	if err != nil {
		return Match{}, log, err
	}

	var m Match
	best := 0.0
	for _, f := range body.Features {
		p := f.Properties
		if p == nil || p.Rank.Confidence <= 0 || p.Rank.Confidence <= best || !accept(p.City) {
			continue
		}
		best = p.Rank.Confidence
		m = Match{Address: p.Formatted, County: stripCounty(p.County), Zipcode: p.Postcode}
	}
	return m, log, nil
}
