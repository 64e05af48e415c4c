// Package resolve geocodes extracted address candidates against public
// geocoding services and summarizes the county and zip evidence per ad.
package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/classified-extractor/app/models"
)

// DefaultTimeout bounds a single geocoding request.
const DefaultTimeout = 10 * time.Second

// Match is the part of a geocoder answer kept for an address query.
// Empty fields mean the provider returned nothing usable.
type Match struct {
	Address string `json:"address,omitempty"`
	County  string `json:"county,omitempty"`
	Zipcode string `json:"zipcode,omitempty"`
}

// RequestLog records one provider call.
type RequestLog struct {
	URL        string  `json:"url"`
	StatusCode int     `json:"status_code"`
	Elapsed    float64 `json:"elapsed"`
	Message    string  `json:"message,omitempty"`
}

// Geocoder resolves a free-form US address. accept filters results to the
// cities the caller considers plausible. Transport and decoding problems are
// reported in the log, not as errors; an error means the call could not be
// attempted at all (for example a cancelled context).
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, query string, accept func(city string) bool) (Match, RequestLog, error)
}

// FormatAddress renders a candidate as a geocoder query:
// "number street, city, state, zipcode, USA".
func FormatAddress(c models.AddressCandidate) string {
	if s := c.Format(); s != "" {
		return s + ", USA"
	}
	return "USA"
}

// Option configures a provider client.
type Option func(*client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.http = hc }
}

// WithBaseURL points the provider at another host, such as a self-hosted
// instance or a test server.
func WithBaseURL(u string) Option {
	return func(c *client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *client) { c.userAgent = ua }
}

type client struct {
	http      *http.Client
	baseURL   string
	userAgent string
}

func newClient(baseURL string, opts []Option) client {
	c := client{
		http:      &http.Client{Timeout: DefaultTimeout},
		baseURL:   baseURL,
		userAgent: "classified-extractor/1.0",
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// getJSON decodes the body of a 200 response into v. The log is always
// filled; a non-nil error is returned only for a cancelled context.
func (c client) getJSON(ctx context.Context, url string, v interface{}) (RequestLog, error) {
	log := RequestLog{URL: url}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Message = err.Error()
		return log, nil
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	log.Elapsed = time.Since(start).Seconds()
	if err != nil {
		if ctx.Err() != nil {
			return log, ctx.Err()
		}
		log.StatusCode = http.StatusNotFound
		log.Message = err.Error()
		return log, nil
	}
	defer resp.Body.Close()

	log.StatusCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		log.Message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return log, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		log.Message = fmt.Sprintf("decode response: %v", err)
	}
	return log, nil
}

// stripCounty turns "Cook County" into "Cook".
func stripCounty(s string) string {
	name, _, _ := strings.Cut(s, " County")
	return name
}
