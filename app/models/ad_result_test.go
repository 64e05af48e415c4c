package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddressCandidateMerge(t *testing.T) {
	prefix := AddressCandidate{HouseNumber: "100", Street: "Main St", State: "Ohio"}
	suffix := AddressCandidate{City: "Springfield", State: "Illinois"}

	got := prefix.Merge(suffix)
	assert.Equal(t, AddressCandidate{HouseNumber: "100", Street: "Main St", City: "Springfield", State: "Illinois"}, got)
	assert.Equal(t, "Ohio", prefix.State, "receiver is not modified")
	assert.True(t, AddressCandidate{}.IsEmpty())
	assert.False(t, got.IsEmpty())
}

func TestAddressCandidateFormat(t *testing.T) {
	tests := []struct {
		name string
		in   AddressCandidate
		want string
	}{
		{"full", AddressCandidate{HouseNumber: "100", Street: "Main St", City: "Chicago", State: "Illinois", County: "Cook", Zipcode: "60601"}, "100 Main St, Chicago, Illinois, 60601"},
		{"street only", AddressCandidate{Street: "Main St"}, "Main St"},
		{"number without street", AddressCandidate{HouseNumber: "100", City: "Chicago"}, "Chicago"},
		{"zip only", AddressCandidate{Zipcode: "60601"}, "60601"},
		{"empty", AddressCandidate{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Format())
		})
	}
}

func TestResolveStatus(t *testing.T) {
	wage := "$500 weekly"
	tests := []struct {
		name string
		in   AdResult
		want string
	}{
		{"address found", AdResult{Addresses: []AddressCandidate{{Zipcode: "60601"}}}, StatusExtracted},
		{"wage found", AdResult{Wage: &wage}, StatusExtracted},
		{"excluded", AdResult{AddressExcluded: true, WageExcluded: true}, StatusExcluded},
		{"malformed street", AdResult{AddressError: "malformed", Wage: &wage}, StatusPartial},
		{"nothing", AdResult{}, StatusEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.in
			r.ResolveStatus()
			assert.Equal(t, tt.want, r.Status)
			assert.True(t, r.IsValidStatus())
		})
	}
}

func TestAdCache(t *testing.T) {
	c := NewAdCache(AdResult{Newspaper: "ChT", Fingerprint: "sha256:ab", ReferenceVersion: "v1"})
	assert.Equal(t, "sha256:ab", c.Fingerprint)
	assert.Equal(t, "ChT", c.Newspaper)
	assert.True(t, c.IsValidReferenceVersion("v1"))
	assert.False(t, c.IsValidReferenceVersion("v2"))
	assert.False(t, c.IsExpired(time.Hour))

	c.CreatedAt = time.Now().Add(-2 * time.Hour)
	assert.True(t, c.IsExpired(time.Hour))

	c.UpdateAccess()
	assert.Equal(t, 2, c.AccessCount)
}
