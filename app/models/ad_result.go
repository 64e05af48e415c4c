package models

import "strings"

// AddressCandidate is one structured address guess for an ad. Every field is
// optional; equality is structural, so two candidates with the same fields
// are the same candidate.
type AddressCandidate struct {
	HouseNumber string `json:"housenumber,omitempty" bson:"housenumber,omitempty"`
	Street      string `json:"street,omitempty" bson:"street,omitempty"`
	City        string `json:"city,omitempty" bson:"city,omitempty"`
	State       string `json:"state,omitempty" bson:"state,omitempty"`
	County      string `json:"county,omitempty" bson:"county,omitempty"`
	Zipcode     string `json:"zipcode,omitempty" bson:"zipcode,omitempty"`
}

// Merge overlays the non-empty fields of other onto a copy of a.
func (a AddressCandidate) Merge(other AddressCandidate) AddressCandidate {
	if other.HouseNumber != "" {
		a.HouseNumber = other.HouseNumber
	}
	if other.Street != "" {
		a.Street = other.Street
	}
	if other.City != "" {
		a.City = other.City
	}
	if other.State != "" {
		a.State = other.State
	}
	if other.County != "" {
		a.County = other.County
	}
	if other.Zipcode != "" {
		a.Zipcode = other.Zipcode
	}
	return a
}

// Format renders the candidate as "number street, city, state, zipcode",
// skipping empty parts. County is not part of the rendering.
func (a AddressCandidate) Format() string {
	var parts []string
	switch {
	case a.Street != "" && a.HouseNumber != "":
		parts = append(parts, a.HouseNumber+" "+a.Street)
	case a.Street != "":
		parts = append(parts, a.Street)
	}
	for _, f := range []string{a.City, a.State, a.Zipcode} {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, ", ")
}

// IsEmpty reports whether no field is set.
func (a AddressCandidate) IsEmpty() bool {
	return a == AddressCandidate{}
}

// WageSandbox exposes every wage candidate by tier for manual review.
type WageSandbox struct {
	Strong []string `json:"wage_pred_strong" bson:"wage_pred_strong"`
	Maybe  []string `json:"wage_pred_maybe" bson:"wage_pred_maybe"`
	Weak   []string `json:"wage_pred_weak" bson:"wage_pred_weak"`
}

// AdResult is the extraction output for one ad.
type AdResult struct {
	ID               string             `json:"id,omitempty" bson:"id,omitempty"`
	Newspaper        string             `json:"newspaper" bson:"newspaper"`
	Addresses        []AddressCandidate `json:"addresses" bson:"addresses"`
	AddressExcluded  bool               `json:"address_excluded" bson:"address_excluded"`
	AddressError     string             `json:"address_error,omitempty" bson:"address_error,omitempty"`
	Wage             *string            `json:"wage" bson:"wage"`
	WageExcluded     bool               `json:"wage_excluded" bson:"wage_excluded"`
	Sandbox          *WageSandbox       `json:"sandbox,omitempty" bson:"sandbox,omitempty"`
	Fingerprint      string             `json:"fingerprint" bson:"fingerprint"`
	ReferenceVersion string             `json:"reference_version" bson:"reference_version"`
	Status           string             `json:"status" bson:"status"`
}

// Status constants
const (
	StatusExtracted = "extracted"
	StatusEmpty     = "empty"
	StatusExcluded  = "excluded"
	StatusPartial   = "partial"
)

// IsValidStatus reports whether Status is one of the known values.
func (r *AdResult) IsValidStatus() bool {
	switch r.Status {
	case StatusExtracted, StatusEmpty, StatusExcluded, StatusPartial:
		return true
	}
	return false
}

// ResolveStatus derives Status from the extracted fields: partial when the
// address pass failed, extracted when anything was found, excluded when
// every pass that ran skipped the ad, empty otherwise.
func (r *AdResult) ResolveStatus() {
	switch {
	case r.AddressError != "":
		r.Status = StatusPartial
	case len(r.Addresses) > 0 || r.Wage != nil:
		r.Status = StatusExtracted
	case r.AddressExcluded || r.WageExcluded:
		r.Status = StatusExcluded
	default:
		r.Status = StatusEmpty
	}
}
