package requests

// ExtractOptions selects the passes run for an ad. Nil fields take the
// configured defaults.
type ExtractOptions struct {
	ExtractAddress *bool `json:"extract_address,omitempty"`
	ExtractWage    *bool `json:"extract_wage,omitempty"`
	// Sandbox returns every wage candidate by tier.
	Sandbox  *bool `json:"sandbox,omitempty"`
	UseCache *bool `json:"use_cache,omitempty"`
}

// AdInput is one ad. Newspaper may be empty inside a batch that sets a
// default newspaper.
type AdInput struct {
	ID        string `json:"id,omitempty"`
	Newspaper string `json:"newspaper,omitempty"`
	Text      string `json:"text"`
}

// ExtractRequest extracts a single ad.
type ExtractRequest struct {
	AdInput
	Options ExtractOptions `json:"options,omitempty"`
}

// BatchExtractRequest submits ads for background extraction.
type BatchExtractRequest struct {
	Newspaper string         `json:"newspaper,omitempty"`
	Ads       []AdInput      `json:"ads" binding:"required,min=1,max=20000"`
	Options   ExtractOptions `json:"options,omitempty"`
}

// InvalidateCacheRequest drops cached results. With All unset only entries
// built against another reference version than ReferenceVersion (or the
// loaded one when empty) are removed.
type InvalidateCacheRequest struct {
	ReferenceVersion string `json:"reference_version,omitempty"`
	All              bool   `json:"all,omitempty"`
}

// Bool returns a pointer to b, for building options.
func Bool(b bool) *bool { return &b }
