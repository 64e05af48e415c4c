package responses

import "github.com/classified-extractor/app/models"

// ExtractResponse is the result of a single-ad extraction.
type ExtractResponse struct {
	ReferenceVersion string           `json:"reference_version"`
	Result           *models.AdResult `json:"result"`
	ProcessingTimeMs int64            `json:"processing_time_ms"`
	CacheHit         bool             `json:"cache_hit"`
}

// BatchExtractResponse acknowledges a submitted job.
type BatchExtractResponse struct {
	JobID   string `json:"job_id"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// JobStatusResponse reports job progress.
type JobStatusResponse struct {
	JobID     string  `json:"job_id"`
	Status    string  `json:"status"`
	Progress  float64 `json:"progress"`
	Processed int     `json:"processed"`
	Total     int     `json:"total"`
	Failed    int     `json:"failed"`
	Message   string  `json:"message,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// Job states.
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// JobResultsResponse is the non-streaming results payload.
type JobResultsResponse struct {
	JobID   string             `json:"job_id"`
	Total   int                `json:"total"`
	Results []*models.AdResult `json:"results"`
}

// NewspaperInfo describes one supported newspaper.
type NewspaperInfo struct {
	Code         string   `json:"code"`
	StateID      string   `json:"state_id"`
	StateName    string   `json:"state_name"`
	NearbyStates []string `json:"nearby_states"`
	BigCities    int      `json:"big_cities"`
}

// NewspapersResponse lists supported newspapers.
type NewspapersResponse struct {
	ReferenceVersion string          `json:"reference_version"`
	Newspapers       []NewspaperInfo `json:"newspapers"`
}

// InvalidateCacheResponse reports a cache invalidation.
type InvalidateCacheResponse struct {
	ReferenceVersion string `json:"reference_version,omitempty"`
	All              bool   `json:"all"`
	Message          string `json:"message"`
}

// AdminStatsResponse summarizes service state.
type AdminStatsResponse struct {
	ReferenceVersion string      `json:"reference_version"`
	Newspapers       int         `json:"newspapers"`
	TotalExtracted   int64       `json:"total_extracted"`
	TotalJobs        int         `json:"total_jobs"`
	RunningJobs      int         `json:"running_jobs"`
	Cache            interface{} `json:"cache,omitempty"`
	UptimeSeconds    int64       `json:"uptime_seconds"`
	LastUpdated      string      `json:"last_updated"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error     string      `json:"error"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp string      `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// HealthCheckResponse is returned by the health probes.
type HealthCheckResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}
