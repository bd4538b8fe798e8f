package model

import "time"

// RunStatus represents the current state of a batch run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one invocation of the batch quote lookup.
type Run struct {
	ID        string    `json:"id"`
	URLs      []string  `json:"urls"`
	Status    RunStatus `json:"status"`
	Results   []Result  `json:"results,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary counts quote and failure results.
func (r Run) Summary() (quotes, failures int) {
	for _, res := range r.Results {
		if res.IsQuote() {
			quotes++
		} else {
			failures++
		}
	}
	return quotes, failures
}
