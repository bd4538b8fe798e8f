// Package store persists the history of batch quote runs.
package store

import (
	"context"
	"errors"

	"github.com/sells-group/quote-cli/internal/model"
)

// ErrRunNotFound is returned (wrapped) when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store records batch runs. It is never consulted when fetching quotes.
type Store interface {
	CreateRun(ctx context.Context, urls []string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, results []model.Result) error
	FailRun(ctx context.Context, runID string, runErr error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

func (f RunFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
