package fetcher

import (
	"context"

	"github.com/sells-group/quote-cli/internal/model"
)

// Fetcher is the transport boundary for quote lookups.
type Fetcher interface {
	// Get issues one GET for url and returns the status code and body.
	// Any status is a successful fetch; only network-level problems
	// (refused connection, DNS, timeout, unreadable body) are errors.
	Get(ctx context.Context, url string) (*model.RawResponse, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (*model.RawResponse, error)

// Get calls f.
func (f FetcherFunc) Get(ctx context.Context, url string) (*model.RawResponse, error) {
	return f(ctx, url)
}
