// Package quote fetches quotes from remote endpoints and normalizes each
// response into a model.Result.
package quote

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/quote-cli/internal/fetcher"
	"github.com/sells-group/quote-cli/internal/model"
)

// TransportError reports a fetch that failed below the HTTP status level.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return "quote: fetch " + e.URL + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Options tunes the batch lookup.
type Options struct {
	// IsolateFailures turns a transport failure into a FAILURE result for
	// that URL instead of aborting the whole batch.
	IsolateFailures bool
	// MaxConcurrency caps in-flight fetches. Zero means no cap.
	MaxConcurrency int
}

// Service runs quote lookups against a Fetcher.
type Service struct {
	fetcher fetcher.Fetcher
	opts    Options
}

// NewService creates a Service using f as its transport.
func NewService(f fetcher.Fetcher, opts Options) *Service {
	return &Service{fetcher: f, opts: opts}
}

// GetQuote fetches one URL and normalizes the response. A 200 yields the
// quote variant and any other status the failure variant, whether or not the
// body decoded. The only error is a *TransportError.
func (s *Service) GetQuote(ctx context.Context, url string) (model.Result, error) {
	resp, err := s.fetcher.Get(ctx, url)
	if err != nil {
		return model.Result{}, &TransportError{URL: url, Err: err}
	}
	return Normalize(resp), nil
}

// Normalize classifies a raw response by status code.
func Normalize(resp *model.RawResponse) model.Result {
	msg, _ := ParseBody(resp.Body).Message()
	if resp.Status == http.StatusOK {
		return model.NewQuote(msg)
	}
	return model.NewFailure(msg)
}

// GetQuotes fetches all URLs concurrently and returns one result per URL in
// input order. Unless IsolateFailures is set, the first transport failure
// cancels the remaining fetches and the batch returns no results.
func (s *Service) GetQuotes(ctx context.Context, urls []string) ([]model.Result, error) {
	results := make([]model.Result, len(urls))
	if len(urls) == 0 {
		return results, nil
	}

	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	if s.opts.MaxConcurrency > 0 {
		g.SetLimit(s.opts.MaxConcurrency)
	}

	for i, url := range urls {
		g.Go(func() error {
			res, err := s.GetQuote(gctx, url)
			if err != nil {
				if !s.opts.IsolateFailures {
					return err
				}
				zap.L().Warn("quote fetch failed, isolating",
					zap.String("url", url),
					zap.Error(err),
				)
				res = model.NewFailure(err.Error())
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("quote batch aborted",
			zap.Int("urls", len(urls)),
			zap.Error(err),
		)
		return nil, eris.Wrap(err, "quote: batch")
	}

	zap.L().Info("quote batch complete",
		zap.Int("urls", len(urls)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}
