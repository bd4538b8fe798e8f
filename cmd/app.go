package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/quote-cli/internal/config"
	"github.com/sells-group/quote-cli/internal/fetcher"
	"github.com/sells-group/quote-cli/internal/model"
	"github.com/sells-group/quote-cli/internal/quote"
	"github.com/sells-group/quote-cli/internal/store"
	"github.com/sells-group/quote-cli/internal/tracing"
)

// appEnv holds the wired dependencies shared by the get and serve commands.
type appEnv struct {
	Quotes *quote.Service
	Store  store.Store // nil when run history is disabled

	shutdownTracing tracing.ShutdownFunc
}

// initApp wires tracing, the HTTP fetcher, the quote service and (when
// withStore is set) the run history store.
func initApp(ctx context.Context, opts quote.Options, withStore bool) (*appEnv, error) {
	shutdown, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return nil, err
	}

	env := &appEnv{
		Quotes:          quote.NewService(newFetcher(cfg.Fetch), opts),
		shutdownTracing: shutdown,
	}

	if withStore {
		st, err := initStore(ctx)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.Store = st
	}

	return env, nil
}

// Close releases the store and flushes traces.
func (e *appEnv) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}
	if e.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.shutdownTracing(ctx); err != nil {
			zap.L().Warn("shutdown tracing", zap.Error(err))
		}
	}
}

func newFetcher(fc config.FetchConfig) *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    fc.UserAgent,
		Timeout:      time.Duration(fc.TimeoutSecs) * time.Second,
		MaxBodyBytes: fc.MaxBodyBytes,
	})
}

func quoteOptions(qc config.QuotesConfig) quote.Options {
	return quote.Options{
		IsolateFailures: qc.IsolateFailures,
		MaxConcurrency:  qc.MaxConcurrency,
	}
}

// runQuotes executes one batch and, when st is non-nil, records it. Store
// failures are logged and never change the batch outcome.
func runQuotes(ctx context.Context, svc *quote.Service, st store.Store, urls []string) ([]model.Result, string, error) {
	var runID string
	if st != nil {
		run, err := st.CreateRun(ctx, urls)
		if err != nil {
			zap.L().Warn("record run: create", zap.Error(err))
		} else {
			runID = run.ID
		}
	}

	results, err := svc.GetQuotes(ctx, urls)

	if runID != "" {
		var recErr error
		if err != nil {
			recErr = st.FailRun(ctx, runID, err)
		} else {
			recErr = st.CompleteRun(ctx, runID, results)
		}
		if recErr != nil {
			zap.L().Warn("record run: finish", zap.String("run_id", runID), zap.Error(recErr))
		}
	}

	return results, runID, err
}
