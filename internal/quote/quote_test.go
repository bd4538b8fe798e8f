package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/quote-cli/internal/fetcher"
	"github.com/sells-group/quote-cli/internal/model"
)

// fakeFetcher serves canned responses keyed by URL.
type fakeFetcher struct {
	responses map[string]model.RawResponse
	errs      map[string]error
	delays    map[string]time.Duration
	calls     atomic.Int32
}

func (f *fakeFetcher) Get(ctx context.Context, url string) (*model.RawResponse, error) {
	f.calls.Add(1)
	if d, ok := f.delays[url]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	resp, ok := f.responses[url]
	if !ok {
		return nil, fmt.Errorf("no response for %s", url)
	}
	return &resp, nil
}

func TestGetQuote_OK(t *testing.T) {
	f := &fakeFetcher{responses: map[string]model.RawResponse{
		"https://a.test/1": {Status: 200, Body: `{"message":"I'll be back"}`},
	}}
	svc := NewService(f, Options{})

	res, err := svc.GetQuote(context.Background(), "https://a.test/1")
	require.NoError(t, err)
	assert.Equal(t, model.NewQuote("I'll be back"), res)
}

func TestGetQuote_NonOK(t *testing.T) {
	f := &fakeFetcher{responses: map[string]model.RawResponse{
		"https://a.test/2": {Status: 404, Body: `{"message":"not found"}`},
	}}
	svc := NewService(f, Options{})

	res, err := svc.GetQuote(context.Background(), "https://a.test/2")
	require.NoError(t, err)
	assert.Equal(t, model.NewFailure("not found"), res)
}

func TestGetQuote_InvalidBody(t *testing.T) {
	tests := []struct {
		status int
		want   model.Result
	}{
		{200, model.NewQuote("Invalid body string.")},
		{500, model.NewFailure("Invalid body string.")},
		{301, model.NewFailure("Invalid body string.")},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			f := &fakeFetcher{responses: map[string]model.RawResponse{
				"u": {Status: tt.status, Body: "not-json"},
			}}
			res, err := NewService(f, Options{}).GetQuote(context.Background(), "u")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res)
		})
	}
}

func TestGetQuote_MissingMessage(t *testing.T) {
	f := &fakeFetcher{responses: map[string]model.RawResponse{
		"u": {Status: 200, Body: `{"quote":"elsewhere"}`},
	}}
	res, err := NewService(f, Options{}).GetQuote(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, model.NewQuote(""), res)
}

func TestGetQuote_TransportError(t *testing.T) {
	boom := errors.New("connection refused")
	f := &fakeFetcher{errs: map[string]error{"u": boom}}

	_, err := NewService(f, Options{}).GetQuote(context.Background(), "u")
	require.Error(t, err)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "u", te.URL)
	assert.ErrorIs(t, err, boom)
}

func TestGetQuotes_Empty(t *testing.T) {
	f := &fakeFetcher{}
	res, err := NewService(f, Options{}).GetQuotes(context.Background(), []string{})
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Empty(t, res)
	assert.Equal(t, int32(0), f.calls.Load())

	res, err = NewService(f, Options{}).GetQuotes(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestGetQuotes_Mixed(t *testing.T) {
	f := &fakeFetcher{responses: map[string]model.RawResponse{
		"https://a.test/1": {Status: 200, Body: `{"message":"I'll be back"}`},
		"https://a.test/2": {Status: 404, Body: `{"message":"not found"}`},
		"https://a.test/3": {Status: 200, Body: "not-json"},
	}}
	svc := NewService(f, Options{})

	res, err := svc.GetQuotes(context.Background(), []string{
		"https://a.test/1", "https://a.test/2", "https://a.test/3",
	})
	require.NoError(t, err)
	assert.Equal(t, []model.Result{
		model.NewQuote("I'll be back"),
		model.NewFailure("not found"),
		model.NewQuote("Invalid body string."),
	}, res)
}

func TestGetQuotes_PreservesOrderUnderSkew(t *testing.T) {
	f := &fakeFetcher{
		responses: map[string]model.RawResponse{
			"u1": {Status: 200, Body: `{"message":"first"}`},
			"u2": {Status: 200, Body: `{"message":"second"}`},
			"u3": {Status: 200, Body: `{"message":"third"}`},
		},
		delays: map[string]time.Duration{
			"u1": 60 * time.Millisecond,
			"u2": 0,
			"u3": 30 * time.Millisecond,
		},
	}

	res, err := NewService(f, Options{}).GetQuotes(context.Background(), []string{"u1", "u2", "u3"})
	require.NoError(t, err)
	assert.Equal(t, []model.Result{
		model.NewQuote("first"),
		model.NewQuote("second"),
		model.NewQuote("third"),
	}, res)
}

func TestGetQuotes_DuplicateURLs(t *testing.T) {
	f := &fakeFetcher{responses: map[string]model.RawResponse{
		"u": {Status: 200, Body: `{"message":"again"}`},
	}}

	res, err := NewService(f, Options{}).GetQuotes(context.Background(), []string{"u", "u", "u"})
	require.NoError(t, err)
	assert.Len(t, res, 3)
	assert.Equal(t, int32(3), f.calls.Load())
}

func TestGetQuotes_RunsConcurrently(t *testing.T) {
	const n = 5
	var inflight, peak atomic.Int32
	var release sync.WaitGroup
	release.Add(n)

	f := fetcher.FetcherFunc(func(ctx context.Context, url string) (*model.RawResponse, error) {
		cur := inflight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		release.Done()
		release.Wait() // every fetch must be in flight before any completes
		inflight.Add(-1)
		return &model.RawResponse{Status: 200, Body: `{"message":"` + url + `"}`}, nil
	})

	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("u%d", i)
	}

	res, err := NewService(f, Options{}).GetQuotes(context.Background(), urls)
	require.NoError(t, err)
	assert.Equal(t, int32(n), peak.Load())
	for i, r := range res {
		assert.Equal(t, model.NewQuote(urls[i]), r)
	}
}

func TestGetQuotes_MaxConcurrency(t *testing.T) {
	var inflight, peak atomic.Int32
	f := fetcher.FetcherFunc(func(ctx context.Context, url string) (*model.RawResponse, error) {
		cur := inflight.Add(1)
		defer inflight.Add(-1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return &model.RawResponse{Status: 200, Body: `{"message":"ok"}`}, nil
	})

	urls := []string{"a", "b", "c", "d", "e", "f"}
	res, err := NewService(f, Options{MaxConcurrency: 2}).GetQuotes(context.Background(), urls)
	require.NoError(t, err)
	assert.Len(t, res, len(urls))
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestGetQuotes_TransportFailureAbortsBatch(t *testing.T) {
	f := &fakeFetcher{
		responses: map[string]model.RawResponse{
			"ok":   {Status: 200, Body: `{"message":"fine"}`},
			"slow": {Status: 200, Body: `{"message":"late"}`},
		},
		errs:   map[string]error{"down": errors.New("dial tcp: connection refused")},
		delays: map[string]time.Duration{"slow": 5 * time.Second},
	}

	start := time.Now()
	res, err := NewService(f, Options{}).GetQuotes(context.Background(), []string{"ok", "down", "slow"})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Less(t, time.Since(start), 2*time.Second, "remaining fetches should be cancelled")

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "down", te.URL)
}

func TestGetQuotes_IsolateFailures(t *testing.T) {
	f := &fakeFetcher{
		responses: map[string]model.RawResponse{
			"ok":  {Status: 200, Body: `{"message":"fine"}`},
			"bad": {Status: 500, Body: `{"message":"oops"}`},
		},
		errs: map[string]error{"down": errors.New("connection refused")},
	}

	res, err := NewService(f, Options{IsolateFailures: true}).GetQuotes(context.Background(), []string{"ok", "down", "bad"})
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, model.NewQuote("fine"), res[0])
	assert.True(t, res[1].IsFailure())
	assert.Contains(t, res[1].Message, "connection refused")
	assert.Contains(t, res[1].Message, "down")
	assert.Equal(t, model.NewFailure("oops"), res[2])
}

func TestGetQuotes_Idempotent(t *testing.T) {
	f := &fakeFetcher{responses: map[string]model.RawResponse{
		"a": {Status: 200, Body: `{"message":"one"}`},
		"b": {Status: 403, Body: `{"message":"two"}`},
		"c": {Status: 200, Body: `<html>`},
	}}
	svc := NewService(f, Options{})
	urls := []string{"a", "b", "c"}

	first, err := svc.GetQuotes(context.Background(), urls)
	require.NoError(t, err)
	second, err := svc.GetQuotes(context.Background(), urls)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetQuotes_ParentContextCancelled(t *testing.T) {
	f := &fakeFetcher{
		responses: map[string]model.RawResponse{"u": {Status: 200, Body: `{}`}},
		delays:    map[string]time.Duration{"u": 5 * time.Second},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(f, Options{}).GetQuotes(ctx, []string{"u"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetQuotes_OverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/1":
			time.Sleep(30 * time.Millisecond)
			w.Write([]byte(`{"message":"I'll be back"}`))
		case "/2":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"not found"}`))
		default:
			w.Write([]byte(`not-json`))
		}
	}))
	defer srv.Close()

	svc := NewService(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: 5 * time.Second}), Options{})
	res, err := svc.GetQuotes(context.Background(), []string{srv.URL + "/1", srv.URL + "/2", srv.URL + "/3"})
	require.NoError(t, err)
	assert.Equal(t, []model.Result{
		model.NewQuote("I'll be back"),
		model.NewFailure("not found"),
		model.NewQuote("Invalid body string."),
	}, res)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, model.NewQuote("x"), Normalize(&model.RawResponse{Status: 200, Body: `{"message":"x"}`}))
	assert.Equal(t, model.NewFailure("x"), Normalize(&model.RawResponse{Status: 201, Body: `{"message":"x"}`}))
}
