package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedFetcher returns its updates in order, repeating the last one.
type scriptedFetcher struct {
	updates []Update
	errs    []error
	calls   int
}

func (f *scriptedFetcher) Fetch(ctx context.Context, id string) (Update, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return Update{}, f.errs[i]
	}
	if i >= len(f.updates) {
		i = len(f.updates) - 1
	}
	return f.updates[i], nil
}

func fastBuilder(f Fetcher) *Builder {
	b := NewBuilder(f)
	b.interval = time.Millisecond
	return b
}

func TestBuilderWaitMergesPartials(t *testing.T) {
	fetcher := &scriptedFetcher{
		updates: []Update{
			{Status: StatusProcessing, Report: Report{Accomplishments: "shipped the parser"}},
			{Status: StatusProcessing, Report: Report{Insights: "tokens are cheap", Decisions: "keep yaml"}},
			{Status: StatusComplete, Report: Report{NextSteps: "write docs"}},
		},
	}

	var seen []Report
	got, err := fastBuilder(fetcher).Wait(context.Background(), "r1", func(r Report) {
		seen = append(seen, r)
	})
	require.NoError(t, err)

	assert.Equal(t, "shipped the parser", got.Accomplishments)
	assert.Equal(t, "tokens are cheap", got.Insights)
	assert.Equal(t, "keep yaml", got.Decisions)
	assert.Equal(t, "write docs", got.NextSteps)
	assert.True(t, got.Complete())
	assert.Len(t, seen, 3)
}

func TestBuilderWaitPartialSurvivesTimeout(t *testing.T) {
	fetcher := &scriptedFetcher{
		updates: []Update{
			{Status: StatusProcessing, Report: Report{Accomplishments: "half done"}},
		},
	}

	b := fastBuilder(fetcher)
	b.attempts = 3

	got, err := b.Wait(context.Background(), "r1", nil)
	require.ErrorIs(t, err, ErrTimedOut)
	assert.Equal(t, "half done", got.Accomplishments, "partial progress must survive a timeout")
	assert.Equal(t, 3, fetcher.calls)
}

func TestBuilderWaitPartialSurvivesTerminalError(t *testing.T) {
	fetcher := &scriptedFetcher{
		updates: []Update{
			{Status: StatusProcessing, Report: Report{Insights: "found a race"}},
			{Status: StatusError, Error: "generator crashed"},
		},
	}

	got, err := fastBuilder(fetcher).Wait(context.Background(), "r1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generator crashed")
	assert.Equal(t, "found a race", got.Insights)
}

func TestBuilderWaitSurvivesTransientFetchErrors(t *testing.T) {
	fetcher := &scriptedFetcher{
		errs: []error{errors.New("503"), errors.New("503")},
		updates: []Update{
			{}, {},
			{Status: StatusComplete, Report: Report{
				Accomplishments: "a", Insights: "i", Decisions: "d", NextSteps: "n",
			}},
		},
	}

	got, err := fastBuilder(fetcher).Wait(context.Background(), "r1", nil)
	require.NoError(t, err)
	assert.True(t, got.Complete())
}

func TestBuilderWaitContextCancel(t *testing.T) {
	fetcher := &scriptedFetcher{
		updates: []Update{{Status: StatusPending}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fastBuilder(fetcher).Wait(ctx, "r1", nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestReportMergeNeverDiscards(t *testing.T) {
	r := Report{Accomplishments: "kept"}
	r.Merge(Report{Insights: "new"})
	r.Merge(Report{}) // empty update must not erase anything

	assert.Equal(t, "kept", r.Accomplishments)
	assert.Equal(t, "new", r.Insights)
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reports/r42", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Update{
			Status: StatusComplete,
			Report: Report{Accomplishments: "done"},
		})
	}))
	defer srv.Close()

	update, err := NewHTTPFetcher(srv.URL + "/reports").Fetch(context.Background(), "r42")
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, update.Status)
	assert.Equal(t, "done", update.Report.Accomplishments)
}

func TestHTTPFetcherBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(srv.URL).Fetch(context.Background(), "r1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
