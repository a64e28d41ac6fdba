package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

const (
	initialPollInterval = 1 * time.Second
	pollBackoffFactor   = 1.5
	maxPollInterval     = 15 * time.Second
	maxPollAttempts     = 40
)

// ErrTimedOut is returned when generation does not finish within the
// polling budget. The report returned alongside it holds whatever
// boxes arrived.
var ErrTimedOut = errors.New("report generation timed out")

// Fetcher retrieves the current state of a report being generated.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (Update, error)
}

// Builder polls a Fetcher until the report completes, backing off
// between attempts. Partial boxes are folded in as they arrive and
// survive a timeout or terminal error.
type Builder struct {
	fetcher  Fetcher
	interval time.Duration
	attempts int
}

// NewBuilder returns a builder with the default polling schedule.
func NewBuilder(fetcher Fetcher) *Builder {
	return &Builder{
		fetcher:  fetcher,
		interval: initialPollInterval,
		attempts: maxPollAttempts,
	}
}

// Wait polls until the report is complete, the attempt budget runs
// out, or the context is canceled. onUpdate, if non-nil, observes the
// merged report after every poll that changed it. The returned report
// always contains every box received so far, even on error.
func (b *Builder) Wait(ctx context.Context, id string, onUpdate func(Report)) (Report, error) {
	var result Report
	interval := b.interval

	for attempt := 0; attempt < b.attempts; attempt++ {
		update, err := b.fetcher.Fetch(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			// Transient fetch failures burn an attempt but keep polling.
			log.Printf("[report] poll %d failed: %v", attempt+1, err)
		} else {
			before := result
			result.Merge(update.Report)
			if onUpdate != nil && result != before {
				onUpdate(result)
			}

			switch update.Status {
			case StatusComplete:
				return result, nil
			case StatusError:
				msg := update.Error
				if msg == "" {
					msg = "generation failed"
				}
				return result, fmt.Errorf("report generation: %s", msg)
			}
			if result.Complete() {
				return result, nil
			}
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(interval):
		}
		interval = time.Duration(float64(interval) * pollBackoffFactor)
		if interval > maxPollInterval {
			interval = maxPollInterval
		}
	}
	return result, ErrTimedOut
}

// HTTPFetcher polls a JSON status endpoint, GET <base>/<id>.
type HTTPFetcher struct {
	baseURL string
	http    *http.Client
}

// NewHTTPFetcher builds a fetcher for the given report API base URL.
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, id string) (Update, error) {
	u := f.baseURL + "/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Update{}, fmt.Errorf("build report request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return Update{}, fmt.Errorf("report request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Update{}, fmt.Errorf("report endpoint returned status %d", resp.StatusCode)
	}

	var update Update
	if err := json.NewDecoder(resp.Body).Decode(&update); err != nil {
		return Update{}, fmt.Errorf("decode report response: %w", err)
	}
	return update, nil
}
