package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Fetcher downloads source sheets over HTTP ahead of a pipeline pass.
// Requests are rate limited to stay polite to the source sites, and a
// circuit breaker stops hammering a host that has started failing.
// Failed downloads are collected and reported, never retried within a
// run.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

// NewFetcher builds a fetcher allowing requestsPerSecond sustained
// request rate.
func NewFetcher(requestsPerSecond float64, logger *logrus.Logger) *Fetcher {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &Fetcher{
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "source-fetcher",
			Timeout: 60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		logger: logger,
	}
}

// Fetch downloads url into destPath.
func (f *Fetcher) Fetch(ctx context.Context, url, destPath string) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := f.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return nil, err
		}
		out, err := os.Create(destPath)
		if err != nil {
			return nil, err
		}
		defer out.Close()
		_, err = io.Copy(out, resp.Body)
		return nil, err
	})
	return err
}

// FetchResult summarizes a FetchAll pass.
type FetchResult struct {
	Fetched []string
	Failed  []string
}

// FetchAll downloads each url into destDir, naming files by URL base
// name. Failures are collected into the result rather than aborting
// the batch.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string, destDir string) FetchResult {
	var res FetchResult
	for _, url := range urls {
		dest := filepath.Join(destDir, filepath.Base(url))
		if err := f.Fetch(ctx, url, dest); err != nil {
			f.logger.WithError(err).WithField("url", url).Warn("source download failed")
			res.Failed = append(res.Failed, url)
			continue
		}
		res.Fetched = append(res.Fetched, dest)
	}
	if len(res.Failed) > 0 {
		f.logger.WithFields(logrus.Fields{
			"fetched": len(res.Fetched),
			"failed":  len(res.Failed),
		}).Warn("source fetch finished with failures")
	}
	return res
}
