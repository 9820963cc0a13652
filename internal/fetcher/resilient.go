// Package fetcher wraps a single-attempt transport with fingerprinting,
// outcome classification and retry with exponential backoff.
package fetcher

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/mdcrawler/internal/crawler"
	"github.com/JakeFAU/mdcrawler/internal/fingerprint"
	"github.com/JakeFAU/mdcrawler/internal/metrics"
)

// FingerprintSource yields a fresh browser signature per attempt.
type FingerprintSource interface {
	Generate() fingerprint.Fingerprint
}

// Option customizes a Resilient fetcher.
type Option func(*Resilient)

// WithLimiter paces attempts per host.
func WithLimiter(l crawler.Limiter) Option {
	return func(r *Resilient) {
		r.limiter = l
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resilient) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resilient implements crawler.Fetcher.
type Resilient struct {
	transport    crawler.Transport
	fingerprints FingerprintSource
	policy       crawler.RetryPolicy
	sleeper      crawler.Sleeper
	limiter      crawler.Limiter
	logger       *zap.Logger
}

// New builds a Resilient fetcher.
func New(
	transport crawler.Transport,
	fingerprints FingerprintSource,
	policy crawler.RetryPolicy,
	sleeper crawler.Sleeper,
	opts ...Option,
) *Resilient {
	r := &Resilient{
		transport:    transport,
		fingerprints: fingerprints,
		policy:       policy,
		sleeper:      sleeper,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch issues GET attempts until success, a non-retryable status, budget
// exhaustion or cancellation.
func (r *Resilient) Fetch(ctx context.Context, url string) (crawler.FetchOutcome, error) {
	maxAttempts := r.policy.MaxAttempts()
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	logger := r.logger.With(zap.String("url", url))

	var (
		lastStatus int
		lastErr    error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx, url); err != nil {
				return crawler.FetchOutcome{}, fmt.Errorf("fetch %s: %w", url, err)
			}
		}

		fp := r.fingerprints.Generate()
		resp, err := r.transport.Do(ctx, crawler.FetchRequest{URL: url, Headers: fp.HTTPHeader()})
		switch {
		case err != nil:
			metrics.ObserveFetchAttempt(url, 0, 0)
			if ctx.Err() != nil || crawler.IsCanceled(err) {
				return crawler.FetchOutcome{}, fmt.Errorf("fetch %s: %w", url, err)
			}
			lastStatus, lastErr = 0, err
		case isSuccess(resp.StatusCode):
			metrics.ObserveFetchAttempt(url, resp.StatusCode, len(resp.Body))
			return outcomeFrom(url, resp, attempt), nil
		case crawler.IsRetryableStatus(resp.StatusCode):
			metrics.ObserveFetchAttempt(url, resp.StatusCode, len(resp.Body))
			lastStatus, lastErr = resp.StatusCode, &crawler.HTTPError{URL: url, StatusCode: resp.StatusCode}
		default:
			metrics.ObserveFetchAttempt(url, resp.StatusCode, len(resp.Body))
			logger.Debug("non-retryable status", zap.Int("status", resp.StatusCode), zap.Int("attempt", attempt))
			return crawler.FetchOutcome{}, &crawler.HTTPError{URL: url, StatusCode: resp.StatusCode}
		}

		if attempt == maxAttempts {
			break
		}
		delay := r.policy.Backoff(attempt)
		metrics.ObserveRetry(url)
		logger.Debug("retrying fetch",
			zap.Int("attempt", attempt),
			zap.Int("status", lastStatus),
			zap.Duration("backoff", delay),
			zap.Error(lastErr),
			zap.String("browser", fp.Browser),
		)
		if err := r.sleeper.Sleep(ctx, delay); err != nil {
			return crawler.FetchOutcome{}, fmt.Errorf("fetch %s: %w", url, err)
		}
	}

	logger.Info("fetch retries exhausted", zap.Int("attempts", maxAttempts), zap.Int("last_status", lastStatus))
	return crawler.FetchOutcome{}, &crawler.RetriesExhaustedError{
		URL:        url,
		Attempts:   maxAttempts,
		LastStatus: lastStatus,
		Err:        lastErr,
	}
}

func isSuccess(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

func outcomeFrom(url string, resp crawler.FetchResponse, attempts int) crawler.FetchOutcome {
	final := resp.URL
	if final == "" {
		final = url
	}
	contentType := ""
	if resp.Headers != nil {
		contentType = resp.Headers.Get("Content-Type")
	}
	return crawler.FetchOutcome{
		URL:         final,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        resp.Body,
		Attempts:    attempts,
	}
}
