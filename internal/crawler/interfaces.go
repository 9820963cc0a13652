package crawler

import (
	"context"
	"net/url"
	"time"

	"golang.org/x/net/html"
)

// Transport performs exactly one HTTP GET attempt.
type Transport interface {
	Do(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Fetcher performs one logical page fetch, retries included.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchOutcome, error)
}

// Converter turns a parsed document into Markdown. It must never fail.
type Converter interface {
	Convert(doc *html.Node, pageURL *url.URL, cfg ConvertConfig) ConversionResult
}

// RetryPolicy decides the retry budget and the wait between attempts.
type RetryPolicy interface {
	MaxAttempts() int
	Backoff(attempt int) time.Duration
}

// Sleeper waits for d or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Limiter throttles requests per host.
type Limiter interface {
	Wait(ctx context.Context, url string) error
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces crawl IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
