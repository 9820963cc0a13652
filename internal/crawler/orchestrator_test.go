package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// siteFetcher serves canned pages keyed by normalized URL.
type siteFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	fail    map[string]error
	delay   map[string]time.Duration
	onFetch func(url string)
	calls   []string
}

func (s *siteFetcher) Fetch(ctx context.Context, rawURL string) (FetchOutcome, error) {
	s.mu.Lock()
	s.calls = append(s.calls, rawURL)
	body, ok := s.pages[rawURL]
	failure := s.fail[rawURL]
	delay := s.delay[rawURL]
	hook := s.onFetch
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return FetchOutcome{}, err
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if hook != nil {
		hook(rawURL)
	}
	if failure != nil {
		return FetchOutcome{}, failure
	}
	if !ok {
		return FetchOutcome{}, &HTTPError{URL: rawURL, StatusCode: http.StatusNotFound}
	}
	return FetchOutcome{
		URL:         rawURL,
		StatusCode:  http.StatusOK,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(body),
		Attempts:    1,
	}, nil
}

func (s *siteFetcher) fetched() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

type pathConverter struct{}

func (pathConverter) Convert(_ *html.Node, pageURL *url.URL, _ ConvertConfig) ConversionResult {
	return ConversionResult{Markdown: "# " + pageURL.Path}
}

type fixedID string

func (f fixedID) NewID() (string, error) {
	return string(f), nil
}

func newTestOrchestrator(f Fetcher) *Orchestrator {
	return New(f, pathConverter{}, fixedID("crawl-1"), Config{}, nil)
}

func pageURLs(res CrawlResult) []string {
	urls := make([]string, 0, len(res.Pages))
	for _, p := range res.Pages {
		urls = append(urls, p.URL)
	}
	return urls
}

func linkPage(hrefs ...string) string {
	body := "<html><body>"
	for _, h := range hrefs {
		body += `<a href="` + h + `">link</a>`
	}
	return body + "</body></html>"
}

func TestCrawlBreadthFirstWithinDepth(t *testing.T) {
	t.Parallel()

	f := &siteFetcher{pages: map[string]string{
		"https://example.com/":  linkPage("/a", "/b"),
		"https://example.com/a": linkPage("/c"),
		"https://example.com/b": linkPage(),
		"https://example.com/c": linkPage(),
	}}
	res, err := newTestOrchestrator(f).Crawl(context.Background(), CrawlRequest{
		URL: "https://example.com", Limit: 10, MaxDepth: 1, FollowRelative: true,
	})
	require.NoError(t, err)
	require.Equal(t, "crawl-1", res.ID)
	require.Equal(t, []string{"https://example.com/", "https://example.com/a", "https://example.com/b"}, pageURLs(res))
	require.Equal(t, 0, res.Pages[0].Depth)
	require.Equal(t, 1, res.Pages[1].Depth)
	require.Equal(t, "# /a", res.Pages[1].Result.Markdown)
	require.NotContains(t, f.fetched(), "https://example.com/c")
}

func TestCrawlKeepsDequeueOrderUnderConcurrency(t *testing.T) {
	t.Parallel()

	f := &siteFetcher{
		pages: map[string]string{
			"https://example.com/":     linkPage("/slow", "/fast"),
			"https://example.com/slow": linkPage(),
			"https://example.com/fast": linkPage(),
		},
		delay: map[string]time.Duration{"https://example.com/slow": 50 * time.Millisecond},
	}
	res, err := newTestOrchestrator(f).Crawl(context.Background(), CrawlRequest{
		URL: "https://example.com/", Limit: 5, MaxDepth: 2, FollowRelative: true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://example.com/",
		"https://example.com/slow",
		"https://example.com/fast",
	}, pageURLs(res))
}

func TestCrawlRespectsLimit(t *testing.T) {
	t.Parallel()

	f := &siteFetcher{pages: map[string]string{
		"https://example.com/":  linkPage("/a", "/b", "/c"),
		"https://example.com/a": linkPage(),
		"https://example.com/b": linkPage(),
		"https://example.com/c": linkPage(),
	}}
	res, err := newTestOrchestrator(f).Crawl(context.Background(), CrawlRequest{
		URL: "https://example.com/", Limit: 2, MaxDepth: 3, FollowRelative: true,
	})
	require.NoError(t, err)
	require.Len(t, res.Pages, 2)
	require.Len(t, f.fetched(), 2)
}

func TestCrawlDepthZeroFetchesOnlyStart(t *testing.T) {
	t.Parallel()

	f := &siteFetcher{pages: map[string]string{
		"https://example.com/":  linkPage("/a"),
		"https://example.com/a": linkPage(),
	}}
	res, err := newTestOrchestrator(f).Crawl(context.Background(), CrawlRequest{
		URL: "https://example.com/", Limit: 10, MaxDepth: 0, FollowRelative: true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"https://example.com/"}, pageURLs(res))
}

func TestCrawlNeverRevisits(t *testing.T) {
	t.Parallel()

	f := &siteFetcher{pages: map[string]string{
		"https://example.com/":  linkPage("/a", "/b", "/a#top", "https://EXAMPLE.com:443/b"),
		"https://example.com/a": linkPage("/", "/b"),
		"https://example.com/b": linkPage("/a", "/"),
	}}
	res, err := newTestOrchestrator(f).Crawl(context.Background(), CrawlRequest{
		URL: "https://example.com/", Limit: 10, MaxDepth: 5, FollowRelative: true,
	})
	require.NoError(t, err)
	require.Len(t, res.Pages, 3)
	require.ElementsMatch(t, pageURLs(res), f.fetched())
}

func TestCrawlStartPageFailure(t *testing.T) {
	t.Parallel()

	boom := &RetriesExhaustedError{URL: "https://example.com/", Attempts: 4, LastStatus: http.StatusServiceUnavailable}
	f := &siteFetcher{fail: map[string]error{"https://example.com/": boom}}
	res, err := newTestOrchestrator(f).Crawl(context.Background(), CrawlRequest{
		URL: "https://example.com/", Limit: 3, MaxDepth: 1,
	})
	var unreachable *StartPageUnreachableError
	require.ErrorAs(t, err, &unreachable)
	require.Equal(t, "https://example.com/", unreachable.URL)
	require.ErrorIs(t, err, boom)
	require.Equal(t, http.StatusServiceUnavailable, StatusOf(err))
	require.Empty(t, res.Pages)
}

func TestCrawlSkipsFailedPages(t *testing.T) {
	t.Parallel()

	f := &siteFetcher{pages: map[string]string{
		"https://example.com/":  linkPage("/missing", "/b"),
		"https://example.com/b": linkPage(),
	}}
	res, err := newTestOrchestrator(f).Crawl(context.Background(), CrawlRequest{
		URL: "https://example.com/", Limit: 5, MaxDepth: 1, FollowRelative: true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"https://example.com/", "https://example.com/b"}, pageURLs(res))
}

func TestCrawlLinkEligibility(t *testing.T) {
	t.Parallel()

	f := &siteFetcher{pages: map[string]string{
		"https://example.com/":    linkPage("/rel", "https://example.com/abs", "https://other.org/x", "mailto:a@b.c"),
		"https://example.com/abs": linkPage(),
		"https://example.com/rel": linkPage(),
	}}
	res, err := newTestOrchestrator(f).Crawl(context.Background(), CrawlRequest{
		URL: "https://example.com/", Limit: 10, MaxDepth: 1, FollowRelative: false,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"https://example.com/", "https://example.com/abs"}, pageURLs(res))
}

func TestCrawlCanceledBeforeStart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &siteFetcher{pages: map[string]string{"https://example.com/": linkPage()}}
	res, err := newTestOrchestrator(f).Crawl(ctx, CrawlRequest{URL: "https://example.com/", Limit: 3})
	require.NoError(t, err)
	require.Empty(t, res.Pages)
}

func TestCrawlCanceledMidwayReturnsPartialResults(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := &siteFetcher{pages: map[string]string{
		"https://example.com/":  linkPage("/a", "/b"),
		"https://example.com/a": linkPage(),
		"https://example.com/b": linkPage(),
	}}
	f.onFetch = func(string) { cancel() }

	res, err := newTestOrchestrator(f).Crawl(ctx, CrawlRequest{
		URL: "https://example.com/", Limit: 10, MaxDepth: 1, FollowRelative: true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"https://example.com/"}, pageURLs(res))
}

func TestCrawlRejectsInvalidRequests(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(&siteFetcher{})
	cases := []CrawlRequest{
		{URL: "ftp://example.com/", Limit: 1},
		{URL: "not a url", Limit: 1},
		{URL: "https://example.com/", Limit: 0},
		{URL: "https://example.com/", Limit: 1, MaxDepth: -1},
	}
	for _, req := range cases {
		_, err := o.Crawl(context.Background(), req)
		require.ErrorIs(t, err, ErrInvalidRequest, "request %+v", req)
	}
}

func TestConvertSinglePage(t *testing.T) {
	t.Parallel()

	f := &siteFetcher{pages: map[string]string{"https://example.com/doc": "<p>hi</p>"}}
	o := newTestOrchestrator(f)

	res, err := o.Convert(context.Background(), ConvertRequest{URL: "https://example.com/doc"})
	require.NoError(t, err)
	require.Equal(t, "# /doc", res.Markdown)

	_, err = o.Convert(context.Background(), ConvertRequest{URL: "https://example.com/nope"})
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusNotFound, StatusOf(err))

	_, err = o.Convert(context.Background(), ConvertRequest{URL: "javascript:alert(1)"})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestIsCanceled(t *testing.T) {
	t.Parallel()

	require.True(t, IsCanceled(context.Canceled))
	require.True(t, IsCanceled(errors.Join(errors.New("x"), context.DeadlineExceeded)))
	require.False(t, IsCanceled(errors.New("x")))
}

type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func TestCrawlStampsTimes(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := &stepClock{now: start, step: time.Second}
	f := &siteFetcher{pages: map[string]string{"https://example.com/": linkPage()}}
	o := New(f, pathConverter{}, fixedID("crawl-1"), Config{}, nil, WithClock(clk))

	res, err := o.Crawl(context.Background(), CrawlRequest{URL: "https://example.com", Limit: 1})
	require.NoError(t, err)
	require.Equal(t, start, res.StartedAt)
	require.Equal(t, start.Add(time.Second), res.FinishedAt)
}
