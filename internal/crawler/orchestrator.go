package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/mdcrawler/internal/metrics"
)

// DefaultWorkers is the number of pages fetched in parallel per batch.
const DefaultWorkers = 6

// Config tunes the orchestrator.
type Config struct {
	Workers      int
	MaxURLLength int
}

// Orchestrator composes a Fetcher and a Converter into single-page
// conversion and bounded breadth-first crawls.
type Orchestrator struct {
	fetcher   Fetcher
	converter Converter
	idGen     IDGenerator
	cfg       Config
	clock     Clock
	logger    *zap.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithClock sets the time source used to stamp crawl results.
func WithClock(c Clock) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.clock = c
		}
	}
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now().UTC() }

// New builds an Orchestrator. idGen and logger may be nil.
func New(fetcher Fetcher, converter Converter, idGen IDGenerator, cfg Config, logger *zap.Logger, opts ...Option) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.MaxURLLength <= 0 {
		cfg.MaxURLLength = DefaultMaxURLLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	o := &Orchestrator{
		fetcher:   fetcher,
		converter: converter,
		idGen:     idGen,
		cfg:       cfg,
		clock:     wallClock{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Convert fetches one page and converts it.
func (o *Orchestrator) Convert(ctx context.Context, req ConvertRequest) (ConversionResult, error) {
	target, err := ValidateTargetURL(req.URL)
	if err != nil {
		return ConversionResult{}, err
	}
	page, err := o.visit(ctx, target.String(), req.Config, nil)
	if err != nil {
		metrics.ObservePage(target.String(), "failed")
		return ConversionResult{}, err
	}
	metrics.ObservePage(target.String(), "converted")
	return page.result, nil
}

// Crawl runs a breadth-first traversal from req.URL. Only a failure of the
// start page is returned as an error; cancellation returns what was
// collected so far.
func (o *Orchestrator) Crawl(ctx context.Context, req CrawlRequest) (CrawlResult, error) {
	start, err := validateCrawl(req)
	if err != nil {
		return CrawlResult{}, err
	}
	startURL := normalize(start)
	result := CrawlResult{ID: o.newID(), StartedAt: o.clock.Now()}
	logger := o.logger.With(zap.String("crawl_id", result.ID), zap.String("start_url", startURL))
	logger.Info("crawl started",
		zap.Int("limit", req.Limit),
		zap.Int("max_depth", req.MaxDepth),
		zap.Bool("follow_relative", req.FollowRelative),
	)

	rules := linkRules{start: start, followRelative: req.FollowRelative, maxURLLength: o.cfg.MaxURLLength}
	state := newCrawlState(startURL)
	for state.pending() > 0 && state.fetched < req.Limit {
		if ctx.Err() != nil {
			break
		}
		batch := state.dequeue(min(o.cfg.Workers, req.Limit-state.fetched))
		visits := o.visitBatch(ctx, batch, req, rules)
		for i, entry := range batch {
			v := visits[i]
			if v.err != nil {
				metrics.ObservePage(entry.URL, "failed")
				if entry.Depth == 0 && ctx.Err() == nil {
					metrics.ObserveCrawl("failed")
					logger.Warn("start page unreachable", zap.Error(v.err))
					return CrawlResult{ID: result.ID, StartedAt: result.StartedAt, FinishedAt: o.clock.Now()}, &StartPageUnreachableError{URL: entry.URL, Err: v.err}
				}
				logger.Debug("page skipped", zap.String("url", entry.URL), zap.Int("depth", entry.Depth), zap.Error(v.err))
				continue
			}
			metrics.ObservePage(entry.URL, "converted")
			state.record(Page{URL: entry.URL, Depth: entry.Depth, Result: v.result})
			if entry.Depth < req.MaxDepth {
				for _, link := range v.links {
					state.enqueue(FrontierEntry{URL: link, Depth: entry.Depth + 1})
				}
			}
		}
	}

	result.Pages = state.pages
	result.FinishedAt = o.clock.Now()
	outcome := "succeeded"
	if ctx.Err() != nil {
		outcome = "canceled"
	}
	metrics.ObserveCrawl(outcome)
	logger.Info("crawl finished",
		zap.String("outcome", outcome),
		zap.Int("pages", len(result.Pages)),
		zap.Int("discovered", len(state.visited)),
		zap.Duration("duration", result.FinishedAt.Sub(result.StartedAt)),
	)
	return result, nil
}

type visitResult struct {
	result ConversionResult
	links  []string
	err    error
}

func (o *Orchestrator) visitBatch(ctx context.Context, batch []FrontierEntry, req CrawlRequest, rules linkRules) []visitResult {
	visits := make([]visitResult, len(batch))
	var g errgroup.Group
	g.SetLimit(o.cfg.Workers)
	for i, entry := range batch {
		g.Go(func() error {
			var linkRulesForPage *linkRules
			if entry.Depth < req.MaxDepth {
				linkRulesForPage = &rules
			}
			page, err := o.visit(ctx, entry.URL, req.Config, linkRulesForPage)
			visits[i] = visitResult{result: page.result, links: page.links, err: err}
			return nil
		})
	}
	_ = g.Wait() // visits never return errors; failures live in visitResult.
	return visits
}

type visitedPage struct {
	result ConversionResult
	links  []string
}

// visit fetches, parses and converts one page. Links are extracted before
// conversion because the converter may detach nodes while cleaning.
func (o *Orchestrator) visit(ctx context.Context, rawURL string, cfg ConvertConfig, rules *linkRules) (visitedPage, error) {
	outcome, err := o.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return visitedPage{}, err
	}
	doc, err := parseDocument(outcome)
	if err != nil {
		return visitedPage{}, err
	}
	pageURL, err := url.Parse(outcome.URL)
	if err != nil || outcome.URL == "" {
		pageURL, _ = url.Parse(rawURL)
	}
	var page visitedPage
	if rules != nil {
		page.links = extractLinks(doc, pageURL, *rules)
	}
	page.result = o.converter.Convert(doc, pageURL, cfg)
	return page, nil
}

func parseDocument(outcome FetchOutcome) (*html.Node, error) {
	reader, err := charset.NewReader(bytes.NewReader(outcome.Body), outcome.ContentType)
	if err != nil {
		reader = bytes.NewReader(outcome.Body)
	}
	doc, err := html.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

func (o *Orchestrator) newID() string {
	if o.idGen == nil {
		return ""
	}
	id, err := o.idGen.NewID()
	if err != nil {
		o.logger.Warn("crawl id generation failed", zap.Error(err))
		return ""
	}
	return id
}

func validateCrawl(req CrawlRequest) (*url.URL, error) {
	start, err := ValidateTargetURL(req.URL)
	if err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be > 0", ErrInvalidRequest)
	}
	if req.MaxDepth < 0 {
		return nil, fmt.Errorf("%w: max_depth must be >= 0", ErrInvalidRequest)
	}
	return start, nil
}

// IsCanceled reports whether err stems from context cancellation or deadline.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
