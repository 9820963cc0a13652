package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/mdcrawler/internal/crawler"
	"github.com/JakeFAU/mdcrawler/internal/hash/sha256"
)

const usageText = "Usage: \n" +
	"GET /{URL} (e.g., /https://example.com)\n" +
	"POST / { \"url\": \"https://example.com\", \"config\": {...} }\n" +
	"POST /crawl { \"url\": \"...\", \"limit\": N, \"max_depth\": N, ... }"

const emptyCrawlText = "Crawl completed, but no results were generated."

type convertRequest struct {
	URL    string                `json:"url"`
	Config crawler.ConvertConfig `json:"config"`
}

type crawlRequest struct {
	URL            string                `json:"url"`
	Limit          *int                  `json:"limit"`
	MaxDepth       *int                  `json:"max_depth"`
	FollowRelative bool                  `json:"follow_relative"`
	Config         crawler.ConvertConfig `json:"config"`
}

func (s *Server) usage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeText(w, http.StatusOK, usageText)
}

// convertPath handles GET /{http(s)://target}. Proxies that merge slashes
// leave "https:/host", so a single slash after the scheme is repaired.
func (s *Server) convertPath(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimPrefix(r.URL.Path, "/")
	for _, scheme := range []string{"http:", "https:"} {
		rest, ok := strings.CutPrefix(target, scheme)
		if !ok {
			continue
		}
		if !strings.HasPrefix(rest, "//") {
			target = scheme + "//" + strings.TrimPrefix(rest, "/")
		}
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		s.handleConvert(w, r, crawler.ConvertRequest{URL: target, Config: crawler.FullConvertConfig()})
		return
	}
	writeText(w, http.StatusNotFound, "Not Found")
}

func (s *Server) convert(w http.ResponseWriter, r *http.Request) {
	req := convertRequest{Config: crawler.DefaultConvertConfig()}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, fmt.Sprintf("Invalid request format: %v", err))
		return
	}
	if err := validateConvertConfig(req.Config); err != nil {
		writeText(w, http.StatusBadRequest, fmt.Sprintf("Invalid request format: %v", err))
		return
	}
	s.handleConvert(w, r, crawler.ConvertRequest{URL: req.URL, Config: req.Config})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request, req crawler.ConvertRequest) {
	ctx, cancel := withTimeout(r.Context(), s.cfg.RequestTimeout())
	defer cancel()

	res, err := s.service.Convert(ctx, req)
	if err != nil {
		status := statusFor(err)
		s.logger.Warn("conversion failed",
			zap.String("request_id", requestID(r.Context())),
			zap.String("url", req.URL),
			zap.Int("status", status),
			zap.Error(err),
		)
		writeText(w, status, fmt.Sprintf("Failed to fetch or convert URL '%s': %v", req.URL, err))
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeMarkdown(w, r, res.Markdown)
}

func (s *Server) crawl(w http.ResponseWriter, r *http.Request) {
	var payload crawlRequest
	payload.Config = crawler.DefaultConvertConfig()
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeText(w, http.StatusBadRequest, fmt.Sprintf("Invalid crawl request: %v", err))
		return
	}
	req, err := s.toCrawlRequest(payload)
	if err != nil {
		writeText(w, http.StatusBadRequest, fmt.Sprintf("Invalid crawl request: %v", err))
		return
	}

	ctx, cancel := withTimeout(r.Context(), s.cfg.CrawlTimeout())
	defer cancel()

	res, err := s.service.Crawl(ctx, req)
	if err != nil {
		status := statusFor(err)
		s.logger.Warn("crawl failed",
			zap.String("request_id", requestID(r.Context())),
			zap.String("url", req.URL),
			zap.Int("status", status),
			zap.Error(err),
		)
		writeText(w, status, fmt.Sprintf("Crawl failed: %v", err))
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	if len(res.Pages) == 0 {
		writeText(w, http.StatusOK, emptyCrawlText)
		return
	}
	w.Header().Set("X-Crawl-ID", res.ID)
	writeMarkdown(w, r, res.Markdown())
}

func (s *Server) toCrawlRequest(p crawlRequest) (crawler.CrawlRequest, error) {
	if p.Limit == nil {
		return crawler.CrawlRequest{}, errors.New("missing field `limit`")
	}
	if p.MaxDepth == nil {
		return crawler.CrawlRequest{}, errors.New("missing field `max_depth`")
	}
	if *p.Limit <= 0 {
		return crawler.CrawlRequest{}, errors.New("limit must be > 0")
	}
	if ceiling := s.cfg.Crawl.MaxLimit; ceiling > 0 && *p.Limit > ceiling {
		return crawler.CrawlRequest{}, fmt.Errorf("limit must be <= %d", ceiling)
	}
	if *p.MaxDepth < 0 {
		return crawler.CrawlRequest{}, errors.New("max_depth must be >= 0")
	}
	if err := validateConvertConfig(p.Config); err != nil {
		return crawler.CrawlRequest{}, err
	}
	return crawler.CrawlRequest{
		URL:            p.URL,
		Limit:          *p.Limit,
		MaxDepth:       *p.MaxDepth,
		FollowRelative: p.FollowRelative,
		Config:         p.Config,
	}, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func validateConvertConfig(cfg crawler.ConvertConfig) error {
	if cfg.MaxHeadingLevel < 1 || cfg.MaxHeadingLevel > 6 {
		return errors.New("max_heading_level must be within 1..6")
	}
	return nil
}

// statusFor maps service errors to HTTP statuses. Upstream 403, 404, 429 and
// 503 pass through; everything else is a 500.
func statusFor(err error) int {
	if errors.Is(err, crawler.ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	switch code := crawler.StatusOf(err); code {
	case http.StatusForbidden, http.StatusNotFound, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return code
	default:
		return http.StatusInternalServerError
	}
}

// writeMarkdown sends body with a content ETag and answers a matching
// If-None-Match with 304.
func writeMarkdown(w http.ResponseWriter, r *http.Request, body string) {
	data := []byte(body)
	tag := sha256.ETag(data)
	w.Header().Set("ETag", tag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == tag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		zap.L().Error("write markdown failed", zap.Error(err))
	}
}
