package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/mdcrawler/internal/crawler"
	"github.com/JakeFAU/mdcrawler/internal/storage/local"
)

func newCrawlCmd(a *app) *cobra.Command {
	var (
		flags          convertFlags
		limit          int
		depth          int
		followRelative bool
		outDir         string
	)
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a site breadth-first and emit every page as Markdown",
		Long: `Crawls outward from the start URL, converting each page that loads.
Pages are printed joined by a horizontal rule, or written one file per page
beneath --out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.Crawl.DefaultLimit
			}
			if ceiling := a.cfg.Crawl.MaxLimit; ceiling > 0 && limit > ceiling {
				return fmt.Errorf("limit must be <= %d", ceiling)
			}
			req := crawler.CrawlRequest{
				URL:            args[0],
				Limit:          limit,
				MaxDepth:       depth,
				FollowRelative: followRelative,
				Config:         flags.apply(cmd, a.cfg.Convert),
			}
			return a.crawl(cmd, req, outDir)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of pages to fetch (default crawl.default_limit)")
	cmd.Flags().IntVar(&depth, "depth", 1, "maximum link distance from the start page")
	cmd.Flags().BoolVar(&followRelative, "follow-relative", false, "also follow relative links")
	cmd.Flags().StringVar(&outDir, "out", "", "write one Markdown file per page under this directory")
	return cmd
}

func (a *app) crawl(cmd *cobra.Command, req crawler.CrawlRequest, outDir string) error {
	var store *local.PageStore
	if outDir != "" {
		s, err := local.New(local.Config{BaseDir: outDir})
		if err != nil {
			return fmt.Errorf("open output directory: %w", err)
		}
		store = s
	}

	ctx, cancel := withTimeout(cmd.Context(), a.cfg.CrawlTimeout())
	defer cancel()

	res, err := a.orchestrator().Crawl(ctx, req)
	if err != nil {
		return fmt.Errorf("crawl %s: %w", req.URL, err)
	}
	a.logger.Info("crawl finished", zap.String("crawl_id", res.ID), zap.Int("pages", len(res.Pages)))

	if store == nil {
		if len(res.Pages) == 0 {
			return errors.New("crawl completed, but no results were generated")
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Markdown())
		return err
	}

	// Partial results from a timed-out crawl are still written.
	writeCtx := context.WithoutCancel(ctx)
	for _, page := range res.Pages {
		path, err := store.WritePage(writeCtx, page)
		if err != nil {
			return fmt.Errorf("write %s: %w", page.URL, err)
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), path); err != nil {
			return err
		}
	}
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
