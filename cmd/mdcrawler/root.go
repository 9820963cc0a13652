package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/mdcrawler/internal/clock/system"
	"github.com/JakeFAU/mdcrawler/internal/config"
	"github.com/JakeFAU/mdcrawler/internal/crawler"
	"github.com/JakeFAU/mdcrawler/internal/fetcher"
	collyfetcher "github.com/JakeFAU/mdcrawler/internal/fetcher/colly"
	"github.com/JakeFAU/mdcrawler/internal/fingerprint"
	"github.com/JakeFAU/mdcrawler/internal/id/uuid"
	"github.com/JakeFAU/mdcrawler/internal/logging"
	"github.com/JakeFAU/mdcrawler/internal/markdown"
	"github.com/JakeFAU/mdcrawler/internal/policy/ratelimit"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:          "mdcrawler",
		Short:        "Convert web pages and small site crawls to Markdown",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			a.close()
		},
	}
	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "path to a YAML config file")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newConvertCmd(a))
	cmd.AddCommand(newCrawlCmd(a))
	return cmd
}

func (a *app) init() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// orchestrator wires the fetch and conversion stack from configuration.
func (a *app) orchestrator() *crawler.Orchestrator {
	cfg := a.cfg

	fingerprints := fingerprint.NewSeeded()
	if seed := cfg.Fetch.RandomSeed; seed != 0 {
		fingerprints = fingerprint.New(rand.New(rand.NewPCG(seed, seed)))
	}

	transport := collyfetcher.New(collyfetcher.Config{
		Timeout:      cfg.FetchTimeout(),
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
	})
	limiter := ratelimit.New(ratelimit.Config{
		DefaultRPS:   cfg.Crawl.RequestsPerSecond,
		DefaultBurst: cfg.Crawl.Burst,
	})
	clock := system.New()
	resilient := fetcher.New(
		transport,
		fingerprints,
		cfg.RetryPolicy(),
		clock,
		fetcher.WithLimiter(limiter),
		fetcher.WithLogger(a.logger.Named("fetcher")),
	)

	return crawler.New(
		resilient,
		markdown.New(a.logger.Named("markdown")),
		uuid.New(),
		crawler.Config{Workers: cfg.Crawl.Workers, MaxURLLength: cfg.Crawl.MaxURLLength},
		a.logger.Named("crawler"),
		crawler.WithClock(clock),
	)
}
