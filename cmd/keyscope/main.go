package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/keyscope/pkg/catalog"
	"github.com/umputun/keyscope/pkg/config"
	"github.com/umputun/keyscope/pkg/content"
	"github.com/umputun/keyscope/pkg/domain"
	"github.com/umputun/keyscope/pkg/llm"
	"github.com/umputun/keyscope/pkg/metrics"
	"github.com/umputun/keyscope/pkg/report"
	"github.com/umputun/keyscope/pkg/repository"
	"github.com/umputun/keyscope/pkg/scheduler"
	"github.com/umputun/keyscope/server"
)

// Opts with all CLI options
type Opts struct {
	Config     string `short:"f" long:"config" env:"CONFIG" default:"keyscope.yml" description:"config file"`
	MaxItems   int    `long:"max-items" env:"MAX_ITEMS" description:"limit catalog entries, overrides config"`
	Precrawl   bool   `long:"precrawl" description:"fetch and cache catalog pages, skip extraction"`
	ForceCrawl bool   `long:"force-crawl" description:"refresh cached pages"`
	Listen     string `short:"l" long:"listen" env:"LISTEN" description:"expose the status API on this address"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)

	log.Printf("[INFO] starting keyscope version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] run failed: %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

// run executes the full pipeline: catalog ingest, page enrichment and, unless
// pre-crawl mode is on, scheduled extraction with reports at the end.
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// re-setup with provider keys masked in output
	setupLog(opts.Debug, opts.NoColor, cfg.ProviderKeys()...)

	if opts.MaxItems > 0 {
		cfg.Catalog.MaxItems = opts.MaxItems
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
		cfg.Server.Enabled = true
	}

	// fail before any crawling, pre-crawl is the only keyless mode
	if !opts.Precrawl && len(cfg.ActiveProviders()) == 0 {
		return fmt.Errorf("no active providers configured, set api keys in %s", opts.Config)
	}

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			log.Printf("[WARN] database close failed: %v", err)
		}
	}()

	items, err := loadItems(ctx, cfg, opts, repos)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		log.Printf("[WARN] no catalog entries matched the filters, nothing to do")
		return nil
	}

	if opts.Precrawl {
		count, err := repos.Page.CountPages(ctx)
		if err != nil {
			return fmt.Errorf("failed to count cached pages: %w", err)
		}
		log.Printf("[INFO] pre-crawl done, %d items processed, %d pages cached", len(items), count)
		return nil
	}

	return extract(ctx, cfg, opts, repos, items)
}

// loadItems reads the catalog CSV and enriches entries with page details
func loadItems(ctx context.Context, cfg *config.Config, opts Opts, repos *repository.Repositories) ([]domain.Item, error) {
	reader := catalog.NewReader(catalog.Config{
		NameColumn:   cfg.Catalog.NameColumn,
		URLColumn:    cfg.Catalog.URLColumn,
		AuditColumn:  cfg.Catalog.AuditColumn,
		PublicColumn: cfg.Catalog.PublicColumn,
		AuditValue:   cfg.Catalog.AuditValue,
		PublicValue:  cfg.Catalog.PublicValue,
		MaxItems:     cfg.Catalog.MaxItems,
	})
	items, err := reader.ReadFile(cfg.Catalog.File)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var fetcher catalog.PageFetcher = content.NewFetcher(cfg.Crawl.Timeout, cfg.Crawl.UserAgent)
	if cfg.Crawl.Headless {
		fetcher = content.NewRenderer(cfg.Crawl.Timeout, cfg.Crawl.UserAgent)
	}

	enricher := catalog.NewEnricher(catalog.EnricherParams{
		Fetcher:     fetcher,
		Extractor:   content.NewExtractor(cfg.Crawl.MaxTags, cfg.Crawl.MaxDescription),
		Cache:       repos.Page,
		Concurrency: cfg.Crawl.Concurrency,
		Delay:       cfg.Crawl.Delay,
		ForceCrawl:  opts.ForceCrawl,
	})
	items, err = enricher.Enrich(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("enrichment interrupted: %w", err)
	}
	return items, nil
}

// extract runs the scheduler over enriched items and writes reports
func extract(ctx context.Context, cfg *config.Config, opts Opts, repos *repository.Repositories, items []domain.Item) error {
	providers := cfg.ActiveProviders()
	extractors := make([]scheduler.Extractor, 0, len(providers))
	for _, p := range providers {
		extractors = append(extractors, llm.NewClient(p, cfg.Extraction))
	}
	tracker := llm.NewTracker(cfg.Extraction.ExclusionThreshold, cfg.Extraction.ExclusionLimit)
	m := metrics.New()

	runID, err := repos.Result.CreateRun(ctx)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	sched := scheduler.NewScheduler(extractors, tracker, repos.Result.ForRun(runID), m, scheduler.Config{
		RateLimitPause:  cfg.Extraction.RateLimitPause,
		RateLimitJitter: cfg.Extraction.RateLimitJitter,
		TransientPause:  cfg.Extraction.TransientPause,
	})

	if cfg.Server.Enabled {
		srv := server.New(cfg, sched, tracker, m.Handler(), revision, opts.Debug)
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Printf("[WARN] status server failed: %v", err)
			}
		}()
	}

	summary, err := sched.Run(ctx, items)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if err := repos.Result.FinishRun(ctx, runID, summary); err != nil {
		log.Printf("[WARN] can't store run summary: %v", err)
	}

	gen := report.NewGenerator(report.Config{
		Dir:         cfg.Report.Dir,
		RewriteHost: cfg.Report.RewriteHost,
		PromoteHost: cfg.Report.PromoteHost,
	})
	dir, err := gen.Generate(sched.Results(), summary)
	if err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}

	log.Printf("[INFO] extraction done in %s: %d attempted, %d succeeded, %d dropped, %d rerouted, %d keywords",
		summary.Duration().Round(time.Second), summary.Attempted, summary.Succeeded,
		summary.Dropped, summary.Rerouted, summary.Keywords)
	for _, ps := range summary.Providers {
		log.Printf("[INFO]   %s: %d ok, %d failed", ps.Name, ps.Succeeded, ps.Failed)
	}
	log.Printf("[INFO] reports in %s", dir)
	return nil
}

func setupLog(dbg, noColor bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}

	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
