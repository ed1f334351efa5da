package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/arbilens/backend/config"
	"github.com/arbilens/backend/internal/domain"
	"github.com/arbilens/backend/internal/infrastructure/cache"
	"github.com/arbilens/backend/internal/infrastructure/catalog"
	"github.com/arbilens/backend/internal/infrastructure/serpapi"
	"github.com/arbilens/backend/internal/logger"
	"github.com/arbilens/backend/internal/usecase"
	"github.com/sirupsen/logrus"
)

type options struct {
	in         string
	out        string
	apiKey     string
	profitable bool
}

func main() {
	var opts options
	flag.StringVar(&opts.in, "in", "", "Catalog CSV to research (required)")
	flag.StringVar(&opts.out, "out", "-", "Where to write the results CSV; - for stdout")
	flag.StringVar(&opts.apiKey, "key", "", "SerpApi key; overrides ARBILENS_SERPAPI_API_KEY")
	flag.BoolVar(&opts.profitable, "profitable", false, "Export only rows with positive net profit")
	flag.Parse()

	if opts.in == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// results may go to stdout, so logs always go to stderr unless a file is configured
	logFile := cfg.Logging.File
	if logFile == "" {
		logFile = "stderr"
	}
	log, err := logger.New(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       logFile,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, log); err != nil {
		log.WithError(err).Error("research failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, log logrus.FieldLogger) error {
	in, err := os.Open(opts.in)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer in.Close()

	rows, err := catalog.NewLoader(log).Load(in)
	if err != nil {
		return err
	}

	client := serpapi.NewClient(serpapi.Config{
		BaseURL:      cfg.SerpAPI.BaseURL,
		Engine:       cfg.SerpAPI.Engine,
		GoogleDomain: cfg.SerpAPI.GoogleDomain,
		Country:      cfg.SerpAPI.Country,
		Language:     cfg.SerpAPI.Language,
		Timeout:      cfg.SerpAPI.Timeout,
	}, log)

	fetcher := usecase.NewOfferFetcher(client, usecase.OfferFetcherConfig{
		ResultHint:        cfg.SerpAPI.ResultHint,
		TopN:              cfg.Research.TopN,
		ExcludedMerchants: cfg.Research.ExcludedMerchants,
	}, log)

	research := usecase.NewResearchService(
		cache.NewMemoryCache(),
		fetcher,
		usecase.NewCalculatorFromFloats(cfg.Pricing.BufferRate, cfg.Pricing.ReferralRate),
		client,
		usecase.ResearchServiceConfig{
			APIKey:      cfg.SerpAPI.APIKey,
			PacingDelay: cfg.Research.PacingDelay,
			MaxSessions: 1,
		},
		log,
	)

	session := research.Run(ctx, rows, usecase.RunOptions{
		APIKey: opts.apiKey,
		Sink:   newLogSink(log),
	})

	results := session.Results()
	if opts.profitable {
		results = session.ProfitableResults()
	}

	out, closeOut, err := openOutput(opts.out)
	if err != nil {
		return err
	}

	if err := catalog.WriteCSV(out, results); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}

	if session.Summary().Status == domain.BatchCancelled {
		return fmt.Errorf("batch cancelled after %d of %d rows", session.Summary().Processed, len(rows))
	}
	return nil
}

// openOutput returns the results writer and a closer whose error must be checked
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output: %w", err)
	}
	return f, f.Close, nil
}

// logSink reports batch progress through the logger
type logSink struct {
	log *logrus.Entry
}

func newLogSink(log logrus.FieldLogger) *logSink {
	return &logSink{log: logger.WithComponent(log, "cli")}
}

func (s *logSink) Progress(p domain.Progress, row domain.CatalogRow) {
	s.log.WithFields(logrus.Fields{
		"index": p.Index,
		"total": p.Total,
		"asin":  row.Identifier,
	}).Info("processed")
}

func (s *logSink) Done(summary domain.Summary) {
	s.log.WithFields(logrus.Fields{
		"status":     summary.Status,
		"profitable": summary.Profitable,
		"failures":   summary.Failures,
	}).Info(summary.Message)
}
