package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"profilecrawler/config"
	"profilecrawler/internal/app/crawler"
	"profilecrawler/internal/app/handlers"
	"profilecrawler/internal/app/mothership"
	"profilecrawler/internal/app/requester"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	var configPath string
	flag.StringVar(&configPath, "config-path", "config/config.toml", "path to config file in .toml format")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "can't initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("can't read config file", zap.String("path", configPath), zap.Error(err))
		return 1
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", zap.Error(err))
		return 1
	}

	fetcher := requester.NewRequester(cfg.RequestTimeout(), logger, nil,
		requester.WithUserAgent(cfg.UserAgent),
		requester.WithMaxBodyBytes(cfg.MaxBodyBytes))
	sink := mothership.NewClient(cfg.MothershipURL, cfg.IngestTimeout(), logger, nil)
	maxPages := crawler.NewPageLimit(cfg.MaxPages)

	newWorker := func(seed string) *crawler.Worker {
		return crawler.NewWorker(seed, fetcher, sink.WithSource(seed), logger.With(zap.String("seed", seed)),
			crawler.WithMaxLinks(cfg.MaxLinks),
			crawler.WithMaxPages(maxPages.Load()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout()) // overall deadline
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sigUsr1Ch := make(chan os.Signal, 1)
	signal.Notify(sigUsr1Ch, syscall.SIGUSR1)
	defer signal.Stop(sigUsr1Ch)
	go watchPageLimit(ctx, sigUsr1Ch, maxPages, logger)

	sum, err := handlers.ProcessSeeds(ctx, cfg, newWorker, logger)
	if err != nil {
		logger.Info("crawl interrupted", zap.Error(err))
	}
	logger.Info(fmt.Sprintf("done: %d seeds delivered, %d failed", len(sum.Delivered), len(sum.Failed)))
	if len(sum.Failed) > 0 || err != nil {
		return 1
	}
	return 0
}

// watchPageLimit raises max pages by 2 for workers not yet started on every signal received.
func watchPageLimit(ctx context.Context, sig <-chan os.Signal, limit *crawler.PageLimit, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			logger.Debug("context done in page limit watcher")
			return
		case <-sig:
			n := limit.Inc(2)
			logger.Info(fmt.Sprintf("sigusr1 detected, new value of max pages: %d", n))
		}
	}
}
