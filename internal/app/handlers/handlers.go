package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"profilecrawler/config"
	"profilecrawler/internal/app/crawler"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WorkerFactory builds an independent worker for one seed.
type WorkerFactory func(seed string) *crawler.Worker

type Summary struct {
	mu        sync.Mutex
	Delivered map[string]int // seed -> delivered records
	Failed    map[string]error
}

func (s *Summary) delivered(seed string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Delivered[seed] = n
}

func (s *Summary) failed(seed string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failed[seed] = err
}

// ProcessSeeds runs one worker per configured seed, at most cfg.Concurrency at a time.
// Transport failures are retried up to cfg.MaxRetries times, remote rejections are not.
// The returned error is non-nil only when ctx ends before every seed was handled.
func ProcessSeeds(ctx context.Context, cfg *config.Config, newWorker WorkerFactory, logger *zap.Logger) (*Summary, error) {
	sum := &Summary{
		Delivered: make(map[string]int),
		Failed:    make(map[string]error),
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for _, seed := range cfg.Seeds {
		seed := seed
		g.Go(func() error {
			return processSeed(gctx, seed, newWorker(seed), cfg, sum, logger)
		})
	}
	err := g.Wait()
	return sum, err
}

func processSeed(ctx context.Context, seed string, w *crawler.Worker, cfg *config.Config, sum *Summary, logger *zap.Logger) error {
	attempts := 0
	var res crawler.Result
	run := func() error {
		if attempts > 0 {
			if err := w.Reseed(seed); err != nil {
				return backoff.Permanent(err)
			}
		}
		attempts++
		var err error
		res, err = w.Run(ctx)
		switch res.Outcome {
		case crawler.OutcomeSuccess:
			return nil
		case crawler.OutcomeRemoteRejection, crawler.OutcomeCanceled:
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, delay time.Duration) {
		logger.Warn("transport failure, retrying",
			zap.String("seed", seed),
			zap.Int("attempt", attempts),
			zap.Duration("delay", delay),
			zap.Error(err))
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(cfg.Backoff()), uint64(cfg.MaxRetries)), ctx)
	err := backoff.RetryNotify(run, policy, notify)

	switch {
	case err == nil:
		logger.Info(fmt.Sprintf("crawler result: [seed: %s] records: %d", seed, len(res.Records)))
		sum.delivered(seed, len(res.Records))
		return nil
	case res.Outcome == crawler.OutcomeRemoteRejection:
		logger.Error("remote rejected crawl, not retrying", zap.String("seed", seed), zap.Error(err))
		sum.failed(seed, err)
		return nil
	case res.Outcome == crawler.OutcomeCanceled, ctx.Err() != nil:
		sum.failed(seed, err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	default:
		logger.Error(fmt.Sprintf("seed %s failed after %d attempts", seed, attempts), zap.Error(err))
		sum.failed(seed, err)
		return nil
	}
}
