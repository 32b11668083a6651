package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"profilecrawler/internal/app/frontier"
	"profilecrawler/internal/app/page"
	"profilecrawler/internal/usecase"

	"go.uber.org/zap"
)

const DefaultMaxLinks = 20

var (
	ErrWorkerFinished = errors.New("worker already finished, reseed it before running again")
	ErrWorkerRunning  = errors.New("worker is running")
)

// Worker crawls one seed: fetch, parse, enqueue, repeat until the frontier is
// empty, then hand the collected records to the sink.
// A Worker is not safe for concurrent use.
type Worker struct {
	seed     string
	host     string
	maxLinks int
	maxPages int

	frontier *frontier.Frontier
	crawled  []string
	records  []usecase.Record
	state    State

	fetcher usecase.Fetcher
	parser  usecase.Parser
	sink    usecase.Sink
	logger  *zap.Logger
}

type Option func(*Worker)

func WithMaxLinks(n int) Option {
	return func(w *Worker) {
		w.maxLinks = n
	}
}

// WithMaxPages stops the crawl after n pages. Zero means no limit.
func WithMaxPages(n int) Option {
	return func(w *Worker) {
		w.maxPages = n
	}
}

func WithParser(p usecase.Parser) Option {
	return func(w *Worker) {
		w.parser = p
	}
}

func NewWorker(seed string, f usecase.Fetcher, sink usecase.Sink, logger *zap.Logger, opts ...Option) *Worker {
	w := &Worker{
		maxLinks: DefaultMaxLinks,
		fetcher:  f,
		sink:     sink,
		logger:   logger,
	}
	for _, o := range opts {
		o(w)
	}
	if w.parser == nil {
		w.parser = page.NewParser(logger)
	}
	w.reset(seed)
	logger.Debug(fmt.Sprintf("new worker for %s, max links: %d", seed, w.maxLinks))
	return w
}

func (w *Worker) reset(seed string) {
	w.seed = seed
	w.host = ""
	if u, err := url.Parse(seed); err == nil {
		w.host = strings.ToLower(u.Hostname())
	}
	w.frontier = frontier.New(w.maxLinks, seed)
	w.crawled = nil
	w.records = nil
	w.state = StateInit
}

// Reseed puts a terminated worker back into INIT with a fresh frontier.
func (w *Worker) Reseed(seed string) error {
	if w.state == StateRunning {
		return ErrWorkerRunning
	}
	w.reset(seed)
	return nil
}

func (w *Worker) Seed() string { return w.seed }

func (w *Worker) State() State { return w.state }

func (w *Worker) MaxLinks() int { return w.maxLinks }

func (w *Worker) SetMaxLinks(n int) {
	w.maxLinks = n
	w.frontier.MaxLinks = n
}

// AddLinks enqueues targets and returns how many were added.
func (w *Worker) AddLinks(links ...string) int {
	return w.frontier.AddLinks(links...)
}

// ToCrawl returns the pending targets in processing order.
func (w *Worker) ToCrawl() []string { return w.frontier.Pending() }

func (w *Worker) Crawled() []string {
	out := make([]string, len(w.crawled))
	copy(out, w.crawled)
	return out
}

func (w *Worker) Records() []usecase.Record {
	out := make([]usecase.Record, len(w.records))
	copy(out, w.records)
	return out
}

func (w *Worker) ParseText(text string) usecase.ParseResult {
	return w.parser.Parse(text)
}

// Run crawls until the frontier drains, then ingests the records into the sink.
// Any fetch or ingest error ends the run and is returned unchanged.
func (w *Worker) Run(ctx context.Context) (Result, error) {
	if w.state != StateInit {
		return Result{}, ErrWorkerFinished
	}
	w.state = StateRunning
	w.logger.Info("worker started", zap.String("seed", w.seed))

	for w.frontier.Len() > 0 {
		if w.maxPages > 0 && len(w.crawled) >= w.maxPages {
			w.logger.Debug(fmt.Sprintf("max pages %d reached, %d targets left", w.maxPages, w.frontier.Len()))
			break
		}
		if err := ctx.Err(); err != nil {
			return w.fail(ctx, err)
		}
		if err := w.step(ctx); err != nil {
			return w.fail(ctx, err)
		}
	}

	w.logger.Info(fmt.Sprintf("crawl finished: %d pages, %d records", len(w.crawled), len(w.records)))
	if err := w.sink.Ingest(ctx, w.Records()); err != nil {
		return w.fail(ctx, err)
	}
	w.state = StateDone
	return Result{Outcome: OutcomeSuccess, Records: w.Records()}, nil
}

func (w *Worker) step(ctx context.Context) error {
	target, _ := w.frontier.Dequeue()
	text, err := w.fetcher.Fetch(ctx, target)
	if err != nil {
		return err
	}
	res := w.ParseText(normalize(text))
	w.records = append(w.records, res.Records...)

	links := make([]string, 0, len(res.Links)+1)
	links = append(links, res.Links...)
	if res.NextPage != "" {
		links = append(links, res.NextPage)
	}
	added := w.frontier.AddLinks(w.sameSite(target, links)...)
	w.crawled = append(w.crawled, target)

	logMsg := fmt.Sprintf("url %s moved in crawled, %d records, %d new links", target, len(res.Records), added)
	w.logger.Debug(logMsg)
	return nil
}

func (w *Worker) fail(ctx context.Context, err error) (Result, error) {
	w.state = StateFailed
	outcome := classify(ctx, err)
	w.logger.Error("worker failed",
		zap.String("seed", w.seed),
		zap.Stringer("outcome", outcome),
		zap.Int("crawled", len(w.crawled)),
		zap.Int("to_crawl", w.frontier.Len()),
		zap.Error(err))
	return Result{Outcome: outcome, Records: w.Records(), Err: err}, err
}

// sameSite resolves links against base and keeps the ones on the seed's host.
func (w *Worker) sameSite(base string, links []string) []string {
	b, err := url.Parse(base)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(links))
	for _, l := range links {
		u, err := url.Parse(l)
		if err != nil {
			w.logger.Warn(fmt.Sprintf("%s is not a valid link", l))
			continue
		}
		u = b.ResolveReference(u)
		u.Fragment = ""
		if u.Scheme != "http" && u.Scheme != "https" {
			continue
		}
		if strings.ToLower(u.Hostname()) != w.host {
			continue
		}
		out = append(out, u.String())
	}
	return out
}

// normalize is the caller-side newline normalization the parser expects.
func normalize(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
}
