// Package engine runs the host control loop that drives the scheduler.
// The loop owns the scheduler outright: fetches run concurrently, but
// every scheduler call happens on the Run goroutine, with outcomes
// delivered back over a channel.
package engine

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/frontierkit/crawlsched/internal/downloader"
	"github.com/frontierkit/crawlsched/internal/fetch"
	"github.com/frontierkit/crawlsched/internal/frontier"
	"github.com/frontierkit/crawlsched/internal/request"
	"github.com/frontierkit/crawlsched/internal/scheduler"
)

// Config controls the engine loop.
type Config struct {
	// PollInterval is how long the loop idles when the scheduler has
	// nothing ready but work remains in flight or upstream.
	PollInterval time.Duration
	// MaxRedirectTimes caps redirect chains before a request is failed
	// with a TooManyRedirects error kind.
	MaxRedirectTimes int
}

const (
	defaultPollInterval     = 100 * time.Millisecond
	defaultMaxRedirectTimes = 20

	tooManyRedirectsKind = "TooManyRedirects"
)

type outcome struct {
	req  *request.Request
	resp *request.Response
	err  error
}

// Engine dispatches scheduler requests to a fetcher within the slot
// budget and feeds outcomes back as successes, redirects or failures.
type Engine struct {
	sched    *scheduler.Scheduler
	fr       frontier.Frontier
	fetcher  fetch.Fetcher
	slots    *downloader.Slots
	cfg      Config
	logger   *zap.Logger
	runID    string
	results  chan outcome
	inFlight int
}

// New wires an Engine; the scheduler must have been built against the
// same frontier and slot tracker.
func New(
	sched *scheduler.Scheduler,
	fr frontier.Frontier,
	fetcher fetch.Fetcher,
	slots *downloader.Slots,
	cfg Config,
	logger *zap.Logger,
) *Engine {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxRedirectTimes <= 0 {
		cfg.MaxRedirectTimes = defaultMaxRedirectTimes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		sched:   sched,
		fr:      fr,
		fetcher: fetcher,
		slots:   slots,
		cfg:     cfg,
		logger:  logger,
		runID:   uuid.NewString(),
		results: make(chan outcome, slots.Total()),
	}
}

// RunID identifies this crawl run in logs and summaries.
func (e *Engine) RunID() string {
	return e.runID
}

// Run admits the seeds and dispatches until the crawl drains or ctx is
// canceled. On cancelation in-flight fetches are awaited and their
// outcomes dropped along with the scheduler's buffered requests.
func (e *Engine) Run(ctx context.Context, seeds []*request.Request) error {
	e.logger.Info("crawl run starting",
		zap.String("run_id", e.runID),
		zap.Int("seeds", len(seeds)),
		zap.Int("concurrency", e.slots.Total()),
	)
	e.sched.Start()

	for _, seed := range seeds {
		if !e.sched.Admit(seed) {
			e.logger.Warn("seed rejected", zap.String("url", seed.URL))
		}
	}

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.drain()
			e.sched.Stop("shutdown")
			return ctx.Err()
		default:
		}
		dispatched := e.dispatch(ctx)
		if e.inFlight == 0 && dispatched == 0 && !e.sched.HasPending() {
			break
		}
		select {
		case <-ctx.Done():
			e.drain()
			e.sched.Stop("shutdown")
			return ctx.Err()
		case out := <-e.results:
			e.finish(out)
		case <-ticker.C:
		}
	}

	e.sched.Stop("finished")
	e.logger.Info("crawl run finished", zap.String("run_id", e.runID))
	return nil
}

// dispatch pulls from the scheduler while slots are free, returning the
// number of fetches launched.
func (e *Engine) dispatch(ctx context.Context) int {
	launched := 0
	for e.slots.Available() > 0 {
		req := e.sched.Next()
		if req == nil {
			break
		}
		if !e.slots.Acquire() {
			break
		}
		e.inFlight++
		launched++
		go e.crawl(ctx, req)
	}
	return launched
}

func (e *Engine) crawl(ctx context.Context, req *request.Request) {
	resp, err := e.fetcher.Fetch(ctx, req)
	e.results <- outcome{req: req, resp: resp, err: err}
}

func (e *Engine) finish(out outcome) {
	e.slots.Release()
	e.inFlight--
	switch {
	case out.err != nil:
		e.sched.ReportFailure(out.req, out.err)
	case out.resp.Redirect():
		e.followRedirect(out)
	default:
		links := fetch.ExtractLinks(out.resp)
		e.sched.ReportSuccess(out.resp, links)
	}
}

// followRedirect reports the hop and admits its continuation. The hop
// itself counts as a crawled page so per-status counters line up with
// what the downloader actually saw.
func (e *Engine) followRedirect(out outcome) {
	location, ok := resolveLocation(out.req, out.resp)
	if !ok {
		e.sched.ReportFailure(out.req, &scheduler.Error{Kind: scheduler.FallbackKind})
		return
	}
	next := out.req.Continuation(location)
	if next.RedirectTimes > e.cfg.MaxRedirectTimes {
		e.sched.ReportFailure(out.req, &scheduler.Error{Kind: tooManyRedirectsKind})
		return
	}
	e.sched.ReportSuccess(out.resp, nil)
	if !e.sched.Admit(next) {
		e.logger.Debug("redirect continuation dropped",
			zap.String("url", next.URL),
			zap.Int("redirect_times", next.RedirectTimes),
		)
	}
}

// drain awaits outstanding fetches after cancelation; their outcomes
// are discarded.
func (e *Engine) drain() {
	for e.inFlight > 0 {
		<-e.results
		e.slots.Release()
		e.inFlight--
	}
}

func resolveLocation(req *request.Request, resp *request.Response) (string, bool) {
	base, err := url.Parse(req.URL)
	if err != nil {
		return "", false
	}
	target, err := base.Parse(resp.Location())
	if err != nil {
		return "", false
	}
	return target.String(), true
}
