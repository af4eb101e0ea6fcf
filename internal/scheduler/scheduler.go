// Package scheduler decides which crawl requests reach the downloader
// and reports their outcomes back to the frontier. It admits fresh and
// redirected requests, keeps a bounded lookahead of ready requests, and
// never pulls more from the frontier than the downloader can currently
// absorb.
package scheduler

import (
	"errors"

	"go.uber.org/zap"

	"github.com/frontierkit/crawlsched/internal/downloader"
	"github.com/frontierkit/crawlsched/internal/frontier"
	"github.com/frontierkit/crawlsched/internal/request"
	"github.com/frontierkit/crawlsched/internal/stats"
)

// Config holds the scheduler's own knobs. The frontier settings bundle
// is handed to the frontier at construction, not interpreted here.
type Config struct {
	// RedirectEnabled admits redirect continuations into the pending
	// buffer. When false they are rejected outright.
	RedirectEnabled bool
}

// Scheduler sits between the frontier and the downloader.
//
// All methods must be called from a single host-engine goroutine
// between Start and Stop; the scheduler does no locking of its own.
type Scheduler struct {
	frontier frontier.Frontier
	capacity downloader.CapacitySource
	stats    *StatsRecorder
	cfg      Config
	logger   *zap.Logger
	pending  pendingBuffer
}

// New wires a Scheduler to its collaborators.
func New(
	fr frontier.Frontier,
	capacity downloader.CapacitySource,
	sink stats.Sink,
	cfg Config,
	logger *zap.Logger,
) (*Scheduler, error) {
	if fr == nil {
		return nil, errors.New("frontier is required")
	}
	if capacity == nil {
		return nil, errors.New("capacity source is required")
	}
	recorder, err := NewStatsRecorder(sink)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		frontier: fr,
		capacity: capacity,
		stats:    recorder,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Start begins a crawl and, unless the frontier starts itself, signals
// it to begin.
func (s *Scheduler) Start() {
	s.logger.Info("starting frontier")
	if !s.frontier.AutoStart() {
		s.frontier.Start()
	}
}

// Stop signals the frontier, flushes final stats and discards any
// requests still buffered. Buffered work is dropped, not returned to
// the frontier. Terminal for this Scheduler instance.
func (s *Scheduler) Stop(reason string) {
	s.logger.Info("finishing frontier", zap.String("reason", reason))
	s.frontier.Stop(reason)
	s.stats.SetIterations(s.frontier.Iterations())
	s.stats.SetPending(s.pending.size())
	s.pending.reset()
}

// Admit routes an incoming request. Fresh requests go to the frontier
// as seeds. Redirect continuations are in-flight work the downloader
// has already committed to, so they skip prioritization and join the
// pending buffer for eager dispatch. Admit returns false only for a
// redirect continuation while redirects are disabled; the caller should
// treat that request as dropped.
func (s *Scheduler) Admit(req *request.Request) bool {
	switch {
	case !req.Redirected():
		s.frontier.AddSeeds([]*request.Request{req})
		s.stats.AddSeeds(1)
		return true
	case s.cfg.RedirectEnabled:
		s.pending.push(req)
		s.stats.AddRedirected(1)
		return true
	default:
		return false
	}
}

// Next returns the next request to dispatch, or nil when nothing is
// ready. The buffer refills from the frontier only while the frontier
// is not finished and the buffer holds fewer requests than the
// downloader can currently absorb; refill batches append behind any
// buffered redirect continuations.
func (s *Scheduler) Next() *request.Request {
	if !s.frontier.Finished() && s.pending.size() < s.capacity.Available() {
		for _, req := range s.frontier.GetNextRequests() {
			s.pending.push(req)
		}
	}
	req := s.pending.pop()
	if req != nil {
		s.stats.AddReturned(1)
	}
	return req
}

// ReportSuccess forwards a fetched page and its extracted links to the
// frontier for prioritization.
func (s *Scheduler) ReportSuccess(resp *request.Response, links []*request.Request) {
	s.frontier.PageCrawled(resp, links)
	s.stats.AddCrawledPage(resp.StatusCode, len(links))
}

// ReportFailure classifies the failure and reports it to the frontier.
// Classification is total, so reporting never blocks on an
// unclassifiable failure.
func (s *Scheduler) ReportFailure(req *request.Request, failure error) {
	kind := ErrorKind(failure)
	s.frontier.RequestError(req, kind)
	s.stats.AddError(kind)
}

// HasPending reports whether the buffer holds undispatched requests.
func (s *Scheduler) HasPending() bool {
	return s.pending.size() > 0
}

// Size returns the number of buffered requests.
func (s *Scheduler) Size() int {
	return s.pending.size()
}
