// Package memory provides a frontier implementation for local
// development and tests: a FIFO queue with fingerprint deduplication and
// a request budget. Production crawls are expected to plug in a real
// prioritization engine behind the frontier contract instead.
package memory

import (
	"sync"

	"go.uber.org/zap"

	"github.com/frontierkit/crawlsched/internal/frontier"
	"github.com/frontierkit/crawlsched/internal/request"
)

// Settings keys understood by the memory frontier.
const (
	// SettingMaxRequests caps how many requests the frontier hands out
	// before declaring the crawl finished. Zero means unlimited.
	SettingMaxRequests = "max_requests"
	// SettingMaxNextRequests bounds the batch size of GetNextRequests.
	SettingMaxNextRequests = "max_next_requests"
	// SettingAutoStart controls whether the frontier starts itself.
	SettingAutoStart = "auto_start"
)

const defaultBatchSize = 64

// Frontier is an in-memory FIFO frontier. Safe for concurrent use.
type Frontier struct {
	mu         sync.Mutex
	logger     *zap.Logger
	queue      []*request.Request
	seen       map[string]struct{}
	errorKinds map[string]int
	crawled    int
	iterations int
	returned   int

	maxRequests int
	batchSize   int
	autoStart   bool

	started bool
	stopped bool
	polled  bool
}

// New builds a Frontier from the opaque settings bundle.
func New(settings frontier.Settings, logger *zap.Logger) *Frontier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Frontier{
		logger:      logger,
		seen:        make(map[string]struct{}),
		errorKinds:  make(map[string]int),
		maxRequests: settings.Int(SettingMaxRequests, 0),
		batchSize:   settings.Int(SettingMaxNextRequests, defaultBatchSize),
		autoStart:   settings.Bool(SettingAutoStart, true),
	}
}

// AddSeeds appends unseen requests to the queue in order.
func (f *Frontier) AddSeeds(requests []*request.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range requests {
		f.admitLocked(req)
	}
}

// GetNextRequests pops up to one batch from the head of the queue. Each
// call counts as one frontier iteration.
func (f *Frontier) GetNextRequests() []*request.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finishedLocked() {
		return nil
	}
	f.iterations++
	f.polled = true

	n := f.batchSize
	if f.maxRequests > 0 && f.maxRequests-f.returned < n {
		n = f.maxRequests - f.returned
	}
	if n > len(f.queue) {
		n = len(f.queue)
	}
	if n <= 0 {
		return nil
	}
	batch := make([]*request.Request, n)
	copy(batch, f.queue[:n])
	f.queue = f.queue[n:]
	f.returned += n
	return batch
}

// PageCrawled records the fetch and admits extracted links for
// dispatch, deduplicated against everything seen so far.
func (f *Frontier) PageCrawled(response *request.Response, links []*request.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.crawled++
	for _, link := range links {
		f.admitLocked(link)
	}
	f.logger.Debug("page crawled",
		zap.String("url", response.Request.URL),
		zap.Int("status", response.StatusCode),
		zap.Int("links", len(links)),
	)
}

// RequestError tallies the failure by kind.
func (f *Frontier) RequestError(req *request.Request, errorKind string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errorKinds[errorKind]++
	f.logger.Debug("request error",
		zap.String("url", req.URL),
		zap.String("kind", errorKind),
	)
}

// Start marks the frontier ready to hand out requests.
func (f *Frontier) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
	f.logger.Info("memory frontier started")
}

// Stop terminates the frontier; subsequent polls return nothing.
func (f *Frontier) Stop(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	f.logger.Info("memory frontier stopped", zap.String("reason", reason))
}

// Finished reports whether the frontier has no more work to hand out.
// Beyond an explicit Stop or an exhausted request budget, the frontier
// is finished once it has been polled and its queue is empty; new links
// reported via PageCrawled reopen it.
func (f *Frontier) Finished() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finishedLocked()
}

// Iterations returns how many times the frontier was polled.
func (f *Frontier) Iterations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.iterations
}

// AutoStart reports whether the frontier starts without an explicit
// Start signal.
func (f *Frontier) AutoStart() bool {
	return f.autoStart
}

// CrawledPages returns how many successful fetches were reported.
func (f *Frontier) CrawledPages() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.crawled
}

// ErrorCount returns how many failures of the given kind were reported.
func (f *Frontier) ErrorCount(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errorKinds[kind]
}

func (f *Frontier) admitLocked(req *request.Request) {
	fp := req.Fingerprint()
	if _, dup := f.seen[fp]; dup {
		return
	}
	f.seen[fp] = struct{}{}
	f.queue = append(f.queue, req)
}

func (f *Frontier) finishedLocked() bool {
	if f.stopped {
		return true
	}
	if f.maxRequests > 0 && f.returned >= f.maxRequests {
		return true
	}
	return f.polled && len(f.queue) == 0
}
