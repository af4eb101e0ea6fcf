package scheduler

import (
	"errors"
	"strconv"

	"github.com/frontierkit/crawlsched/internal/stats"
)

// StatsPrefix namespaces every counter the scheduler reports.
const StatsPrefix = "frontier"

// StatsRecorder counts scheduler events into a stats.Sink. It has no
// control-flow role; every operation is fire-and-forget.
//
// Counter paths it produces:
//
//	frontier/seeds_count
//	frontier/redirected_requests_count
//	frontier/returned_requests_count
//	frontier/crawled_pages_count
//	frontier/crawled_pages_count/<status>
//	frontier/links_extracted_count
//	frontier/request_errors_count
//	frontier/request_errors_count/<kind>
//	frontier/iterations
//	frontier/pending_requests_count
type StatsRecorder struct {
	sink   stats.Sink
	prefix string
}

// NewStatsRecorder builds a recorder over sink. A missing sink is a
// configuration error surfaced here, never at call time.
func NewStatsRecorder(sink stats.Sink) (*StatsRecorder, error) {
	if sink == nil {
		return nil, errors.New("stats sink is required")
	}
	return &StatsRecorder{sink: sink, prefix: StatsPrefix}, nil
}

// AddSeeds counts freshly admitted seed requests.
func (r *StatsRecorder) AddSeeds(count int64) {
	r.inc("seeds_count", count)
}

// AddCrawledPage counts a successful fetch, its status code and the
// number of links extracted from it.
func (r *StatsRecorder) AddCrawledPage(statusCode, links int) {
	r.inc("crawled_pages_count", 1)
	r.inc("crawled_pages_count/"+strconv.Itoa(statusCode), 1)
	r.inc("links_extracted_count", int64(links))
}

// AddRedirected counts admitted redirect continuations.
func (r *StatsRecorder) AddRedirected(count int64) {
	r.inc("redirected_requests_count", count)
}

// AddReturned counts requests handed to the downloader.
func (r *StatsRecorder) AddReturned(count int64) {
	r.inc("returned_requests_count", count)
}

// AddError counts a failed fetch and its error kind.
func (r *StatsRecorder) AddError(kind string) {
	r.inc("request_errors_count", 1)
	r.inc("request_errors_count/"+kind, 1)
}

// SetIterations records the frontier's iteration count.
func (r *StatsRecorder) SetIterations(n int) {
	r.set("iterations", int64(n))
}

// SetPending records the current pending-buffer size.
func (r *StatsRecorder) SetPending(n int) {
	r.set("pending_requests_count", int64(n))
}

func (r *StatsRecorder) inc(name string, amount int64) {
	r.sink.IncValue(r.prefix+"/"+name, amount)
}

func (r *StatsRecorder) set(name string, value int64) {
	r.sink.SetValue(r.prefix+"/"+name, value)
}
