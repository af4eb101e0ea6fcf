package scheduler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontierkit/crawlsched/internal/request"
	"github.com/frontierkit/crawlsched/internal/stats"
)

type crawledCall struct {
	resp  *request.Response
	links []*request.Request
}

type errorCall struct {
	req  *request.Request
	kind string
}

// fakeFrontier records every scheduler call and serves canned batches.
type fakeFrontier struct {
	seeds      [][]*request.Request
	batches    [][]*request.Request
	getCalls   int
	crawled    []crawledCall
	errs       []errorCall
	finished   bool
	autoStart  bool
	iterations int
	started    bool
	stopped    bool
	stopReason string
}

func (f *fakeFrontier) AddSeeds(requests []*request.Request) {
	f.seeds = append(f.seeds, requests)
}

func (f *fakeFrontier) GetNextRequests() []*request.Request {
	f.getCalls++
	if len(f.batches) == 0 {
		return nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch
}

func (f *fakeFrontier) PageCrawled(response *request.Response, links []*request.Request) {
	f.crawled = append(f.crawled, crawledCall{resp: response, links: links})
}

func (f *fakeFrontier) RequestError(req *request.Request, errorKind string) {
	f.errs = append(f.errs, errorCall{req: req, kind: errorKind})
}

func (f *fakeFrontier) Start()            { f.started = true }
func (f *fakeFrontier) Stop(reason string) { f.stopped, f.stopReason = true, reason }
func (f *fakeFrontier) Finished() bool    { return f.finished }
func (f *fakeFrontier) Iterations() int   { return f.iterations }
func (f *fakeFrontier) AutoStart() bool   { return f.autoStart }

// fixedCapacity is a CapacitySource that always reports the same value.
type fixedCapacity int

func (c fixedCapacity) Available() int { return int(c) }

func newTestScheduler(t *testing.T, fr *fakeFrontier, capacity int, redirectEnabled bool) (*Scheduler, *stats.MemorySink) {
	t.Helper()
	sink := stats.NewMemorySink()
	sched, err := New(fr, fixedCapacity(capacity), sink, Config{RedirectEnabled: redirectEnabled}, nil)
	require.NoError(t, err)
	return sched, sink
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	sink := stats.NewMemorySink()
	fr := &fakeFrontier{}

	_, err := New(nil, fixedCapacity(1), sink, Config{}, nil)
	assert.Error(t, err)

	_, err = New(fr, nil, sink, Config{}, nil)
	assert.Error(t, err)

	_, err = New(fr, fixedCapacity(1), nil, Config{}, nil)
	assert.Error(t, err)
}

func TestAdmitFreshSeed(t *testing.T) {
	t.Parallel()

	fr := &fakeFrontier{}
	sched, sink := newTestScheduler(t, fr, 4, true)

	req := request.New("http://example.com/")
	assert.True(t, sched.Admit(req))

	require.Len(t, fr.seeds, 1)
	require.Len(t, fr.seeds[0], 1)
	assert.Same(t, req, fr.seeds[0][0])
	assert.Equal(t, int64(1), sink.Value("frontier/seeds_count"))
	assert.Equal(t, 0, sched.Size())
}

func TestAdmitThreeSeeds(t *testing.T) {
	t.Parallel()

	fr := &fakeFrontier{}
	sched, sink := newTestScheduler(t, fr, 4, true)

	for _, u := range []string{"http://a.test/", "http://b.test/", "http://c.test/"} {
		assert.True(t, sched.Admit(request.New(u)))
	}

	require.Len(t, fr.seeds, 3)
	for _, call := range fr.seeds {
		assert.Len(t, call, 1)
	}
	assert.Equal(t, int64(3), sink.Value("frontier/seeds_count"))
}

func TestAdmitRedirectEnabled(t *testing.T) {
	t.Parallel()

	fr := &fakeFrontier{}
	sched, sink := newTestScheduler(t, fr, 4, true)

	hop := request.New("http://example.com/").Continuation("http://example.com/next")
	assert.True(t, sched.Admit(hop))

	assert.Empty(t, fr.seeds)
	assert.Equal(t, 1, sched.Size())
	assert.True(t, sched.HasPending())
	assert.Equal(t, int64(1), sink.Value("frontier/redirected_requests_count"))
}

func TestAdmitRedirectDisabled(t *testing.T) {
	t.Parallel()

	fr := &fakeFrontier{}
	sched, sink := newTestScheduler(t, fr, 4, false)

	hop := request.New("http://example.com/").Continuation("http://example.com/next")
	assert.False(t, sched.Admit(hop))

	// No observable state change of any kind.
	assert.Empty(t, fr.seeds)
	assert.Equal(t, 0, sched.Size())
	assert.Empty(t, sink.Snapshot())
}

func TestNextRefillsAndPopsFIFO(t *testing.T) {
	t.Parallel()

	a := request.New("http://a.test/")
	b := request.New("http://b.test/")
	c := request.New("http://c.test/")
	fr := &fakeFrontier{batches: [][]*request.Request{{a, b, c}}}
	sched, sink := newTestScheduler(t, fr, 2, true)

	// One refill batch may exceed capacity; it is a soft bound.
	got := sched.Next()
	assert.Same(t, a, got)
	assert.Equal(t, 2, sched.Size())
	assert.Equal(t, int64(1), sink.Value("frontier/returned_requests_count"))

	assert.Same(t, b, sched.Next())
	assert.Same(t, c, sched.Next())
	assert.Nil(t, sched.Next())
	assert.Equal(t, int64(3), sink.Value("frontier/returned_requests_count"))
}

func TestNextSkipsRefillWhenFinished(t *testing.T) {
	t.Parallel()

	fr := &fakeFrontier{
		finished: true,
		batches:  [][]*request.Request{{request.New("http://a.test/")}},
	}
	sched, sink := newTestScheduler(t, fr, 4, true)

	assert.Nil(t, sched.Next())
	assert.Equal(t, 0, fr.getCalls)
	assert.Equal(t, int64(0), sink.Value("frontier/returned_requests_count"))
}

func TestNextSkipsRefillAtCapacity(t *testing.T) {
	t.Parallel()

	hop := request.New("http://example.com/").Continuation("http://example.com/next")
	fr := &fakeFrontier{batches: [][]*request.Request{{request.New("http://a.test/")}}}
	sched, _ := newTestScheduler(t, fr, 1, true)

	require.True(t, sched.Admit(hop))

	// Buffer already holds as much as the downloader can absorb.
	assert.Same(t, hop, sched.Next())
	assert.Equal(t, 0, fr.getCalls)

	// With the buffer drained the next cycle pulls again.
	assert.NotNil(t, sched.Next())
	assert.Equal(t, 1, fr.getCalls)
}

func TestRedirectsDispatchAheadOfRefill(t *testing.T) {
	t.Parallel()

	a := request.New("http://a.test/")
	b := request.New("http://b.test/")
	fr := &fakeFrontier{batches: [][]*request.Request{{a, b}}}
	sched, _ := newTestScheduler(t, fr, 8, true)

	hop := request.New("http://example.com/").Continuation("http://example.com/next")
	require.True(t, sched.Admit(hop))

	assert.Same(t, hop, sched.Next())
	assert.Same(t, a, sched.Next())
	assert.Same(t, b, sched.Next())
}

func TestReportSuccess(t *testing.T) {
	t.Parallel()

	fr := &fakeFrontier{}
	sched, sink := newTestScheduler(t, fr, 4, true)

	req := request.New("http://example.com/")
	resp := &request.Response{Request: req, StatusCode: 200, Headers: http.Header{}}
	links := []*request.Request{request.New("http://a.test/"), request.New("http://b.test/")}

	sched.ReportSuccess(resp, links)

	require.Len(t, fr.crawled, 1)
	assert.Same(t, resp, fr.crawled[0].resp)
	assert.Len(t, fr.crawled[0].links, 2)
	assert.Equal(t, int64(1), sink.Value("frontier/crawled_pages_count"))
	assert.Equal(t, int64(1), sink.Value("frontier/crawled_pages_count/200"))
	assert.Equal(t, int64(2), sink.Value("frontier/links_extracted_count"))
}

func TestReportFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "classifiable", err: &Error{Kind: KindTimeout}, want: KindTimeout},
		{name: "unclassifiable", err: errors.New("mystery"), want: FallbackKind},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fr := &fakeFrontier{}
			sched, sink := newTestScheduler(t, fr, 4, true)
			req := request.New("http://example.com/")

			sched.ReportFailure(req, tc.err)

			require.Len(t, fr.errs, 1)
			assert.Same(t, req, fr.errs[0].req)
			assert.Equal(t, tc.want, fr.errs[0].kind)
			assert.Equal(t, int64(1), sink.Value("frontier/request_errors_count"))
			assert.Equal(t, int64(1), sink.Value("frontier/request_errors_count/"+tc.want))
		})
	}
}

func TestStartSignalsFrontier(t *testing.T) {
	t.Parallel()

	manual := &fakeFrontier{autoStart: false}
	sched, _ := newTestScheduler(t, manual, 4, true)
	sched.Start()
	assert.True(t, manual.started)

	auto := &fakeFrontier{autoStart: true}
	sched, _ = newTestScheduler(t, auto, 4, true)
	sched.Start()
	assert.False(t, auto.started)
}

func TestStopFlushesStatsAndDiscardsBuffer(t *testing.T) {
	t.Parallel()

	fr := &fakeFrontier{iterations: 7}
	sched, sink := newTestScheduler(t, fr, 4, true)

	base := request.New("http://example.com/")
	require.True(t, sched.Admit(base.Continuation("http://example.com/a")))
	require.True(t, sched.Admit(base.Continuation("http://example.com/b")))
	require.Equal(t, 2, sched.Size())

	sched.Stop("finished")

	assert.True(t, fr.stopped)
	assert.Equal(t, "finished", fr.stopReason)
	assert.Equal(t, int64(7), sink.Value("frontier/iterations"))
	assert.Equal(t, int64(2), sink.Value("frontier/pending_requests_count"))

	// Buffered-but-undispatched requests are dropped, not requeued.
	assert.Equal(t, 0, sched.Size())
	assert.False(t, sched.HasPending())
	assert.Empty(t, fr.seeds)
}
