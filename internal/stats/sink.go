// Package stats defines the counter sink the scheduler reports into and
// ships in-memory and Prometheus implementations of it.
package stats

// Sink receives fire-and-forget counter updates keyed by a namespaced
// path such as "frontier/seeds_count". Implementations must not fail at
// call time; misconfiguration is a construction error.
type Sink interface {
	IncValue(name string, amount int64)
	SetValue(name string, value int64)
}

// MultiSink fans every update out to each child sink.
type MultiSink []Sink

// IncValue forwards the increment to all children.
func (m MultiSink) IncValue(name string, amount int64) {
	for _, s := range m {
		if s != nil {
			s.IncValue(name, amount)
		}
	}
}

// SetValue forwards the gauge update to all children.
func (m MultiSink) SetValue(name string, value int64) {
	for _, s := range m {
		if s != nil {
			s.SetValue(name, value)
		}
	}
}
