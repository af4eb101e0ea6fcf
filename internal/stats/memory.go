package stats

import "sync"

// MemorySink keeps counters in a map. It backs tests and the end-of-run
// summary printed by the CLI.
type MemorySink struct {
	mu       sync.RWMutex
	counters map[string]int64
}

// NewMemorySink constructs an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{counters: make(map[string]int64)}
}

// IncValue adds amount to the named counter.
func (s *MemorySink) IncValue(name string, amount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name] += amount
}

// SetValue overwrites the named counter.
func (s *MemorySink) SetValue(name string, value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name] = value
}

// Value returns the current value for name, zero if never written.
func (s *MemorySink) Value(name string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[name]
}

// Snapshot copies all counters for inspection.
func (s *MemorySink) Snapshot() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		out[k] = v
	}
	return out
}
