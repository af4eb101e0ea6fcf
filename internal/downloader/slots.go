// Package downloader exposes the concurrency-capacity signal the
// scheduler throttles against, plus a slot tracker for host engines.
package downloader

import "sync"

// CapacitySource reports how many more fetches the downloader can absorb
// right now. The scheduler queries it on every dispatch cycle rather
// than caching the value.
type CapacitySource interface {
	Available() int
}

// Slots tracks in-flight fetches against a fixed concurrency budget.
// Safe for concurrent use.
type Slots struct {
	mu       sync.Mutex
	total    int
	inFlight int
}

// NewSlots builds a tracker with the given budget; budgets below one are
// clamped to one.
func NewSlots(total int) *Slots {
	if total < 1 {
		total = 1
	}
	return &Slots{total: total}
}

// Acquire claims one slot, reporting false when the budget is spent.
func (s *Slots) Acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight >= s.total {
		return false
	}
	s.inFlight++
	return true
}

// Release returns a previously acquired slot.
func (s *Slots) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight > 0 {
		s.inFlight--
	}
}

// Available reports the number of free slots.
func (s *Slots) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total - s.inFlight
}

// Total returns the configured budget.
func (s *Slots) Total() int {
	return s.total
}

// Idle reports whether no fetch is in flight.
func (s *Slots) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight == 0
}
