package scheduler

import "github.com/frontierkit/crawlsched/internal/request"

// pendingBuffer is the FIFO of requests already pulled from the frontier
// but not yet handed to the downloader. Purely synchronous; the owning
// Scheduler provides all serialization.
type pendingBuffer struct {
	items []*request.Request
}

func (b *pendingBuffer) push(req *request.Request) {
	b.items = append(b.items, req)
}

// pop removes and returns the head, or nil when empty.
func (b *pendingBuffer) pop() *request.Request {
	if len(b.items) == 0 {
		return nil
	}
	head := b.items[0]
	b.items[0] = nil
	b.items = b.items[1:]
	return head
}

func (b *pendingBuffer) size() int {
	return len(b.items)
}

func (b *pendingBuffer) reset() {
	b.items = nil
}
