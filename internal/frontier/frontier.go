// Package frontier defines the contract for the URL-prioritization
// engine the scheduler feeds and drains. Prioritization, deduplication
// and queue persistence all live behind this interface; the scheduler
// only calls the narrow surface below.
package frontier

import "github.com/frontierkit/crawlsched/internal/request"

// Frontier is the prioritization collaborator.
type Frontier interface {
	// AddSeeds hands fresh requests over for prioritization.
	AddSeeds(requests []*request.Request)
	// GetNextRequests returns a batch of requests ready for dispatch.
	// Batch size and ordering are frontier policy.
	GetNextRequests() []*request.Request
	// PageCrawled reports a successful fetch and its extracted links.
	PageCrawled(response *request.Response, links []*request.Request)
	// RequestError reports a failed fetch with a stable error-kind label.
	RequestError(req *request.Request, errorKind string)

	Start()
	Stop(reason string)

	Finished() bool
	Iterations() int
	AutoStart() bool
}
