// internal/service/request_tracker.go
package service

import (
	"sync"

	"github.com/anmicius0/lims-batch-composer/internal/utils"
	"go.uber.org/zap"
)

// RequestKind separates independent request streams; a new request of one kind
// never supersedes a request of another.
type RequestKind string

const (
	RequestEligibleSamples RequestKind = "eligible_samples"
	RequestCompatibility   RequestKind = "compatibility"
	RequestContainers      RequestKind = "containers"
)

// RequestToken identifies one issued request. The zero token is never issued.
type RequestToken uint64

// RequestTracker hands out request tokens per kind and tells whether a response
// still belongs to the latest request of its kind.
type RequestTracker struct {
	mu      sync.Mutex
	current map[RequestKind]RequestToken
	closed  bool
	metrics *utils.Metrics
}

// NewRequestTracker creates a tracker. metrics may be nil.
func NewRequestTracker(metrics *utils.Metrics) *RequestTracker {
	return &RequestTracker{
		current: make(map[RequestKind]RequestToken),
		metrics: metrics,
	}
}

// Issue supersedes any outstanding request of kind and returns the new token.
func (rt *RequestTracker) Issue(kind RequestKind) RequestToken {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.current[kind]++
	rt.metrics.RequestIssued(string(kind))
	return rt.current[kind]
}

// Invalidate supersedes any outstanding request of kind without issuing a new one.
func (rt *RequestTracker) Invalidate(kind RequestKind) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.current[kind]++
}

// Accept reports whether token is still the latest for kind. A rejected token is
// counted as a stale discard.
func (rt *RequestTracker) Accept(kind RequestKind, token RequestToken) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if !rt.closed && rt.current[kind] == token {
		return true
	}
	rt.metrics.StaleDiscarded(string(kind))
	utils.WithComponent("request_tracker").Debug("Discarding stale response",
		zap.String(utils.FieldRequestKind, string(kind)),
		zap.Uint64(utils.FieldToken, uint64(token)),
		zap.Uint64("current_token", uint64(rt.current[kind])),
		zap.Bool("closed", rt.closed))
	return false
}

// Close rejects every outstanding and future token.
func (rt *RequestTracker) Close() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.closed = true
}
