// Package observability provides session metrics for CLI operations.
package observability

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// RequestMetrics holds timing and status information for a single API request.
type RequestMetrics struct {
	Method   string
	Duration time.Duration
	Status   int
	Error    error
}

// SessionMetrics aggregates metrics for an entire CLI session.
type SessionMetrics struct {
	StartTime     time.Time
	EndTime       time.Time
	TotalRequests int
	TotalRetries  int
	FailedOps     int
	TotalLatency  time.Duration
}

// SessionCollector accumulates metrics across a CLI session.
// It is safe for concurrent use and uses counters instead of unbounded slices.
type SessionCollector struct {
	mu sync.Mutex

	startTime     time.Time
	totalRequests int
	totalRetries  int
	failedOps     int
	totalLatency  time.Duration
}

// NewSessionCollector creates a new SessionCollector.
func NewSessionCollector() *SessionCollector {
	return &SessionCollector{startTime: time.Now()}
}

// RecordRequest records metrics for an API request.
func (c *SessionCollector) RecordRequest(m RequestMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRequests++
	c.totalLatency += m.Duration
	if m.Error != nil {
		c.failedOps++
	}
}

// RecordRetry records a retry event.
func (c *SessionCollector) RecordRetry() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRetries++
}

// Requests returns the number of API requests recorded so far.
func (c *SessionCollector) Requests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalRequests
}

// Summary returns a snapshot of the session metrics.
func (c *SessionCollector) Summary() SessionMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SessionMetrics{
		StartTime:     c.startTime,
		EndTime:       time.Now(),
		TotalRequests: c.totalRequests,
		TotalRetries:  c.totalRetries,
		FailedOps:     c.failedOps,
		TotalLatency:  c.totalLatency,
	}
}

// Line renders a compact one-line summary suitable for stderr.
func (m SessionMetrics) Line() string {
	var parts []string

	duration := m.EndTime.Sub(m.StartTime)
	if duration < time.Second {
		parts = append(parts, fmt.Sprintf("%dms", duration.Milliseconds()))
	} else {
		parts = append(parts, fmt.Sprintf("%.1fs", duration.Seconds()))
	}

	if m.TotalRequests == 1 {
		parts = append(parts, "1 request")
	} else if m.TotalRequests > 1 {
		parts = append(parts, fmt.Sprintf("%d requests", m.TotalRequests))
	}

	if m.TotalRetries == 1 {
		parts = append(parts, "1 retry")
	} else if m.TotalRetries > 1 {
		parts = append(parts, fmt.Sprintf("%d retries", m.TotalRetries))
	}

	if m.FailedOps > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", m.FailedOps))
	}

	return strings.Join(parts, " | ")
}
