package observability

import (
	"strconv"
	"sync"
)

// Metrics keeps in-process counters of served requests and failed
// requests, keyed by route. There is no exporter; the counters are for
// health inspection and tests.
type Metrics struct {
	mu       sync.Mutex
	requests map[string]int64
	failures map[string]int64
}

func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[string]int64),
		failures: make(map[string]int64),
	}
}

// RecordRequest counts one completed request for path/method/status.
func (m *Metrics) RecordRequest(path, method string, status int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[counterKey(path, method, strconv.Itoa(status))]++
}

// RecordError counts one failed request for path/method and the error code
// the middleware resolved it to.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[counterKey(path, method, code)]++
}

// Requests reports the count recorded for a route and status.
func (m *Metrics) Requests(path, method string, status int) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[counterKey(path, method, strconv.Itoa(status))]
}

// Errors reports the count recorded for a route and error code.
func (m *Metrics) Errors(path, method, code string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[counterKey(path, method, code)]
}

func counterKey(path, method, suffix string) string {
	return path + "|" + method + "|" + suffix
}
