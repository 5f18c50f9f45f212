package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCountersAccumulatePerRoute(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/dashboard", "GET", 200)
	m.RecordRequest("/dashboard", "GET", 200)
	m.RecordRequest("/ticket/new", "POST", 303)
	m.RecordError("/ticket/9", "GET", "NOT_FOUND")

	assert.Equal(t, int64(2), m.Requests("/dashboard", "GET", 200))
	assert.Equal(t, int64(1), m.Requests("/ticket/new", "POST", 303))
	assert.Equal(t, int64(0), m.Requests("/dashboard", "GET", 500))
	assert.Equal(t, int64(1), m.Errors("/ticket/9", "GET", "NOT_FOUND"))
}

func TestNilMetricsAreInert(t *testing.T) {
	var m *Metrics

	m.RecordRequest("/", "GET", 200)
	m.RecordError("/", "GET", "INTERNAL_ERROR")
	assert.Equal(t, int64(0), m.Requests("/", "GET", 200))
	assert.Equal(t, int64(0), m.Errors("/", "GET", "INTERNAL_ERROR"))
}
