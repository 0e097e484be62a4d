package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	// 各テストで新しいレジストリを使用
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.BookingsTotal)
	assert.NotNil(t, m.BulkCombinations)
	assert.NotNil(t, m.DistributedLockDuration)
	assert.NotNil(t, m.CancellationsTotal)
}

func TestHTTPRequestsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/seats", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/bookings", "201").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/bookings", "409").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "http_requests_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "http_requests_total metric not found")
}

func TestBookingsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.BookingsTotal.WithLabelValues("created").Inc()
	m.BookingsTotal.WithLabelValues("created").Inc()
	m.BookingsTotal.WithLabelValues("conflict").Inc()
	m.BookingsTotal.WithLabelValues("error").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "bookings_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "bookings_total metric not found")
}

func TestBulkCombinations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	// 2座席 × 5日 × 2枠 = 20組み合わせ
	m.BulkCombinations.Observe(20)
	m.BulkCombinations.Observe(4)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "bulk_booking_combinations" {
			found = true
		}
	}
	assert.True(t, found, "bulk_booking_combinations metric not found")
}

func TestCancellationsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.CancellationsTotal.WithLabelValues("cancelled").Inc()
	m.CancellationsTotal.WithLabelValues("forbidden").Inc()
	m.CancellationsTotal.WithLabelValues("not_found").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "cancellations_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "cancellations_total metric not found")
}
