package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveCollect("hash", 10)
	m.ObserveCollect("hash", 5)
	m.ObserveCollect("sorted", 1)
	m.ObserveScan("full", 2000)
	m.ObserveQuery(time.Millisecond, 100, nil)
	m.ObserveQuery(time.Millisecond, 100, errors.New("x"))
	m.MemoryLimitExceeded()
	assert.Equal(t, 15.0, testutil.ToFloat64(m.collectGroups.WithLabelValues("hash")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.collects.WithLabelValues("hash")))
	assert.Equal(t, 2000.0, testutil.ToFloat64(m.rowsScanned.WithLabelValues("full")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.memoryExceeded))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveCollect("hash", 1)
	m.ObserveScan("full", 1)
	m.ObserveQuery(0, 0, nil)
	m.MemoryLimitExceeded()
}
