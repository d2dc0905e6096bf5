package server

import (
	"sync/atomic"
	"time"

	"github.com/Brownie44l1/staticd/internal/response"
)

// Metrics holds server runtime metrics
type Metrics struct {
	ConnectionsTotal  atomic.Int64
	ActiveConnections atomic.Int64
	ResponsesOK       atomic.Int64
	NotFound          atomic.Int64
	BadRequest        atomic.Int64
	// Connections closed without a complete response
	Aborted   atomic.Int64
	BytesSent atomic.Int64

	TotalLatencyNs atomic.Int64
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordResponse records a response that was fully sent
func (m *Metrics) RecordResponse(status response.StatusCode, duration time.Duration) {
	m.TotalLatencyNs.Add(duration.Nanoseconds())

	switch status {
	case response.StatusOK:
		m.ResponsesOK.Add(1)
	case response.StatusNotFound:
		m.NotFound.Add(1)
	case response.StatusBadRequest:
		m.BadRequest.Add(1)
	}
}

func (m *Metrics) RecordAbort() {
	m.Aborted.Add(1)
}

func (m *Metrics) responses() int64 {
	return m.ResponsesOK.Load() + m.NotFound.Load() + m.BadRequest.Load()
}

// AverageLatency returns average latency of sent responses
func (m *Metrics) AverageLatency() time.Duration {
	total := m.responses()
	if total == 0 {
		return 0
	}
	return time.Duration(m.TotalLatencyNs.Load() / total)
}

// MetricsSnapshot is a point-in-time copy of Metrics
type MetricsSnapshot struct {
	ConnectionsTotal  int64
	ActiveConnections int64
	ResponsesOK       int64
	NotFound          int64
	BadRequest        int64
	Aborted           int64
	BytesSent         int64
	AverageLatency    time.Duration
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ConnectionsTotal:  m.ConnectionsTotal.Load(),
		ActiveConnections: m.ActiveConnections.Load(),
		ResponsesOK:       m.ResponsesOK.Load(),
		NotFound:          m.NotFound.Load(),
		BadRequest:        m.BadRequest.Load(),
		Aborted:           m.Aborted.Load(),
		BytesSent:         m.BytesSent.Load(),
		AverageLatency:    m.AverageLatency(),
	}
}
