package uptransport

import (
	"sync/atomic"
	"time"
)

// Metrics tracks operational statistics for one transport instance.
// All counters are atomic; read them through Snapshot.
type Metrics struct {
	// Send counters, by message type
	PublishSent      atomic.Uint64
	NotificationSent atomic.Uint64
	RequestSent      atomic.Uint64
	ResponseSent     atomic.Uint64
	SendErrors       atomic.Uint64
	BytesSent        atomic.Uint64

	// Receive counters, by message type
	PublishReceived      atomic.Uint64
	NotificationReceived atomic.Uint64
	RequestReceived      atomic.Uint64
	ResponseReceived     atomic.Uint64
	BytesReceived        atomic.Uint64

	// Dispatch and RPC state
	DispatchDrops  atomic.Uint64
	PendingQueries atomic.Int64

	// Lifecycle
	StartTime atomic.Int64
	StopTime  atomic.Int64
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

func (m *Metrics) sendCounter(messageType string) *atomic.Uint64 {
	switch messageType {
	case "PUBLISH":
		return &m.PublishSent
	case "NOTIFICATION":
		return &m.NotificationSent
	case "REQUEST":
		return &m.RequestSent
	default:
		return &m.ResponseSent
	}
}

func (m *Metrics) receiveCounter(messageType string) *atomic.Uint64 {
	switch messageType {
	case "PUBLISH":
		return &m.PublishReceived
	case "NOTIFICATION":
		return &m.NotificationReceived
	case "REQUEST":
		return &m.RequestReceived
	default:
		return &m.ResponseReceived
	}
}

// RecordSend records one send attempt.
func (m *Metrics) RecordSend(messageType string, bytes int, success bool) {
	if success {
		m.sendCounter(messageType).Add(1)
		m.BytesSent.Add(uint64(bytes))
	} else {
		m.SendErrors.Add(1)
	}
}

// RecordReceive records one delivered message.
func (m *Metrics) RecordReceive(messageType string, bytes int) {
	m.receiveCounter(messageType).Add(1)
	m.BytesReceived.Add(uint64(bytes))
}

// RecordDispatchDrop records a message dropped at dispatch.
func (m *Metrics) RecordDispatchDrop() {
	m.DispatchDrops.Add(1)
}

// RecordPendingQueries adjusts the in-flight query gauge.
func (m *Metrics) RecordPendingQueries(delta int) {
	m.PendingQueries.Add(int64(delta))
}

// Stop marks the transport as closed.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time copy of the counters plus derived
// rates.
type MetricsSnapshot struct {
	PublishSent      uint64
	NotificationSent uint64
	RequestSent      uint64
	ResponseSent     uint64
	SendErrors       uint64
	BytesSent        uint64

	PublishReceived      uint64
	NotificationReceived uint64
	RequestReceived      uint64
	ResponseReceived     uint64
	BytesReceived        uint64

	DispatchDrops  uint64
	PendingQueries int64

	TotalSent     uint64
	TotalReceived uint64
	UptimeNs      uint64
	SendRate      float64 // messages per second
	ReceiveRate   float64
}

// Snapshot creates a point-in-time snapshot of metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		PublishSent:          m.PublishSent.Load(),
		NotificationSent:     m.NotificationSent.Load(),
		RequestSent:          m.RequestSent.Load(),
		ResponseSent:         m.ResponseSent.Load(),
		SendErrors:           m.SendErrors.Load(),
		BytesSent:            m.BytesSent.Load(),
		PublishReceived:      m.PublishReceived.Load(),
		NotificationReceived: m.NotificationReceived.Load(),
		RequestReceived:      m.RequestReceived.Load(),
		ResponseReceived:     m.ResponseReceived.Load(),
		BytesReceived:        m.BytesReceived.Load(),
		DispatchDrops:        m.DispatchDrops.Load(),
		PendingQueries:       m.PendingQueries.Load(),
	}

	snap.TotalSent = snap.PublishSent + snap.NotificationSent + snap.RequestSent + snap.ResponseSent
	snap.TotalReceived = snap.PublishReceived + snap.NotificationReceived +
		snap.RequestReceived + snap.ResponseReceived

	startTime := m.StartTime.Load()
	stopTime := m.StopTime.Load()
	if stopTime > 0 {
		snap.UptimeNs = uint64(stopTime - startTime)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - startTime)
	}

	if snap.UptimeNs > 0 {
		uptimeSeconds := float64(snap.UptimeNs) / 1e9
		snap.SendRate = float64(snap.TotalSent) / uptimeSeconds
		snap.ReceiveRate = float64(snap.TotalReceived) / uptimeSeconds
	}

	return snap
}

// Reset resets all metrics counters (useful for testing)
func (m *Metrics) Reset() {
	m.PublishSent.Store(0)
	m.NotificationSent.Store(0)
	m.RequestSent.Store(0)
	m.ResponseSent.Store(0)
	m.SendErrors.Store(0)
	m.BytesSent.Store(0)
	m.PublishReceived.Store(0)
	m.NotificationReceived.Store(0)
	m.RequestReceived.Store(0)
	m.ResponseReceived.Store(0)
	m.BytesReceived.Store(0)
	m.DispatchDrops.Store(0)
	m.PendingQueries.Store(0)
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}

// Observer allows pluggable collection of operational events.
// Implementations must be thread-safe.
type Observer interface {
	ObserveSend(messageType string, bytes int, success bool)
	ObserveReceive(messageType string, bytes int)
	ObserveDispatchDrop()
	ObservePendingQueries(delta int)
}

// NoOpObserver is a no-op implementation of Observer
type NoOpObserver struct{}

func (NoOpObserver) ObserveSend(string, int, bool) {}
func (NoOpObserver) ObserveReceive(string, int)    {}
func (NoOpObserver) ObserveDispatchDrop()          {}
func (NoOpObserver) ObservePendingQueries(int)     {}

// MetricsObserver implements Observer using the built-in Metrics
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer that records to the given metrics
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveSend(messageType string, bytes int, success bool) {
	o.metrics.RecordSend(messageType, bytes, success)
}

func (o *MetricsObserver) ObserveReceive(messageType string, bytes int) {
	o.metrics.RecordReceive(messageType, bytes)
}

func (o *MetricsObserver) ObserveDispatchDrop() {
	o.metrics.RecordDispatchDrop()
}

func (o *MetricsObserver) ObservePendingQueries(delta int) {
	o.metrics.RecordPendingQueries(delta)
}

// Compile-time interface check
var _ Observer = (*MetricsObserver)(nil)
var _ Observer = (*NoOpObserver)(nil)
