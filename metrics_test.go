package uptransport

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordAndSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordSend("PUBLISH", 10, true)
	m.RecordSend("REQUEST", 20, true)
	m.RecordSend("REQUEST", 0, false)
	m.RecordReceive("RESPONSE", 30)
	m.RecordDispatchDrop()
	m.RecordPendingQueries(1)

	snap := m.Snapshot()
	if snap.PublishSent != 1 || snap.RequestSent != 1 {
		t.Errorf("send counters wrong: %+v", snap)
	}
	if snap.SendErrors != 1 {
		t.Errorf("SendErrors = %d, want 1", snap.SendErrors)
	}
	if snap.BytesSent != 30 {
		t.Errorf("BytesSent = %d, want 30", snap.BytesSent)
	}
	if snap.ResponseReceived != 1 || snap.BytesReceived != 30 {
		t.Errorf("receive counters wrong: %+v", snap)
	}
	if snap.DispatchDrops != 1 {
		t.Errorf("DispatchDrops = %d, want 1", snap.DispatchDrops)
	}
	if snap.PendingQueries != 1 {
		t.Errorf("PendingQueries = %d, want 1", snap.PendingQueries)
	}
	if snap.TotalSent != 2 {
		t.Errorf("TotalSent = %d, want 2", snap.TotalSent)
	}
	if snap.UptimeNs == 0 {
		t.Error("UptimeNs should be nonzero")
	}
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()
	m.RecordSend("PUBLISH", 10, true)
	m.RecordPendingQueries(3)
	m.Reset()

	snap := m.Snapshot()
	if snap.TotalSent != 0 || snap.PendingQueries != 0 {
		t.Errorf("Reset left state behind: %+v", snap)
	}
}

func TestMetricsObserver(t *testing.T) {
	m := NewMetrics()
	var o Observer = NewMetricsObserver(m)

	o.ObserveSend("NOTIFICATION", 5, true)
	o.ObserveReceive("PUBLISH", 7)
	o.ObserveDispatchDrop()
	o.ObservePendingQueries(2)
	o.ObservePendingQueries(-1)

	snap := m.Snapshot()
	if snap.NotificationSent != 1 || snap.PublishReceived != 1 {
		t.Errorf("observer did not record: %+v", snap)
	}
	if snap.PendingQueries != 1 {
		t.Errorf("PendingQueries = %d, want 1", snap.PendingQueries)
	}
}

func TestPrometheusObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := NewPrometheusObserver(reg, prometheus.Labels{"transport": "test"})
	if err != nil {
		t.Fatalf("NewPrometheusObserver: %v", err)
	}

	o.ObserveSend("PUBLISH", 10, true)
	o.ObserveSend("PUBLISH", 0, false)
	o.ObserveReceive("REQUEST", 20)
	o.ObserveDispatchDrop()
	o.ObservePendingQueries(2)

	if got := testutil.ToFloat64(o.sent.WithLabelValues("PUBLISH")); got != 1 {
		t.Errorf("sent = %v, want 1", got)
	}
	if got := testutil.ToFloat64(o.errors); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(o.received.WithLabelValues("REQUEST")); got != 1 {
		t.Errorf("received = %v, want 1", got)
	}
	if got := testutil.ToFloat64(o.pending); got != 2 {
		t.Errorf("pending = %v, want 2", got)
	}

	// Registering the same collectors twice must fail.
	if _, err := NewPrometheusObserver(reg, prometheus.Labels{"transport": "test"}); err == nil {
		t.Error("duplicate registration should fail")
	}
}
