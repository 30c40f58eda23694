package uptransport

import "github.com/prometheus/client_golang/prometheus"

// PrometheusObserver exports transport events to a prometheus
// registry. Construct one per transport and pass it via Options.
type PrometheusObserver struct {
	sent     *prometheus.CounterVec
	received *prometheus.CounterVec
	errors   prometheus.Counter
	bytesTx  prometheus.Counter
	bytesRx  prometheus.Counter
	drops    prometheus.Counter
	pending  prometheus.Gauge
}

// NewPrometheusObserver creates the collectors and registers them with
// the given registerer (use prometheus.DefaultRegisterer for the
// process default).
func NewPrometheusObserver(reg prometheus.Registerer, constLabels prometheus.Labels) (*PrometheusObserver, error) {
	o := &PrometheusObserver{
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "uptransport_messages_sent_total",
			Help:        "Messages successfully handed to the overlay, by type.",
			ConstLabels: constLabels,
		}, []string{"type"}),
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "uptransport_messages_received_total",
			Help:        "Messages delivered to listeners, by type.",
			ConstLabels: constLabels,
		}, []string{"type"}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "uptransport_send_errors_total",
			Help:        "Send attempts that failed.",
			ConstLabels: constLabels,
		}),
		bytesTx: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "uptransport_bytes_sent_total",
			Help:        "Payload bytes handed to the overlay.",
			ConstLabels: constLabels,
		}),
		bytesRx: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "uptransport_bytes_received_total",
			Help:        "Payload bytes delivered to listeners.",
			ConstLabels: constLabels,
		}),
		drops: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "uptransport_dispatch_drops_total",
			Help:        "Messages dropped because the dispatcher was closed.",
			ConstLabels: constLabels,
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "uptransport_pending_queries",
			Help:        "RPC queries awaiting a response.",
			ConstLabels: constLabels,
		}),
	}

	for _, c := range []prometheus.Collector{
		o.sent, o.received, o.errors, o.bytesTx, o.bytesRx, o.drops, o.pending,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *PrometheusObserver) ObserveSend(messageType string, bytes int, success bool) {
	if success {
		o.sent.WithLabelValues(messageType).Inc()
		o.bytesTx.Add(float64(bytes))
	} else {
		o.errors.Inc()
	}
}

func (o *PrometheusObserver) ObserveReceive(messageType string, bytes int) {
	o.received.WithLabelValues(messageType).Inc()
	o.bytesRx.Add(float64(bytes))
}

func (o *PrometheusObserver) ObserveDispatchDrop() {
	o.drops.Inc()
}

func (o *PrometheusObserver) ObservePendingQueries(delta int) {
	o.pending.Add(float64(delta))
}

var _ Observer = (*PrometheusObserver)(nil)
