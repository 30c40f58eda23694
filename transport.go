// Package uptransport maps the uProtocol messaging API (publish,
// notification, RPC request, RPC response) onto a pub/sub + query
// overlay. Messages are routed by hierarchical key expressions derived
// from their source and sink URIs; attributes travel in an attachment
// beside the payload.
package uptransport

import (
	"context"
	"sync"

	"github.com/ehrlich-b/go-uptransport/internal/dispatch"
	"github.com/ehrlich-b/go-uptransport/internal/logging"
	"github.com/ehrlich-b/go-uptransport/internal/registry"
	"github.com/ehrlich-b/go-uptransport/overlay"
	"github.com/ehrlich-b/go-uptransport/uproto"
)

// Options contains additional options for transport creation.
type Options struct {
	// Logger for debug/info messages (if nil, the package default)
	Logger *logging.Logger

	// Observer for metrics collection (if nil, records to the
	// transport's built-in Metrics)
	Observer Observer

	// DispatchWorkers is the number of goroutines delivering messages
	// to listeners (default DefaultDispatchWorkers).
	DispatchWorkers int

	// DispatchQueueBound is the callback-to-worker queue depth
	// (default DefaultDispatchQueueBound).
	DispatchQueueBound int
}

// ListenerOption adjusts a RegisterListener/UnregisterListener call.
type ListenerOption func(*listenerOptions)

type listenerOptions struct {
	sink *uproto.UUri
}

// WithSink sets the sink filter. The default is the match-all filter;
// pass nil to match only messages that carry no sink at all.
func WithSink(sink *uproto.UUri) ListenerOption {
	return func(o *listenerOptions) {
		o.sink = sink
	}
}

// Transport is a uProtocol transport instance bound to one overlay
// session. All methods are safe for concurrent use.
type Transport struct {
	session   overlay.Session
	source    *uproto.UUri
	authority string

	reg      *registry.Registry
	disp     *dispatch.Dispatcher
	logger   *logging.Logger
	observer Observer
	metrics  *Metrics

	mu     sync.Mutex
	closed bool
}

// New opens an overlay session and returns a transport speaking for
// the given source URI.
func New(cfg overlay.Config, source *uproto.UUri, options *Options) (*Transport, error) {
	const op = "OPEN"
	if source == nil || source.IsEmpty() {
		return nil, NewError(op, CodeInvalidArgument, "source uri missing")
	}

	var opts Options
	if options != nil {
		opts = *options
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	metrics := NewMetrics()
	var observer Observer = NewMetricsObserver(metrics)
	if opts.Observer != nil {
		observer = opts.Observer
	}

	session, err := overlay.Open(cfg)
	if err != nil {
		logger.Error("unable to open session", "error", err)
		return nil, WrapError(op, CodeInternal, "unable to open session", err)
	}

	t := &Transport{
		session:   session,
		source:    source.Clone(),
		authority: source.AuthorityName,
		reg:       registry.New(),
		logger:    logger,
		observer:  observer,
		metrics:   metrics,
	}
	t.disp = dispatch.New(dispatch.Config{
		Workers:    opts.DispatchWorkers,
		QueueBound: opts.DispatchQueueBound,
		Logger:     logger,
		OnDrop:     observer.ObserveDispatchDrop,
	})

	logger.Debug("transport open", "source", t.source.String())
	return t, nil
}

// GetSource returns the URI this transport speaks for.
func (t *Transport) GetSource() *uproto.UUri {
	return t.source.Clone()
}

// Metrics returns the transport's built-in metrics.
func (t *Transport) Metrics() *Metrics {
	return t.metrics
}

// MetricsSnapshot returns a point-in-time snapshot of the metrics.
func (t *Transport) MetricsSnapshot() MetricsSnapshot {
	return t.metrics.Snapshot()
}

// Close drains every registration, stops the dispatch workers, and
// closes the overlay session. The transport is unusable afterwards.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	subs, qrys := t.reg.Drain()
	for _, h := range subs {
		_ = h.Undeclare()
	}
	for _, h := range qrys {
		_ = h.Undeclare()
	}
	t.disp.Close()
	t.metrics.Stop()

	err := t.session.Close()
	t.logger.Debug("transport closed", "source", t.source.String())
	if err != nil {
		return WrapError("CLOSE", CodeInternal, "unable to close session", err)
	}
	return nil
}

func (t *Transport) checkOpen(op string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return NewError(op, CodeUnavailable, "transport closed")
	}
	return nil
}

func ctxErr(op string, ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return WrapError(op, CodeDeadlineExceeded, "context done", err)
	}
	return nil
}

// deliver hops a decoded message from an overlay callback onto the
// dispatch workers and invokes the listener there.
func (t *Transport) deliver(listener uproto.Listener, msg *uproto.UMessage) {
	messageType := msg.Attributes.Type.String()
	bytes := len(msg.Payload)
	if t.disp.Submit(func() { listener.OnReceive(msg) }) {
		t.observer.ObserveReceive(messageType, bytes)
	}
}
