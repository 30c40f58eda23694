package uptransport

import (
	"context"
	"time"

	"github.com/ehrlich-b/go-uptransport/internal/classify"
	"github.com/ehrlich-b/go-uptransport/internal/codec"
	"github.com/ehrlich-b/go-uptransport/internal/constants"
	"github.com/ehrlich-b/go-uptransport/internal/key"
	"github.com/ehrlich-b/go-uptransport/internal/registry"
	"github.com/ehrlich-b/go-uptransport/overlay"
	"github.com/ehrlich-b/go-uptransport/uproto"
)

// RegisterListener installs a listener for messages matching the
// source filter (and sink filter, default match-all). The filter pair
// decides the mechanics: requests install a queryable, responses a
// response callback on the inverted key, publishes and notifications a
// subscriber.
func (t *Transport) RegisterListener(ctx context.Context, source *uproto.UUri, listener uproto.Listener, opts ...ListenerOption) error {
	const op = "REGISTER"
	kind, keyExpr, err := t.listenerTarget(ctx, op, source, listener, opts)
	if err != nil {
		return err
	}

	switch kind {
	case classify.FlagRequest:
		return t.registerRequestListener(keyExpr, listener)
	case classify.FlagResponse:
		t.reg.InsertResponse(keyExpr, listener)
		return nil
	default:
		return t.registerPublishListener(keyExpr, listener)
	}
}

// UnregisterListener removes a previously registered listener. The
// filters must be the ones used at registration: the same
// classification and key derivation runs on both paths.
func (t *Transport) UnregisterListener(ctx context.Context, source *uproto.UUri, listener uproto.Listener, opts ...ListenerOption) error {
	const op = "UNREGISTER"
	kind, keyExpr, err := t.listenerTarget(ctx, op, source, listener, opts)
	if err != nil {
		return err
	}

	switch kind {
	case classify.FlagRequest:
		handle, ok := t.reg.TakeQueryable(registry.Key{KeyExpr: keyExpr, Listener: listener})
		if !ok {
			return NewError(op, CodeNotFound, "rpc request listener doesn't exist")
		}
		if err := handle.Undeclare(); err != nil {
			return WrapError(op, CodeInternal, "unable to undeclare queryable", err)
		}
		return nil
	case classify.FlagResponse:
		if _, ok := t.reg.TakeResponse(keyExpr); !ok {
			return NewError(op, CodeNotFound, "rpc response callback doesn't exist")
		}
		return nil
	default:
		handle, ok := t.reg.TakeSubscriber(registry.Key{KeyExpr: keyExpr, Listener: listener})
		if !ok {
			return NewError(op, CodeNotFound, "listener not registered for filters")
		}
		if err := handle.Undeclare(); err != nil {
			return WrapError(op, CodeInternal, "unable to undeclare subscriber", err)
		}
		return nil
	}
}

// listenerTarget runs the shared front half of register and
// unregister: validation, classification, and key derivation. The
// returned kind is the single flag that decides the table, in the
// fixed precedence request > response > publish/notification.
func (t *Transport) listenerTarget(ctx context.Context, op string, source *uproto.UUri, listener uproto.Listener, opts []ListenerOption) (classify.MessageFlag, string, error) {
	if err := t.checkOpen(op); err != nil {
		return 0, "", err
	}
	if err := ctxErr(op, ctx); err != nil {
		return 0, "", err
	}
	if source == nil {
		return 0, "", NewError(op, CodeInvalidArgument, "source filter missing")
	}
	if listener == nil {
		return 0, "", NewError(op, CodeInvalidArgument, "listener missing")
	}

	lo := listenerOptions{sink: uproto.Any()}
	for _, o := range opts {
		o(&lo)
	}

	flags := classify.Classify(source, lo.sink)
	switch {
	case flags == 0:
		return 0, "", NewError(op, CodeInvalidArgument, "invalid combination of source and sink filters")
	case flags.Has(classify.FlagRequest):
		return classify.FlagRequest, key.ToKey(t.authority, source, lo.sink), nil
	case flags.Has(classify.FlagResponse):
		if lo.sink == nil {
			return 0, "", NewError(op, CodeInvalidArgument, "sink filter required for response listeners")
		}
		// Responses travel on the inverted (callee, caller) pair.
		return classify.FlagResponse, key.ToKey(t.authority, lo.sink, source), nil
	default:
		return classify.FlagPublish, key.ToKey(t.authority, source, lo.sink), nil
	}
}

func (t *Transport) registerPublishListener(keyExpr string, listener uproto.Listener) error {
	const op = "REGISTER"
	k := registry.Key{KeyExpr: keyExpr, Listener: listener}
	if t.reg.HasSubscriber(k) {
		return NewError(op, CodeAlreadyExists, "listener already registered")
	}

	sub, err := t.session.DeclareSubscriber(keyExpr, t.subscriberCallback(keyExpr, listener))
	if err != nil {
		t.logger.Debug("unable to declare subscriber", "key", keyExpr, "error", err)
		return WrapError(op, CodeInternal, "unable to register callback with overlay", err)
	}
	if !t.reg.InsertSubscriber(k, sub) {
		// Lost a race against an identical registration; roll back the
		// overlay declaration so only one install remains.
		_ = sub.Undeclare()
		return NewError(op, CodeAlreadyExists, "listener already registered")
	}
	t.logger.Debug("subscriber registered", "key", keyExpr)
	return nil
}

func (t *Transport) subscriberCallback(keyExpr string, listener uproto.Listener) func(*overlay.Sample) {
	return func(sample *overlay.Sample) {
		attrs, err := codec.DecodeAttachment(sample.Attachment)
		if err != nil {
			t.logger.Debug("unable to decode attachment", "key", keyExpr, "error", err)
			return
		}
		t.deliver(listener, &uproto.UMessage{Attributes: attrs, Payload: sample.Payload})
	}
}

func (t *Transport) registerRequestListener(keyExpr string, listener uproto.Listener) error {
	const op = "REGISTER"
	k := registry.Key{KeyExpr: keyExpr, Listener: listener}
	if t.reg.HasQueryable(k) {
		return NewError(op, CodeAlreadyExists, "listener already registered")
	}

	qry, err := t.session.DeclareQueryable(keyExpr, t.queryableCallback(keyExpr, listener))
	if err != nil {
		t.logger.Debug("unable to declare queryable", "key", keyExpr, "error", err)
		return WrapError(op, CodeInternal, "unable to register callback with overlay", err)
	}
	if !t.reg.InsertQueryable(k, qry) {
		_ = qry.Undeclare()
		return NewError(op, CodeAlreadyExists, "listener already registered")
	}
	t.logger.Debug("queryable registered", "key", keyExpr)
	return nil
}

// queryableCallback handles one incoming RPC query: decode, remember
// the query under its request ID so a later response can resolve it,
// then hand the request to the listener.
func (t *Transport) queryableCallback(keyExpr string, listener uproto.Listener) func(overlay.Query) {
	return func(query overlay.Query) {
		attrs, err := codec.DecodeAttachment(query.Attachment())
		if err != nil {
			t.logger.Debug("unable to decode attachment", "key", keyExpr, "error", err)
			return
		}
		if attrs.ID.IsZero() {
			t.logger.Debug("request without id", "key", keyExpr)
			return
		}

		reqID := attrs.ID.Bytes()
		t.reg.RememberQuery(reqID, query)
		t.observer.ObservePendingQueries(1)

		// The caller's ttl bounds how long the query can be answered;
		// after that the entry is garbage and is swept here.
		ttl := constants.DefaultRequestTimeout
		if attrs.TTLms > 0 {
			ttl = time.Duration(attrs.TTLms) * time.Millisecond
		}
		time.AfterFunc(ttl, func() {
			if _, ok := t.reg.TakeQuery(reqID); ok {
				t.observer.ObservePendingQueries(-1)
			}
		})

		t.deliver(listener, &uproto.UMessage{Attributes: attrs, Payload: query.Payload()})
	}
}
