package uptransport

import (
	"context"
	"time"

	"github.com/ehrlich-b/go-uptransport/internal/codec"
	"github.com/ehrlich-b/go-uptransport/internal/constants"
	"github.com/ehrlich-b/go-uptransport/internal/key"
	"github.com/ehrlich-b/go-uptransport/overlay"
	"github.com/ehrlich-b/go-uptransport/uproto"
)

// Send validates the message for its declared type and dispatches it
// onto the overlay: publishes and notifications as puts, requests as
// queries, responses as replies to the matching pending query.
func (t *Transport) Send(ctx context.Context, msg *uproto.UMessage) error {
	const op = "SEND"
	if err := t.checkOpen(op); err != nil {
		return err
	}
	if err := ctxErr(op, ctx); err != nil {
		return err
	}
	if msg == nil || msg.Attributes == nil {
		return NewError(op, CodeInvalidArgument, "message attributes missing")
	}

	attrs := msg.Attributes
	if attrs.Source.IsEmpty() {
		t.observer.ObserveSend(attrs.Type.String(), len(msg.Payload), false)
		return NewError(op, CodeInvalidArgument, "attributes.source shouldn't be empty")
	}
	if err := uproto.ValidateAttributes(attrs); err != nil {
		t.observer.ObserveSend(attrs.Type.String(), len(msg.Payload), false)
		return WrapError(op, CodeInvalidArgument, "invalid attributes", err)
	}

	keyExpr := key.ToKey(t.authority, attrs.Source, attrs.Sink)

	var err error
	switch attrs.Type {
	case uproto.MessageTypePublish, uproto.MessageTypeNotification:
		err = t.sendPublishNotification(keyExpr, msg)
	case uproto.MessageTypeRequest:
		err = t.sendRequest(keyExpr, msg)
	case uproto.MessageTypeResponse:
		err = t.sendResponse(msg)
	default:
		err = NewError(op, CodeInvalidArgument, "wrong message type in attributes")
	}
	t.observer.ObserveSend(attrs.Type.String(), len(msg.Payload), err == nil)
	return err
}

func (t *Transport) sendPublishNotification(keyExpr string, msg *uproto.UMessage) error {
	attrs := msg.Attributes
	attachment := codec.EncodeAttachment(attrs)
	priority := codec.MapPriority(attrs.Priority)

	t.logger.Debug("sending data", "key", keyExpr, "type", attrs.Type.String(), "priority", priority)
	if err := t.session.Put(keyExpr, msg.Payload, attachment, priority); err != nil {
		t.logger.Debug("unable to send with overlay", "key", keyExpr, "error", err)
		return WrapError("SEND", CodeInternal, "unable to send with overlay", err)
	}
	return nil
}

func (t *Transport) sendRequest(keyExpr string, msg *uproto.UMessage) error {
	const op = "SEND"
	attrs := msg.Attributes

	// A request is only useful if someone can hear the answer: find
	// the response listener whose stored key intersects ours.
	listener, ok := t.reg.MatchResponse(keyExpr)
	if !ok {
		t.logger.Debug("unable to get callback", "key", keyExpr)
		return NewError(op, CodeInternal, "no response callback registered")
	}

	attachment := codec.EncodeAttachment(attrs)
	timeout := constants.DefaultRequestTimeout
	if attrs.TTLms > 0 {
		timeout = time.Duration(attrs.TTLms) * time.Millisecond
	}

	replies, err := t.session.Get(keyExpr, msg.Payload, attachment, overlay.TargetBestMatching, timeout)
	if err != nil {
		t.logger.Debug("unable to send query with overlay", "key", keyExpr, "error", err)
		return WrapError(op, CodeInternal, "unable to send query with overlay", err)
	}

	go t.drainReplies(keyExpr, replies, listener)
	return nil
}

// drainReplies consumes a request's reply stream: the first OK reply
// is decoded and delivered to the response listener, errors end the
// stream silently.
func (t *Transport) drainReplies(keyExpr string, replies <-chan overlay.Reply, listener uproto.Listener) {
	for reply := range replies {
		if reply.Err != nil {
			t.logger.Debug("error while reading overlay reply", "key", keyExpr, "error", reply.Err)
			return
		}
		attrs, err := codec.DecodeAttachment(reply.Sample.Attachment)
		if err != nil {
			t.logger.Debug("unable to decode reply attachment", "key", keyExpr, "error", err)
			return
		}
		t.deliver(listener, &uproto.UMessage{Attributes: attrs, Payload: reply.Sample.Payload})
		return
	}
}

func (t *Transport) sendResponse(msg *uproto.UMessage) error {
	const op = "SEND"
	attrs := msg.Attributes

	query, ok := t.reg.TakeQuery(attrs.ReqID.Bytes())
	if !ok {
		t.logger.Debug("query doesn't exist", "reqid", attrs.ReqID.String())
		return NewError(op, CodeInternal, "query doesn't exist")
	}
	t.observer.ObservePendingQueries(-1)

	sample := &overlay.Sample{
		KeyExpr:    query.KeyExpr(),
		Payload:    msg.Payload,
		Attachment: codec.EncodeAttachment(attrs),
		Priority:   codec.MapPriority(attrs.Priority),
	}
	if err := query.Reply(sample); err != nil {
		t.logger.Debug("unable to reply with overlay", "reqid", attrs.ReqID.String(), "error", err)
		return WrapError(op, CodeInternal, "unable to reply with overlay", err)
	}
	return nil
}
