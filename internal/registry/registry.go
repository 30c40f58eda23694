// Package registry tracks the transport's live state: declared
// subscribers and queryables, registered RPC response callbacks, and
// queries awaiting a response. Each table is guarded by its own mutex
// and no lock is ever held across an overlay call or a listener
// invocation.
package registry

import (
	"sync"

	"github.com/ehrlich-b/go-uptransport/overlay"
	"github.com/ehrlich-b/go-uptransport/uproto"
)

// Key identifies one registration: the overlay key expression plus the
// listener's identity.
type Key struct {
	KeyExpr  string
	Listener uproto.Listener
}

// Registry is the four-table listener and query store owned by one
// transport instance.
type Registry struct {
	subMu       sync.Mutex
	subscribers map[Key]overlay.Subscriber

	qryMu      sync.Mutex
	queryables map[Key]overlay.Queryable

	rspMu     sync.Mutex
	responses map[string]uproto.Listener

	pqMu    sync.Mutex
	pending map[[16]byte]overlay.Query
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		subscribers: make(map[Key]overlay.Subscriber),
		queryables:  make(map[Key]overlay.Queryable),
		responses:   make(map[string]uproto.Listener),
		pending:     make(map[[16]byte]overlay.Query),
	}
}

// InsertSubscriber records a subscription handle. It reports false if
// the (key, listener) pair is already registered; the caller must not
// double-declare on the overlay in that case.
func (r *Registry) InsertSubscriber(k Key, handle overlay.Subscriber) bool {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	if _, ok := r.subscribers[k]; ok {
		return false
	}
	r.subscribers[k] = handle
	return true
}

// HasSubscriber reports whether the pair is registered.
func (r *Registry) HasSubscriber(k Key) bool {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	_, ok := r.subscribers[k]
	return ok
}

// TakeSubscriber removes and returns the handle for the pair.
func (r *Registry) TakeSubscriber(k Key) (overlay.Subscriber, bool) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	h, ok := r.subscribers[k]
	if ok {
		delete(r.subscribers, k)
	}
	return h, ok
}

// InsertQueryable records a queryable handle, refusing duplicates.
func (r *Registry) InsertQueryable(k Key, handle overlay.Queryable) bool {
	r.qryMu.Lock()
	defer r.qryMu.Unlock()
	if _, ok := r.queryables[k]; ok {
		return false
	}
	r.queryables[k] = handle
	return true
}

// HasQueryable reports whether the pair is registered.
func (r *Registry) HasQueryable(k Key) bool {
	r.qryMu.Lock()
	defer r.qryMu.Unlock()
	_, ok := r.queryables[k]
	return ok
}

// TakeQueryable removes and returns the handle for the pair.
func (r *Registry) TakeQueryable(k Key) (overlay.Queryable, bool) {
	r.qryMu.Lock()
	defer r.qryMu.Unlock()
	h, ok := r.queryables[k]
	if ok {
		delete(r.queryables, k)
	}
	return h, ok
}

// InsertResponse records the response callback for a key expression.
// Re-registering the same key replaces the previous listener
// (last-writer-wins, matching callers that re-register a handler).
func (r *Registry) InsertResponse(keyExpr string, l uproto.Listener) {
	r.rspMu.Lock()
	r.responses[keyExpr] = l
	r.rspMu.Unlock()
}

// TakeResponse removes and returns the callback stored at exactly the
// given key expression.
func (r *Registry) TakeResponse(keyExpr string) (uproto.Listener, bool) {
	r.rspMu.Lock()
	defer r.rspMu.Unlock()
	l, ok := r.responses[keyExpr]
	if ok {
		delete(r.responses, keyExpr)
	}
	return l, ok
}

// MatchResponse returns the first response callback whose stored key
// expression intersects keyExpr under overlay wildcard semantics.
func (r *Registry) MatchResponse(keyExpr string) (uproto.Listener, bool) {
	r.rspMu.Lock()
	defer r.rspMu.Unlock()
	for stored, l := range r.responses {
		if overlay.Intersects(stored, keyExpr) {
			return l, true
		}
	}
	return nil, false
}

// RememberQuery stores an in-flight query under its request ID. A
// second query with the same ID replaces the first; the overlay times
// the orphan out.
func (r *Registry) RememberQuery(reqID [16]byte, q overlay.Query) {
	r.pqMu.Lock()
	r.pending[reqID] = q
	r.pqMu.Unlock()
}

// TakeQuery removes and returns the pending query for a request ID.
// Consumption is one-shot: a second take for the same ID fails.
func (r *Registry) TakeQuery(reqID [16]byte) (overlay.Query, bool) {
	r.pqMu.Lock()
	defer r.pqMu.Unlock()
	q, ok := r.pending[reqID]
	if ok {
		delete(r.pending, reqID)
	}
	return q, ok
}

// PendingQueries returns the number of queries awaiting a response.
func (r *Registry) PendingQueries() int {
	r.pqMu.Lock()
	defer r.pqMu.Unlock()
	return len(r.pending)
}

// Drain empties every table and returns the overlay handles that need
// undeclaring. Used on transport close.
func (r *Registry) Drain() (subs []overlay.Subscriber, qrys []overlay.Queryable) {
	r.subMu.Lock()
	for _, h := range r.subscribers {
		subs = append(subs, h)
	}
	r.subscribers = make(map[Key]overlay.Subscriber)
	r.subMu.Unlock()

	r.qryMu.Lock()
	for _, h := range r.queryables {
		qrys = append(qrys, h)
	}
	r.queryables = make(map[Key]overlay.Queryable)
	r.qryMu.Unlock()

	r.rspMu.Lock()
	r.responses = make(map[string]uproto.Listener)
	r.rspMu.Unlock()

	r.pqMu.Lock()
	r.pending = make(map[[16]byte]overlay.Query)
	r.pqMu.Unlock()

	return subs, qrys
}
