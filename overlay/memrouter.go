package overlay

import (
	"sync"
	"time"
)

// The in-process overlay: a per-namespace router that delivers puts to
// intersecting subscribers and gets to intersecting queryables. Every
// subscriber and queryable owns a bounded delivery queue drained by its
// own goroutine, so callback order per source is put order and a slow
// callback only stalls its own queue.

var routers = struct {
	mu sync.Mutex
	m  map[string]*router
}{m: make(map[string]*router)}

type router struct {
	namespace string

	mu         sync.RWMutex
	nextID     uint64
	subs       map[uint64]*subEntry
	queryables map[uint64]*queryableEntry
	sessions   int
}

func openInProc(cfg Config) *inprocSession {
	routers.mu.Lock()
	defer routers.mu.Unlock()
	r := routers.m[cfg.Namespace]
	if r == nil {
		r = &router{
			namespace:  cfg.Namespace,
			subs:       make(map[uint64]*subEntry),
			queryables: make(map[uint64]*queryableEntry),
		}
		routers.m[cfg.Namespace] = r
	}
	r.sessions++
	return &inprocSession{
		cfg:     cfg,
		router:  r,
		handles: make(map[uint64]undeclarer),
	}
}

// releaseRouter drops one session's reference; the namespace is
// forgotten when the last session leaves. sessions is guarded by the
// registry lock, not the router's own.
func releaseRouter(r *router) {
	routers.mu.Lock()
	defer routers.mu.Unlock()
	r.sessions--
	if r.sessions == 0 {
		delete(routers.m, r.namespace)
	}
}

func (r *router) addSub(e *subEntry) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.id = r.nextID
	r.subs[e.id] = e
	return e.id
}

func (r *router) removeSub(id uint64) {
	r.mu.Lock()
	delete(r.subs, id)
	r.mu.Unlock()
}

func (r *router) addQueryable(e *queryableEntry) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.id = r.nextID
	r.queryables[e.id] = e
	return e.id
}

func (r *router) removeQueryable(id uint64) {
	r.mu.Lock()
	delete(r.queryables, id)
	r.mu.Unlock()
}

// route delivers a sample to every subscriber whose key expression
// intersects the sample's key.
func (r *router) route(s *Sample) {
	r.mu.RLock()
	targets := make([]*subEntry, 0, len(r.subs))
	for _, e := range r.subs {
		if Intersects(e.keyExpr, s.KeyExpr) {
			targets = append(targets, e)
		}
	}
	r.mu.RUnlock()

	for _, e := range targets {
		e.deliver(s)
	}
}

// get fans a query out to every intersecting queryable and returns the
// shared reply stream. The stream closes when the timeout elapses;
// replies arriving later fail with ErrQueryFinalized.
func (r *router) get(keyExpr string, payload []byte, att *Attachment, timeout time.Duration) <-chan Reply {
	r.mu.RLock()
	targets := make([]*queryableEntry, 0, len(r.queryables))
	for _, e := range r.queryables {
		if Intersects(e.keyExpr, keyExpr) {
			targets = append(targets, e)
		}
	}
	r.mu.RUnlock()

	// Buffer one slot per target so Reply never blocks on the stream.
	replies := make(chan Reply, len(targets)+1)
	queries := make([]*inprocQuery, 0, len(targets))
	for _, e := range targets {
		q := &inprocQuery{
			keyExpr: keyExpr,
			payload: payload,
			att:     att,
			replies: replies,
		}
		queries = append(queries, q)
		e.deliver(q)
	}

	time.AfterFunc(timeout, func() {
		for _, q := range queries {
			q.finalize()
		}
		close(replies)
	})
	return replies
}

type undeclarer interface {
	Undeclare() error
}

type subEntry struct {
	id      uint64
	keyExpr string
	router  *router
	release func(id uint64)

	mu     sync.Mutex
	closed bool
	ch     chan *Sample
}

func (e *subEntry) run(callback func(*Sample)) {
	for s := range e.ch {
		callback(s)
	}
}

func (e *subEntry) deliver(s *Sample) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.ch <- s
	}
}

func (e *subEntry) Undeclare() error {
	e.router.removeSub(e.id)
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.ch)
	e.mu.Unlock()
	if e.release != nil {
		e.release(e.id)
	}
	return nil
}

type queryableEntry struct {
	id      uint64
	keyExpr string
	router  *router
	release func(id uint64)

	mu     sync.Mutex
	closed bool
	ch     chan *inprocQuery
}

func (e *queryableEntry) run(callback func(Query)) {
	for q := range e.ch {
		callback(q)
	}
}

func (e *queryableEntry) deliver(q *inprocQuery) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.ch <- q
	}
}

func (e *queryableEntry) Undeclare() error {
	e.router.removeQueryable(e.id)
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.ch)
	e.mu.Unlock()
	if e.release != nil {
		e.release(e.id)
	}
	return nil
}

type inprocQuery struct {
	keyExpr string
	payload []byte
	att     *Attachment

	mu      sync.Mutex
	done    bool
	replies chan<- Reply
}

func (q *inprocQuery) KeyExpr() string {
	return q.keyExpr
}

func (q *inprocQuery) Payload() []byte {
	return q.payload
}

func (q *inprocQuery) Attachment() *Attachment {
	return q.att
}

func (q *inprocQuery) Reply(sample *Sample) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.done {
		return ErrQueryFinalized
	}
	q.done = true
	q.replies <- Reply{Sample: sample}
	return nil
}

func (q *inprocQuery) finalize() {
	q.mu.Lock()
	q.done = true
	q.mu.Unlock()
}

type inprocSession struct {
	cfg    Config
	router *router

	mu      sync.Mutex
	closed  bool
	handles map[uint64]undeclarer
}

func (s *inprocSession) Put(keyExpr string, payload []byte, attachment *Attachment, priority Priority) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.mu.Unlock()

	s.router.route(&Sample{
		KeyExpr:    keyExpr,
		Payload:    payload,
		Attachment: attachment,
		Priority:   priority,
	})
	return nil
}

func (s *inprocSession) Get(keyExpr string, payload []byte, attachment *Attachment, _ QueryTarget, timeout time.Duration) (<-chan Reply, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	s.mu.Unlock()

	return s.router.get(keyExpr, payload, attachment, timeout), nil
}

func (s *inprocSession) DeclareSubscriber(keyExpr string, callback func(*Sample)) (Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}

	e := &subEntry{
		keyExpr: keyExpr,
		router:  s.router,
		release: s.forget,
		ch:      make(chan *Sample, s.cfg.DeliveryBound),
	}
	s.router.addSub(e)
	s.handles[e.id] = e
	go e.run(callback)
	return e, nil
}

func (s *inprocSession) DeclareQueryable(keyExpr string, callback func(Query)) (Queryable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}

	e := &queryableEntry{
		keyExpr: keyExpr,
		router:  s.router,
		release: s.forget,
		ch:      make(chan *inprocQuery, s.cfg.QueryableBound),
	}
	s.router.addQueryable(e)
	s.handles[e.id] = e
	go e.run(callback)
	return e, nil
}

func (s *inprocSession) forget(id uint64) {
	s.mu.Lock()
	delete(s.handles, id)
	s.mu.Unlock()
}

func (s *inprocSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	handles := make([]undeclarer, 0, len(s.handles))
	for _, h := range s.handles {
		handles = append(handles, h)
	}
	s.handles = make(map[uint64]undeclarer)
	s.mu.Unlock()

	for _, h := range handles {
		_ = h.Undeclare()
	}
	releaseRouter(s.router)
	return nil
}
