package uptransport

import (
	"sync"

	"github.com/ehrlich-b/go-uptransport/uproto"
)

// CapturingListener is a Listener for tests: it records every received
// message and signals arrivals on a channel.
type CapturingListener struct {
	mu       sync.Mutex
	messages []*uproto.UMessage
	arrived  chan *uproto.UMessage
}

// NewCapturingListener creates a listener buffering up to depth
// arrival notifications.
func NewCapturingListener(depth int) *CapturingListener {
	return &CapturingListener{
		arrived: make(chan *uproto.UMessage, depth),
	}
}

// OnReceive implements the Listener interface
func (l *CapturingListener) OnReceive(msg *uproto.UMessage) {
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()

	select {
	case l.arrived <- msg:
	default:
	}
}

// Arrived returns the arrival channel for waiting in tests.
func (l *CapturingListener) Arrived() <-chan *uproto.UMessage {
	return l.arrived
}

// Messages returns a copy of everything received so far.
func (l *CapturingListener) Messages() []*uproto.UMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*uproto.UMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// Count returns the number of received messages.
func (l *CapturingListener) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}

var _ uproto.Listener = (*CapturingListener)(nil)
