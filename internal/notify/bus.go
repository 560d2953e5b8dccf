package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fruitsalade/drive/internal/logging"
	"github.com/fruitsalade/drive/internal/metrics"
)

// Dispatcher receives the notifications of drive operations.
type Dispatcher interface {
	Dispatch(n Notification)
}

// Handler applies notifications synchronously, in dispatch order.
type Handler interface {
	Handle(n Notification)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(n Notification)

// Handle calls f(n).
func (f HandlerFunc) Handle(n Notification) { f(n) }

const subscriberBuffer = 64

// Bus delivers every notification to the registered handlers, in
// registration order, then to channel subscribers. Subscribers never block
// dispatch: a notification is dropped for a subscriber whose buffer is full.
type Bus struct {
	mu          sync.RWMutex
	handlers    []Handler
	subscribers map[chan Notification]struct{}
}

// NewBus creates a bus with the given synchronous handlers.
func NewBus(handlers ...Handler) *Bus {
	return &Bus{
		handlers:    handlers,
		subscribers: make(map[chan Notification]struct{}),
	}
}

// Register appends a synchronous handler.
func (b *Bus) Register(h Handler) {
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// Subscribe adds a subscriber and returns its channel.
// The caller must call Unsubscribe when done.
func (b *Bus) Subscribe() chan Notification {
	ch := make(chan Notification, subscriberBuffer)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(ch chan Notification) {
	b.mu.Lock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Count returns the number of channel subscribers.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dispatch implements Dispatcher.
func (b *Bus) Dispatch(n Notification) {
	if n.At.IsZero() {
		n.At = time.Now()
	}

	logging.Debug("dispatch",
		zap.String("type", string(n.Type)),
		zap.String("folder_id", n.FolderID),
		zap.Bool("failed", n.Failed()),
		zap.Error(n.Err))
	metrics.RecordNotification(string(n.Type))

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, h := range b.handlers {
		h.Handle(n)
	}
	for ch := range b.subscribers {
		select {
		case ch <- n:
		default:
			metrics.RecordNotificationDropped()
		}
	}
}

// Discard is a Dispatcher that drops every notification.
var Discard Dispatcher = discard{}

type discard struct{}

func (discard) Dispatch(Notification) {}

// Recorder is a Dispatcher that keeps every notification, for tests and
// one-shot commands.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Dispatch implements Dispatcher.
func (r *Recorder) Dispatch(n Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Types returns the recorded notification types in order.
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]Type, len(r.items))
	for i, n := range r.items {
		types[i] = n.Type
	}
	return types
}

// Last returns the last recorded notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Reset forgets the recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
}
