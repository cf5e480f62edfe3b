package hostsim

import (
	"sync"

	"github.com/seantiz/rtwork/internal/model"
)

// subscriberBufferSize is the channel buffer for each cycle subscriber.
// Reports are dropped if a subscriber falls this far behind.
const subscriberBufferSize = 64

// Broker fans cycle reports out to subscribers. It is safe for concurrent use.
// Publishing never blocks the cycle.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]chan model.Cycle
	nextID int
	closed bool
}

// NewBroker creates a new broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan model.Cycle)}
}

// Subscribe returns a channel receiving cycle reports and an unsubscribe
// function. After Close the returned channel is already closed.
func (b *Broker) Subscribe() (<-chan model.Cycle, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan model.Cycle, subscriberBufferSize)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish sends a report to all subscribers, dropping it for subscribers
// whose buffers are full.
func (b *Broker) Publish(c model.Cycle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

// Close closes every subscriber channel. Later Subscribe calls get a closed channel.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
