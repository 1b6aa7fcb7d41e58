package stream

import (
	"sync"
	"sync/atomic"

	"github.com/mr1hm/go-alert-dashboard/internal/models"
)

const DefaultBufferSize = 100

// Broadcaster fans store change events out to stream subscribers.
type Broadcaster struct {
	subscribers map[uint64]chan *models.Event
	nextID      atomic.Uint64
	bufferSize  int
	dropped     atomic.Uint64
	mu          sync.RWMutex
	closed      bool
}

func NewBroadcaster(bufferSize int) *Broadcaster {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Broadcaster{
		subscribers: make(map[uint64]chan *models.Event),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a new subscriber. After Close it returns an already
// closed channel.
func (b *Broadcaster) Subscribe() (uint64, <-chan *models.Event) {
	id := b.nextID.Add(1)
	ch := make(chan *models.Event, b.bufferSize)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subscribers[id] = ch

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

// Broadcast never blocks: subscribers with a full buffer miss the event.
func (b *Broadcaster) Broadcast(ev *models.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
			b.dropped.Add(1)
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dropped reports how many deliveries were skipped for slow subscribers.
func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes all subscriber channels, causing streams to exit gracefully
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
