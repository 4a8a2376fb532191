// Package queue provides the bounded in-memory buffer between the hardware
// driver callback and the single dispatcher goroutine.
//
// The driver delivers raw messages from its own goroutine; everything
// downstream (decoder, matcher) is single-threaded by contract. The queue
// is the only synchronization point: one producer side, exactly one
// consumer draining the dequeue channel.
package queue

import (
	"context"
	"sync"

	"github.com/ahmetildirim/sightreading.studio/internal/domain/decode"
	"github.com/ahmetildirim/sightreading.studio/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 1024
)

// Message is the payload type flowing through the queue.
type Message = decode.Message

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a raw message to the queue.
	// Returns false if the queue is full or closed and the message was
	// dropped.
	Enqueue(ctx context.Context, msg Message) bool

	// Dequeue returns a channel that receives messages as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Message

	// Len returns the current number of buffered messages.
	Len(ctx context.Context) int

	// Close shuts down the queue. After closing, no new messages can be
	// enqueued and the dequeue channel drains then closes.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	messages chan Message
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}

	q.messages = make(chan Message, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)

	return q
}

// Enqueue adds a raw message to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, msg Message) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueDrop()
		return false
	}

	select {
	case q.messages <- msg:
		metrics.RecordQueueEnqueue()
		q.observe()
		return true
	case <-ctx.Done():
		metrics.RecordQueueDrop()
		return false
	default:
		// Queue full. Dropping beats blocking the driver callback.
		metrics.RecordQueueDrop()
		return false
	}
}

// Dequeue returns a channel that receives messages as they become
// available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Message {
	out := make(chan Message)
	go func() {
		defer close(out)
		for msg := range q.messages {
			select {
			case out <- msg:
				metrics.RecordQueueDequeue()
				q.observe()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of buffered messages.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return len(q.messages)
}

// Close shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.messages)
	q.closed = true
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) observe() {
	size := len(q.messages)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
