package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"rentwheels/pkg/logger"
)

var (
	ErrPublisherClosed = errors.New("event publisher closed")
	ErrQueueFull       = errors.New("event queue full")
)

type queuedEvent struct {
	ctx   context.Context
	event Event
}

// asyncPublisher hands events to a background worker so a slow or
// unreachable broker never holds up the request that caused the event.
type asyncPublisher struct {
	inner   Publisher
	log     *logger.Logger
	timeout time.Duration

	queue chan queuedEvent
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsyncPublisher wraps inner with a bounded queue. Each event gets its own
// timeout and keeps the request's values, but not its cancellation.
func NewAsyncPublisher(inner Publisher, log *logger.Logger, queueSize int, timeout time.Duration) Publisher {
	p := &asyncPublisher{
		inner:   inner,
		log:     log,
		timeout: timeout,
		queue:   make(chan queuedEvent, queueSize),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *asyncPublisher) run() {
	defer close(p.done)
	for q := range p.queue {
		ctx, cancel := context.WithTimeout(q.ctx, p.timeout)
		if err := p.inner.Publish(ctx, q.event); err != nil {
			p.log.Warn("Failed to publish domain event",
				"event_type", q.event.Type,
				"key", q.event.Key,
				"error", err,
			)
		}
		cancel()
	}
}

// Publish enqueues the event and returns at once. A full queue drops it.
func (p *asyncPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events, drains the queue and closes inner.
func (p *asyncPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.inner.Close()
}
