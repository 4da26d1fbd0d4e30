package notify

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

var (
	ErrQueueFull = errors.New("event queue is full")
	ErrClosed    = errors.New("publisher is closed")
)

// Async hands events to a background goroutine so slow transports never hold
// up the caller. Failed deliveries are logged. Close drains the queue.
type Async struct {
	next   Publisher
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
	events chan model.Event
	done   chan struct{}
}

// NewAsync starts the delivery goroutine with room for buffer pending events
func NewAsync(next Publisher, buffer int, logger *zap.Logger) *Async {
	a := &Async{
		next:   next,
		logger: logger,
		events: make(chan model.Event, buffer),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	for event := range a.events {
		if err := a.next.Publish(context.Background(), event); err != nil {
			a.logger.Warn("Failed to deliver event",
				zap.String("type", string(event.Type)),
				zap.String("employee_id", event.EmployeeID),
				zap.Error(err))
		}
	}
}

// Publish enqueues the event without blocking
func (a *Async) Publish(_ context.Context, event model.Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrClosed
	}

	select {
	case a.events <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits until every queued event is delivered
func (a *Async) Close() error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.events)
	}
	a.mu.Unlock()

	<-a.done
	return nil
}
