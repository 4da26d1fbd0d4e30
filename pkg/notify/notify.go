// Package notify delivers schedule events to the outside world: the log,
// a RabbitMQ queue and e-mail. Publishers can be combined with Multi and
// moved off the caller's goroutine with Async.
package notify

import (
	"context"
	"errors"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

// Publisher delivers one event
type Publisher interface {
	Publish(ctx context.Context, event model.Event) error
}

// Multi fans an event out to every publisher, returning all of their errors
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event model.Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
