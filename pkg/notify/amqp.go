package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

const defaultPublishTimeout = 5 * time.Second

// Channel is the part of an AMQP channel the publisher uses
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPPublisher sends events as JSON messages to a durable queue
type AMQPPublisher struct {
	channel Channel
	queue   string
	timeout time.Duration

	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher publishes on an already-open channel to queue
func NewAMQPPublisher(channel Channel, queue string) *AMQPPublisher {
	return &AMQPPublisher{channel: channel, queue: queue, timeout: defaultPublishTimeout}
}

// DialAMQP connects to the broker, declares the durable queue and returns a
// publisher that owns the connection. Close releases it.
func DialAMQP(url, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	p := NewAMQPPublisher(ch, q.Name)
	p.conn = conn
	p.ch = ch
	return p, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event model.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         string(event.Type),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

// Close closes the channel and connection opened by DialAMQP
func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
