package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DialTimeout bounds the TCP connect and AMQP handshake of one publish.
const DialTimeout = 2 * time.Second

// Publisher publishes AuthEvents to a durable queue. Each call dials the
// broker, so a broker outage only fails the publish, never the server.
type Publisher struct {
	URL         string
	Queue       string
	DialTimeout time.Duration
	Log         *zap.Logger
}

// NewPublisher returns a Publisher for the queue at url.
func NewPublisher(url, queue string, log *zap.Logger) *Publisher {
	return &Publisher{URL: url, Queue: queue, DialTimeout: DialTimeout, Log: log}
}

// dial connects to url within timeout, or sooner when ctx expires first.
func dial(ctx context.Context, url string, timeout time.Duration) (*amqp.Connection, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// Publish sends event as a persistent JSON message. Errors are logged and
// returned so the caller can choose to ignore them.
func (p *Publisher) Publish(ctx context.Context, event AuthEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = DialTimeout
	}
	conn, err := dial(ctx, p.URL, timeout)
	if err != nil {
		p.Log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		p.Log.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         event.Type,
		Body:         body,
	}
	// default exchange, routing key = queue name
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		p.Log.Warn("rabbitmq: publish failed", zap.Error(err), zap.String("type", event.Type))
		return err
	}
	return nil
}

// Nop discards events. It is used when EVENTS_ENABLED is off.
type Nop struct{}

func (Nop) Publish(context.Context, AuthEvent) error { return nil }
