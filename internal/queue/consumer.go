package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dharmasatrya/tripfares/internal/prewarm"
)

type Handler func(ctx context.Context, m JobMessage) error

// Consumer processes prewarm jobs until its context is cancelled,
// reconnecting to the broker with backoff.
type Consumer struct {
	url      string
	queue    string
	prefetch int
	handler  Handler
}

func NewConsumer(url, queue string, prefetch int, handler Handler) *Consumer {
	if queue == "" {
		queue = DefaultQueueName
	}
	if prefetch <= 0 {
		prefetch = 1
	}
	return &Consumer{url: url, queue: queue, prefetch: prefetch, handler: handler}
}

func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			slog.Warn("prewarm consumer: dial failed", "error", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("prewarm consumer: loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		slog.Warn("prewarm consumer: set QoS failed", "error", err)
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handleDelivery(ctx, d)
		}
	}
}

// handleDelivery acks processed messages and rejects bad ones without
// requeueing so a poison message cannot loop. Jobs interrupted by shutdown
// go back on the queue.
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	m, err := Decode(d.Body)
	if err == nil {
		err = c.handler(ctx, m)
	}
	if err != nil {
		if ctx.Err() != nil {
			slog.Info("prewarm consumer: job interrupted, requeueing", "batch_id", m.BatchID, "error", err)
			_ = d.Nack(false, true)
			return
		}
		slog.Warn("prewarm consumer: job failed", "batch_id", m.BatchID, "error", err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

// WarmHandler runs each received job through w.
func WarmHandler(w *prewarm.Warmer) Handler {
	return func(ctx context.Context, m JobMessage) error {
		s := w.Run(ctx, []prewarm.Job{m.Job})
		if s.Fail > 0 {
			return fmt.Errorf("prewarm %s/%d/%d-%02d: %s", m.Job.Origin, m.Job.Pax, m.Job.Year, m.Job.Month, s.Results[0].Error)
		}
		slog.Info("prewarm job done", "batch_id", m.BatchID, "origin", m.Job.Origin,
			"pax", m.Job.Pax, "year", m.Job.Year, "month", m.Job.Month, "ms", s.Results[0].Ms)
		return nil
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
