package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dharmasatrya/tripfares/internal/prewarm"
)

// Publisher enqueues prewarm batches. It opens one connection per batch;
// batches are rare operator actions.
type Publisher struct {
	url   string
	queue string
	now   func() time.Time
}

func NewPublisher(url, queue string) *Publisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Publisher{url: url, queue: queue, now: time.Now}
}

func (p *Publisher) Dispatch(ctx context.Context, batchID string, jobs []prewarm.Job) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	for _, job := range jobs {
		pub, err := p.publishing(batchID, job)
		if err != nil {
			return err
		}
		if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
			return fmt.Errorf("publish %s/%d/%d-%02d: %w", job.Origin, job.Pax, job.Year, job.Month, err)
		}
	}

	slog.Info("prewarm batch enqueued", "batch_id", batchID, "jobs", len(jobs), "queue", p.queue)
	return nil
}

func (p *Publisher) publishing(batchID string, job prewarm.Job) (amqp.Publishing, error) {
	now := p.now().UTC()
	body, err := Encode(JobMessage{BatchID: batchID, Job: job, EnqueuedAt: now})
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Timestamp:     now,
		CorrelationId: batchID,
		Body:          body,
	}, nil
}
