package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"gopherai-pdfqa/internal/model"
)

// QueryPublisher sends audit records to the queue. Channels are not safe for
// concurrent publishing, so one channel is shared behind a mutex and reopened
// after the broker closes it.
type QueryPublisher struct {
	conn      *amqp.Connection
	queueName string

	mu sync.Mutex
	ch *amqp.Channel
}

func NewQueryPublisher(conn *amqp.Connection, queueName string) *QueryPublisher {
	return &QueryPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *QueryPublisher) Publish(ctx context.Context, record model.QueryRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal query record failed: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		ch, err := p.conn.Channel()
		if err != nil {
			return fmt.Errorf("open rabbitmq channel failed: %w", err)
		}
		p.ch = ch
	}

	if err := p.ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish query record failed: %w", err)
	}
	return nil
}

func (p *QueryPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	err := p.ch.Close()
	p.ch = nil
	return err
}
