package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"gopherai-pdfqa/internal/model"
)

// RecordStore persists audit records.
type RecordStore interface {
	Create(record *model.QueryRecord) error
}

var errInvalidRecord = errors.New("invalid query record")

// QueryRecordWorker drains the audit queue into the record store.
type QueryRecordWorker struct {
	conn      *amqp.Connection
	store     RecordStore
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewQueryRecordWorker(conn *amqp.Connection, store RecordStore, queueName string) *QueryRecordWorker {
	return &QueryRecordWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
	}
}

func (w *QueryRecordWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	ch, err := w.conn.Channel()
	if err != nil {
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		return fmt.Errorf("set worker qos failed: %w", err)
	}
	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					log.Warn().Str("queue", w.queueName).Msg("audit deliveries channel closed")
					return
				}
				w.deliver(d)
			}
		}
	}()

	log.Info().Str("queue", w.queueName).Msg("audit worker started")
	return nil
}

func (w *QueryRecordWorker) deliver(d amqp.Delivery) {
	err := w.handle(d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, errInvalidRecord):
		log.Error().Err(err).Msg("drop audit record")
		_ = d.Nack(false, false)
	default:
		log.Error().Err(err).Bool("redelivered", d.Redelivered).Msg("persist audit record failed")
		// one retry, then drop
		_ = d.Nack(false, !d.Redelivered)
	}
}

func (w *QueryRecordWorker) handle(body []byte) error {
	var record model.QueryRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return fmt.Errorf("%w: %v", errInvalidRecord, err)
	}
	if strings.TrimSpace(record.RequestID) == "" {
		return fmt.Errorf("%w: missing request id", errInvalidRecord)
	}
	record.ID = 0
	return w.store.Create(&record)
}

func (w *QueryRecordWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
