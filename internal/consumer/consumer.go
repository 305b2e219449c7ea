package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"parcelsync/entity"
	"parcelsync/internal/config"
	"parcelsync/internal/lib/sl"
	"time"

	"github.com/segmentio/kafka-go"
)

const retryDelay = 5 * time.Second

type Core interface {
	HandleStatusChange(ctx context.Context, event *entity.StatusEvent) (*entity.ParcelResult, bool)
}

// MessageReader is the part of kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer feeds order-status events from a Kafka topic into the reconciler.
type Consumer struct {
	reader MessageReader
	core   Core
	log    *slog.Logger
}

func NewConsumer(conf *config.Config, core Core, log *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  conf.Kafka.Brokers,
		Topic:    conf.Kafka.Topic,
		GroupID:  conf.Kafka.GroupId,
		MaxBytes: 10e6, // 10MB
	})
	return newConsumer(reader, core, log.With(
		sl.Module("consumer"),
		slog.String("topic", conf.Kafka.Topic),
	))
}

func newConsumer(reader MessageReader, core Core, log *slog.Logger) *Consumer {
	return &Consumer{
		reader: reader,
		core:   core,
		log:    log,
	}
}

// Run consumes until ctx is cancelled. Every message is committed once
// handled, malformed ones included, so a bad event cannot block the partition.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info("consumer started")
	defer c.Close()

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.log.Info("consumer stopped")
				return nil
			}
			c.log.With(sl.Err(err)).Error("fetch message")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryDelay):
			}
			continue
		}

		if err = c.handleMessage(ctx, m); err != nil {
			c.log.With(
				slog.Int("partition", m.Partition),
				slog.Int64("offset", m.Offset),
				sl.Err(err),
			).Warn("message skipped")
		}

		if err = c.reader.CommitMessages(ctx, m); err != nil {
			c.log.With(sl.Err(err)).Error("commit message")
		}
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.With(sl.Err(err)).Warn("close kafka reader")
	}
}

func (c *Consumer) handleMessage(ctx context.Context, m kafka.Message) error {
	var event entity.StatusEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if err := event.Bind(nil); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	result, acted := c.core.HandleStatusChange(ctx, &event)
	if acted && result != nil {
		c.log.Debug("status event handled",
			slog.Int64("order_id", event.OrderId),
			slog.String("status", string(result.Status)))
	}
	return nil
}
