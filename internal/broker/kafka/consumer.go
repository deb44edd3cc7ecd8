package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	r messageReader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	cfg := kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	}
	if groupID != "" {
		cfg.GroupTopics = []string{topic}
	} else {
		cfg.Topic = topic
	}
	return &Consumer{
		r: kafka.NewReader(cfg),
	}
}

func newConsumerWithReader(r messageReader) *Consumer {
	return &Consumer{r: r}
}

func (c *Consumer) Close() error {
	return c.r.Close()
}

// Consume hands every message to handler and commits it only after the
// handler succeeded. A handler error stops consumption uncommitted.
func (c *Consumer) Consume(ctx context.Context, handler func(key, value []byte) error) error {
	for {
		msg, err := c.r.FetchMessage(ctx)
		if err != nil {
			return errors.Wrap(err, "fetch message")
		}
		if err := handler(msg.Key, msg.Value); err != nil {
			return err
		}
		if err := c.r.CommitMessages(ctx, msg); err != nil {
			return errors.Wrap(err, "commit message")
		}
	}
}

// PoisonError marks a message that can never be decoded. Consumers of
// ConsumeJSON skip those instead of retrying forever.
type PoisonError struct {
	Key []byte
	Err error
}

func (e *PoisonError) Error() string { return "undecodable message: " + e.Err.Error() }
func (e *PoisonError) Unwrap() error { return e.Err }

// RawConsumer is satisfied by *Consumer.
type RawConsumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
}

// ConsumeJSON decodes each value into T before calling handler. Messages that
// fail to decode are passed to onPoison and committed.
func ConsumeJSON[T any](ctx context.Context, c RawConsumer, handler func(ctx context.Context, msg T) error, onPoison func(*PoisonError)) error {
	return c.Consume(ctx, func(key, value []byte) error {
		var msg T
		if err := json.Unmarshal(value, &msg); err != nil {
			if onPoison != nil {
				onPoison(&PoisonError{Key: key, Err: err})
			}
			return nil
		}
		return handler(ctx, msg)
	})
}
