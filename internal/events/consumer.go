package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler processes one decoded fallback event. A non-nil error means the
// event was not applied and must be retried.
type Handler func(ctx context.Context, ev Event) error

// messageReader is the subset of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerConfig contains configuration for the fallback event reader.
type ConsumerConfig struct {
	Brokers        []string
	Topic          string
	GroupID        string
	MinBytes       int
	MaxBytes       int
	MaxWait        time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// MaxAttempts caps handler attempts per event; zero retries until
	// the consumer stops.
	MaxAttempts int
}

// DefaultConsumerConfig returns the reader settings used by the reconciler.
func DefaultConsumerConfig(brokers []string, topic, groupID string) ConsumerConfig {
	return ConsumerConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		MaxAttempts:    10,
	}
}

// Consumer reads fallback events and commits each offset only after the
// handler applied it.
type Consumer struct {
	reader         messageReader
	initialBackoff time.Duration
	maxBackoff     time.Duration
	maxAttempts    int
}

// NewConsumer creates a group consumer for cfg.Topic.
func NewConsumer(cfg ConsumerConfig) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		MaxWait:        cfg.MaxWait,
		CommitInterval: 0, // synchronous commits
		StartOffset:    kafka.FirstOffset,
	})
	c := newConsumer(r, cfg.InitialBackoff, cfg.MaxBackoff)
	c.maxAttempts = cfg.MaxAttempts
	return c
}

func newConsumer(r messageReader, initial, max time.Duration) *Consumer {
	if initial <= 0 {
		initial = time.Second
	}
	if max < initial {
		max = initial
	}
	return &Consumer{reader: r, initialBackoff: initial, maxBackoff: max}
}

// Run fetches messages until ctx is cancelled. Undecodable messages are
// logged and committed so they cannot block the partition. Handler failures
// are retried with exponential backoff; once maxAttempts is reached the event
// is logged and committed, leaving the repair to the resync command.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		ev, err := FromKafkaMessage(msg)
		if err != nil {
			slog.Error("dropping undecodable fallback event",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		} else if err := c.apply(ctx, handle, ev); err != nil {
			// Only cancellation stops apply.
			return nil
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// apply calls handle until it succeeds, the attempts run out or ctx is
// done. Only cancellation is returned as an error.
func (c *Consumer) apply(ctx context.Context, handle Handler, ev Event) error {
	backoff := c.initialBackoff
	for attempt := 1; ; attempt++ {
		err := handle(ctx, ev)
		if err == nil {
			return nil
		}
		if c.maxAttempts > 0 && attempt >= c.maxAttempts {
			slog.Error("giving up on fallback event",
				"event_id", ev.ID,
				"operation", ev.Operation,
				"category_id", ev.Category.ID,
				"attempts", attempt,
				"error", err,
			)
			return nil
		}
		slog.Warn("fallback event not applied, retrying",
			"event_id", ev.ID,
			"operation", ev.Operation,
			"category_id", ev.Category.ID,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, c.maxBackoff)
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
