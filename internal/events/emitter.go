package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"productcatalog/internal/models"
)

// Emitter publishes cache fallback events. Publish is fire-and-forget:
// delivery problems are logged, never returned to the caller.
type Emitter interface {
	Publish(ctx context.Context, op Operation, c *models.Category)
}

// Recorder persists a fallback event next to the broker (outbox).
type Recorder interface {
	Record(ctx context.Context, eventID uuid.UUID, operation string, categoryID int)
}

// messageWriter is the subset of *kafka.Writer the emitter uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig contains configuration for the fallback event writer.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	WriteTimeout time.Duration
	RequiredAcks kafka.RequiredAcks
	Async        bool
}

// DefaultKafkaConfig returns the writer settings used by the API server.
func DefaultKafkaConfig(brokers []string, topic string) KafkaConfig {
	return KafkaConfig{
		Brokers:      brokers,
		Topic:        topic,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
		RequiredAcks: kafka.RequireAll,
		Async:        true,
	}
}

// KafkaEmitter publishes fallback events to a Kafka topic.
type KafkaEmitter struct {
	writer       messageWriter
	recorder     Recorder
	writeTimeout time.Duration
}

// NewKafkaEmitter creates an emitter for cfg.Topic. recorder may be nil.
func NewKafkaEmitter(cfg KafkaConfig, recorder Recorder) *KafkaEmitter {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: cfg.RequiredAcks,
		Async:        cfg.Async,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				slog.Error("fallback event delivery failed", "topic", cfg.Topic, "messages", len(messages), "error", err)
			}
		},
	}
	return newKafkaEmitter(w, recorder, cfg.WriteTimeout)
}

func newKafkaEmitter(w messageWriter, recorder Recorder, writeTimeout time.Duration) *KafkaEmitter {
	if writeTimeout == 0 {
		writeTimeout = 5 * time.Second
	}
	return &KafkaEmitter{writer: w, recorder: recorder, writeTimeout: writeTimeout}
}

// Publish records the event in the outbox and hands it to Kafka. The write
// is detached from ctx cancellation so a finished request does not drop it.
func (e *KafkaEmitter) Publish(ctx context.Context, op Operation, c *models.Category) {
	ev := NewEvent(op, c)
	if e.recorder != nil {
		e.recorder.Record(ctx, ev.ID, string(op), c.ID)
	}

	msg, err := ev.ToKafkaMessage()
	if err != nil {
		slog.Error("fallback event encode failed", "event_id", ev.ID, "error", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.writeTimeout)
	defer cancel()

	if err := e.writer.WriteMessages(writeCtx, msg); err != nil {
		slog.Error("fallback event publish failed",
			"event_id", ev.ID,
			"operation", op,
			"category_id", c.ID,
			"error", err,
		)
		return
	}
	slog.Info("fallback event published", "event_id", ev.ID, "operation", op, "category_id", c.ID)
}

// Close flushes pending async writes and closes the writer.
func (e *KafkaEmitter) Close() error {
	return e.writer.Close()
}

// LogEmitter is used when no broker is configured: events only reach the
// outbox table and the log.
type LogEmitter struct {
	recorder Recorder
}

// NewLogEmitter creates a broker-less emitter. recorder may be nil.
func NewLogEmitter(recorder Recorder) *LogEmitter {
	return &LogEmitter{recorder: recorder}
}

// Publish records and logs the event.
func (e *LogEmitter) Publish(ctx context.Context, op Operation, c *models.Category) {
	ev := NewEvent(op, c)
	if e.recorder != nil {
		e.recorder.Record(ctx, ev.ID, string(op), c.ID)
	}
	slog.Warn("cache fallback event (no broker configured)",
		"event_id", ev.ID,
		"operation", op,
		"category_id", c.ID,
	)
}
