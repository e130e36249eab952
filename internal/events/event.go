// Package events carries cache fallback notifications. When the category
// cache cannot be written, the lifecycle service publishes an Event so an
// out-of-band consumer can repair the cache from the store later.
package events

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"productcatalog/internal/models"
)

// Operation is the lifecycle step whose cache write failed.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Valid reports whether o is one of the known operations.
func (o Operation) Valid() bool {
	switch o {
	case OpCreate, OpUpdate, OpDelete:
		return true
	}
	return false
}

// Header names set on every Kafka message.
const (
	HeaderOperation = "operation"
	HeaderEventID   = "event-id"
)

// Event is the fallback notification payload.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Operation Operation       `json:"operation"`
	Category  models.Category `json:"category"`
	EmittedAt time.Time       `json:"emitted_at"`
}

// NewEvent stamps a new event for the given operation and category.
func NewEvent(op Operation, c *models.Category) Event {
	return Event{
		ID:        uuid.New(),
		Operation: op,
		Category:  *c,
		EmittedAt: time.Now().UTC(),
	}
}

// ToKafkaMessage encodes the event. Messages are keyed by category id so all
// events for one category land on the same partition in order.
func (e Event) ToKafkaMessage() (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event %s: %w", e.ID, err)
	}
	return kafka.Message{
		Key:   []byte(strconv.Itoa(e.Category.ID)),
		Value: value,
		Headers: []kafka.Header{
			{Key: HeaderOperation, Value: []byte(e.Operation)},
			{Key: HeaderEventID, Value: []byte(e.ID.String())},
		},
		Time: e.EmittedAt,
	}, nil
}

// FromKafkaMessage decodes an event and rejects unknown operations.
func FromKafkaMessage(km kafka.Message) (Event, error) {
	var e Event
	if err := json.Unmarshal(km.Value, &e); err != nil {
		return Event{}, fmt.Errorf("decode event at offset %d: %w", km.Offset, err)
	}
	if !e.Operation.Valid() {
		return Event{}, fmt.Errorf("event %s: unknown operation %q", e.ID, e.Operation)
	}
	return e, nil
}
