package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
	ctxErr error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ctxErr = ctx.Err()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type recorded struct {
	eventID    uuid.UUID
	operation  string
	categoryID int
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []recorded
}

func (r *fakeRecorder) Record(_ context.Context, eventID uuid.UUID, operation string, categoryID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, recorded{eventID, operation, categoryID})
}

func TestKafkaEmitterPublish(t *testing.T) {
	w := &fakeWriter{}
	rec := &fakeRecorder{}
	e := newKafkaEmitter(w, rec, 0)

	e.Publish(context.Background(), OpCreate, sampleCategory())

	require.Len(t, w.msgs, 1)
	require.Len(t, rec.entries, 1)

	ev, err := FromKafkaMessage(w.msgs[0])
	require.NoError(t, err)
	assert.Equal(t, OpCreate, ev.Operation)
	assert.Equal(t, 42, ev.Category.ID)
	assert.Equal(t, rec.entries[0].eventID, ev.ID, "outbox and topic share the event id")
	assert.Equal(t, "create", rec.entries[0].operation)
	assert.Equal(t, 42, rec.entries[0].categoryID)
}

func TestKafkaEmitterWriteFailureIsSwallowed(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	rec := &fakeRecorder{}
	e := newKafkaEmitter(w, rec, 0)

	assert.NotPanics(t, func() {
		e.Publish(context.Background(), OpDelete, sampleCategory())
	})
	assert.Len(t, rec.entries, 1, "outbox still records the event")
}

func TestKafkaEmitterIgnoresCallerCancellation(t *testing.T) {
	w := &fakeWriter{}
	e := newKafkaEmitter(w, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e.Publish(ctx, OpUpdate, sampleCategory())

	require.Len(t, w.msgs, 1)
	assert.NoError(t, w.ctxErr)
}

func TestKafkaEmitterClose(t *testing.T) {
	w := &fakeWriter{}
	e := newKafkaEmitter(w, nil, 0)
	require.NoError(t, e.Close())
	assert.True(t, w.closed)
}

func TestLogEmitterRecords(t *testing.T) {
	rec := &fakeRecorder{}
	NewLogEmitter(rec).Publish(context.Background(), OpUpdate, sampleCategory())

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "update", rec.entries[0].operation)
	assert.NotEqual(t, uuid.Nil, rec.entries[0].eventID)
}

func TestLogEmitterNilRecorder(t *testing.T) {
	assert.NotPanics(t, func() {
		NewLogEmitter(nil).Publish(context.Background(), OpCreate, sampleCategory())
	})
}

func TestDefaultKafkaConfig(t *testing.T) {
	cfg := DefaultKafkaConfig([]string{"localhost:9092"}, "category-cache-fallback")
	assert.Equal(t, kafka.RequireAll, cfg.RequiredAcks)
	assert.True(t, cfg.Async)
	assert.Equal(t, "category-cache-fallback", cfg.Topic)
}
