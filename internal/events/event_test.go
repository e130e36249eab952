package events

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productcatalog/internal/models"
)

func sampleCategory() *models.Category {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	return &models.Category{
		ID:          42,
		Name:        "shoes",
		Description: "All shoes",
		ParentID:    1,
		IsActive:    true,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

func TestOperationValid(t *testing.T) {
	tests := []struct {
		op   Operation
		want bool
	}{
		{OpCreate, true},
		{OpUpdate, true},
		{OpDelete, true},
		{"", false},
		{"purge", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.op.Valid(), "operation %q", tt.op)
	}
}

func TestToKafkaMessage(t *testing.T) {
	ev := NewEvent(OpUpdate, sampleCategory())

	msg, err := ev.ToKafkaMessage()
	require.NoError(t, err)

	assert.Equal(t, []byte("42"), msg.Key)
	assert.Equal(t, ev.EmittedAt, msg.Time)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, HeaderOperation, msg.Headers[0].Key)
	assert.Equal(t, []byte("update"), msg.Headers[0].Value)
	assert.Equal(t, HeaderEventID, msg.Headers[1].Key)
	assert.Equal(t, []byte(ev.ID.String()), msg.Headers[1].Value)

	decoded, err := FromKafkaMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, decoded.ID)
	assert.Equal(t, OpUpdate, decoded.Operation)
	assert.Equal(t, 42, decoded.Category.ID)
	assert.Equal(t, "shoes", decoded.Category.Name)
	assert.True(t, decoded.Category.IsActive)
}

func TestNewEventCopiesCategory(t *testing.T) {
	c := sampleCategory()
	ev := NewEvent(OpCreate, c)
	c.Name = "changed"

	assert.Equal(t, "shoes", ev.Category.Name)
	assert.NotEqual(t, ev.ID, NewEvent(OpCreate, c).ID)
}

func TestFromKafkaMessageRejects(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not json", "{"},
		{"unknown operation", `{"operation":"purge","category":{"id":1}}`},
		{"missing operation", `{"category":{"id":1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromKafkaMessage(kafka.Message{Value: []byte(tt.value)})
			assert.Error(t, err)
		})
	}
}
