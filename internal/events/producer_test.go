package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/travel_app/pkg/logging"
)

func TestNewProducer_RequiresBrokers(t *testing.T) {
	t.Parallel()

	_, err := NewProducer(nil, nil)
	require.Error(t, err)
}

func TestProducer_AsyncDeliveryLogsFailures(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p, err := NewProducer([]string{"localhost:9092"}, logging.NewWithWriter(&buf, "info"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	assert.True(t, p.writer.Async)
	require.NotNil(t, p.writer.Completion)

	p.writer.Completion([]kafka.Message{{Topic: TopicUsers, Key: []byte("42")}}, errors.New("leader not available"))
	out := buf.String()
	assert.Contains(t, out, "kafka_delivery_failed")
	assert.Contains(t, out, TopicUsers)
	assert.Contains(t, out, "leader not available")

	buf.Reset()
	p.writer.Completion([]kafka.Message{{Topic: TopicUsers}}, nil)
	assert.Empty(t, buf.String())
}

func TestRecorder_KeepsOrder(t *testing.T) {
	t.Parallel()

	var r Recorder
	ctx := context.Background()
	require.NoError(t, r.PublishEvent(ctx, TopicUsers, "1", Event{Type: UserRegistered, UserID: 1}))
	require.NoError(t, r.PublishEvent(ctx, TopicTrips, "7", Event{Type: TripCreated, UserID: 1, TripID: 7}))

	assert.Equal(t, []string{UserRegistered, TripCreated}, r.Types())
	assert.Equal(t, TopicTrips, r.Events()[1].Topic)
}

func TestProducer_PublishEvent_Kafka(t *testing.T) {
	brokers := os.Getenv("TRAVEL_TEST_KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("TRAVEL_TEST_KAFKA_BROKERS not set")
	}
	broker := strings.Split(brokers, ",")[0]

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	conn, err := kafka.DialLeader(ctx, "tcp", broker, TopicUsers, 0)
	require.NoError(t, err)
	end, err := conn.ReadLastOffset()
	require.NoError(t, err)
	_ = conn.Close()

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     TopicUsers,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
		MaxWait:   time.Second,
	})
	defer r.Close()
	require.NoError(t, r.SetOffset(end))

	p, err := NewProducer([]string{broker}, nil)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.PublishEvent(ctx, TopicUsers, "42", Event{Type: UserRegistered, UserID: 42}))

	m, err := r.ReadMessage(ctx)
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal(m.Value, &got))
	assert.Equal(t, UserRegistered, got.Type)
	assert.Equal(t, uint(42), got.UserID)
	assert.Equal(t, "42", string(m.Key))
}
