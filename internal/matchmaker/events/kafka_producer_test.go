package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/gartstein/matchmaker/internal/matchmaker/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// MockKafkaWriter implements KafkaWriter for testing
type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func companyEvent(id string) Event {
	ev := NewEvent(CompanyCreated)
	ev.Company = &models.Company{ID: id, Name: "Test Company"}
	return ev
}

func TestNewEvent(t *testing.T) {
	a := NewEvent(RecommendationsServed)
	b := NewEvent(RecommendationsServed)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, RecommendationsServed, a.Type)
	assert.False(t, a.OccurredAt.IsZero())
	assert.Equal(t, []byte(a.ID.String()), a.key(), "events without a company are keyed by id")
	assert.Equal(t, []byte("fintech-1"), companyEvent("fintech-1").key())
}

func TestProducer_Produce(t *testing.T) {
	t.Run("successful produce", func(t *testing.T) {
		producer := newProducer(new(MockKafkaWriter), zaptest.NewLogger(t), "replica-a", 10)

		producer.Produce(companyEvent("fintech-1"))

		require.Equal(t, 1, len(producer.events))
		queued := <-producer.events
		assert.Equal(t, "replica-a", queued.Source, "source is stamped on queue")
	})

	t.Run("dropped event when queue full", func(t *testing.T) {
		core, recorded := observer.New(zap.WarnLevel)
		producer := newProducer(new(MockKafkaWriter), zap.New(core), "replica-a", 1)

		producer.Produce(companyEvent("fintech-1"))
		producer.Produce(companyEvent("fintech-2"))

		assert.Equal(t, 1, recorded.FilterMessage("Kafka producer queue full, dropping event").Len())
	})
}

func TestProducer_SendEvent(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	producer := newProducer(mockWriter, zaptest.NewLogger(t), "replica-a", 1)
	event := companyEvent("fintech-1")

	t.Run("successful send", func(t *testing.T) {
		mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)

		producer.sendEvent(context.Background(), event)

		mockWriter.AssertCalled(t, "WriteMessages", mock.Anything, []kafka.Message{
			{
				Key:   []byte("fintech-1"),
				Value: mustMarshal(t, event),
			},
		})
	})

	t.Run("serialization error", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		producer.logger = zap.New(core)

		oldMarshal := jsonMarshal
		jsonMarshal = func(_ interface{}) ([]byte, error) {
			return nil, errors.New("mock marshal error")
		}
		defer func() { jsonMarshal = oldMarshal }()

		producer.sendEvent(context.Background(), event)

		assert.Equal(t, 1, recorded.FilterMessage("Failed to serialize event").Len())
		assert.Equal(t, 1, recorded.FilterField(zap.String("event_id", event.ID.String())).Len())
	})

	t.Run("write error", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		producer.logger = zap.New(core)
		mockWriter.ExpectedCalls = nil
		mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("kafka error"))

		producer.sendEvent(context.Background(), event)

		assert.Equal(t, 1, recorded.FilterMessage("Failed to produce event").Len())
	})
}

func TestProducer_Close(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	mockWriter.On("Close").Return(nil)

	producer := newProducer(mockWriter, zaptest.NewLogger(t), "", 1)
	producer.Close()

	select {
	case <-producer.closeChan:
	default:
		t.Error("closeChan not closed")
	}

	mockWriter.AssertCalled(t, "Close")
}

func TestProducer_EventLoop(t *testing.T) {
	written := make(chan []kafka.Message, 1)
	mockWriter := new(MockKafkaWriter)
	mockWriter.On("WriteMessages", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { written <- args.Get(1).([]kafka.Message) }).
		Return(nil)
	mockWriter.On("Close").Return(nil)

	producer := newProducer(mockWriter, zaptest.NewLogger(t), "", 1)
	go producer.eventLoop()
	defer producer.Close()

	producer.Produce(companyEvent("fintech-1"))

	select {
	case msgs := <-written:
		require.Len(t, msgs, 1)
		assert.Equal(t, []byte("fintech-1"), msgs[0].Key)
	case <-time.After(time.Second):
		t.Fatal("event was not written")
	}
}

func mustMarshal(t *testing.T, ev Event) []byte {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	return data
}
