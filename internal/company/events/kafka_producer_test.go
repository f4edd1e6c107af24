package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/coronavstech/companies/internal/company/models"
	"github.com/google/uuid"
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

func TestNewProducer(t *testing.T) {
	logger := zaptest.NewLogger(t)
	producer := NewProducer([]string{"localhost:9092"}, "companies", logger)
	defer producer.Close()

	writer, ok := producer.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "companies", writer.Topic)
	assert.NotNil(t, producer.events)
	assert.NotNil(t, producer.closeChan)
	assert.Equal(t, "kafka_producer", producer.logger.Check(zap.InfoLevel, "").LoggerName)
}

func TestProducer_Produce(t *testing.T) {
	t.Run("successful produce", func(t *testing.T) {
		producer := newProducer(new(MockKafkaWriter), zaptest.NewLogger(t))
		fixed := time.Date(2020, 3, 15, 10, 0, 0, 0, time.UTC)
		producer.now = func() time.Time { return fixed }
		company := &models.Company{ID: uuid.New()}

		producer.Produce(CompanyCreated, company)

		require.Equal(t, 1, len(producer.events))
		event := <-producer.events
		assert.Equal(t, CompanyCreated, event.Type)
		assert.Equal(t, company, event.Company)
		assert.Equal(t, fixed, event.OccurredAt)
	})

	t.Run("dropped event when queue full", func(t *testing.T) {
		core, recorded := observer.New(zap.WarnLevel)
		producer := newProducer(new(MockKafkaWriter), zap.New(core))
		producer.events = make(chan Event, 1) // Small buffer for test
		company := &models.Company{ID: uuid.New()}

		// Fill the channel
		producer.Produce(CompanyCreated, company)
		producer.Produce(CompanyCreated, company) // This should be dropped

		// Check logs
		assert.Equal(t, 1, recorded.FilterMessage("Kafka producer queue full, dropping event").Len())
	})
}

func TestProducer_SendEvent(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	logger := zaptest.NewLogger(t)
	company := &models.Company{ID: uuid.New(), Name: "Test Company", Status: models.StatusLayoffs}

	producer := &Producer{
		writer: mockWriter,
		logger: logger,
	}

	t.Run("successful send", func(t *testing.T) {
		mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)

		event := Event{Type: CompanyCreated, Company: company, OccurredAt: time.Unix(0, 0).UTC()}
		producer.sendEvent(context.Background(), event)

		mockWriter.AssertCalled(t, "WriteMessages", mock.Anything, []kafka.Message{
			{
				Key:   []byte(company.ID.String()),
				Value: mustMarshal(event),
			},
		})
	})

	t.Run("serialization error", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		producer.logger = zap.New(core)

		company := &models.Company{ID: uuid.New(), Name: "Valid Company"}

		// Mock JSON marshaling to force error
		oldMarshal := jsonMarshal
		jsonMarshal = func(_ interface{}) ([]byte, error) {
			return nil, errors.New("mock marshal error")
		}
		defer func() { jsonMarshal = oldMarshal }()

		event := Event{Type: CompanyCreated, Company: company}
		producer.sendEvent(context.Background(), event)

		// Verify error logging
		assert.Equal(t, 1, recorded.FilterMessage("Failed to serialize event").Len())
		assert.Equal(t, 1, recorded.FilterField(zap.String("company_id", company.ID.String())).Len())
	})

	t.Run("write error", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		producer.logger = zap.New(core)
		mockWriter.ExpectedCalls = nil
		mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("kafka error"))

		event := Event{Type: CompanyCreated, Company: company}
		producer.sendEvent(context.Background(), event)

		assert.Equal(t, 1, recorded.FilterMessage("Failed to produce event").Len())
	})
}

func TestEventJSON(t *testing.T) {
	id := uuid.New()
	event := Event{
		Type:       CompanyDeleted,
		Company:    &models.Company{ID: id, Name: "Twitter", Status: models.StatusHiringFreeze},
		OccurredAt: time.Date(2020, 4, 1, 12, 0, 0, 0, time.UTC),
	}

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(mustMarshal(event), &decoded))

	assert.Equal(t, "company_deleted", decoded["type"])
	assert.Equal(t, "2020-04-01T12:00:00Z", decoded["occurred_at"])
	company, ok := decoded["company"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, id.String(), company["id"])
	assert.Equal(t, "Hiring Freeze", company["status"])
}

func TestProducer_Close(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	mockWriter.On("Close").Return(nil)

	producer := &Producer{
		writer:    mockWriter,
		closeChan: make(chan struct{}),
		logger:    zaptest.NewLogger(t),
	}

	producer.Close()

	// Verify close channel is closed
	select {
	case <-producer.closeChan:
	default:
		t.Error("closeChan not closed")
	}

	mockWriter.AssertCalled(t, "Close")
}

func TestProducer_CloseFlushesQueue(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)
	mockWriter.On("Close").Return(nil)

	producer := newProducer(mockWriter, zaptest.NewLogger(t))
	producer.Produce(CompanyCreated, &models.Company{ID: uuid.New()})
	producer.Produce(CompanyUpdated, &models.Company{ID: uuid.New()})

	go producer.eventLoop()
	producer.Close()

	mockWriter.AssertNumberOfCalls(t, "WriteMessages", 2)
	mockWriter.AssertCalled(t, "Close")
}

func TestProducer_EventLoop(t *testing.T) {
	sent := make(chan struct{}, 1)
	mockWriter := new(MockKafkaWriter)
	mockWriter.On("WriteMessages", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { sent <- struct{}{} }).
		Return(nil)

	producer := &Producer{
		writer:    mockWriter,
		events:    make(chan Event, 1),
		logger:    zaptest.NewLogger(t),
		closeChan: make(chan struct{}),
		done:      make(chan struct{}),
	}

	company := &models.Company{ID: uuid.New()}
	event := Event{Type: CompanyCreated, Company: company}

	// Start event loop
	go producer.eventLoop()

	// Send event
	producer.events <- event

	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("event was not written")
	}

	close(producer.closeChan)
	<-producer.done
	mockWriter.AssertCalled(t, "WriteMessages", mock.Anything, mock.Anything)
}

func TestNopProducer(t *testing.T) {
	core, recorded := observer.New(zap.DebugLevel)
	producer := NewNopProducer(zap.New(core))

	producer.Produce(CompanyCreated, &models.Company{ID: uuid.New()})
	producer.Close()

	assert.Equal(t, 1, recorded.FilterMessage("Event discarded, no brokers configured").Len())
}

func TestEnsureTopicWithoutBrokers(t *testing.T) {
	err := EnsureTopic(context.Background(), nil, "companies", 1)
	assert.Error(t, err)
}

func mustMarshal(v interface{}) []byte {
	data, _ := json.Marshal(v)
	return data
}
