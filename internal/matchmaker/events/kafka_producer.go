package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gartstein/matchmaker/internal/matchmaker/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

type EventType string

const (
	CompanyCreated        EventType = "company_created"
	RecommendationsServed EventType = "recommendations_served"
)

// Event is the message published on the catalog topic. Company is set for
// company_created, Stats for recommendations_served.
type Event struct {
	ID         uuid.UUID                   `json:"id"`
	Type       EventType                   `json:"type"`
	OccurredAt time.Time                   `json:"occurredAt"`
	Source     string                      `json:"source,omitempty"`
	Company    *models.Company             `json:"company,omitempty"`
	Stats      *models.RecommendationStats `json:"stats,omitempty"`
}

// NewEvent stamps a fresh id and time.
func NewEvent(eventType EventType) Event {
	return Event{ID: uuid.New(), Type: eventType, OccurredAt: time.Now().UTC()}
}

// key partitions company events by company id and everything else by event id.
func (ev Event) key() []byte {
	if ev.Company != nil {
		return []byte(ev.Company.ID)
	}
	return []byte(ev.ID.String())
}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer    KafkaWriter
	events    chan Event
	source    string
	logger    *zap.Logger
	closeChan chan struct{}
}

// NewProducer dials the first broker to make sure the topic exists and starts
// the publishing loop. source tags every event so replicas can skip their own.
func NewProducer(brokers []string, logger *zap.Logger, topic, source string) (*Producer, error) {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	topicConfigs := []kafka.TopicConfig{
		{
			Topic:             topic,
			NumPartitions:     3,
			ReplicationFactor: 1,
		},
	}

	err = conn.CreateTopics(topicConfigs...)
	if err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err))
	}
	p := newProducer(&kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.Hash{},
		Topic:    topic,
	}, logger, source, 1000)

	go p.eventLoop()
	return p, nil
}

func newProducer(writer KafkaWriter, logger *zap.Logger, source string, buffer int) *Producer {
	return &Producer{
		writer:    writer,
		events:    make(chan Event, buffer),
		source:    source,
		logger:    logger.Named("kafka_producer"),
		closeChan: make(chan struct{}),
	}
}

// Produce queues event for publishing. It never blocks; when the queue is
// full the event is dropped.
func (p *Producer) Produce(event Event) {
	if event.Source == "" {
		event.Source = p.source
	}
	select {
	case p.events <- event:
	default:
		p.logger.Warn("Kafka producer queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID.String()),
		)
	}
}

func (p *Producer) eventLoop() {
	for {
		select {
		case event := <-p.events:
			p.sendEvent(context.Background(), event)
		case <-p.closeChan:
			return
		}
	}
}

func (p *Producer) sendEvent(ctx context.Context, event Event) {
	value, err := jsonMarshal(event)
	if err != nil {
		p.logger.Error("Failed to serialize event",
			zap.Error(err),
			zap.String("event_id", event.ID.String()),
		)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   event.key(),
		Value: value,
	})
	if err != nil {
		p.logger.Error("Failed to produce event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID.String()),
		)
		return
	}
}

func (p *Producer) Close() {
	close(p.closeChan)
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.Error(err))
	}
}
