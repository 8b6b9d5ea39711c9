// Package events publishes marketplace domain events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"car-mzansi-connect/internal/common/errors"
	"car-mzansi-connect/internal/common/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Publisher sends one event to a topic. key selects the partition.
type Publisher interface {
	Publish(ctx context.Context, topic, key, eventType string, payload interface{}) error
}

// Event is the envelope written as the message value.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	logger logger.Logger
}

func NewKafkaPublisher(brokers []string, log logger.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            3,
		WriteBackoffMin:        100 * time.Millisecond,
		WriteBackoffMax:        time.Second,
	}
	log.Info("Kafka publisher created", map[string]interface{}{"brokers": brokers})
	return &KafkaPublisher{writer: writer, logger: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	value, err := json.Marshal(Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	msg := kafka.Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   value,
		Headers: []kafka.Header{{Key: "event-type", Value: []byte(eventType)}},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithError(err).Error("Failed to publish event", map[string]interface{}{
			"topic": topic,
			"key":   key,
			"type":  eventType,
		})
		return errors.NewEventPublishFailedError(topic, err)
	}

	p.logger.Debug("Event published", map[string]interface{}{"topic": topic, "key": key, "type": eventType})
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop discards events. Used when kafka.enabled is false.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, string, interface{}) error { return nil }

// Event types.
const (
	TypeApplicationSubmitted = "finance.application.submitted"
	TypeTestDriveBooked      = "marketplace.test_drive.booked"
	TypeReviewSubmitted      = "marketplace.review.submitted"
)
