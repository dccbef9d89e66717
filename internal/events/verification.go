package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/fitchallenge/challenge-backend/internal/verification"
)

// MessageWriter is satisfied by *Producer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error
}

// VerificationEvent is the payload published for every applied transition.
type VerificationEvent struct {
	EventType      string    `json:"event_type"`
	LogID          string    `json:"log_id"`
	LogCategory    string    `json:"log_category"`
	UserID         string    `json:"user_id"`
	AdminID        string    `json:"admin_id"`
	AuditID        string    `json:"audit_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Comment        *string   `json:"comment,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// VerificationPublisher is a pipeline step that mirrors transitions onto a topic,
// keyed by log id so all events for one log land on one partition.
type VerificationPublisher struct {
	writer MessageWriter
	topic  string
}

func NewVerificationPublisher(writer MessageWriter, topic string) *VerificationPublisher {
	return &VerificationPublisher{writer: writer, topic: topic}
}

func (p *VerificationPublisher) Name() string { return "kafka_publish" }

func (p *VerificationPublisher) Handle(ctx context.Context, t verification.Transition) error {
	evt := VerificationEvent{
		EventType:      "workout.verification." + string(t.Next),
		LogID:          t.Log.ID.String(),
		LogCategory:    string(t.Log.Category),
		UserID:         t.Log.UserID.String(),
		AdminID:        t.Actor.ID.String(),
		AuditID:        t.AuditID.String(),
		PreviousStatus: string(t.Previous),
		NewStatus:      string(t.Next),
		Comment:        t.Comment,
		OccurredAt:     t.At,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal verification event: %w", err)
	}
	return p.writer.WriteMessages(ctx, p.topic, kafka.Message{
		Key:   []byte(evt.LogID),
		Value: payload,
		Time:  t.At,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.EventType)},
		},
	})
}
