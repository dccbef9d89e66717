package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error
}

// KafkaSender publishes email jobs for the transactional delivery worker.
// A successful write means the job was durably accepted, not that it was delivered.
type KafkaSender struct {
	writer messageWriter
	topic  string
}

func NewKafkaSender(writer messageWriter, topic string) *KafkaSender {
	return &KafkaSender{writer: writer, topic: topic}
}

func (s *KafkaSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}
	if err := s.writer.WriteMessages(ctx, s.topic, kafka.Message{
		Key:   []byte(msg.To),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("publish email job: %w", err)
	}
	return nil
}
