// Package mailer hands composed emails to a delivery backend.
package mailer

import (
	"context"
	"errors"
	"log/slog"
)

var ErrNoRecipient = errors.New("message has no recipient")

type Message struct {
	To       string            `json:"to"`
	ToName   string            `json:"to_name,omitempty"`
	From     string            `json:"from"`
	Subject  string            `json:"subject"`
	Text     string            `json:"text"`
	HTML     string            `json:"html"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Sender delivers one message. Implementations must honor ctx deadlines.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the structured log instead of delivering them.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	slog.Info("email (log sender)", "to", msg.To, "subject", msg.Subject, "bytes", len(msg.HTML))
	return nil
}
