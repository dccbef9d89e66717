// Package notify fans verification outcomes out to the in-app bell, immediate
// email and the digest queue, and drains the digest queue on a schedule.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/fitchallenge/challenge-backend/internal/mailer"
	"github.com/fitchallenge/challenge-backend/internal/metrics"
	"github.com/fitchallenge/challenge-backend/internal/models"
	"github.com/fitchallenge/challenge-backend/internal/repository"
	"github.com/fitchallenge/challenge-backend/internal/verification"
)

// Event is what the dispatcher needs to know about one transition.
type Event struct {
	UserID       uuid.UUID
	LogID        uuid.UUID
	Category     models.Category
	ActivityDate time.Time
	Details      string
	Previous     models.VerificationStatus
	Next         models.VerificationStatus
	Comment      *string
}

func EventFromTransition(t verification.Transition) Event {
	return Event{
		UserID:       t.Log.UserID,
		LogID:        t.Log.ID,
		Category:     t.Log.Category,
		ActivityDate: t.Log.ActivityDate,
		Details:      t.Log.Details(),
		Previous:     t.Previous,
		Next:         t.Next,
		Comment:      t.Comment,
	}
}

// Outcome is the email-path result for one event.
type Outcome string

const (
	OutcomeSuppressed Outcome = "suppressed"
	OutcomeEnqueued   Outcome = "enqueued"
	OutcomeSent       Outcome = "sent"
	OutcomeFailed     Outcome = "failed"
)

type Dispatcher struct {
	repo     *repository.Repository
	sender   mailer.Sender
	composer *Composer
	timeout  time.Duration
}

func NewDispatcher(repo *repository.Repository, sender mailer.Sender, composer *Composer, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{repo: repo, sender: sender, composer: composer, timeout: timeout}
}

// Steps returns the pipeline steps in order: the in-app record, then the email path.
// They are separate so a retried email never duplicates the bell entry.
func (d *Dispatcher) Steps() []verification.SideEffect {
	return []verification.SideEffect{
		verification.SideEffectFunc{StepName: "in_app_notification", Fn: func(ctx context.Context, t verification.Transition) error {
			return d.CreateInApp(ctx, EventFromTransition(t))
		}},
		verification.SideEffectFunc{StepName: "email_notification", Fn: func(ctx context.Context, t verification.Transition) error {
			_, err := d.DeliverEmail(ctx, EventFromTransition(t))
			return err
		}},
	}
}

// CreateInApp always records the bell entry, whatever the recipient's email preferences.
func (d *Dispatcher) CreateInApp(ctx context.Context, e Event) error {
	title, message := d.composer.InApp(e)
	logID, category := e.LogID, e.Category
	n := &models.Notification{
		UserID:      e.UserID,
		Type:        notificationType(e.Next),
		Title:       title,
		Message:     message,
		LogID:       &logID,
		LogCategory: &category,
	}
	if err := d.repo.Notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()
	return nil
}

// DeliverEmail routes the event by the recipient's stored preferences.
func (d *Dispatcher) DeliverEmail(ctx context.Context, e Event) (Outcome, error) {
	user, err := d.repo.Users.GetByID(ctx, e.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Warn("notification recipient has no profile", "user_id", e.UserID.String(), "log_id", e.LogID.String())
			return OutcomeSuppressed, nil
		}
		return OutcomeFailed, fmt.Errorf("load recipient: %w", err)
	}

	if !user.WantsEmail(e.Next) {
		return OutcomeSuppressed, nil
	}
	if user.DeliveryMode == models.DeliveryDigest {
		entry := &models.DigestQueueEntry{
			UserID:         e.UserID,
			LogID:          e.LogID,
			LogCategory:    e.Category,
			ActivityDate:   e.ActivityDate,
			Details:        e.Details,
			PreviousStatus: e.Previous,
			NewStatus:      e.Next,
			Comment:        e.Comment,
		}
		if err := d.repo.Digests.Enqueue(ctx, entry); err != nil {
			return OutcomeFailed, fmt.Errorf("enqueue digest entry: %w", err)
		}
		metrics.DigestEnqueued.Inc()
		return OutcomeEnqueued, nil
	}
	return d.SendImmediate(ctx, *user, e)
}

// SendImmediate sends one email for e, bounded by the dispatcher timeout, and
// records the attempt in the email log. Preferences are checked again here.
func (d *Dispatcher) SendImmediate(ctx context.Context, user models.User, e Event) (Outcome, error) {
	if !user.WantsEmail(e.Next) {
		return OutcomeSuppressed, nil
	}
	msg, err := d.composer.Immediate(user, e)
	if err != nil {
		return OutcomeFailed, err
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	sendErr := d.sender.Send(sendCtx, msg)

	recordEmail(ctx, d.repo.EmailLogs, user, models.EmailImmediate, msg, sendErr, map[string]any{
		"log_id":      e.LogID.String(),
		"log_type":    string(e.Category),
		"new_status":  string(e.Next),
		"prev_status": string(e.Previous),
	})
	if sendErr != nil {
		// the message may have gone out before the error; a retry could duplicate it
		return OutcomeFailed, verification.Permanent(fmt.Errorf("send immediate email: %w", sendErr))
	}
	return OutcomeSent, nil
}

func recordEmail(ctx context.Context, logs repository.EmailLogRepository, user models.User, kind models.EmailKind, msg mailer.Message, sendErr error, meta map[string]any) {
	status := "sent"
	errText := ""
	if sendErr != nil {
		status = "failed"
		errText = sendErr.Error()
	}
	metrics.EmailsSent.WithLabelValues(string(kind), status).Inc()

	raw, err := json.Marshal(meta)
	if err != nil {
		raw = []byte("{}")
	}
	entry := &models.EmailLog{
		UserID:    user.ID,
		Recipient: user.Email,
		Kind:      kind,
		Subject:   msg.Subject,
		Status:    status,
		Error:     errText,
		Metadata:  datatypes.JSON(raw),
	}
	if err := logs.Create(ctx, entry); err != nil {
		slog.Error("failed to write email log", "user_id", user.ID.String(), "action", string(kind), "error", err.Error())
	}
	if sendErr != nil {
		slog.Error("email send failed", "user_id", user.ID.String(), "action", string(kind), "error", errText)
	}
}

func notificationType(s models.VerificationStatus) models.NotificationType {
	switch s {
	case models.StatusVerified:
		return models.NotificationVerified
	case models.StatusFlagged:
		return models.NotificationFlagged
	}
	return models.NotificationOther
}
