// Package verification implements the review lifecycle of a single workout log:
// pending until an admin acts, then verified or flagged, overwritten by later actions.
package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fitchallenge/challenge-backend/internal/metrics"
	"github.com/fitchallenge/challenge-backend/internal/models"
	"github.com/fitchallenge/challenge-backend/internal/repository"
)

var (
	ErrForbidden       = errors.New("admin role required")
	ErrCommentRequired = errors.New("a comment is required to flag a log")
	ErrInvalidAction   = errors.New("action must be verify or flag")
	ErrInvalidLogType  = errors.New("invalid log type")
	ErrMissingLogID    = errors.New("log id is required")
	ErrLogNotFound     = errors.New("workout log not found")
)

type Action string

const (
	ActionVerify Action = "verify"
	ActionFlag   Action = "flag"
)

func (a Action) Valid() bool {
	return a == ActionVerify || a == ActionFlag
}

// Target is the status the action moves a log into.
func (a Action) Target() models.VerificationStatus {
	if a == ActionFlag {
		return models.StatusFlagged
	}
	return models.StatusVerified
}

// Actor is the authenticated caller. IsAdmin must be resolved by the caller's auth layer.
type Actor struct {
	ID      uuid.UUID
	IsAdmin bool
}

type Request struct {
	LogID    uuid.UUID
	Category models.Category
	Action   Action
	Comment  string
}

// Transition describes one committed state change. Log holds the record after the update.
type Transition struct {
	Log      models.WorkoutLog
	Actor    Actor
	Action   Action
	Previous models.VerificationStatus
	Next     models.VerificationStatus
	Comment  *string
	At       time.Time
	AuditID  uuid.UUID
}

// Machine applies verification actions. The record update and the audit append
// commit together; side effects run afterwards and can never undo the commit.
//
// Two admins acting on the same log concurrently are not serialized: the last
// write wins and both audit rows are kept.
type Machine struct {
	workouts repository.WorkoutRepository
	pipeline *Pipeline
	now      func() time.Time
}

func NewMachine(workouts repository.WorkoutRepository, pipeline *Pipeline) *Machine {
	if pipeline == nil {
		pipeline = NewPipeline()
	}
	return &Machine{
		workouts: workouts,
		pipeline: pipeline,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Validate checks authorization first, then request shape, without touching the store.
func Validate(actor Actor, req Request) error {
	if !actor.IsAdmin {
		return ErrForbidden
	}
	if req.LogID == uuid.Nil {
		return ErrMissingLogID
	}
	if !req.Category.Valid() {
		return ErrInvalidLogType
	}
	if !req.Action.Valid() {
		return ErrInvalidAction
	}
	if req.Action == ActionFlag && strings.TrimSpace(req.Comment) == "" {
		return ErrCommentRequired
	}
	return nil
}

func (m *Machine) Apply(ctx context.Context, actor Actor, req Request) (*Transition, error) {
	if err := Validate(actor, req); err != nil {
		metrics.VerificationRejections.WithLabelValues(rejectionReason(err)).Inc()
		return nil, err
	}

	current, err := m.workouts.GetByID(ctx, req.Category, req.LogID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.VerificationRejections.WithLabelValues("not_found").Inc()
			return nil, ErrLogNotFound
		}
		return nil, fmt.Errorf("load log: %w", err)
	}
	previous := current.Status()

	now := m.now()
	adminID := actor.ID
	next := models.Verification{
		Verified:   req.Action == ActionVerify,
		VerifiedBy: &adminID,
		VerifiedAt: &now,
	}
	var comment *string
	if req.Action == ActionFlag {
		c := strings.TrimSpace(req.Comment)
		comment = &c
		next.AdminComment = comment
	}

	audit := &models.AuditLog{
		ID:             uuid.New(),
		AdminID:        actor.ID,
		Action:         string(req.Action),
		LogID:          current.ID,
		LogCategory:    current.Category,
		PreviousStatus: previous,
		NewStatus:      req.Action.Target(),
		Comment:        comment,
		CreatedAt:      now,
	}
	if err := m.workouts.ApplyVerification(ctx, current.ID, next, audit); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, fmt.Errorf("apply verification: %w", err)
	}

	updated := *current
	updated.Verification = next
	t := &Transition{
		Log:      updated,
		Actor:    actor,
		Action:   req.Action,
		Previous: previous,
		Next:     req.Action.Target(),
		Comment:  comment,
		At:       now,
		AuditID:  audit.ID,
	}
	metrics.VerificationTransitions.WithLabelValues(string(req.Action), string(current.Category), string(t.Next)).Inc()

	m.pipeline.Run(ctx, *t)
	return t, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrMissingLogID):
		return "missing_log_id"
	case errors.Is(err, ErrInvalidLogType):
		return "invalid_log_type"
	case errors.Is(err, ErrInvalidAction):
		return "invalid_action"
	case errors.Is(err, ErrCommentRequired):
		return "comment_required"
	}
	return "other"
}
