package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fitchallenge/challenge-backend/internal/dto"
	"github.com/fitchallenge/challenge-backend/internal/leaderboard"
	"github.com/fitchallenge/challenge-backend/internal/models"
	"github.com/fitchallenge/challenge-backend/internal/repository"
	"github.com/fitchallenge/challenge-backend/internal/verification"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type ReviewQuery struct {
	Status   string
	Type     string
	Page     int
	PageSize int
}

// ReviewService backs the admin verification screens.
type ReviewService struct {
	repo    *repository.Repository
	machine *verification.Machine
}

func NewReviewService(repo *repository.Repository, machine *verification.Machine) *ReviewService {
	return &ReviewService{repo: repo, machine: machine}
}

// Queue lists logs newest first with the owner's profile attached.
func (s *ReviewService) Queue(ctx context.Context, q ReviewQuery) (*dto.ReviewQueueResponse, error) {
	filter := repository.LogFilter{}

	status := strings.ToLower(strings.TrimSpace(q.Status))
	if status != "" && status != "all" {
		if !models.VerificationStatus(status).Valid() {
			return nil, ErrInvalidStatusFilter
		}
		filter.Status = models.VerificationStatus(status)
	}
	typ := strings.ToLower(strings.TrimSpace(q.Type))
	if typ != "" && typ != "all" {
		c, err := ParseCategory(typ)
		if err != nil {
			return nil, verification.ErrInvalidLogType
		}
		filter.Category = c
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	filter.Limit = size
	filter.Offset = (page - 1) * size

	logs, total, err := s.repo.Workouts.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search logs: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(logs))
	for _, l := range logs {
		ids = append(ids, l.UserID)
	}
	profiles, err := s.repo.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	items := make([]dto.ReviewItem, len(logs))
	for i, l := range logs {
		item := dto.ReviewItem{
			WorkoutResponse: dto.NewWorkoutResponse(l),
			UserID:          l.UserID,
			DisplayName:     leaderboard.PlaceholderName,
		}
		if p, ok := profiles[l.UserID]; ok {
			if p.DisplayName != "" {
				item.DisplayName = p.DisplayName
			}
			item.Email = p.Email
			item.UnitCategory = p.UnitCategory
			if p.UnitName != nil {
				item.UnitName = *p.UnitName
			}
		}
		items[i] = item
	}

	pages := int((total + int64(size) - 1) / int64(size))
	return &dto.ReviewQueueResponse{
		Items: items,
		Pagination: dto.Pagination{
			Page:     page,
			PageSize: size,
			Total:    total,
			Pages:    pages,
		},
	}, nil
}

func (s *ReviewService) Apply(ctx context.Context, actor verification.Actor, req *dto.VerifyLogRequest) (*verification.Transition, error) {
	return s.machine.Apply(ctx, actor, verification.Request{
		LogID:    req.LogID,
		Category: models.Category(strings.ToLower(strings.TrimSpace(req.LogType))),
		Action:   verification.Action(strings.ToLower(strings.TrimSpace(req.Action))),
		Comment:  req.Comment,
	})
}

// History returns the audit trail of one log, oldest first.
func (s *ReviewService) History(ctx context.Context, category models.Category, logID uuid.UUID) ([]models.AuditLog, error) {
	if _, err := s.repo.Workouts.GetByID(ctx, category, logID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, verification.ErrLogNotFound
		}
		return nil, err
	}
	return s.repo.Audits.ListByLog(ctx, logID)
}

func (s *ReviewService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	counts, err := s.repo.Workouts.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	totals := map[models.VerificationStatus]int64{
		models.StatusPending:  0,
		models.StatusVerified: 0,
		models.StatusFlagged:  0,
	}
	for _, byStatus := range counts {
		for status, n := range byStatus {
			totals[status] += n
		}
	}
	return &dto.StatsResponse{Categories: counts, Totals: totals}, nil
}
