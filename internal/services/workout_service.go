package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fitchallenge/challenge-backend/internal/dto"
	"github.com/fitchallenge/challenge-backend/internal/metrics"
	"github.com/fitchallenge/challenge-backend/internal/models"
	"github.com/fitchallenge/challenge-backend/internal/repository"
	"github.com/fitchallenge/challenge-backend/internal/scoring"
)

type WorkoutService struct {
	workouts repository.WorkoutRepository
	engine   *scoring.Engine
	boards   BoardCache
	now      func() time.Time
}

func NewWorkoutService(workouts repository.WorkoutRepository, engine *scoring.Engine) *WorkoutService {
	return &WorkoutService{
		workouts: workouts,
		engine:   engine,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func ParseCategory(s string) (models.Category, error) {
	c := models.Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// Log validates and stores one workout. Cardio distance is normalized to miles
// and the strength total is fixed here; neither is recomputed later.
func (s *WorkoutService) Log(ctx context.Context, userID uuid.UUID, category models.Category, req *dto.LogWorkoutRequest) (*models.WorkoutLog, error) {
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}
	date, err := s.activityDate(req.ActivityDate)
	if err != nil {
		return nil, err
	}

	log := &models.WorkoutLog{
		ID:           uuid.New(),
		UserID:       userID,
		Category:     category,
		ActivityDate: date,
	}

	switch category {
	case models.CategoryCardio:
		activity := models.CardioActivity(strings.ToLower(strings.TrimSpace(req.ActivityType)))
		if !activity.Valid() {
			return nil, ErrInvalidActivity
		}
		if req.Distance <= 0 {
			return nil, ErrInvalidQuantity
		}
		miles, err := scoring.ToMiles(req.Distance, req.DistanceUnit)
		if err != nil {
			return nil, err
		}
		log.ActivityType = activity
		log.DistanceMiles = miles
		log.Notes = strings.TrimSpace(req.Notes)

	case models.CategoryStrength:
		name := strings.TrimSpace(req.ExerciseName)
		if name == "" {
			return nil, ErrExerciseRequired
		}
		if req.Sets <= 0 || req.RepsPerSet <= 0 || req.WeightPerRep <= 0 {
			return nil, ErrInvalidQuantity
		}
		log.ExerciseName = name
		log.Sets = req.Sets
		log.RepsPerSet = req.RepsPerSet
		log.WeightPerRep = req.WeightPerRep
		log.TotalWeight = scoring.StrengthTotal(req.Sets, req.RepsPerSet, req.WeightPerRep)

	case models.CategoryHIIT, models.CategoryTMARM:
		if req.DurationMinutes <= 0 {
			return nil, ErrInvalidQuantity
		}
		log.DurationMinutes = req.DurationMinutes
		log.Description = strings.TrimSpace(req.Description)
	}

	if err := s.workouts.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to create workout log: %w", err)
	}
	metrics.WorkoutsLogged.WithLabelValues(string(category)).Inc()
	invalidateBoards(ctx, s.boards, "workout_logged")
	return log, nil
}

// activityDate accepts today in any timezone up to UTC+14.
func (s *WorkoutService) activityDate(raw string) (time.Time, error) {
	today := s.now().Truncate(24 * time.Hour)
	if strings.TrimSpace(raw) == "" {
		return today, nil
	}
	d, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	if d.After(today.Add(24 * time.Hour)) {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// WithCache invalidates cached leaderboards whenever a log is written or removed.
func (s *WorkoutService) WithCache(boards BoardCache) *WorkoutService {
	s.boards = boards
	return s
}

// ListMine returns the caller's logs newest first. An empty category or "all" returns every type.
func (s *WorkoutService) ListMine(ctx context.Context, userID uuid.UUID, category string) ([]models.WorkoutLog, error) {
	var c models.Category
	if category != "" && category != "all" {
		parsed, err := ParseCategory(category)
		if err != nil {
			return nil, err
		}
		c = parsed
	}
	return s.workouts.ListByUser(ctx, userID, c)
}

func (s *WorkoutService) Delete(ctx context.Context, userID uuid.UUID, category models.Category, id uuid.UUID) error {
	log, err := s.workouts.GetByID(ctx, category, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLogNotFound
		}
		return err
	}
	if log.UserID != userID {
		return ErrNotOwner
	}
	if err := s.workouts.Delete(ctx, userID, category, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLogNotFound
		}
		return err
	}
	invalidateBoards(ctx, s.boards, "workout_deleted")
	return nil
}

// Progress recomputes the caller's dashboard from every log they own.
func (s *WorkoutService) Progress(ctx context.Context, userID uuid.UUID) (*dto.ProgressResponse, error) {
	logs, err := s.workouts.ListByUser(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	totals := scoring.Sum(logs)
	completion := s.engine.Completion(totals)

	percent := map[models.Category]float64{
		models.CategoryCardio:   completion.Cardio,
		models.CategoryStrength: completion.Strength,
		models.CategoryHIIT:     completion.HIIT,
		models.CategoryTMARM:    completion.TMARM,
	}
	categories := make(map[models.Category]dto.CategoryProgress, len(models.Categories))
	for _, c := range models.Categories {
		categories[c] = dto.CategoryProgress{
			Total:      totals.Get(c),
			Minimum:    s.engine.Minimum(c),
			Percentage: percent[c],
			Remaining:  s.engine.Remaining(totals, c),
			IsComplete: s.engine.IsComplete(totals, c),
		}
	}

	return &dto.ProgressResponse{
		Totals:             totals,
		Categories:         categories,
		DashboardOverall:   scoring.DashboardOverall(completion),
		LeaderboardOverall: s.engine.LeaderboardOverall(completion),
		LogCount:           len(logs),
	}, nil
}
