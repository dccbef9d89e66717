package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/fitchallenge/challenge-backend/internal/leaderboard"
	"github.com/fitchallenge/challenge-backend/internal/metrics"
	"github.com/fitchallenge/challenge-backend/internal/models"
	"github.com/fitchallenge/challenge-backend/internal/repository"
	"github.com/fitchallenge/challenge-backend/internal/scoring"
)

// LeaderboardService loads every log and profile per request and ranks in memory.
// Reads are not isolated from concurrent writes.
type LeaderboardService struct {
	repo           *repository.Repository
	builder        *leaderboard.Builder
	unitMinMembers int
	cache          BoardCache
}

func NewLeaderboardService(repo *repository.Repository, engine *scoring.Engine) *LeaderboardService {
	return &LeaderboardService{
		repo:           repo,
		builder:        leaderboard.NewBuilder(engine),
		unitMinMembers: engine.Config().UnitMinMembers,
	}
}

// WithCache serves repeated reads from cache until the next write invalidates it.
func (s *LeaderboardService) WithCache(cache BoardCache) *LeaderboardService {
	s.cache = cache
	return s
}

// DefaultUnitMinMembers is the configured unit participation threshold.
func (s *LeaderboardService) DefaultUnitMinMembers() int {
	return s.unitMinMembers
}

func (s *LeaderboardService) Individuals(ctx context.Context, metric leaderboard.Metric) ([]leaderboard.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.LeaderboardBuildDuration.WithLabelValues("individual").Observe(time.Since(start).Seconds())
	}()

	key := "individual:" + string(metric)
	var entries []leaderboard.Entry
	gen, hit, cacheable := s.cached(ctx, key, &entries)
	if hit {
		return entries, nil
	}

	logs, profiles, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	entries, err = s.builder.Individuals(logs, profiles, metric)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.remember(ctx, gen, key, entries)
	}
	return entries, nil
}

// Units ranks units; minMembers <= 0 falls back to the configured threshold.
func (s *LeaderboardService) Units(ctx context.Context, metric leaderboard.Metric, category string, minMembers int) ([]leaderboard.UnitEntry, error) {
	start := time.Now()
	defer func() {
		metrics.LeaderboardBuildDuration.WithLabelValues("unit").Observe(time.Since(start).Seconds())
	}()

	if category != "" && category != "all" && !models.UnitCategory(category).Valid() {
		return nil, ErrInvalidUnitCategory
	}
	if minMembers <= 0 {
		minMembers = s.unitMinMembers
	}

	key := "unit:" + string(metric) + ":" + category + ":" + strconv.Itoa(minMembers)
	var units []leaderboard.UnitEntry
	gen, hit, cacheable := s.cached(ctx, key, &units)
	if hit {
		return units, nil
	}

	logs, profiles, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	units, err = s.builder.Units(s.builder.Participants(logs, profiles), leaderboard.UnitOptions{
		Metric:     metric,
		Category:   category,
		MinMembers: minMembers,
	})
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.remember(ctx, gen, key, units)
	}
	return units, nil
}

// cached reports the generation read and whether a rebuilt board may be stored under it.
func (s *LeaderboardService) cached(ctx context.Context, key string, dst any) (gen int64, hit, cacheable bool) {
	if s.cache == nil {
		return 0, false, false
	}
	gen, hit, err := s.cache.Load(ctx, key, dst)
	if err != nil {
		slog.Warn("leaderboard cache read failed", "key", key, "error", err.Error())
		return 0, false, false
	}
	return gen, hit, true
}

func (s *LeaderboardService) remember(ctx context.Context, gen int64, key string, v any) {
	if err := s.cache.Store(ctx, gen, key, v); err != nil {
		slog.Warn("leaderboard cache write failed", "key", key, "error", err.Error())
	}
}

func (s *LeaderboardService) load(ctx context.Context) ([]models.WorkoutLog, map[uuid.UUID]models.User, error) {
	logs, err := s.repo.Workouts.ListAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load logs: %w", err)
	}
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, l := range logs {
		if _, ok := seen[l.UserID]; !ok {
			seen[l.UserID] = struct{}{}
			ids = append(ids, l.UserID)
		}
	}
	profiles, err := s.repo.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load profiles: %w", err)
	}
	return logs, profiles, nil
}
