// Package leaderboard ranks participants and units from raw workout logs.
package leaderboard

import (
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/fitchallenge/challenge-backend/internal/models"
	"github.com/fitchallenge/challenge-backend/internal/scoring"
)

var ErrInvalidMetric = errors.New("invalid sort metric")

// PlaceholderName is shown for logs whose owner has no profile row.
const PlaceholderName = "Unknown Participant"

type Metric string

const (
	MetricOverall  Metric = "overall"
	MetricCardio   Metric = "cardio"
	MetricStrength Metric = "strength"
	MetricHIIT     Metric = "hiit"
	MetricTMARM    Metric = "tmarm"
	MetricMembers  Metric = "members"
)

// ParseMetric maps a query value to a Metric; empty means overall.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MetricOverall, nil
	case MetricOverall, MetricCardio, MetricStrength, MetricHIIT, MetricTMARM, MetricMembers:
		return m, nil
	}
	return "", ErrInvalidMetric
}

// Entry is one ranked participant.
type Entry struct {
	Rank         int                 `json:"rank"`
	UserID       uuid.UUID           `json:"user_id"`
	DisplayName  string              `json:"display_name"`
	UnitName     string              `json:"unit_name,omitempty"`
	UnitCategory models.UnitCategory `json:"unit_category,omitempty"`
	Totals       scoring.Totals      `json:"totals"`
	Completion   scoring.Completion  `json:"completion"`
	Overall      float64             `json:"overall"`
}

// Builder computes leaderboards with a fixed scoring engine.
type Builder struct {
	engine *scoring.Engine
}

func NewBuilder(engine *scoring.Engine) *Builder {
	return &Builder{engine: engine}
}

// Participants groups logs by owner and scores every owner with a non-zero total.
// The result is unsorted and unranked.
func (b *Builder) Participants(logs []models.WorkoutLog, profiles map[uuid.UUID]models.User) []Entry {
	byUser := make(map[uuid.UUID][]models.WorkoutLog)
	order := make([]uuid.UUID, 0)
	for _, l := range logs {
		if _, seen := byUser[l.UserID]; !seen {
			order = append(order, l.UserID)
		}
		byUser[l.UserID] = append(byUser[l.UserID], l)
	}

	entries := make([]Entry, 0, len(order))
	for _, userID := range order {
		totals := scoring.Sum(byUser[userID])
		if totals.IsZero() {
			continue
		}
		completion := b.engine.Completion(totals)
		entry := Entry{
			UserID:      userID,
			DisplayName: PlaceholderName,
			Totals:      totals,
			Completion:  completion,
			Overall:     b.engine.LeaderboardOverall(completion),
		}
		if p, ok := profiles[userID]; ok {
			if name := strings.TrimSpace(p.DisplayName); name != "" {
				entry.DisplayName = name
			}
			if p.UnitName != nil {
				entry.UnitName = *p.UnitName
			}
			entry.UnitCategory = p.UnitCategory
		}
		entries = append(entries, entry)
	}
	return entries
}

// Individuals returns the ranked individual leaderboard sorted by metric.
func (b *Builder) Individuals(logs []models.WorkoutLog, profiles map[uuid.UUID]models.User, metric Metric) ([]Entry, error) {
	value, err := individualValue(metric)
	if err != nil {
		return nil, err
	}
	entries := b.Participants(logs, profiles)
	sort.SliceStable(entries, func(i, j int) bool {
		vi, vj := scoring.ScoreKey(value(entries[i])), scoring.ScoreKey(value(entries[j]))
		if vi != vj {
			return vi > vj
		}
		return lessByName(entries[i].DisplayName, entries[i].UserID, entries[j].DisplayName, entries[j].UserID)
	})

	values := make([]float64, len(entries))
	for i := range entries {
		values[i] = value(entries[i])
	}
	for i, r := range scoring.DenseRanks(values) {
		entries[i].Rank = r
	}
	return entries, nil
}

func individualValue(metric Metric) (func(Entry) float64, error) {
	switch metric {
	case MetricOverall, "":
		return func(e Entry) float64 { return e.Overall }, nil
	case MetricCardio:
		return func(e Entry) float64 { return e.Totals.CardioMiles }, nil
	case MetricStrength:
		return func(e Entry) float64 { return e.Totals.StrengthLbs }, nil
	case MetricHIIT:
		return func(e Entry) float64 { return e.Totals.HIITMinutes }, nil
	case MetricTMARM:
		return func(e Entry) float64 { return e.Totals.TMARMMinutes }, nil
	}
	return nil, ErrInvalidMetric
}

func lessByName(nameA string, idA uuid.UUID, nameB string, idB uuid.UUID) bool {
	a, b := strings.ToLower(nameA), strings.ToLower(nameB)
	if a != b {
		return a < b
	}
	return idA.String() < idB.String()
}
