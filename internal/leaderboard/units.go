package leaderboard

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/fitchallenge/challenge-backend/internal/models"
	"github.com/fitchallenge/challenge-backend/internal/scoring"
)

// UnitMember is the drill-down row inside a unit entry.
type UnitMember struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Overall     float64   `json:"overall"`
}

// UnitEntry is one ranked unit. Completion and Overall come from Averages.
type UnitEntry struct {
	Rank        int                 `json:"rank"`
	UnitName    string              `json:"unit_name"`
	Category    models.UnitCategory `json:"category"`
	MemberCount int                 `json:"member_count"`
	Totals      scoring.Totals      `json:"totals"`
	Averages    scoring.Totals      `json:"averages"`
	Completion  scoring.Completion  `json:"completion"`
	Overall     float64             `json:"overall"`
	Members     []UnitMember        `json:"members"`
}

type UnitOptions struct {
	Metric Metric
	// Category filters units by category; empty or "all" keeps every unit.
	Category string
	// MinMembers is the participation threshold; values below 1 count as 1.
	MinMembers int
}

// Units groups scored participants by exact unit name and ranks the qualifying units.
func (b *Builder) Units(participants []Entry, opts UnitOptions) ([]UnitEntry, error) {
	value, err := unitValue(opts.Metric)
	if err != nil {
		return nil, err
	}
	minMembers := opts.MinMembers
	if minMembers < 1 {
		minMembers = 1
	}
	filter := strings.ToLower(strings.TrimSpace(opts.Category))
	if filter == "all" {
		filter = ""
	}

	groups := make(map[string][]Entry)
	order := make([]string, 0)
	for _, p := range participants {
		if p.UnitName == "" {
			continue
		}
		if _, seen := groups[p.UnitName]; !seen {
			order = append(order, p.UnitName)
		}
		groups[p.UnitName] = append(groups[p.UnitName], p)
	}

	units := make([]UnitEntry, 0, len(order))
	for _, name := range order {
		members := groups[name]
		if len(members) < minMembers {
			continue
		}
		u := b.scoreUnit(name, members)
		if filter != "" && string(u.Category) != filter {
			continue
		}
		units = append(units, u)
	}

	sort.SliceStable(units, func(i, j int) bool {
		vi, vj := scoring.ScoreKey(value(units[i])), scoring.ScoreKey(value(units[j]))
		if vi != vj {
			return vi > vj
		}
		return strings.ToLower(units[i].UnitName) < strings.ToLower(units[j].UnitName)
	})

	values := make([]float64, len(units))
	for i := range units {
		values[i] = value(units[i])
	}
	for i, r := range scoring.DenseRanks(values) {
		units[i].Rank = r
	}
	return units, nil
}

func (b *Builder) scoreUnit(name string, members []Entry) UnitEntry {
	var totals scoring.Totals
	for _, m := range members {
		totals = totals.Add(m.Totals)
	}
	averages := totals.Average(len(members))
	completion := b.engine.Completion(averages)

	roster := make([]UnitMember, len(members))
	for i, m := range members {
		roster[i] = UnitMember{UserID: m.UserID, DisplayName: m.DisplayName, Overall: m.Overall}
	}
	sort.SliceStable(roster, func(i, j int) bool {
		if oi, oj := scoring.ScoreKey(roster[i].Overall), scoring.ScoreKey(roster[j].Overall); oi != oj {
			return oi > oj
		}
		return lessByName(roster[i].DisplayName, roster[i].UserID, roster[j].DisplayName, roster[j].UserID)
	})

	return UnitEntry{
		UnitName:    name,
		Category:    majorityCategory(members),
		MemberCount: len(members),
		Totals:      totals,
		Averages:    averages,
		Completion:  completion,
		Overall:     b.engine.LeaderboardOverall(completion),
		Members:     roster,
	}
}

// majorityCategory picks the category most members declared; ties resolve alphabetically.
func majorityCategory(members []Entry) models.UnitCategory {
	counts := make(map[models.UnitCategory]int)
	for _, m := range members {
		c := m.UnitCategory
		if c == "" {
			c = models.UnitOther
		}
		counts[c]++
	}
	best := models.UnitOther
	bestCount := 0
	for c, n := range counts {
		if n > bestCount || (n == bestCount && c < best) {
			best, bestCount = c, n
		}
	}
	return best
}

func unitValue(metric Metric) (func(UnitEntry) float64, error) {
	switch metric {
	case MetricOverall, "":
		return func(u UnitEntry) float64 { return u.Overall }, nil
	case MetricCardio:
		return func(u UnitEntry) float64 { return u.Averages.CardioMiles }, nil
	case MetricStrength:
		return func(u UnitEntry) float64 { return u.Averages.StrengthLbs }, nil
	case MetricHIIT:
		return func(u UnitEntry) float64 { return u.Averages.HIITMinutes }, nil
	case MetricTMARM:
		return func(u UnitEntry) float64 { return u.Averages.TMARMMinutes }, nil
	case MetricMembers:
		return func(u UnitEntry) float64 { return float64(u.MemberCount) }, nil
	}
	return nil, ErrInvalidMetric
}
