// Package scoring turns raw workout logs into totals and completion percentages.
//
// Two overall-completion formulas exist side by side and must stay distinct:
// LeaderboardOverall weights the capped category percentages by the challenge
// weights and drives every ranking; DashboardOverall is the plain mean shown on
// a participant's own progress page.
package scoring

import (
	"math"

	"github.com/fitchallenge/challenge-backend/internal/config"
	"github.com/fitchallenge/challenge-backend/internal/models"
)

// Totals are per-user (or per-unit) sums. They are always recomputed from logs.
type Totals struct {
	CardioMiles  float64 `json:"cardio_miles"`
	StrengthLbs  float64 `json:"strength_lbs"`
	HIITMinutes  float64 `json:"hiit_minutes"`
	TMARMMinutes float64 `json:"tmarm_minutes"`
}

func (t Totals) IsZero() bool {
	return t.CardioMiles == 0 && t.StrengthLbs == 0 && t.HIITMinutes == 0 && t.TMARMMinutes == 0
}

func (t Totals) Add(o Totals) Totals {
	return Totals{
		CardioMiles:  t.CardioMiles + o.CardioMiles,
		StrengthLbs:  t.StrengthLbs + o.StrengthLbs,
		HIITMinutes:  t.HIITMinutes + o.HIITMinutes,
		TMARMMinutes: t.TMARMMinutes + o.TMARMMinutes,
	}
}

// Average divides every metric by n. n <= 0 yields zero totals.
func (t Totals) Average(n int) Totals {
	if n <= 0 {
		return Totals{}
	}
	d := float64(n)
	return Totals{
		CardioMiles:  t.CardioMiles / d,
		StrengthLbs:  t.StrengthLbs / d,
		HIITMinutes:  t.HIITMinutes / d,
		TMARMMinutes: t.TMARMMinutes / d,
	}
}

func (t Totals) Get(c models.Category) float64 {
	switch c {
	case models.CategoryCardio:
		return t.CardioMiles
	case models.CategoryStrength:
		return t.StrengthLbs
	case models.CategoryHIIT:
		return t.HIITMinutes
	case models.CategoryTMARM:
		return t.TMARMMinutes
	}
	return 0
}

// Completion holds capped per-category percentages in [0, 100].
type Completion struct {
	Cardio   float64 `json:"cardio"`
	Strength float64 `json:"strength"`
	HIIT     float64 `json:"hiit"`
	TMARM    float64 `json:"tmarm"`
}

// Sum adds each log's category quantity into the matching total.
func Sum(logs []models.WorkoutLog) Totals {
	var t Totals
	for i := range logs {
		q := logs[i].Quantity()
		switch logs[i].Category {
		case models.CategoryCardio:
			t.CardioMiles += q
		case models.CategoryStrength:
			t.StrengthLbs += q
		case models.CategoryHIIT:
			t.HIITMinutes += q
		case models.CategoryTMARM:
			t.TMARMMinutes += q
		}
	}
	return t
}

// Percentage is min(100, 100*total/minimum), floored at 0.
func Percentage(total, minimum float64) float64 {
	if minimum <= 0 || total <= 0 {
		return 0
	}
	return math.Min(100, 100*total/minimum)
}

// Engine applies a ChallengeConfig to totals.
type Engine struct {
	cfg config.ChallengeConfig
}

func NewEngine(cfg config.ChallengeConfig) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() config.ChallengeConfig {
	return e.cfg
}

func (e *Engine) Minimum(c models.Category) float64 {
	m := e.cfg.Minimums
	switch c {
	case models.CategoryCardio:
		return m.CardioMiles
	case models.CategoryStrength:
		return m.StrengthLbs
	case models.CategoryHIIT:
		return m.HIITMinutes
	case models.CategoryTMARM:
		return m.TMARMMinutes
	}
	return 0
}

func (e *Engine) Completion(t Totals) Completion {
	m := e.cfg.Minimums
	return Completion{
		Cardio:   Percentage(t.CardioMiles, m.CardioMiles),
		Strength: Percentage(t.StrengthLbs, m.StrengthLbs),
		HIIT:     Percentage(t.HIITMinutes, m.HIITMinutes),
		TMARM:    Percentage(t.TMARMMinutes, m.TMARMMinutes),
	}
}

// IsComplete compares the uncapped total against the minimum.
func (e *Engine) IsComplete(t Totals, c models.Category) bool {
	min := e.Minimum(c)
	return min > 0 && t.Get(c) >= min
}

// Remaining is how far the total still is from the minimum, never negative.
func (e *Engine) Remaining(t Totals, c models.Category) float64 {
	return math.Max(0, e.Minimum(c)-t.Get(c))
}

// LeaderboardOverall is the weighted sum of capped percentages used for ranking.
func (e *Engine) LeaderboardOverall(c Completion) float64 {
	w := e.cfg.Weights
	return w.Cardio*c.Cardio + w.Strength*c.Strength + w.HIIT*c.HIIT + w.TMARM*c.TMARM
}

// DashboardOverall is the unweighted mean of the four capped percentages.
// It is only shown on the participant's own progress view.
func DashboardOverall(c Completion) float64 {
	return (c.Cardio + c.Strength + c.HIIT + c.TMARM) / 4
}
