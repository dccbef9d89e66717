package leaderboard

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitchallenge/challenge-backend/internal/config"
	"github.com/fitchallenge/challenge-backend/internal/models"
	"github.com/fitchallenge/challenge-backend/internal/scoring"
)

func newBuilder() *Builder {
	return NewBuilder(scoring.NewEngine(config.DefaultChallenge()))
}

func cardio(user uuid.UUID, miles float64) models.WorkoutLog {
	return models.WorkoutLog{ID: uuid.New(), UserID: user, Category: models.CategoryCardio, DistanceMiles: miles}
}

func strength(user uuid.UUID, total float64) models.WorkoutLog {
	return models.WorkoutLog{ID: uuid.New(), UserID: user, Category: models.CategoryStrength, TotalWeight: total}
}

func duration(user uuid.UUID, c models.Category, minutes float64) models.WorkoutLog {
	return models.WorkoutLog{ID: uuid.New(), UserID: user, Category: c, DurationMinutes: minutes}
}

func profile(id uuid.UUID, name, unit string, cat models.UnitCategory) models.User {
	u := models.User{ID: id, DisplayName: name, UnitCategory: cat}
	if unit != "" {
		u.UnitName = &unit
	}
	return u
}

func TestIndividualsWorkedExample(t *testing.T) {
	alice := uuid.New()
	logs := []models.WorkoutLog{
		cardio(alice, 60),
		strength(alice, 50000),
		duration(alice, models.CategoryHIIT, 150),
		duration(alice, models.CategoryTMARM, 200),
	}
	profiles := map[uuid.UUID]models.User{alice: profile(alice, "Alice", "", "")}

	entries, err := newBuilder().Individuals(logs, profiles, MetricOverall)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, 1, e.Rank)
	assert.Equal(t, "Alice", e.DisplayName)
	assert.InDelta(t, 75.0, e.Overall, 1e-9)
	assert.InDelta(t, 50, e.Completion.Cardio, 1e-9)
	assert.InDelta(t, 60, e.Totals.CardioMiles, 1e-9)
}

func TestIndividualsDenseRankTies(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	// 80% overall: cardio 100% (30) + strength 100% (30) + hiit 100% (20) = 80
	full := func(u uuid.UUID) []models.WorkoutLog {
		return []models.WorkoutLog{cardio(u, 120), strength(u, 50000), duration(u, models.CategoryHIIT, 300)}
	}
	logs := append(full(a), full(b)...)
	// 60% overall: cardio 100% + strength 100%
	logs = append(logs, cardio(c, 120), strength(c, 50000))

	profiles := map[uuid.UUID]models.User{
		a: profile(a, "Avery", "", ""),
		b: profile(b, "Blake", "", ""),
		c: profile(c, "Casey", "", ""),
	}

	entries, err := newBuilder().Individuals(logs, profiles, MetricOverall)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	ranks := []int{entries[0].Rank, entries[1].Rank, entries[2].Rank}
	assert.Equal(t, []int{1, 1, 2}, ranks)
	assert.InDelta(t, 80, entries[0].Overall, 1e-9)
	assert.InDelta(t, 60, entries[2].Overall, 1e-9)
	assert.Equal(t, "Avery", entries[0].DisplayName)
	assert.Equal(t, "Blake", entries[1].DisplayName)
}

func TestIndividualsExcludesAllZeroUsers(t *testing.T) {
	active, idle := uuid.New(), uuid.New()
	logs := []models.WorkoutLog{
		cardio(active, 1),
		cardio(idle, 0),
		duration(idle, models.CategoryHIIT, 0),
	}

	entries, err := newBuilder().Individuals(logs, nil, MetricOverall)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, active, entries[0].UserID)
}

func TestIndividualsMissingProfileUsesPlaceholder(t *testing.T) {
	orphan := uuid.New()
	entries, err := newBuilder().Individuals([]models.WorkoutLog{cardio(orphan, 5)}, map[uuid.UUID]models.User{}, MetricOverall)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, PlaceholderName, entries[0].DisplayName)
}

func TestIndividualsSortBySubMetric(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	logs := []models.WorkoutLog{
		cardio(a, 200), // overall capped at 30
		strength(b, 50000),
		duration(b, models.CategoryTMARM, 200), // overall 50
		cardio(b, 10),
	}

	byOverall, err := newBuilder().Individuals(logs, nil, MetricOverall)
	require.NoError(t, err)
	assert.Equal(t, b, byOverall[0].UserID)

	byCardio, err := newBuilder().Individuals(logs, nil, MetricCardio)
	require.NoError(t, err)
	assert.Equal(t, a, byCardio[0].UserID)
	assert.InDelta(t, 200, byCardio[0].Totals.CardioMiles, 1e-9)
	assert.InDelta(t, 100, byCardio[0].Completion.Cardio, 1e-9)

	_, err = newBuilder().Individuals(logs, nil, MetricMembers)
	require.ErrorIs(t, err, ErrInvalidMetric)
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("")
	require.NoError(t, err)
	assert.Equal(t, MetricOverall, m)

	m, err = ParseMetric("TMARM")
	require.NoError(t, err)
	assert.Equal(t, MetricTMARM, m)

	_, err = ParseMetric("speed")
	require.ErrorIs(t, err, ErrInvalidMetric)
}

func TestUnitsUseAveragesNotSums(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	logs := []models.WorkoutLog{cardio(a, 60), cardio(b, 60)}
	profiles := map[uuid.UUID]models.User{
		a: profile(a, "A", "Rangers", models.UnitVeterans),
		b: profile(b, "B", "Rangers", models.UnitVeterans),
	}
	builder := newBuilder()

	units, err := builder.Units(builder.Participants(logs, profiles), UnitOptions{Metric: MetricOverall})
	require.NoError(t, err)
	require.Len(t, units, 1)

	u := units[0]
	assert.Equal(t, "Rangers", u.UnitName)
	assert.Equal(t, 2, u.MemberCount)
	assert.InDelta(t, 120, u.Totals.CardioMiles, 1e-9)
	assert.InDelta(t, 60, u.Averages.CardioMiles, 1e-9)
	assert.InDelta(t, 50, u.Completion.Cardio, 1e-9)
	assert.InDelta(t, 15, u.Overall, 1e-9)
	assert.Equal(t, models.UnitVeterans, u.Category)
}

func TestUnitsThresholdFilterAndRanking(t *testing.T) {
	ids := make([]uuid.UUID, 5)
	for i := range ids {
		ids[i] = uuid.New()
	}
	logs := []models.WorkoutLog{
		cardio(ids[0], 120), cardio(ids[1], 60), // Alpha avg 90 miles
		cardio(ids[2], 120), cardio(ids[3], 60), // Bravo avg 90 miles
		cardio(ids[4], 120), // Solo, one member
	}
	profiles := map[uuid.UUID]models.User{
		ids[0]: profile(ids[0], "Ann", "Alpha", models.UnitCivilian),
		ids[1]: profile(ids[1], "Ben", "Alpha", models.UnitCivilian),
		ids[2]: profile(ids[2], "Cal", "Bravo", models.UnitGovernment),
		ids[3]: profile(ids[3], "Dee", "Bravo", models.UnitGovernment),
		ids[4]: profile(ids[4], "Eve", "Solo", models.UnitCivilian),
	}
	builder := newBuilder()
	participants := builder.Participants(logs, profiles)

	units, err := builder.Units(participants, UnitOptions{Metric: MetricOverall, MinMembers: 2})
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "Alpha", units[0].UnitName)
	assert.Equal(t, "Bravo", units[1].UnitName)
	assert.Equal(t, 1, units[0].Rank)
	assert.Equal(t, 1, units[1].Rank)

	// members sorted by individual overall, descending
	require.Len(t, units[0].Members, 2)
	assert.Equal(t, "Ann", units[0].Members[0].DisplayName)
	assert.Equal(t, "Ben", units[0].Members[1].DisplayName)

	civilian, err := builder.Units(participants, UnitOptions{Metric: MetricOverall, Category: "civilian"})
	require.NoError(t, err)
	require.Len(t, civilian, 2)
	assert.Equal(t, "Solo", civilian[0].UnitName)
	assert.Equal(t, 1, civilian[0].Rank)
	assert.Equal(t, 2, civilian[1].Rank)

	byMembers, err := builder.Units(participants, UnitOptions{Metric: MetricMembers, Category: "all"})
	require.NoError(t, err)
	require.Len(t, byMembers, 3)
	assert.Equal(t, []int{1, 1, 2}, []int{byMembers[0].Rank, byMembers[1].Rank, byMembers[2].Rank})
	assert.Equal(t, "Solo", byMembers[2].UnitName)
}

func TestUnitsExactNameGrouping(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	logs := []models.WorkoutLog{cardio(a, 10), cardio(b, 10)}
	profiles := map[uuid.UUID]models.User{
		a: profile(a, "A", "Bravo Co", models.UnitOther),
		b: profile(b, "B", "bravo co", models.UnitOther),
	}
	builder := newBuilder()

	units, err := builder.Units(builder.Participants(logs, profiles), UnitOptions{})
	require.NoError(t, err)
	assert.Len(t, units, 2)
}

func TestFloatNoiseTiesOrderByName(t *testing.T) {
	amy, zed := uuid.New(), uuid.New()
	logs := []models.WorkoutLog{cardio(zed, 10.0000000001), cardio(amy, 10)}
	profiles := map[uuid.UUID]models.User{
		amy: profile(amy, "Amy", "Alpha", models.UnitCivilian),
		zed: profile(zed, "Zed", "Zulu", models.UnitCivilian),
	}
	builder := newBuilder()

	entries, err := builder.Individuals(logs, profiles, MetricCardio)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, []string{"Amy", "Zed"}, []string{entries[0].DisplayName, entries[1].DisplayName})
	assert.Equal(t, []int{1, 1}, []int{entries[0].Rank, entries[1].Rank})

	units, err := builder.Units(builder.Participants(logs, profiles), UnitOptions{Metric: MetricOverall, MinMembers: 1})
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, []string{"Alpha", "Zulu"}, []string{units[0].UnitName, units[1].UnitName})
	assert.Equal(t, []int{1, 1}, []int{units[0].Rank, units[1].Rank})
}
