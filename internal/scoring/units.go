package scoring

import (
	"errors"
	"math"
	"strings"
)

var ErrInvalidDistanceUnit = errors.New("invalid distance unit: must be miles, km, or meters")

const (
	milesPerKilometer = 0.621371
	milesPerMeter     = 0.000621371
)

// ToMiles normalizes a cardio distance to miles.
func ToMiles(distance float64, unit string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "mi", "mile", "miles":
		return distance, nil
	case "km", "kilometer", "kilometers":
		return distance * milesPerKilometer, nil
	case "m", "meter", "meters":
		return distance * milesPerMeter, nil
	}
	return 0, ErrInvalidDistanceUnit
}

// StrengthTotal is sets x reps x weight, computed once when the log is written.
func StrengthTotal(sets, repsPerSet int, weightPerRep float64) float64 {
	return float64(sets) * float64(repsPerSet) * weightPerRep
}

// DenseRanks assigns ranks to values already sorted in descending order.
// Equal values share a rank and the next distinct value gets the next integer.
func DenseRanks(values []float64) []int {
	ranks := make([]int, len(values))
	rank := 0
	for i, v := range values {
		if i == 0 || ScoreKey(values[i-1]) != ScoreKey(v) {
			rank++
		}
		ranks[i] = rank
	}
	return ranks
}

// ScoreKey rounds to micro precision so weighted sums that differ only in
// floating point noise still tie. Sort on it before calling DenseRanks.
func ScoreKey(v float64) float64 {
	return math.Round(v * 1e6)
}
