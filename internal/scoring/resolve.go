package scoring

import (
	"math"

	"github.com/pacerank/internal/domain"
)

// DefaultTargetKm is the canonical race distance scored against when a
// competition does not specify one.
const DefaultTargetKm = 5.0

// ResolveTargetTime estimates the elapsed seconds a record's participant
// needed to cover exactly targetKm. Athletes routinely submit workouts longer
// than the race distance, so the resolver recovers a fair target-distance
// time from within the effort instead of charging the full workout duration.
//
// The priority chain, first applicable rule wins:
//  1. an exact split at the target mark,
//  2. linear interpolation from the largest split mark at or below the
//     target, capped at the record's total duration,
//  3. a whole-workout average-pace projection when the record has no splits
//     but a positive distance,
//  4. the raw total duration.
//
// Split times exceeding the total duration are clamped here, never
// propagated upward.
func ResolveTargetTime(rec domain.ActivityRecord, targetKm float64) float64 {
	if targetKm <= 0 {
		targetKm = DefaultTargetKm
	}
	total := float64(rec.DurationSeconds)

	splits := ExtractSplits(rec)
	if len(splits) > 0 {
		if mark := int(targetKm); float64(mark) == targetKm {
			if secs, ok := splits.At(mark); ok {
				return math.Min(float64(secs), total)
			}
		}
		if floor, ok := splits.Floor(targetKm); ok {
			pacePerKm := float64(floor.Seconds) / float64(floor.Km)
			estimate := float64(floor.Seconds) + pacePerKm*(targetKm-float64(floor.Km))
			return math.Min(estimate, total)
		}
		// Splits exist but all lie beyond the target: no usable anchor.
		return total
	}

	if rec.DistanceMeters > 0 {
		pacePerKm := total / (rec.DistanceMeters / 1000)
		return pacePerKm * targetKm
	}

	return total
}
