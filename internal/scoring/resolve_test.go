package scoring

import (
	"testing"

	"github.com/pacerank/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestResolveExactSplitMatch(t *testing.T) {
	rec := domain.ActivityRecord{
		DurationSeconds: 2400,
		DistanceMeters:  8000,
		Splits: []domain.SplitAnnotation{
			{Km: "3", Elapsed: "14:00"},
			{Km: "5", Elapsed: "25:00"},
			{Km: "7", Elapsed: "36:00"},
		},
	}

	// An exact split at the target mark wins regardless of other splits.
	assert.Equal(t, 1500.0, ResolveTargetTime(rec, 5))
}

func TestResolveInterpolatesFromFloorSplit(t *testing.T) {
	rec := domain.ActivityRecord{
		DurationSeconds: 3600,
		Splits: []domain.SplitAnnotation{
			{Km: "4", Elapsed: "20:00"},
		},
	}

	// 1200s at km 4 is 300 s/km; one extra km projects to 1500s.
	assert.InDelta(t, 1500.0, ResolveTargetTime(rec, 5), 1e-9)

	// Non-integer targets interpolate the same way.
	assert.InDelta(t, 1350.0, ResolveTargetTime(rec, 4.5), 1e-9)
}

func TestResolveInterpolationCappedAtTotalDuration(t *testing.T) {
	rec := domain.ActivityRecord{
		DurationSeconds: 2000,
		Splits: []domain.SplitAnnotation{
			{Km: "3", Elapsed: "15:00"},
		},
	}

	// Pace projection from km 3 (300 s/km) would give 3000s at 10 km; the
	// estimate must never exceed the workout's actual elapsed time.
	assert.Equal(t, 2000.0, ResolveTargetTime(rec, 10))
}

func TestResolveExactSplitClampedAtTotalDuration(t *testing.T) {
	rec := domain.ActivityRecord{
		DurationSeconds: 1400,
		Splits: []domain.SplitAnnotation{
			{Km: "5", Elapsed: "25:00"},
		},
	}

	assert.Equal(t, 1400.0, ResolveTargetTime(rec, 5))
}

func TestResolveWholeWorkoutProjection(t *testing.T) {
	rec := domain.ActivityRecord{
		DurationSeconds: 6000,
		DistanceMeters:  20000,
	}

	// 6000s over 20 km is 300 s/km; a 5 km target projects to 1500s.
	assert.InDelta(t, 1500.0, ResolveTargetTime(rec, 5), 1e-9)
}

func TestResolveFallsBackToRawDuration(t *testing.T) {
	rec := domain.ActivityRecord{DurationSeconds: 1800}
	assert.Equal(t, 1800.0, ResolveTargetTime(rec, 5))

	// Splits exist but every mark lies beyond the target.
	rec = domain.ActivityRecord{
		DurationSeconds: 1800,
		Splits:          []domain.SplitAnnotation{{Km: "4", Elapsed: "20:00"}},
	}
	assert.Equal(t, 1800.0, ResolveTargetTime(rec, 0.5))
}

func TestResolveDefaultTarget(t *testing.T) {
	rec := domain.ActivityRecord{
		DurationSeconds: 6000,
		DistanceMeters:  20000,
	}

	// targetKm <= 0 selects the 5 km default.
	assert.InDelta(t, 1500.0, ResolveTargetTime(rec, 0), 1e-9)
}
