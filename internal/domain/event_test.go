package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRecordKeepsOnlySplitTags(t *testing.T) {
	distance := 5000.0
	event := WorkoutEvent{
		ID:              "rec-1",
		CompetitionID:   "comp-1",
		ParticipantID:   "alice",
		DistanceMeters:  &distance,
		DurationSeconds: 1500,
		Tags: [][]string{
			{"split", "1", "5:00"},
			{"weather", "rain"},
			{"split", "2"},
			{"shoe", "2", "10:00"},
			{"split", "3", "15:00"},
		},
	}

	rec := event.ToRecord()
	require.Len(t, rec.Splits, 2)
	assert.Equal(t, SplitAnnotation{Km: "1", Elapsed: "5:00"}, rec.Splits[0])
	assert.Equal(t, SplitAnnotation{Km: "3", Elapsed: "15:00"}, rec.Splits[1])
	assert.Equal(t, 5000.0, rec.DistanceMeters)
}

func TestToRecordMissingDistanceAndNegativeDuration(t *testing.T) {
	event := WorkoutEvent{
		ID:              "rec-2",
		ParticipantID:   "bob",
		DurationSeconds: -30,
	}

	rec := event.ToRecord()
	assert.Zero(t, rec.DistanceMeters)
	assert.Zero(t, rec.DurationSeconds)
	assert.Empty(t, rec.Splits)
}

func TestSplitTagRoundTrip(t *testing.T) {
	event := WorkoutEvent{
		ParticipantID: "carol",
		Tags:          [][]string{SplitTag(5, "25:30")},
	}

	rec := event.ToRecord()
	require.Len(t, rec.Splits, 1)
	assert.Equal(t, "5", rec.Splits[0].Km)
	assert.Equal(t, "25:30", rec.Splits[0].Elapsed)
}

func TestParseScoringMode(t *testing.T) {
	for _, valid := range []string{"fastest_time", "most_distance", "participation"} {
		mode, err := ParseScoringMode(valid)
		require.NoError(t, err)
		assert.Equal(t, ScoringMode(valid), mode)
	}

	_, err := ParseScoringMode("fastest")
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, err = ParseScoringMode("")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestCreateCompetitionRequestDefaults(t *testing.T) {
	req := CreateCompetitionRequest{ID: "comp-1", Name: "Spring 5K"}
	comp := req.ToCompetition()

	assert.Equal(t, ModeFastestTime, comp.Mode)
	assert.Equal(t, 5.0, comp.TargetDistanceKm)
	assert.False(t, comp.CreatedAt.IsZero())
}
