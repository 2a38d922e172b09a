package scoring

import (
	"testing"

	"github.com/pacerank/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLeaderboardNilRecords(t *testing.T) {
	_, err := BuildLeaderboard(nil, domain.ModeFastestTime, 5, nil)
	assert.ErrorIs(t, err, domain.ErrNilRecords)
}

func TestBuildLeaderboardEmptyRecords(t *testing.T) {
	entries, err := BuildLeaderboard(map[string][]domain.ActivityRecord{}, domain.ModeFastestTime, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFastestTimeQualifyingThreshold(t *testing.T) {
	records := map[string][]domain.ActivityRecord{
		"alice": {{ID: "r1", DistanceMeters: 4800, DurationSeconds: 1500}}, // 96% of 5 km
		"bob":   {{ID: "r2", DistanceMeters: 4700, DurationSeconds: 1400}}, // 94%, below threshold
	}

	entries, err := BuildLeaderboard(records, domain.ModeFastestTime, 5, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].ParticipantID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "r1", entries[0].ReferenceRecordID)
}

func TestFastestTimeKeepsMinimumAcrossQualifyingRecords(t *testing.T) {
	records := map[string][]domain.ActivityRecord{
		"alice": {
			{ID: "slow", DistanceMeters: 5000, DurationSeconds: 1600},
			{ID: "fast", DistanceMeters: 5000, DurationSeconds: 1450},
			{ID: "short", DistanceMeters: 3000, DurationSeconds: 800}, // not qualifying
		},
	}

	entries, err := BuildLeaderboard(records, domain.ModeFastestTime, 5, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1450.0, entries[0].Score)
	assert.Equal(t, "fast", entries[0].ReferenceRecordID)
	assert.Equal(t, 2, entries[0].QualifyingWorkoutCount)
	assert.Equal(t, "24:10", entries[0].FormattedScore)
}

func TestFastestTimeRanksAscending(t *testing.T) {
	records := map[string][]domain.ActivityRecord{
		"carol": {{ID: "c", DistanceMeters: 5000, DurationSeconds: 1400}},
		"alice": {{ID: "a", DistanceMeters: 5000, DurationSeconds: 1600}},
		"bob":   {{ID: "b", DistanceMeters: 5000, DurationSeconds: 1500}},
	}

	entries, err := BuildLeaderboard(records, domain.ModeFastestTime, 5, nil)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"carol", "bob", "alice"}, participantOrder(entries))
	assert.Equal(t, []int{1, 2, 3}, rankOrder(entries))
}

func TestFastestTimeTiesBreakByParticipantID(t *testing.T) {
	records := map[string][]domain.ActivityRecord{
		"zoe":   {{ID: "z", DistanceMeters: 5000, DurationSeconds: 1500}},
		"alice": {{ID: "a", DistanceMeters: 5000, DurationSeconds: 1500}},
	}

	entries, err := BuildLeaderboard(records, domain.ModeFastestTime, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "zoe"}, participantOrder(entries))
}

func TestMostDistanceSumsAcrossRecords(t *testing.T) {
	records := map[string][]domain.ActivityRecord{
		"alice": {
			{ID: "r1", DistanceMeters: 1000, DurationSeconds: 300},
			{ID: "r2", DistanceMeters: 2500, DurationSeconds: 800},
		},
	}

	entries, err := BuildLeaderboard(records, domain.ModeMostDistance, 0, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3.5, entries[0].Score)
	assert.Equal(t, "3.50 km", entries[0].FormattedScore)
	assert.Equal(t, 2, entries[0].QualifyingWorkoutCount)
	assert.Equal(t, "r2", entries[0].ReferenceRecordID)
}

func TestMostDistanceSkipsZeroTotals(t *testing.T) {
	records := map[string][]domain.ActivityRecord{
		"alice": {{ID: "r1", DurationSeconds: 900}}, // no distance recorded
		"bob":   {{ID: "r2", DistanceMeters: 5000, DurationSeconds: 1500}},
	}

	entries, err := BuildLeaderboard(records, domain.ModeMostDistance, 0, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bob", entries[0].ParticipantID)
}

func TestMostDistanceRanksDescending(t *testing.T) {
	records := map[string][]domain.ActivityRecord{
		"alice": {{ID: "a", DistanceMeters: 12000}},
		"bob":   {{ID: "b", DistanceMeters: 21000}},
	}

	entries, err := BuildLeaderboard(records, domain.ModeMostDistance, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "alice"}, participantOrder(entries))
	assert.Equal(t, "21.0 km", entries[0].FormattedScore)
}

func TestParticipationSharedRank(t *testing.T) {
	records := map[string][]domain.ActivityRecord{
		"carol": {{ID: "c1"}, {ID: "c2"}, {ID: "c3"}},
		"alice": {{ID: "a1"}},
		"bob":   {{ID: "b1"}, {ID: "b2"}},
		"dave":  {},
	}

	entries, err := BuildLeaderboard(records, domain.ModeParticipation, 0, nil)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Ordered by participant ID for reproducibility, all sharing rank 1.
	assert.Equal(t, []string{"alice", "bob", "carol"}, participantOrder(entries))
	for _, e := range entries {
		assert.Equal(t, 1, e.Rank)
	}
	assert.Equal(t, "1 workout", entries[0].FormattedScore)
	assert.Equal(t, "3 workouts", entries[2].FormattedScore)
}

func TestBackfillTotality(t *testing.T) {
	records := map[string][]domain.ActivityRecord{
		"a": {{ID: "r1", DistanceMeters: 5000, DurationSeconds: 1500}},
	}

	entries, err := BuildLeaderboard(records, domain.ModeFastestTime, 5, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "a", entries[0].ParticipantID)
	assert.Equal(t, 1, entries[0].Rank)

	for _, e := range entries[1:] {
		assert.Equal(t, 2, e.Rank)
		assert.Zero(t, e.Score)
		assert.Empty(t, e.FormattedScore)
		assert.Zero(t, e.QualifyingWorkoutCount)
	}
	assert.Equal(t, []string{"b", "c"}, participantOrder(entries[1:]))
}

func TestBackfillIgnoresAlreadyScored(t *testing.T) {
	records := map[string][]domain.ActivityRecord{
		"a": {{ID: "r1", DistanceMeters: 5000, DurationSeconds: 1500}},
	}

	entries, err := BuildLeaderboard(records, domain.ModeFastestTime, 5, []string{"a"})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUnknownModeFallsBackToFastestTime(t *testing.T) {
	records := map[string][]domain.ActivityRecord{
		"alice": {{ID: "r1", DistanceMeters: 5000, DurationSeconds: 1500}},
	}

	entries, err := BuildLeaderboard(records, domain.ScoringMode("garbage"), 5, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1500.0, entries[0].Score)
}

func TestBuildLeaderboardDeterminism(t *testing.T) {
	records := map[string][]domain.ActivityRecord{
		"alice": {
			{ID: "a1", DistanceMeters: 5200, DurationSeconds: 1580,
				Splits: []domain.SplitAnnotation{{Km: "5", Elapsed: "25:10"}}},
		},
		"bob":   {{ID: "b1", DistanceMeters: 5000, DurationSeconds: 1580}},
		"carol": {{ID: "c1", DistanceMeters: 4800, DurationSeconds: 1490}},
	}
	roster := []string{"alice", "bob", "carol", "dave"}

	first, err := BuildLeaderboard(records, domain.ModeFastestTime, 5, roster)
	require.NoError(t, err)
	second, err := BuildLeaderboard(records, domain.ModeFastestTime, 5, roster)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func participantOrder(entries []domain.LeaderboardEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ParticipantID
	}
	return ids
}

func rankOrder(entries []domain.LeaderboardEntry) []int {
	ranks := make([]int, len(entries))
	for i, e := range entries {
		ranks[i] = e.Rank
	}
	return ranks
}
