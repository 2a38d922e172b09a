package scoring

import (
	"testing"

	"github.com/pacerank/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamLeaderboardExcludesUntaggedRecords(t *testing.T) {
	records := []domain.ActivityRecord{
		{ID: "r1", ParticipantID: "alice", DistanceMeters: 5000, TeamID: "reds"},
		{ID: "r2", ParticipantID: "bob", DistanceMeters: 8000}, // no team tag
	}

	entries := BuildTeamLeaderboard(records, domain.ModeMostDistance, 0)
	require.Len(t, entries, 1)
	assert.Equal(t, "reds", entries[0].TeamID)
}

func TestTeamMostDistanceMatchesIndividualSums(t *testing.T) {
	records := []domain.ActivityRecord{
		{ID: "r1", ParticipantID: "alice", DistanceMeters: 5000, TeamID: "reds"},
		{ID: "r2", ParticipantID: "alice", DistanceMeters: 3000, TeamID: "reds"},
		{ID: "r3", ParticipantID: "bob", DistanceMeters: 10000, TeamID: "reds"},
		{ID: "r4", ParticipantID: "carol", DistanceMeters: 21000, TeamID: "blues"},
	}

	// Individual most-distance scores, computed independently.
	byParticipant := map[string][]domain.ActivityRecord{}
	for _, rec := range records {
		byParticipant[rec.ParticipantID] = append(byParticipant[rec.ParticipantID], rec)
	}
	individual, err := BuildLeaderboard(byParticipant, domain.ModeMostDistance, 0, nil)
	require.NoError(t, err)

	individualKm := map[string]float64{}
	for _, e := range individual {
		individualKm[e.ParticipantID] = e.Score
	}

	teams := BuildTeamLeaderboard(records, domain.ModeMostDistance, 0)
	require.Len(t, teams, 2)

	teamKm := map[string]float64{}
	for _, e := range teams {
		teamKm[e.TeamID] = e.TeamScore
	}

	// A team's score equals the sum of its members' individual scores.
	assert.InDelta(t, individualKm["alice"]+individualKm["bob"], teamKm["reds"], 1e-9)
	assert.InDelta(t, individualKm["carol"], teamKm["blues"], 1e-9)
}

func TestTeamMostDistanceRanksDescending(t *testing.T) {
	records := []domain.ActivityRecord{
		{ID: "r1", ParticipantID: "alice", DistanceMeters: 5000, TeamID: "reds"},
		{ID: "r2", ParticipantID: "carol", DistanceMeters: 21000, TeamID: "blues"},
	}

	entries := BuildTeamLeaderboard(records, domain.ModeMostDistance, 0)
	require.Len(t, entries, 2)
	assert.Equal(t, "blues", entries[0].TeamID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "21.0 km", entries[0].FormattedScore)
	assert.Equal(t, "reds", entries[1].TeamID)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestTeamFastestTimeSumsMemberBests(t *testing.T) {
	records := []domain.ActivityRecord{
		{ID: "r1", ParticipantID: "alice", DistanceMeters: 5000, DurationSeconds: 1500, TeamID: "reds"},
		{ID: "r2", ParticipantID: "alice", DistanceMeters: 5000, DurationSeconds: 1600, TeamID: "reds"},
		{ID: "r3", ParticipantID: "bob", DistanceMeters: 5000, DurationSeconds: 1400, TeamID: "reds"},
		{ID: "r4", ParticipantID: "bob", DistanceMeters: 2000, DurationSeconds: 600, TeamID: "reds"}, // not qualifying
	}

	entries := BuildTeamLeaderboard(records, domain.ModeFastestTime, 5)
	require.Len(t, entries, 1)

	// Only each member's best qualifying time counts: 1500 + 1400.
	assert.Equal(t, 2900.0, entries[0].TeamScore)
	assert.Equal(t, 2, entries[0].MemberCount)
}

func TestTeamFastestTimeZeroScoreTeamsSortLast(t *testing.T) {
	records := []domain.ActivityRecord{
		{ID: "r1", ParticipantID: "alice", DistanceMeters: 5000, DurationSeconds: 1500, TeamID: "blues"},
		// Greens never reach the qualifying distance, so the team scores zero.
		{ID: "r2", ParticipantID: "bob", DistanceMeters: 2000, DurationSeconds: 700, TeamID: "greens"},
		{ID: "r3", ParticipantID: "carol", DistanceMeters: 5000, DurationSeconds: 1700, TeamID: "reds"},
	}

	entries := BuildTeamLeaderboard(records, domain.ModeFastestTime, 5)
	require.Len(t, entries, 3)
	assert.Equal(t, "blues", entries[0].TeamID)
	assert.Equal(t, "reds", entries[1].TeamID)
	assert.Equal(t, "greens", entries[2].TeamID)
	assert.Equal(t, 3, entries[2].Rank)
	assert.Zero(t, entries[2].TeamScore)
}

func TestTeamParticipationCountsDistinctMembers(t *testing.T) {
	records := []domain.ActivityRecord{
		{ID: "r1", ParticipantID: "alice", TeamID: "reds"},
		{ID: "r2", ParticipantID: "alice", TeamID: "reds"},
		{ID: "r3", ParticipantID: "bob", TeamID: "reds"},
		{ID: "r4", ParticipantID: "carol", TeamID: "blues"},
	}

	entries := BuildTeamLeaderboard(records, domain.ModeParticipation, 0)
	require.Len(t, entries, 2)

	// Two distinct reds members outrank one blue regardless of workout volume.
	assert.Equal(t, "reds", entries[0].TeamID)
	assert.Equal(t, 2.0, entries[0].TeamScore)
	assert.Equal(t, 2, entries[0].MemberCount)
	assert.Equal(t, "blues", entries[1].TeamID)
	assert.Equal(t, 1.0, entries[1].TeamScore)
}

func TestTeamTiesBreakByTeamID(t *testing.T) {
	records := []domain.ActivityRecord{
		{ID: "r1", ParticipantID: "alice", DistanceMeters: 5000, TeamID: "zebras"},
		{ID: "r2", ParticipantID: "bob", DistanceMeters: 5000, TeamID: "ants"},
	}

	entries := BuildTeamLeaderboard(records, domain.ModeMostDistance, 0)
	require.Len(t, entries, 2)
	assert.Equal(t, "ants", entries[0].TeamID)
	assert.Equal(t, "zebras", entries[1].TeamID)
}

func TestTeamLeaderboardEmpty(t *testing.T) {
	assert.Empty(t, BuildTeamLeaderboard(nil, domain.ModeMostDistance, 0))
	assert.Empty(t, BuildTeamLeaderboard([]domain.ActivityRecord{
		{ID: "r1", ParticipantID: "alice", DistanceMeters: 5000},
	}, domain.ModeMostDistance, 0))
}
