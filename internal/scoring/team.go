package scoring

import (
	"cmp"
	"math"
	"slices"

	"github.com/pacerank/internal/domain"
)

// BuildTeamLeaderboard groups records by team and ranks teams under the
// given mode. Records without a team tag are excluded entirely. Within a
// team, records are sub-partitioned by participant so a member's workouts
// aggregate once, never against each other.
//
// Team scores: most-distance sums every member's kilometers; fastest-time
// sums each member's best target-distance time (a total of individual bests,
// not a relay); participation counts distinct members with at least one
// record. Fastest-time sorts ascending with zero-score teams forced to the
// end; the other modes sort descending. Equal scores order by team ID.
func BuildTeamLeaderboard(records []domain.ActivityRecord, mode domain.ScoringMode, targetKm float64) []domain.TeamLeaderboardEntry {
	if targetKm <= 0 {
		targetKm = DefaultTargetKm
	}

	byTeam := make(map[string]map[string][]domain.ActivityRecord)
	for _, rec := range records {
		if rec.TeamID == "" {
			continue
		}
		members, ok := byTeam[rec.TeamID]
		if !ok {
			members = make(map[string][]domain.ActivityRecord)
			byTeam[rec.TeamID] = members
		}
		members[rec.ParticipantID] = append(members[rec.ParticipantID], rec)
	}

	entries := make([]domain.TeamLeaderboardEntry, 0, len(byTeam))
	for teamID, members := range byTeam {
		entry := domain.TeamLeaderboardEntry{
			TeamID:      teamID,
			MemberCount: len(members),
		}

		switch mode {
		case domain.ModeMostDistance:
			var totalMeters float64
			for _, recs := range members {
				for _, rec := range recs {
					totalMeters += rec.DistanceMeters
				}
			}
			entry.TeamScore = totalMeters / 1000

		case domain.ModeParticipation:
			active := 0
			for _, recs := range members {
				if len(recs) > 0 {
					active++
				}
			}
			entry.TeamScore = float64(active)

		default:
			entry.TeamScore = teamFastestTimeScore(members, targetKm)
		}

		entry.FormattedScore = FormatScore(entry.TeamScore, mode)
		entries = append(entries, entry)
	}

	sortTeamEntries(entries, mode)
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// teamFastestTimeScore sums each member's best qualifying target-distance
// time. Members with no qualifying record contribute nothing; a team with no
// scoring members at all scores zero.
func teamFastestTimeScore(members map[string][]domain.ActivityRecord, targetKm float64) float64 {
	minMeters := qualifyingTolerance * targetKm * 1000

	var sum float64
	for _, recs := range members {
		best := math.Inf(1)
		for _, rec := range recs {
			if rec.DistanceMeters < minMeters {
				continue
			}
			if t := ResolveTargetTime(rec, targetKm); t < best {
				best = t
			}
		}
		if !math.IsInf(best, 1) {
			sum += best
		}
	}
	return sum
}

func sortTeamEntries(entries []domain.TeamLeaderboardEntry, mode domain.ScoringMode) {
	switch mode {
	case domain.ModeMostDistance, domain.ModeParticipation:
		slices.SortFunc(entries, func(a, b domain.TeamLeaderboardEntry) int {
			if c := cmp.Compare(b.TeamScore, a.TeamScore); c != 0 {
				return c
			}
			return cmp.Compare(a.TeamID, b.TeamID)
		})
	default:
		// Ascending by time, but a zero score means no scoring members and
		// must sort behind every real time.
		slices.SortFunc(entries, func(a, b domain.TeamLeaderboardEntry) int {
			aZero, bZero := a.TeamScore == 0, b.TeamScore == 0
			if aZero != bZero {
				if aZero {
					return 1
				}
				return -1
			}
			if c := cmp.Compare(a.TeamScore, b.TeamScore); c != 0 {
				return c
			}
			return cmp.Compare(a.TeamID, b.TeamID)
		})
	}
}
