// Package scoring converts raw activity records into ranked competition
// standings. The package is pure computation: no I/O, no clock, no shared
// state, so the same inputs always produce the same leaderboard and callers
// may invoke it concurrently without coordination.
package scoring

import (
	"cmp"
	"math"
	"slices"

	"github.com/pacerank/internal/domain"
)

// qualifyingTolerance is the fraction of the target distance a record must
// reach to qualify for fastest-time scoring. GPS and manual-entry noise make
// a strict cutoff unfair, so a 5% shortfall is accepted.
const qualifyingTolerance = 0.95

// BuildLeaderboard ranks participants under the given scoring mode.
//
// records maps each participant ID to that participant's workout records.
// A nil map is a caller error and fails fast; an empty map is the valid
// "nobody qualified yet" state and yields an empty leaderboard. targetKm
// at or below zero selects the 5 km default. roster, when non-nil, is the
// full set of expected participants: anyone absent from the scored entries
// is appended with a zero score at a shared trailing rank so the output is
// total over the roster.
//
// Exactly equal scores are ordered by ascending participant ID. An
// unrecognized mode degrades to fastest-time scoring.
func BuildLeaderboard(records map[string][]domain.ActivityRecord, mode domain.ScoringMode, targetKm float64, roster []string) ([]domain.LeaderboardEntry, error) {
	if records == nil {
		return nil, domain.ErrNilRecords
	}
	if targetKm <= 0 {
		targetKm = DefaultTargetKm
	}

	var entries []domain.LeaderboardEntry
	switch mode {
	case domain.ModeMostDistance:
		entries = scoreMostDistance(records)
	case domain.ModeParticipation:
		entries = scoreParticipation(records)
	default:
		entries = scoreFastestTime(records, targetKm)
	}

	// Participation entries carry a pre-set shared rank 1 and are not touched.
	if mode != domain.ModeParticipation {
		assignDenseRanks(entries)
	}

	if roster != nil {
		entries = backfillRoster(entries, roster)
	}
	return entries, nil
}

// scoreFastestTime keeps each participant's minimum target-distance time
// across records whose distance reaches the qualifying threshold.
func scoreFastestTime(records map[string][]domain.ActivityRecord, targetKm float64) []domain.LeaderboardEntry {
	minMeters := qualifyingTolerance * targetKm * 1000

	entries := make([]domain.LeaderboardEntry, 0, len(records))
	for participantID, recs := range records {
		best := math.Inf(1)
		bestRecordID := ""
		qualifying := 0

		for _, rec := range recs {
			if rec.DistanceMeters < minMeters {
				continue
			}
			qualifying++
			t := ResolveTargetTime(rec, targetKm)
			if t < best {
				best = t
				bestRecordID = rec.ID
			}
		}
		if qualifying == 0 {
			continue
		}

		entries = append(entries, domain.LeaderboardEntry{
			ParticipantID:          participantID,
			Score:                  best,
			FormattedScore:         FormatScore(best, domain.ModeFastestTime),
			QualifyingWorkoutCount: qualifying,
			ReferenceRecordID:      bestRecordID,
		})
	}

	// Lower time is better.
	slices.SortFunc(entries, func(a, b domain.LeaderboardEntry) int {
		if c := cmp.Compare(a.Score, b.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ParticipantID, b.ParticipantID)
	})
	return entries
}

// scoreMostDistance sums every record's distance, however short, and ranks
// by total kilometers.
func scoreMostDistance(records map[string][]domain.ActivityRecord) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(records))
	for participantID, recs := range records {
		var totalMeters float64
		longestID := ""
		longest := -1.0

		for _, rec := range recs {
			totalMeters += rec.DistanceMeters
			if rec.DistanceMeters > longest {
				longest = rec.DistanceMeters
				longestID = rec.ID
			}
		}
		totalKm := totalMeters / 1000
		if totalKm <= 0 {
			continue
		}

		entries = append(entries, domain.LeaderboardEntry{
			ParticipantID:          participantID,
			Score:                  totalKm,
			FormattedScore:         FormatScore(totalKm, domain.ModeMostDistance),
			QualifyingWorkoutCount: len(recs),
			ReferenceRecordID:      longestID,
		})
	}

	// Higher distance is better.
	slices.SortFunc(entries, func(a, b domain.LeaderboardEntry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ParticipantID, b.ParticipantID)
	})
	return entries
}

// scoreParticipation counts workouts per participant. Everyone with at least
// one record shares rank 1: the mode expresses equal standing, and the count
// is carried for display only. Output is ordered by participant ID purely
// for reproducibility.
func scoreParticipation(records map[string][]domain.ActivityRecord) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(records))
	for participantID, recs := range records {
		if len(recs) == 0 {
			continue
		}
		count := len(recs)
		entries = append(entries, domain.LeaderboardEntry{
			Rank:                   1,
			ParticipantID:          participantID,
			Score:                  float64(count),
			FormattedScore:         FormatScore(float64(count), domain.ModeParticipation),
			QualifyingWorkoutCount: count,
		})
	}

	slices.SortFunc(entries, func(a, b domain.LeaderboardEntry) int {
		return cmp.Compare(a.ParticipantID, b.ParticipantID)
	})
	return entries
}

// assignDenseRanks writes 1-based ranks strictly by sorted position.
func assignDenseRanks(entries []domain.LeaderboardEntry) {
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

// backfillRoster appends a zero-score entry for every roster member absent
// from the scored entries. Backfilled entries share one trailing rank so a
// UI can show "not yet ranked" instead of omitting the participant.
func backfillRoster(entries []domain.LeaderboardEntry, roster []string) []domain.LeaderboardEntry {
	scored := make(map[string]bool, len(entries))
	for _, e := range entries {
		scored[e.ParticipantID] = true
	}

	var missing []string
	for _, participantID := range roster {
		if participantID == "" || scored[participantID] {
			continue
		}
		scored[participantID] = true
		missing = append(missing, participantID)
	}
	slices.Sort(missing)

	trailingRank := len(entries) + 1
	for _, participantID := range missing {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:          trailingRank,
			ParticipantID: participantID,
		})
	}
	return entries
}
