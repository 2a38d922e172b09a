package domain

import (
	"strconv"
	"time"
)

const splitTagMarker = "split"

// WorkoutEvent is the wire shape of one workout record as published by the
// upstream activity store. Splits arrive as three-element tag tuples
// ["split", "5", "00:25:30"]; only the second and third elements matter here.
type WorkoutEvent struct {
	ID              string     `json:"id"`
	CompetitionID   string     `json:"competition_id"`
	ParticipantID   string     `json:"participant_id"`
	DistanceMeters  *float64   `json:"distance_meters"`
	DurationSeconds int        `json:"duration_seconds"`
	Tags            [][]string `json:"tags,omitempty"`
	TeamID          string     `json:"team_id,omitempty"`
	RecordedAt      time.Time  `json:"recorded_at,omitempty"`
}

// ToRecord converts a wire event into an ActivityRecord. Split tuples with a
// wrong marker or element count are dropped; a missing distance is treated
// as zero. Validation of the km/elapsed strings happens in scoring.
func (e *WorkoutEvent) ToRecord() ActivityRecord {
	rec := ActivityRecord{
		ID:              e.ID,
		ParticipantID:   e.ParticipantID,
		DurationSeconds: e.DurationSeconds,
		TeamID:          e.TeamID,
		RecordedAt:      e.RecordedAt,
	}
	if e.DistanceMeters != nil {
		rec.DistanceMeters = *e.DistanceMeters
	}
	if rec.DurationSeconds < 0 {
		rec.DurationSeconds = 0
	}
	for _, tag := range e.Tags {
		if len(tag) != 3 || tag[0] != splitTagMarker {
			continue
		}
		rec.Splits = append(rec.Splits, SplitAnnotation{Km: tag[1], Elapsed: tag[2]})
	}
	return rec
}

// SplitTag builds the wire tuple for a split at a whole-kilometer mark.
func SplitTag(km int, elapsed string) []string {
	return []string{splitTagMarker, strconv.Itoa(km), elapsed}
}
