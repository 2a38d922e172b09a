package domain

import (
	"time"
)

// ScoringMode selects which scoring strategy ranks a competition.
type ScoringMode string

const (
	ModeFastestTime   ScoringMode = "fastest_time"
	ModeMostDistance  ScoringMode = "most_distance"
	ModeParticipation ScoringMode = "participation"
)

// ParseScoringMode validates a mode string at the boundary. Unknown values
// are rejected here so the engine never sees an unrecognized mode.
func ParseScoringMode(s string) (ScoringMode, error) {
	switch ScoringMode(s) {
	case ModeFastestTime, ModeMostDistance, ModeParticipation:
		return ScoringMode(s), nil
	}
	return "", ErrInvalidMode
}

// SplitAnnotation is one raw split tuple attached to a workout record.
// Km and Elapsed arrive as strings in the wire format and are validated
// during split extraction, not here.
type SplitAnnotation struct {
	Km      string `json:"km"`
	Elapsed string `json:"elapsed"`
}

// ActivityRecord is one completed workout attributed to one participant.
type ActivityRecord struct {
	ID              string            `json:"id"`
	ParticipantID   string            `json:"participant_id"`
	DistanceMeters  float64           `json:"distance_meters"`
	DurationSeconds int               `json:"duration_seconds"`
	Splits          []SplitAnnotation `json:"splits,omitempty"`
	TeamID          string            `json:"team_id,omitempty"`
	RecordedAt      time.Time         `json:"recorded_at,omitempty"`
}

// LeaderboardEntry is one output row of an individual leaderboard.
type LeaderboardEntry struct {
	Rank                   int     `json:"rank"`
	ParticipantID          string  `json:"participant_id"`
	Score                  float64 `json:"score"`
	FormattedScore         string  `json:"formatted_score"`
	QualifyingWorkoutCount int     `json:"qualifying_workout_count"`
	ReferenceRecordID      string  `json:"reference_record_id,omitempty"`
}

// TeamLeaderboardEntry is one output row of a team leaderboard.
type TeamLeaderboardEntry struct {
	Rank           int     `json:"rank"`
	TeamID         string  `json:"team_id"`
	TeamScore      float64 `json:"team_score"`
	FormattedScore string  `json:"formatted_score"`
	MemberCount    int     `json:"member_count"`
}

// Competition describes one scored competition.
type Competition struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Mode             ScoringMode `json:"mode"`
	TargetDistanceKm float64     `json:"target_distance_km"`
	StartsAt         time.Time   `json:"starts_at"`
	EndsAt           time.Time   `json:"ends_at"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// CreateCompetitionRequest is the payload for creating a competition.
type CreateCompetitionRequest struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Mode             ScoringMode `json:"mode,omitempty"`
	TargetDistanceKm float64     `json:"target_distance_km,omitempty"`
	StartsAt         time.Time   `json:"starts_at,omitempty"`
	EndsAt           time.Time   `json:"ends_at,omitempty"`
}

// ToCompetition converts a CreateCompetitionRequest to a Competition with defaults.
func (r *CreateCompetitionRequest) ToCompetition() Competition {
	comp := Competition{
		ID:               r.ID,
		Name:             r.Name,
		Mode:             r.Mode,
		TargetDistanceKm: r.TargetDistanceKm,
		StartsAt:         r.StartsAt,
		EndsAt:           r.EndsAt,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	// Apply defaults
	if comp.Mode == "" {
		comp.Mode = ModeFastestTime
	}
	if comp.TargetDistanceKm == 0 {
		comp.TargetDistanceKm = 5
	}

	return comp
}
