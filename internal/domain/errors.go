package domain

import "errors"

// Domain errors
var (
	ErrParticipantNotFound = errors.New("participant not found in leaderboard")
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrCompetitionExists   = errors.New("competition already exists")
	ErrNilRecords          = errors.New("nil records map")
	ErrInvalidMode         = errors.New("invalid scoring mode")
	ErrInvalidCompetition  = errors.New("invalid competition configuration")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInternalError       = errors.New("internal server error")
)

// IsNotFoundError checks if an error is a not-found type error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrParticipantNotFound) || errors.Is(err, ErrCompetitionNotFound)
}
