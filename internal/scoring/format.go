package scoring

import (
	"fmt"
	"math"

	"github.com/pacerank/internal/domain"
)

// FormatScore renders a numeric score for display under the given mode.
// The conventions are fixed for UI compatibility: times under one hour render
// as M:SS and times at or above one hour as H:MM:SS; distances render as
// "X.XX km" below 10 km and "X.X km" at or above; participation renders as
// a pluralized workout count.
func FormatScore(score float64, mode domain.ScoringMode) string {
	switch mode {
	case domain.ModeMostDistance:
		return formatDistanceKm(score)
	case domain.ModeParticipation:
		return formatWorkoutCount(int(score))
	default:
		return formatElapsed(score)
	}
}

func formatElapsed(seconds float64) string {
	total := int(math.Round(seconds))
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

func formatDistanceKm(km float64) string {
	if km >= 10 {
		return fmt.Sprintf("%.1f km", km)
	}
	return fmt.Sprintf("%.2f km", km)
}

func formatWorkoutCount(n int) string {
	if n == 1 {
		return "1 workout"
	}
	return fmt.Sprintf("%d workouts", n)
}
