package scoring

import (
	"testing"

	"github.com/pacerank/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseClockDuration(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"00:25:30", 1530},
		{"1:00:00", 3600},
		{"25:30", 1530},
		{"4:05", 245},
		{"0:45", 45},
		{"2:03:04", 7384},
		// Malformed inputs collapse to 0, the unparsable sentinel.
		{"", 0},
		{"90", 0},
		{"1:2:3:4", 0},
		{"ab:cd", 0},
		{"12:xx", 0},
		{"-1:30", 0},
		{"1::30", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseClockDuration(tt.input), "input %q", tt.input)
	}
}

func TestFormatScoreFastestTime(t *testing.T) {
	assert.Equal(t, "25:00", FormatScore(1500, domain.ModeFastestTime))
	assert.Equal(t, "0:59", FormatScore(59, domain.ModeFastestTime))
	assert.Equal(t, "59:59", FormatScore(3599, domain.ModeFastestTime))
	assert.Equal(t, "1:00:00", FormatScore(3600, domain.ModeFastestTime))
	assert.Equal(t, "1:01:01", FormatScore(3661, domain.ModeFastestTime))
	// Fractional seconds from interpolation round to the nearest second.
	assert.Equal(t, "25:01", FormatScore(1500.5, domain.ModeFastestTime))
}

func TestFormatScoreMostDistance(t *testing.T) {
	assert.Equal(t, "3.50 km", FormatScore(3.5, domain.ModeMostDistance))
	assert.Equal(t, "9.99 km", FormatScore(9.99, domain.ModeMostDistance))
	assert.Equal(t, "10.0 km", FormatScore(10, domain.ModeMostDistance))
	assert.Equal(t, "42.2 km", FormatScore(42.195, domain.ModeMostDistance))
}

func TestFormatScoreParticipation(t *testing.T) {
	assert.Equal(t, "1 workout", FormatScore(1, domain.ModeParticipation))
	assert.Equal(t, "2 workouts", FormatScore(2, domain.ModeParticipation))
	assert.Equal(t, "0 workouts", FormatScore(0, domain.ModeParticipation))
}
