package scoring

import (
	"strconv"
	"strings"
)

// ParseClockDuration converts an elapsed-time string of the form "H:MM:SS" or
// "M:SS" into total seconds. Segments are colon-separated with no fixed width.
// Malformed input (wrong segment count, non-numeric or negative parts) yields
// 0; callers treat 0 as unparsable rather than as a zero-duration split.
func ParseClockDuration(s string) int {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}
