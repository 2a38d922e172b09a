package scoring

import (
	"sort"
	"strconv"

	"github.com/pacerank/internal/domain"
)

// SplitMark is one validated split checkpoint: elapsed seconds at a
// whole-kilometer mark within a single workout.
type SplitMark struct {
	Km      int
	Seconds int
}

// SplitMap holds a record's validated splits ordered by ascending mark.
// Marks are strictly increasing and so are their elapsed values; entries
// violating monotonicity are dropped at extraction, never corrected.
type SplitMap []SplitMark

// At returns the elapsed seconds recorded exactly at the given mark.
func (m SplitMap) At(km int) (int, bool) {
	for _, s := range m {
		if s.Km == km {
			return s.Seconds, true
		}
	}
	return 0, false
}

// Floor returns the split with the largest mark at or below targetKm.
func (m SplitMap) Floor(targetKm float64) (SplitMark, bool) {
	var best SplitMark
	found := false
	for _, s := range m {
		if float64(s.Km) <= targetKm {
			best = s
			found = true
		}
	}
	return best, found
}

// ExtractSplits reads a record's split annotations and produces a SplitMap.
// Annotations are consumed in their given order: marks that are not positive
// integers and elapsed times that fail to parse are discarded, and a repeated
// mark overwrites the earlier value (last write wins). Survivors are then
// ordered by mark and any entry whose elapsed time does not strictly exceed
// the previous surviving entry's is dropped.
func ExtractSplits(rec domain.ActivityRecord) SplitMap {
	if len(rec.Splits) == 0 {
		return nil
	}

	byMark := make(map[int]int, len(rec.Splits))
	for _, ann := range rec.Splits {
		km, err := strconv.Atoi(ann.Km)
		if err != nil || km <= 0 {
			continue
		}
		secs := ParseClockDuration(ann.Elapsed)
		if secs == 0 {
			continue
		}
		byMark[km] = secs
	}
	if len(byMark) == 0 {
		return nil
	}

	marks := make([]int, 0, len(byMark))
	for km := range byMark {
		marks = append(marks, km)
	}
	sort.Ints(marks)

	splits := make(SplitMap, 0, len(marks))
	lastSeconds := 0
	for _, km := range marks {
		secs := byMark[km]
		if secs <= lastSeconds {
			continue
		}
		splits = append(splits, SplitMark{Km: km, Seconds: secs})
		lastSeconds = secs
	}
	return splits
}
