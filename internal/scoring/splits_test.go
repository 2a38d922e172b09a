package scoring

import (
	"testing"

	"github.com/pacerank/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestExtractSplitsOrdered(t *testing.T) {
	rec := domain.ActivityRecord{
		DurationSeconds: 3000,
		Splits: []domain.SplitAnnotation{
			{Km: "3", Elapsed: "15:00"},
			{Km: "1", Elapsed: "5:00"},
			{Km: "2", Elapsed: "10:00"},
		},
	}

	splits := ExtractSplits(rec)
	assert.Equal(t, SplitMap{
		{Km: 1, Seconds: 300},
		{Km: 2, Seconds: 600},
		{Km: 3, Seconds: 900},
	}, splits)
}

func TestExtractSplitsDropsMalformed(t *testing.T) {
	rec := domain.ActivityRecord{
		Splits: []domain.SplitAnnotation{
			{Km: "0", Elapsed: "5:00"},     // mark must be positive
			{Km: "-2", Elapsed: "5:00"},    // negative mark
			{Km: "two", Elapsed: "5:00"},   // non-integer mark
			{Km: "1", Elapsed: "garbage"},  // unparsable time
			{Km: "1", Elapsed: "00:00:00"}, // parses to 0, treated as unparsable
			{Km: "2", Elapsed: "10:00"},
		},
	}

	splits := ExtractSplits(rec)
	assert.Equal(t, SplitMap{{Km: 2, Seconds: 600}}, splits)
}

func TestExtractSplitsLastWriteWins(t *testing.T) {
	rec := domain.ActivityRecord{
		Splits: []domain.SplitAnnotation{
			{Km: "5", Elapsed: "26:00"},
			{Km: "5", Elapsed: "25:30"},
		},
	}

	secs, ok := ExtractSplits(rec).At(5)
	assert.True(t, ok)
	assert.Equal(t, 1530, secs)
}

func TestExtractSplitsDropsNonMonotonic(t *testing.T) {
	rec := domain.ActivityRecord{
		Splits: []domain.SplitAnnotation{
			{Km: "1", Elapsed: "5:00"},
			{Km: "2", Elapsed: "4:00"}, // earlier than km 1, dropped
			{Km: "3", Elapsed: "15:00"},
		},
	}

	splits := ExtractSplits(rec)
	assert.Equal(t, SplitMap{
		{Km: 1, Seconds: 300},
		{Km: 3, Seconds: 900},
	}, splits)
}

func TestSplitMapFloor(t *testing.T) {
	splits := SplitMap{
		{Km: 1, Seconds: 300},
		{Km: 3, Seconds: 900},
		{Km: 5, Seconds: 1530},
	}

	mark, ok := splits.Floor(4)
	assert.True(t, ok)
	assert.Equal(t, SplitMark{Km: 3, Seconds: 900}, mark)

	mark, ok = splits.Floor(5)
	assert.True(t, ok)
	assert.Equal(t, SplitMark{Km: 5, Seconds: 1530}, mark)

	_, ok = splits.Floor(0.5)
	assert.False(t, ok)
}

func TestExtractSplitsEmpty(t *testing.T) {
	assert.Nil(t, ExtractSplits(domain.ActivityRecord{}))
	assert.Nil(t, ExtractSplits(domain.ActivityRecord{
		Splits: []domain.SplitAnnotation{{Km: "x", Elapsed: "y"}},
	}))
}
