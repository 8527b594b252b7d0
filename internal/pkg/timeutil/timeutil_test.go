package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{125, "2h 5m"},
		{0, "0h 0m"},
		{59, "0h 59m"},
		{60, "1h 0m"},
		{-10, "0h 0m"},
		{1439, "23h 59m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMinutes(tt.minutes))
	}
}

func TestCurrentLocalDay(t *testing.T) {
	// 21:30 UTC is already the next day at UTC+5.
	now := time.Date(2025, 3, 10, 21, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-11", CurrentLocalDay(now))

	now = time.Date(2025, 3, 10, 18, 59, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-10", CurrentLocalDay(now))
}

func TestLocalDayBounds(t *testing.T) {
	day, err := ParseLocalDay("2025-03-10")
	require.NoError(t, err)

	start, end := LocalDayBounds(day)
	assert.Equal(t, time.Date(2025, 3, 9, 19, 0, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC), end.UTC())
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestParseLocalDayRejectsGarbage(t *testing.T) {
	_, err := ParseLocalDay("10.03.2025")
	assert.Error(t, err)
}
