package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTruncateToDay(t *testing.T) {
	ts := time.Date(2025, 9, 25, 14, 30, 45, 123, time.UTC)
	assert.Equal(t, time.Date(2025, 9, 25, 0, 0, 0, 0, time.UTC), TruncateToDay(ts))
}

func TestStartOfWeek(t *testing.T) {
	// 2025-09-25 is a Thursday; the week starts Monday 2025-09-22.
	ts := time.Date(2025, 9, 25, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 9, 22, 0, 0, 0, 0, time.UTC), StartOfWeek(ts))

	// A Monday truncates to itself.
	mon := time.Date(2025, 9, 22, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 9, 22, 0, 0, 0, 0, time.UTC), StartOfWeek(mon))

	// A Sunday belongs to the week of the preceding Monday.
	sun := time.Date(2025, 9, 28, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 9, 22, 0, 0, 0, 0, time.UTC), StartOfWeek(sun))
}

func TestStartOfMonth(t *testing.T) {
	ts := time.Date(2025, 9, 25, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(ts))
}

func TestWeekdayIndex(t *testing.T) {
	assert.Equal(t, 0, WeekdayIndex(time.Date(2025, 9, 22, 0, 0, 0, 0, time.UTC))) // Monday
	assert.Equal(t, 6, WeekdayIndex(time.Date(2025, 9, 28, 0, 0, 0, 0, time.UTC))) // Sunday
}

func TestWeekdayLabel(t *testing.T) {
	assert.Equal(t, "Monday", WeekdayLabel(0))
	assert.Equal(t, "Sunday", WeekdayLabel(6))
	assert.Equal(t, "", WeekdayLabel(7))
}
