package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name     string
		current  time.Time
		freq     Frequency
		interval int
		want     time.Time
	}{
		{"daily one", date(2024, 6, 10), FrequencyDaily, 1, date(2024, 6, 11)},
		{"daily across month", date(2024, 6, 29), FrequencyDaily, 3, date(2024, 7, 2)},
		{"weekly two", date(2024, 1, 15), FrequencyWeekly, 2, date(2024, 1, 29)},
		{"weekly one", date(2024, 6, 3), FrequencyWeekly, 1, date(2024, 6, 10)},
		{"monthly same day", date(2024, 3, 15), FrequencyMonthly, 1, date(2024, 4, 15)},
		{"monthly clamps leap february", date(2024, 1, 31), FrequencyMonthly, 1, date(2024, 2, 29)},
		{"monthly clamps february", date(2023, 1, 31), FrequencyMonthly, 1, date(2023, 2, 28)},
		{"monthly clamps 30 day month", date(2024, 3, 31), FrequencyMonthly, 1, date(2024, 4, 30)},
		{"monthly across year", date(2024, 11, 30), FrequencyMonthly, 3, date(2025, 2, 28)},
		{"once unchanged", date(2024, 6, 10), FrequencyOnce, 1, date(2024, 6, 10)},
		{"unknown unchanged", date(2024, 6, 10), Frequency("yearly"), 1, date(2024, 6, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDueDate(tt.current, tt.freq, tt.interval)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestNextDueDate_ExactDayDeltas(t *testing.T) {
	start := date(2024, 1, 15)

	for interval := 1; interval <= 5; interval++ {
		daily, err := NextDueDate(start, FrequencyDaily, interval)
		require.NoError(t, err)
		assert.Equal(t, time.Duration(interval)*24*time.Hour, daily.Sub(start))

		weekly, err := NextDueDate(start, FrequencyWeekly, interval)
		require.NoError(t, err)
		assert.Equal(t, time.Duration(7*interval)*24*time.Hour, weekly.Sub(start))
	}
}

func TestNextDueDate_PreservesTimeOfDayAndInput(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	current := time.Date(2024, 5, 31, 18, 30, 0, 0, loc)
	orig := current

	got, err := NextDueDate(current, FrequencyMonthly, 1)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 6, 30, 18, 30, 0, 0, loc), got)
	assert.Equal(t, orig, current)
}

func TestNextDueDate_InvalidInput(t *testing.T) {
	_, err := NextDueDate(time.Time{}, FrequencyDaily, 1)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = NextDueDate(date(2024, 6, 10), FrequencyWeekly, 0)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestNextDueDate_StrictlyLater(t *testing.T) {
	for _, freq := range []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly} {
		for d := 1; d <= 31; d++ {
			current := date(2024, 1, d)
			got, err := NextDueDate(current, freq, 1)
			require.NoError(t, err)
			assert.True(t, got.After(current), "%s from %v gave %v", freq, current, got)
		}
	}
}
