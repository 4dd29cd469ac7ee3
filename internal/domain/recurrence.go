package domain

import (
	"fmt"
	"time"
)

// NextDueDate returns the due date that follows current under the given rule.
//
//   - daily: current + interval days
//   - weekly: current + 7*interval days
//   - monthly: current + interval calendar months, clamped to the last day of the
//     target month (Jan 31 + 1 month = Feb 28/29)
//
// Any other frequency, including "once", returns current unchanged.
// Time of day and location are preserved. The input value is never modified.
func NextDueDate(current time.Time, freq Frequency, interval int) (time.Time, error) {
	if current.IsZero() {
		return time.Time{}, fmt.Errorf("current due date: %w", ErrInvalidDate)
	}

	switch freq {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		if interval < 1 {
			return time.Time{}, fmt.Errorf("interval %d: %w", interval, ErrInvalidInterval)
		}
	default:
		return current, nil
	}

	switch freq {
	case FrequencyDaily:
		return current.AddDate(0, 0, interval), nil
	case FrequencyWeekly:
		return current.AddDate(0, 0, 7*interval), nil
	default:
		return addMonthsClamped(current, interval), nil
	}
}

// addMonthsClamped adds n calendar months without rolling into the following month.
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysInMonth(target); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
