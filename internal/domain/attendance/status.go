package attendance

import (
	"math"
	"time"
)

// Late-arrival cutoff: a check-in is late strictly after 09:15 local time.
const (
	lateCutoffHour   = 9
	lateCutoffMinute = 15
)

// Half-day threshold in worked hours.
const halfDayThresholdHours = 4.0

// DeriveCheckInStatus derives the day's status from the check-in instant.
// Minute 15 itself is still present.
func DeriveCheckInStatus(now time.Time) Status {
	if now.Hour() > lateCutoffHour ||
		(now.Hour() == lateCutoffHour && now.Minute() > lateCutoffMinute) {
		return StatusLate
	}
	return StatusPresent
}

// TotalHours computes worked hours between checkIn and checkOut, rounded to
// two decimals. A check-out at or before the check-in is a caller error,
// never negative hours.
func TotalHours(checkIn, checkOut time.Time) (float64, error) {
	if !checkOut.After(checkIn) {
		return 0, ErrInvalidTimeRange
	}
	return math.Round(checkOut.Sub(checkIn).Hours()*100) / 100, nil
}

// DeriveCheckOutStatus finalizes the status at check-out: under four worked
// hours the day becomes a half-day regardless of the check-in status, late
// included. Otherwise the check-in status stands.
func DeriveCheckOutStatus(prior Status, totalHours float64) Status {
	if totalHours < halfDayThresholdHours {
		return StatusHalfDay
	}
	return prior
}

// NormalizeDate truncates an instant to its local midnight, the canonical
// form of the record's Date column.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
