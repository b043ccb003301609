package app

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("invalid range, use weekly or monthly")

type Range string

const (
	RangeWeekly  Range = "weekly"
	RangeMonthly Range = "monthly"
)

// Bounds returns the window [now - period : now]. A month is a calendar
// month, so March 31 goes back to March 3 (February 31 normalized).
func (r Range) Bounds(now time.Time) (time.Time, time.Time, error) {
	switch r {
	case RangeWeekly:
		return now.AddDate(0, 0, -7), now, nil
	case RangeMonthly:
		return now.AddDate(0, -1, 0), now, nil
	default:
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
}
