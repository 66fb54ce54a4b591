package core

import (
	"strings"
	"time"
)

// DateRange is a relative time window applied to creation time.
type DateRange string

const (
	RangeToday DateRange = "today"
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
	RangeAll   DateRange = "all"
)

var ValidDateRanges = []DateRange{
	RangeToday,
	RangeWeek,
	RangeMonth,
	RangeAll,
}

// ActiveWindow is how recently a session must have been updated to count as active.
const ActiveWindow = 5 * time.Minute

// Duration returns the window length. RangeAll and unknown ranges return 0.
func (r DateRange) Duration() time.Duration {
	switch r {
	case RangeToday:
		return 24 * time.Hour
	case RangeWeek:
		return 7 * 24 * time.Hour
	case RangeMonth:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// Cutoff returns the inclusive lower bound, in epoch milliseconds, for records
// that fall inside the range. RangeAll yields 0.
func (r DateRange) Cutoff(now time.Time) int64 {
	d := r.Duration()
	if d == 0 {
		return 0
	}
	return now.Add(-d).UnixMilli()
}

func (r DateRange) Label() string {
	switch r {
	case RangeToday:
		return "Today"
	case RangeWeek:
		return "7 Days"
	case RangeMonth:
		return "30 Days"
	default:
		return "All Time"
	}
}

// ParseDateRange maps a query value onto a DateRange. An empty value means RangeAll.
func ParseDateRange(s string) (DateRange, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RangeAll, true
	}
	for _, r := range ValidDateRanges {
		if string(r) == s {
			return r, true
		}
	}
	return RangeAll, false
}

// NextDateRange returns the next range in the cycle.
func NextDateRange(current DateRange) DateRange {
	for i, r := range ValidDateRanges {
		if r == current {
			return ValidDateRanges[(i+1)%len(ValidDateRanges)]
		}
	}
	return ValidDateRanges[0]
}
