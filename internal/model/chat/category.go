package chat

import (
	"math"
	"time"
)

// CategoryLabel names a recency bucket for previous questions.
type CategoryLabel string

const (
	LabelToday     CategoryLabel = "Today"
	LabelYesterday CategoryLabel = "Yesterday"
	LabelLast3Days CategoryLabel = "Last 3 Days"
	LabelOlder     CategoryLabel = "Older"
)

// LabelForDays maps a whole-day difference to its recency bucket.
func LabelForDays(days int) CategoryLabel {
	switch {
	case days == 0:
		return LabelToday
	case days == 1:
		return LabelYesterday
	case days <= 3:
		return LabelLast3Days
	default:
		return LabelOlder
	}
}

// DaysBetween returns the rounded whole-day difference between now and then,
// both stripped to local midnight first. Rounding absorbs DST-shortened days.
func DaysBetween(now, then time.Time) int {
	diff := midnight(now).Sub(midnight(then)).Hours() / 24
	return int(math.Round(diff))
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
