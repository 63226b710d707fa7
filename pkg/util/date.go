package util

import "time"

// DayBucket returns the UTC calendar-day bucket for t, formatted as
// YYYY-MM-DD. Cache keys use it so intraday repeats share entries while
// day-over-day requests refresh.
func DayBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
