package datastructure

import (
	"fmt"
	"time"

	"github.com/lintang-b-s/roadflow/pkg"
)

// timestamps carry no zone. they are parsed as UTC so the wall clock is kept as is
// and flooring is never shifted by the host timezone or daylight saving.

func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(pkg.TIME_LAYOUT, s)
}

func FormatTimestamp(t time.Time) string {
	return t.Format(pkg.TIME_LAYOUT)
}

// RoundTime floors t to the lower multiple of interval minutes, e.g. 25/03/2016 12:26:45 -> 25/03/2016 12:25:00.
func RoundTime(t time.Time, intervalMinutes int) time.Time {
	return t.Truncate(time.Duration(intervalMinutes) * time.Minute)
}

// TimeBucket maps t to its time-of-day bucket: hour*(60/interval) + minute/interval.
func TimeBucket(t time.Time, intervalMinutes int) int {
	return t.Hour()*(60/intervalMinutes) + t.Minute()/intervalMinutes
}

func BucketsPerDay(intervalMinutes int) int {
	return 24 * 60 / intervalMinutes
}

// GenerateTimeIntervals returns the start of every interval of date (YYYYMMDD).
func GenerateTimeIntervals(date string, intervalMinutes int) ([]time.Time, error) {
	if intervalMinutes <= 0 || (24*60)%intervalMinutes != 0 {
		return nil, fmt.Errorf("interval %d minutes does not divide a day", intervalMinutes)
	}
	start, err := time.Parse(pkg.DATE_LAYOUT, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	n := BucketsPerDay(intervalMinutes)
	step := time.Duration(intervalMinutes) * time.Minute
	intervals := make([]time.Time, n)
	for i := 0; i < n; i++ {
		intervals[i] = start.Add(time.Duration(i) * step)
	}
	return intervals, nil
}
