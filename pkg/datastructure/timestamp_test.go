package datastructure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTime(t *testing.T) {
	testCases := []struct {
		in       string
		interval int
		want     string
	}{
		{"25/03/2016 12:26:45", 5, "25/03/2016 12:25:00"},
		{"25/03/2016 12:25:00", 5, "25/03/2016 12:25:00"},
		{"25/03/2016 12:29:59", 5, "25/03/2016 12:25:00"},
		{"25/03/2016 23:59:59", 15, "25/03/2016 23:45:00"},
		{"25/03/2016 00:00:01", 60, "25/03/2016 00:00:00"},
		{"01/04/2016 07:14:00", 1, "01/04/2016 07:14:00"},
	}

	for _, tt := range testCases {
		t.Run(tt.in, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatTimestamp(RoundTime(ts, tt.interval)))
		})
	}
}

func TestTimeBucket(t *testing.T) {
	testCases := []struct {
		in       string
		interval int
		want     int
	}{
		{"25/03/2016 00:00:00", 15, 0},
		{"25/03/2016 00:14:59", 15, 0},
		{"25/03/2016 00:15:00", 15, 1},
		{"25/03/2016 13:47:00", 15, 55},
		{"25/03/2016 23:59:59", 15, 95},
		{"25/03/2016 23:59:59", 60, 23},
		{"25/03/2016 10:31:00", 10, 63},
	}

	for _, tt := range testCases {
		ts, err := ParseTimestamp(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, TimeBucket(ts, tt.interval), "%s / %d", tt.in, tt.interval)
	}
	assert.Equal(t, 96, BucketsPerDay(15))
}

func TestTimestampKeepsWallClock(t *testing.T) {
	ts, err := ParseTimestamp("27/03/2016 02:30:00")
	require.NoError(t, err)
	assert.Equal(t, 2, ts.Hour())
	assert.Equal(t, 30, ts.Minute())
	assert.Equal(t, "27/03/2016 02:30:00", FormatTimestamp(ts))

	_, err = ParseTimestamp("2016-03-27 02:30:00")
	assert.Error(t, err)
}

func TestGenerateTimeIntervals(t *testing.T) {
	intervals, err := GenerateTimeIntervals("20160401", 5)
	require.NoError(t, err)
	require.Len(t, intervals, 288)
	assert.Equal(t, "01/04/2016 00:00:00", FormatTimestamp(intervals[0]))
	assert.Equal(t, "01/04/2016 00:05:00", FormatTimestamp(intervals[1]))
	assert.Equal(t, "01/04/2016 23:55:00", FormatTimestamp(intervals[287]))
	for i := 1; i < len(intervals); i++ {
		assert.Equal(t, 5*time.Minute, intervals[i].Sub(intervals[i-1]))
	}

	_, err = GenerateTimeIntervals("20160401", 7)
	assert.Error(t, err)
	_, err = GenerateTimeIntervals("2016-04-01", 5)
	assert.Error(t, err)
}
