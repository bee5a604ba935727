package datastructure

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lintang-b-s/roadflow/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := ParseTimestamp(s)
	require.NoError(t, err)
	return ts
}

func TestFlowTableIncrement(t *testing.T) {
	ft, err := NewFlowTable("20160401", 5, []int64{10, 20, 30})
	require.NoError(t, err)
	assert.Len(t, ft.Intervals(), 288)
	assert.Equal(t, int64(0), ft.Total())

	require.NoError(t, ft.Increment(mustParse(t, "01/04/2016 08:01:10"), 20))
	require.NoError(t, ft.Increment(mustParse(t, "01/04/2016 08:04:59"), 20))
	require.NoError(t, ft.Increment(mustParse(t, "01/04/2016 08:05:00"), 20))
	require.NoError(t, ft.Increment(mustParse(t, "01/04/2016 23:59:59"), 30))

	assert.Equal(t, int64(2), ft.Get(mustParse(t, "01/04/2016 08:00:00"), 20))
	assert.Equal(t, int64(1), ft.Get(mustParse(t, "01/04/2016 08:05:00"), 20))
	assert.Equal(t, int64(1), ft.Get(mustParse(t, "01/04/2016 23:55:00"), 30))
	assert.Equal(t, int64(0), ft.Get(mustParse(t, "01/04/2016 08:00:00"), 10))
	assert.Equal(t, int64(4), ft.Total())

	series, ok := ft.RoadSeries(20)
	require.True(t, ok)
	assert.Equal(t, int64(2), series[96])
	assert.Equal(t, int64(1), series[97])

	err = ft.Increment(mustParse(t, "02/04/2016 00:00:00"), 20)
	assert.True(t, errors.Is(err, util.ErrMalformedRow))
	err = ft.Increment(mustParse(t, "01/04/2016 00:00:00"), 99)
	assert.True(t, errors.Is(err, util.ErrUnknownRoad))
}

func TestFlowTableCSVRoundTrip(t *testing.T) {
	ft, err := NewFlowTable("20160401", 60, []int64{7, 3})
	require.NoError(t, err)
	require.NoError(t, ft.Increment(mustParse(t, "01/04/2016 01:30:00"), 3))
	require.NoError(t, ft.Increment(mustParse(t, "01/04/2016 01:31:00"), 3))
	require.NoError(t, ft.Increment(mustParse(t, "01/04/2016 02:00:00"), 7))

	var buf bytes.Buffer
	require.NoError(t, ft.WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 25)
	assert.Equal(t, "time,7,3", lines[0])
	assert.Equal(t, "01/04/2016 01:00:00,0,2", lines[2])
	assert.Equal(t, "01/04/2016 02:00:00,1,0", lines[3])

	got, err := ReadFlowTableCSV(bytes.NewReader(buf.Bytes()), 60)
	require.NoError(t, err)
	assert.True(t, ft.Compatible(got))
	assert.Equal(t, int64(2), got.Get(mustParse(t, "01/04/2016 01:00:00"), 3))
	assert.Equal(t, ft.Total(), got.Total())

	filename := filepath.Join(t.TempDir(), "flow.csv")
	require.NoError(t, ft.WriteToFile(filename))
	fromFile, err := ReadFlowTableFromFile(filename, 60)
	require.NoError(t, err)
	assert.True(t, ft.Compatible(fromFile))
	assert.Equal(t, ft.Total(), fromFile.Total())
}

func TestReadFlowTableMalformed(t *testing.T) {
	_, err := ReadFlowTableCSV(strings.NewReader("time,1\n01/04/2016 00:00:00,x\n"), 60)
	assert.True(t, errors.Is(err, util.ErrMalformedRow))

	_, err = ReadFlowTableCSV(strings.NewReader("time,a\n"), 60)
	assert.True(t, errors.Is(err, util.ErrMalformedRow))
}
