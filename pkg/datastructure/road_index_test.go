package datastructure

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lintang-b-s/roadflow/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoadIndex(t *testing.T) {
	ri, err := NewRoadIndex([]int64{40, 10, 30})
	require.NoError(t, err)
	assert.Equal(t, 3, ri.Len())

	i, ok := ri.IndexOf(10)
	require.True(t, ok)
	assert.Equal(t, Index(1), i)
	assert.Equal(t, int64(30), ri.RoadID(2))
	assert.False(t, ri.Contains(20))

	_, err = NewRoadIndex([]int64{1, 1})
	assert.Error(t, err)
}

func TestRoadIndexReadWrite(t *testing.T) {
	ri, err := NewRoadIndex([]int64{40, 10, 30})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ri.Write(&buf))
	assert.Equal(t, "road_id\n40\n10\n30\n", buf.String())

	got, err := ReadRoadIndex(&buf)
	require.NoError(t, err)
	assert.Equal(t, ri.Roads(), got.Roads())

	filename := filepath.Join(t.TempDir(), "road_list.csv")
	require.NoError(t, ri.WriteToFile(filename))
	fromFile, err := ReadRoadIndexFromFile(filename)
	require.NoError(t, err)
	assert.Equal(t, ri.Roads(), fromFile.Roads())

	_, err = ReadRoadIndex(strings.NewReader("id\n1\n"))
	assert.True(t, errors.Is(err, util.ErrMalformedRow))
	_, err = ReadRoadIndex(strings.NewReader("road_id\n1\nx\n"))
	assert.True(t, errors.Is(err, util.ErrMalformedRow))
}
