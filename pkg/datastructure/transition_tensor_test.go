package datastructure

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTensor(t *testing.T) {
	tt := NewTransitionTensor[int32](96, 3)
	require.NoError(t, tt.Increment(4, 0, 1))
	require.NoError(t, tt.Increment(4, 0, 1))
	require.NoError(t, tt.Increment(95, 2, 0))
	assert.Error(t, tt.Increment(96, 0, 1))
	assert.Error(t, tt.Increment(0, 3, 1))

	assert.Equal(t, int32(2), tt.Get(4, 0, 1))
	assert.Equal(t, int32(0), tt.Get(4, 1, 0))
	assert.Equal(t, 2, tt.NonZero())
	assert.Equal(t, int64(3), tt.Total())
	assert.Equal(t, []TransitionKey{{4, 0, 1}, {95, 2, 0}}, tt.Keys())

	buckets, rows, cols := tt.Shape()
	assert.Equal(t, [3]int{96, 3, 3}, [3]int{buckets, rows, cols})
}

func TestTransitionTensorAdd(t *testing.T) {
	a := NewTransitionTensor[int32](4, 2)
	b := NewTransitionTensor[int32](4, 2)
	require.NoError(t, a.Increment(0, 0, 1))
	require.NoError(t, b.Increment(0, 0, 1))
	require.NoError(t, b.Increment(3, 1, 0))

	ab := NewTransitionTensor[int32](4, 2)
	require.NoError(t, ab.Add(a))
	require.NoError(t, ab.Add(b))
	ba := NewTransitionTensor[int32](4, 2)
	require.NoError(t, ba.Add(b))
	require.NoError(t, ba.Add(a))

	assert.True(t, ab.Equal(ba))
	assert.Equal(t, int32(2), ab.Get(0, 0, 1))
	assert.Equal(t, int32(1), ab.Get(3, 1, 0))

	assert.Error(t, ab.Add(NewTransitionTensor[int32](4, 3)))
}

func TestTransitionTensorReadWrite(t *testing.T) {
	tt := NewTransitionTensor[int32](96, 5)
	require.NoError(t, tt.Increment(10, 4, 3))
	require.NoError(t, tt.Increment(0, 0, 1))
	require.NoError(t, tt.Increment(10, 4, 3))

	var buf bytes.Buffer
	require.NoError(t, tt.Write(&buf))
	got, err := ReadTransitionTensor[int32](&buf)
	require.NoError(t, err)
	assert.True(t, tt.Equal(got))

	filename := filepath.Join(t.TempDir(), "trajectory_transition_20160401_20160401.bz2")
	require.NoError(t, tt.WriteToFile(filename))
	fromFile, err := ReadTransitionTensorFromFile[int32](filename)
	require.NoError(t, err)
	assert.True(t, tt.Equal(fromFile))

	var again bytes.Buffer
	require.NoError(t, fromFile.Write(&again))
	var first bytes.Buffer
	require.NoError(t, tt.Write(&first))
	assert.Equal(t, first.Bytes(), again.Bytes())
}
