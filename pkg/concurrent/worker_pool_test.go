package concurrent

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool(t *testing.T) {
	n := 200
	wp := NewWorkerPool[int, int](8, n)
	for i := 0; i < n; i++ {
		wp.AddJob(i)
	}
	wp.Close()
	wp.Start(func(job int) int { return job * job })
	wp.Wait()

	got := make([]int, 0, n)
	for res := range wp.CollectResults() {
		got = append(got, res)
	}
	sort.Ints(got)
	require.Len(t, got, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, i*i, got[i])
	}
}

func TestMapKeepsJobOrder(t *testing.T) {
	testCases := []struct {
		name    string
		workers int
		jobs    []string
		want    []int
	}{
		{"single worker", 1, []string{"a", "bb", "ccc"}, []int{1, 2, 3}},
		{"more workers than jobs", 16, []string{"dddd", "", "ee"}, []int{4, 0, 2}},
		{"no jobs", 4, nil, []int{}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Map(context.Background(), tt.workers, tt.jobs, func(s string) int { return len(s) })
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Map(ctx, 2, []int{1, 2, 3}, func(i int) int { return i })
	assert.ErrorIs(t, err, context.Canceled)
}
