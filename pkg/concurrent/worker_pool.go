package concurrent

import (
	"context"
	"sync"
)

type JobFunc[T any, G any] func(job T) G

// WorkerPool runs a fixed batch of jobs on numWorkers goroutines.
// usage: AddJob every job, Close, Start, Wait, then drain CollectResults.
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan T
	results    chan G
	wg         sync.WaitGroup
}

// NewWorkerPool sizes both queues to jobQueueSize, so AddJob and the workers never block
// as long as at most jobQueueSize jobs are added.
func NewWorkerPool[T any, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan T, jobQueueSize),
		results:    make(chan G, jobQueueSize),
	}
}

func (wp *WorkerPool[T, G]) worker(ctx context.Context, jobFunc JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		select {
		case <-ctx.Done():
			return
		default:
		}
		wp.results <- jobFunc(job)
	}
}

func (wp *WorkerPool[T, G]) Start(jobFunc JobFunc[T, G]) {
	wp.StartWithContext(context.Background(), jobFunc)
}

// StartWithContext stops handing out jobs once ctx is done. jobs already running finish.
func (wp *WorkerPool[T, G]) StartWithContext(ctx context.Context, jobFunc JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, jobFunc)
	}
}

func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) AddJob(job T) {
	wp.jobQueue <- job
}

func (wp *WorkerPool[T, G]) CollectResults() chan G {
	return wp.results
}

func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
}

type indexed[G any] struct {
	index  int
	result G
}

// Map applies fn to every job on numWorkers goroutines and returns the results in job order.
// when ctx is cancelled, skipped jobs leave the zero value and ctx.Err() is returned.
func Map[T any, G any](ctx context.Context, numWorkers int, jobs []T, fn func(job T) G) ([]G, error) {
	type job struct {
		index int
		value T
	}

	wp := NewWorkerPool[job, indexed[G]](numWorkers, len(jobs))
	for i, j := range jobs {
		wp.AddJob(job{index: i, value: j})
	}
	wp.Close()
	wp.StartWithContext(ctx, func(j job) indexed[G] {
		return indexed[G]{index: j.index, result: fn(j.value)}
	})
	wp.Wait()

	results := make([]G, len(jobs))
	for res := range wp.CollectResults() {
		results[res.index] = res.result
	}
	return results, ctx.Err()
}
