package concurrency

import (
	"context"
	"sync"
)

// WorkerFn handles the task at index.
type WorkerFn func(ctx context.Context, index int)

// SimpleWorkerPool runs fn for every index in [0, tasks) on at most
// concurrency goroutines and waits for them. Tasks not yet started when ctx
// is done are skipped.
func SimpleWorkerPool(ctx context.Context, concurrency int, tasks int, fn WorkerFn) {
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > tasks {
		concurrency = tasks
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				fn(ctx, idx)
			}
		}()
	}

feed:
	for i := 0; i < tasks; i++ {
		select {
		case indexes <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indexes)
	wg.Wait()
}
