package seed

import (
	"context"
	"sync"
	"sync/atomic"
)

// forEach runs fn for 0..n-1 on up to workers goroutines and returns how
// many calls failed. It stops handing out work once ctx is done.
func forEach(ctx context.Context, workers, n int, fn func(ctx context.Context, i int) error, onErr func(i int, err error)) int {
	if n == 0 {
		return 0
	}
	if workers > n {
		workers = n
	}
	var failed atomic.Int64

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := fn(ctx, i); err != nil {
					failed.Add(1)
					if onErr != nil {
						onErr(i, err)
					}
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()

	return int(failed.Load())
}
