package parallel

import (
	"runtime"
	"sync"
)

type (
	// WorkerFunc queues a unit of work.
	WorkerFunc func(func())
	// WaitFunc blocks until queued work is done. With done set no more work
	// may be queued afterwards.
	WaitFunc   func(done bool)
	CancelFunc func()
)

// Pool runs queued closures on a fixed set of goroutines. A pool with a
// single worker runs every closure inline in Do.
type Pool struct {
	wg      sync.WaitGroup
	Workers int
	Do      WorkerFunc
	Wait    WaitFunc
	Cancel  CancelFunc
}

// Start creates a pool. numWorkers below 1 selects GOMAXPROCS.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		Workers: numWorkers,
		Do: func(f func()) {
			f()
		},
		Wait:   func(bool) {},
		Cancel: func() {},
	}

	if numWorkers == 1 {
		return pool
	}

	workChan := make(chan func(), numWorkers)
	for range numWorkers {
		pool.wg.Go(func() {
			for f := range workChan {
				f()
			}
		})
	}

	pool.Do = func(f func()) {
		workChan <- f
	}
	pool.Cancel = sync.OnceFunc(func() { close(workChan) })
	pool.Wait = func(done bool) {
		if done {
			pool.Cancel()
		}
		pool.wg.Wait()
	}

	return pool
}
