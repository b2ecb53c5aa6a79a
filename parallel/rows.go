package parallel

// Rows calls fn once for every row in [from, to) using numWorkers workers and
// returns when all rows are done. fn must only write state owned by its row.
func Rows(numWorkers, from, to int, fn func(row int)) {
	if from >= to {
		return
	}

	pool := Start(min(numWorkers, to-from))
	for row := from; row < to; row++ {
		pool.Do(func() {
			fn(row)
		})
	}
	pool.Wait(true)
}
