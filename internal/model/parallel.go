package model

import "sync"

// partition splits n items into contiguous chunks for at most workers
// goroutines, each with at least minChunk items.
func partition(n, workers, minChunk int) (chunkSize, count int) {
	if minChunk < 1 {
		minChunk = 1
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers <= 1 {
		return n, 1
	}
	chunkSize = (n + workers - 1) / workers
	return chunkSize, (n + chunkSize - 1) / chunkSize
}

// parallelFor runs fn over the chunks of [0, n) given by partition
// concurrently. Chunk w always covers indices before chunk w+1.
func parallelFor(n, chunkSize, count int, fn func(w, start, end int)) {
	if count <= 1 {
		fn(0, 0, n)
		return
	}

	var wg sync.WaitGroup
	wg.Add(count)

	for w := 0; w < count; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)

		go func(w, s, e int) {
			defer wg.Done()
			fn(w, s, e)
		}(w, start, end)
	}

	wg.Wait()
}
