package counter

import (
	"sync"
	"sync/atomic"

	"polycube.ai/internal/cube"
)

// seedSize picks how large the partition seeds are for a target size.
// Larger targets start from size-4 seeds to keep per-seed subtrees
// tractable.
func (c *Counter) seedSize(n int) int {
	if n >= c.largeFrom {
		return c.largeSeed
	}
	return c.smallSeed
}

// fixedParallel partitions the search by seed shapes and sums one
// completion count per seed. Each task deduplicates inside its own
// subtree only; a shape reachable from several seeds contributes once
// per seed, so totals can exceed the exact fixed count. That trade
// keeps workers free of shared state beyond the final accumulator.
func (c *Counter) fixedParallel(n int) uint64 {
	size := c.seedSize(n)
	if size >= n {
		return c.fixedBFS(n)
	}
	seeds := c.enumerateFixed(size)
	c.logf("expanding %d seeds of size %d toward size %d", len(seeds), size, n)

	var total atomic.Uint64
	var done atomic.Int64
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				total.Add(c.completeSeed(seeds[idx], n))
				d := done.Add(1)
				if c.progress != nil {
					c.progress(int(d), len(seeds))
				}
			}
		}()
	}
	for i := range seeds {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return total.Load()
}

// enumerateFixed materializes every translation class of one size with
// the same breadth-first growth the counting search uses.
func (c *Counter) enumerateFixed(n int) [][]cube.Pos {
	if n <= 1 {
		return [][]cube.Pos{{{}}}
	}
	seen := c.newSeen()
	start := []cube.Pos{{}}
	seen.claim(start)
	queue := [][]cube.Pos{start}
	var out [][]cube.Pos
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if len(cur) == n {
			out = append(out, cur)
			continue
		}
		for _, ext := range cube.Frontier(cur) {
			next := make([]cube.Pos, len(cur)+1)
			copy(next, cur)
			next[len(cur)] = ext
			canonFixed(next)
			if !seen.claim(next) {
				continue
			}
			queue = append(queue, next)
		}
	}
	return out
}

// completeSeed counts the distinct completions of one seed. Its seen
// set spans the whole subtree, so an intermediate form reached again
// through a different growth order prunes instead of recounting.
func (c *Counter) completeSeed(seed []cube.Pos, n int) uint64 {
	seen := c.newSeen()
	seen.claim(seed)
	return c.extendCount(seed, n-len(seed), seen)
}

func (c *Counter) extendCount(cubes []cube.Pos, remaining int, seen seenSet) uint64 {
	if remaining == 0 {
		return 1
	}
	var count uint64
	for _, ext := range cube.Frontier(cubes) {
		next := make([]cube.Pos, len(cubes)+1)
		copy(next, cubes)
		next[len(cubes)] = ext
		canonFixed(next)
		if !seen.claim(next) {
			continue
		}
		count += c.extendCount(next, remaining-1, seen)
	}
	return count
}
