// Package generator enumerates free polycubes: one canonical
// representative per rotation-equivalence class. Each size is grown
// from the previous one by adding a single cube on the frontier, with
// deduplication against a signature set shared across workers.
package generator

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"polycube.ai/internal/cube"
	"polycube.ai/internal/persistence/cache"
)

// Progress callbacks fire at most every progressEvery finished base
// shapes, plus once at the end of each expansion.
const progressEvery = 100

type Config struct {
	Workers  int    // expansion goroutines; 0 means all CPUs
	CacheDir string // shape cache location; empty disables persistence
	Logger   *log.Logger
	Progress func(done, total int)
}

type Generator struct {
	workers  int
	cacheDir string
	logger   *log.Logger
	progress func(done, total int)
}

func New(cfg Config) *Generator {
	w := cfg.Workers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	return &Generator{
		workers:  w,
		cacheDir: cfg.CacheDir,
		logger:   cfg.Logger,
		progress: cfg.Progress,
	}
}

func (g *Generator) logf(format string, args ...interface{}) {
	if g.logger != nil {
		g.logger.Printf(format, args...)
	}
}

// Generate returns every free polycube of the given size. Sizes below 3
// are fixed shapes; larger sizes recurse through the previous size,
// consulting the cache when enabled. Cache problems degrade to
// regeneration or to an unsaved result, never to a failure.
func (g *Generator) Generate(n int, useCache bool) []cube.Polycube {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []cube.Polycube{cube.Unit()}
	}
	if n == 2 {
		return []cube.Polycube{cube.Domino()}
	}

	if useCache && g.cacheDir != "" {
		shapes, err := cache.Load(g.cacheDir, n)
		if err == nil {
			g.logf("size %d: loaded %d shapes from cache", n, len(shapes))
			return shapes
		}
		if !errors.Is(err, cache.ErrMiss) {
			g.logf("size %d: cache load failed, regenerating: %v", n, err)
		}
	}

	base := g.Generate(n-1, useCache)
	g.logf("size %d: expanding %d base shapes", n, len(base))
	shapes := g.expandAll(base)
	g.logf("size %d: %d distinct shapes", n, len(shapes))

	if useCache && g.cacheDir != "" {
		if err := cache.Save(g.cacheDir, n, shapes); err != nil {
			g.logf("size %d: cache save failed: %v", n, err)
		}
	}
	return shapes
}

// expandAll grows every base shape by one cube and deduplicates the
// candidates across the worker pool. Canonicalization is private
// per-worker computation; the signature set is the only shared state,
// and LoadOrStore keeps exactly one representative per rotation class
// no matter which worker reaches the class first.
func (g *Generator) expandAll(base []cube.Polycube) []cube.Polycube {
	seen := xsync.NewMapOf[cube.Signature, struct{}]()
	results := make([][]cube.Polycube, g.workers)
	jobs := make(chan int)
	var done atomic.Int64

	var wg sync.WaitGroup
	for w := 0; w < g.workers; w++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			var kept []cube.Polycube
			for idx := range jobs {
				kept = g.expandOne(base[idx], seen, kept)
				d := done.Add(1)
				if g.progress != nil && (d%progressEvery == 0 || d == int64(len(base))) {
					g.progress(int(d), len(base))
				}
			}
			results[slot] = kept
		}(w)
	}
	for i := range base {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var out []cube.Polycube
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// expandOne appends the surviving one-larger shapes grown from base to
// kept. Candidates are connected by construction; a disconnected one
// means the growth logic itself is broken, so it aborts the run.
func (g *Generator) expandOne(base cube.Polycube, seen *xsync.MapOf[cube.Signature, struct{}], kept []cube.Polycube) []cube.Polycube {
	for _, pos := range base.Frontier() {
		cand := base.Expand(pos)
		if !cand.IsConnected() {
			panic(fmt.Sprintf("expansion of %v by %v is disconnected", base.Cubes, pos))
		}
		canon, sig := cube.Canonicalize(cand)
		if _, claimed := seen.LoadOrStore(sig, struct{}{}); claimed {
			continue
		}
		kept = append(kept, canon)
	}
	return kept
}
