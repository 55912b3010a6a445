package generator

import (
	"os"
	"sync"
	"testing"

	"polycube.ai/internal/cube"
	"polycube.ai/internal/persistence/cache"
)

func TestGenerateBaseCases(t *testing.T) {
	g := New(Config{Workers: 1})
	if got := g.Generate(0, false); len(got) != 0 {
		t.Fatalf("size 0 produced %d shapes", len(got))
	}
	one := g.Generate(1, false)
	if len(one) != 1 || one[0].Cubes[0] != (cube.Pos{}) {
		t.Fatalf("size 1 = %v", one)
	}
	two := g.Generate(2, false)
	if len(two) != 1 || two[0].Size() != 2 {
		t.Fatalf("size 2 = %v", two)
	}
}

func TestGenerateMatchesKnownCounts(t *testing.T) {
	max := 8
	if testing.Short() {
		max = 6
	}
	g := New(Config{Workers: 4})
	for n := 1; n <= max; n++ {
		want, ok := Known(n)
		if !ok {
			t.Fatalf("no reference count for size %d", n)
		}
		if got := g.Generate(n, false); uint64(len(got)) != want {
			t.Fatalf("size %d: %d shapes, want %d", n, len(got), want)
		}
	}
}

func TestGenerateShapesCanonicalConnectedDistinct(t *testing.T) {
	g := New(Config{Workers: 2})
	shapes := g.Generate(5, false)
	seen := make(map[cube.Signature]bool, len(shapes))
	for _, s := range shapes {
		if !s.IsConnected() {
			t.Fatalf("disconnected shape %v", s.Cubes)
		}
		canon, sig := cube.Canonicalize(s)
		if seen[sig] {
			t.Fatalf("rotation class retained twice")
		}
		seen[sig] = true
		for i := range canon.Cubes {
			if canon.Cubes[i] != s.Cubes[i] {
				t.Fatalf("shape not stored canonically: %v vs %v", s.Cubes, canon.Cubes)
			}
		}
	}
}

func TestGenerateDeterministicAsSet(t *testing.T) {
	a := New(Config{Workers: 4}).Generate(6, false)
	b := New(Config{Workers: 1}).Generate(6, false)
	if len(a) != len(b) {
		t.Fatalf("runs disagree: %d vs %d shapes", len(a), len(b))
	}
	sigs := make(map[cube.Signature]bool, len(a))
	for _, s := range a {
		_, sig := cube.Canonicalize(s)
		sigs[sig] = true
	}
	for _, s := range b {
		if _, sig := cube.Canonicalize(s); !sigs[sig] {
			t.Fatalf("single-worker run found class the parallel run lacks")
		}
	}
}

func TestGenerateUsesCache(t *testing.T) {
	dir := t.TempDir()
	g := New(Config{Workers: 2, CacheDir: dir})
	first := g.Generate(4, true)
	for n := 3; n <= 4; n++ {
		if _, err := os.Stat(cache.Path(dir, n)); err != nil {
			t.Fatalf("size %d artifact missing: %v", n, err)
		}
	}
	second := g.Generate(4, true)
	if len(first) != len(second) {
		t.Fatalf("cached reload returned %d shapes, want %d", len(second), len(first))
	}
}

func TestGenerateSurvivesCorruptCache(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(cache.Path(dir, 3), []byte("junk"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	g := New(Config{Workers: 1, CacheDir: dir})
	want, _ := Known(4)
	if got := g.Generate(4, true); uint64(len(got)) != want {
		t.Fatalf("with corrupt cache: %d shapes, want %d", len(got), want)
	}
}

func TestProgressReported(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	g := New(Config{Workers: 2, Progress: func(done, total int) {
		mu.Lock()
		calls++
		mu.Unlock()
		if done < 1 || done > total {
			t.Errorf("progress %d/%d out of range", done, total)
		}
	}})
	g.Generate(5, false)
	mu.Lock()
	defer mu.Unlock()
	if calls == 0 {
		t.Fatalf("progress callback never invoked")
	}
}

func TestKnownTable(t *testing.T) {
	if v, ok := Known(6); !ok || v != 166 {
		t.Fatalf("Known(6) = %d, %v", v, ok)
	}
	if v, ok := Known(18); !ok || v != 3847265309118 {
		t.Fatalf("Known(18) = %d, %v", v, ok)
	}
	if _, ok := Known(0); ok {
		t.Fatalf("Known(0) should be absent")
	}
	if _, ok := Known(19); ok {
		t.Fatalf("Known(19) should be absent")
	}
}
