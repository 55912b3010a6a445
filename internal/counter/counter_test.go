package counter

import (
	"testing"

	"polycube.ai/internal/cube"
	"polycube.ai/internal/generator"
)

// Fixed (translation-only) polycube counts for small sizes, published
// values.
var fixedRef = map[int]uint64{
	2: 3,
	3: 15,
	4: 86,
	5: 534,
	6: 3481,
	7: 23502,
	8: 162913,
}

func TestCanonFixed(t *testing.T) {
	a := []cube.Pos{{X: 2, Y: 3, Z: 1}, {X: 3, Y: 3, Z: 1}, {X: 2, Y: 4, Z: 1}}
	b := []cube.Pos{{X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}}
	canonFixed(a)
	canonFixed(b)
	if encodeFixed(a) != encodeFixed(b) {
		t.Fatalf("translated copies differ: %v vs %v", a, b)
	}
	for i := 1; i < len(a); i++ {
		if !a[i-1].Less(a[i]) {
			t.Fatalf("not sorted: %v", a)
		}
	}

	x := []cube.Pos{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}}
	y := []cube.Pos{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 2, Z: 0}}
	canonFixed(x)
	canonFixed(y)
	if encodeFixed(x) == encodeFixed(y) {
		t.Fatalf("rotated shapes merged by translation canonicalization")
	}
}

func TestHashCubes(t *testing.T) {
	a := []cube.Pos{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}}
	b := []cube.Pos{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}}
	if hashCubes(a) != hashCubes(b) {
		t.Fatalf("equal slices hash differently")
	}
	shapes := [][]cube.Pos{
		{{X: 0, Y: 0, Z: 0}},
		{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}},
		{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 1}},
		{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}},
		{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}},
	}
	seen := make(map[uint64][]cube.Pos)
	for _, s := range shapes {
		h := hashCubes(s)
		if prev, ok := seen[h]; ok {
			t.Fatalf("hash collision between %v and %v", prev, s)
		}
		seen[h] = s
	}
}

func TestSeenSetModes(t *testing.T) {
	for _, mode := range []string{DedupHash, DedupSignature} {
		c := New(Config{Workers: 1, Dedup: mode})
		s := c.newSeen()
		cubes := []cube.Pos{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}}
		if !s.claim(cubes) {
			t.Fatalf("%s: first claim rejected", mode)
		}
		if s.claim(cubes) {
			t.Fatalf("%s: second claim accepted", mode)
		}
	}
}

func TestFixedBFSKnownValues(t *testing.T) {
	max := 8
	if testing.Short() {
		max = 6
	}
	c := New(Config{Workers: 1})
	for n := 2; n <= max; n++ {
		if got := c.fixedBFS(n); got != fixedRef[n] {
			t.Fatalf("size %d: bfs counted %d, want %d", n, got, fixedRef[n])
		}
	}
}

func TestDedupModesAgree(t *testing.T) {
	h := New(Config{Workers: 1, Dedup: DedupHash}).fixedBFS(6)
	s := New(Config{Workers: 1, Dedup: DedupSignature}).fixedBFS(6)
	if h != s {
		t.Fatalf("hash mode counted %d, signature mode %d", h, s)
	}
}

func TestEnumerateFixed(t *testing.T) {
	c := New(Config{Workers: 1})
	for _, tc := range []struct {
		size int
		want int
	}{{1, 1}, {2, 3}, {3, 15}, {4, 86}} {
		seeds := c.enumerateFixed(tc.size)
		if len(seeds) != tc.want {
			t.Fatalf("size %d: %d seeds, want %d", tc.size, len(seeds), tc.want)
		}
		for _, s := range seeds {
			if len(s) != tc.size {
				t.Fatalf("seed %v has wrong size", s)
			}
			if !cube.Connected(s) {
				t.Fatalf("seed %v disconnected", s)
			}
		}
	}
}

func TestFixedSmallSizesMatchEnumeration(t *testing.T) {
	c := New(Config{Workers: 2})
	for n := 1; n <= 7; n++ {
		want, _ := generator.Known(n)
		if got := c.Fixed(n); got != want {
			t.Fatalf("size %d: Fixed = %d, want the enumerator's %d", n, got, want)
		}
	}
}

func TestParallelCoversBFS(t *testing.T) {
	if testing.Short() {
		t.Skip("seeded count at size 8 is slow")
	}
	c := New(Config{Workers: 4})
	bfs := c.fixedBFS(8)
	par := c.fixedParallel(8)
	if par < bfs {
		t.Fatalf("seeded count %d below exact fixed count %d", par, bfs)
	}
	if again := c.fixedParallel(8); again != par {
		t.Fatalf("seeded count not deterministic: %d vs %d", again, par)
	}
}

func TestParallelProgress(t *testing.T) {
	calls := 0
	var last int
	c := New(Config{Workers: 1, Progress: func(done, total int) {
		calls++
		last = total
	}})
	c.fixedParallel(5)
	if calls == 0 {
		t.Fatalf("progress callback never invoked")
	}
	if last != 15 {
		t.Fatalf("total = %d, want the 15 size-3 seeds", last)
	}
}

func TestCountDispatch(t *testing.T) {
	c := New(Config{Workers: 2})
	if got := c.Count(0, false); got != 0 {
		t.Fatalf("Count(0) = %d", got)
	}
	if got := c.Count(6, true); got != 166 {
		t.Fatalf("Count(6, symmetry) = %d, want 166", got)
	}
	for n := 1; n <= 7; n++ {
		want, _ := generator.Known(n)
		if got := c.Count(n, false); got != want {
			t.Fatalf("Count(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestCountFixedExceedsFree(t *testing.T) {
	if testing.Short() {
		t.Skip("size 8 counts are slow")
	}
	c := New(Config{Workers: 4})
	fixed := c.Count(8, false)
	free := c.Count(8, true)
	if fixed <= free {
		t.Fatalf("fixed count %d not above free count %d", fixed, free)
	}
}

func TestFreeTable(t *testing.T) {
	c := New(Config{Workers: 1})
	for _, tc := range []struct {
		n    int
		want uint64
	}{{1, 1}, {2, 1}, {6, 166}, {11, 2522522}, {12, 18598427}} {
		if got := c.Free(tc.n); got != tc.want {
			t.Fatalf("Free(%d) = %d, want %d", tc.n, got, tc.want)
		}
	}
	if got := c.Free(0); got != 0 {
		t.Fatalf("Free(0) = %d", got)
	}
}
