package cube

import "testing"

func TestUnitAndDomino(t *testing.T) {
	u := Unit()
	if u.Size() != 1 || u.Cubes[0] != (Pos{}) {
		t.Fatalf("unit = %v", u.Cubes)
	}
	d := Domino()
	if d.Size() != 2 {
		t.Fatalf("domino size = %d", d.Size())
	}
	if !d.IsConnected() {
		t.Fatalf("domino reported disconnected")
	}
}

func TestNormalize(t *testing.T) {
	p := New([]Pos{{2, -1, 3}, {3, -1, 3}, {2, 0, 3}})
	n := p.Normalize()
	want := []Pos{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	for i, c := range n.Cubes {
		if c != want[i] {
			t.Fatalf("cube %d = %v, want %v", i, c, want[i])
		}
	}
	if p.Cubes[0] != (Pos{2, -1, 3}) {
		t.Fatalf("Normalize mutated its receiver: %v", p.Cubes[0])
	}
}

func TestNormalizeAlreadyAtOrigin(t *testing.T) {
	p := New([]Pos{{0, 0, 0}, {0, 1, 0}})
	n := p.Normalize()
	for i, c := range n.Cubes {
		if c != p.Cubes[i] {
			t.Fatalf("cube %d moved to %v", i, c)
		}
	}
}

func TestFrontier(t *testing.T) {
	if got := len(Unit().Frontier()); got != 6 {
		t.Fatalf("unit frontier has %d positions, want 6", got)
	}
	f := Domino().Frontier()
	if len(f) != 10 {
		t.Fatalf("domino frontier has %d positions, want 10", len(f))
	}
	seen := make(map[Pos]bool)
	occ := Domino().Occupied()
	for _, pos := range f {
		if seen[pos] {
			t.Fatalf("duplicate frontier position %v", pos)
		}
		seen[pos] = true
		if _, ok := occ[pos]; ok {
			t.Fatalf("frontier contains occupied position %v", pos)
		}
	}
}

func TestExpand(t *testing.T) {
	p := Unit()
	q := p.Expand(Pos{0, 0, 1})
	if q.Size() != 2 {
		t.Fatalf("expanded size = %d", q.Size())
	}
	if p.Size() != 1 {
		t.Fatalf("Expand mutated its receiver")
	}
	if !q.IsConnected() {
		t.Fatalf("expanded shape disconnected")
	}
}

func TestConnectivity(t *testing.T) {
	cases := []struct {
		cubes []Pos
		want  bool
	}{
		{nil, true},
		{[]Pos{{0, 0, 0}}, true},
		{[]Pos{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}}, true},
		{[]Pos{{0, 0, 0}, {2, 0, 0}}, false},
		{[]Pos{{0, 0, 0}, {1, 1, 0}}, false},
		{[]Pos{{0, 0, 0}, {1, 0, 0}, {3, 0, 0}}, false},
	}
	for i, tc := range cases {
		if got := Connected(tc.cubes); got != tc.want {
			t.Fatalf("case %d: connected = %v, want %v", i, got, tc.want)
		}
	}
}

func TestBoundsAndDimensions(t *testing.T) {
	p := New([]Pos{{-1, 0, 2}, {0, 0, 2}, {1, 0, 2}})
	lo, hi := p.Bounds()
	if lo != (Pos{-1, 0, 2}) || hi != (Pos{1, 0, 2}) {
		t.Fatalf("bounds = %v..%v", lo, hi)
	}
	dx, dy, dz := p.Dimensions()
	if dx != 3 || dy != 1 || dz != 1 {
		t.Fatalf("dimensions = %d,%d,%d", dx, dy, dz)
	}
}
