// Package cube holds the polycube value types and the grid geometry the
// rest of the system is built on: face adjacency, translation to the
// origin, connectivity, and the rotation group in rotate.go.
package cube

import "sort"

// Pos is a single unit-cube position on the integer grid. Coordinates
// fit in a byte: shapes are normalized against the origin and practical
// sizes keep every coordinate far below the limit.
type Pos struct {
	X int8
	Y int8
	Z int8
}

// Less orders positions by x, then y, then z.
func (p Pos) Less(q Pos) bool {
	if p.X != q.X {
		return p.X < q.X
	}
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.Z < q.Z
}

// Neighbors returns the six face-adjacent positions.
func (p Pos) Neighbors() [6]Pos {
	return [6]Pos{
		{p.X + 1, p.Y, p.Z},
		{p.X - 1, p.Y, p.Z},
		{p.X, p.Y + 1, p.Z},
		{p.X, p.Y - 1, p.Z},
		{p.X, p.Y, p.Z + 1},
		{p.X, p.Y, p.Z - 1},
	}
}

// Polycube is a cluster of unit cubes connected face to face.
type Polycube struct {
	Cubes []Pos
}

func New(cubes []Pos) Polycube { return Polycube{Cubes: cubes} }

// Unit is the single cube at the origin.
func Unit() Polycube { return Polycube{Cubes: []Pos{{0, 0, 0}}} }

// Domino is the two-cube shape along the x axis.
func Domino() Polycube { return Polycube{Cubes: []Pos{{0, 0, 0}, {1, 0, 0}}} }

func (p Polycube) Size() int { return len(p.Cubes) }

// Clone returns a copy sharing no storage with p.
func (p Polycube) Clone() Polycube {
	c := make([]Pos, len(p.Cubes))
	copy(c, p.Cubes)
	return Polycube{Cubes: c}
}

// Expand returns p grown by one cube at pos.
func (p Polycube) Expand(pos Pos) Polycube {
	c := make([]Pos, len(p.Cubes)+1)
	copy(c, p.Cubes)
	c[len(p.Cubes)] = pos
	return Polycube{Cubes: c}
}

// Occupied returns the position set of p.
func (p Polycube) Occupied() map[Pos]struct{} {
	return occSet(p.Cubes)
}

func occSet(cubes []Pos) map[Pos]struct{} {
	occ := make(map[Pos]struct{}, len(cubes))
	for _, c := range cubes {
		occ[c] = struct{}{}
	}
	return occ
}

// Frontier lists every empty position face-adjacent to the shape, in
// first-seen order: the positions a one-cube-larger shape can occupy.
func (p Polycube) Frontier() []Pos {
	return Frontier(p.Cubes)
}

// Frontier is the slice form of Polycube.Frontier, shared with the
// counting paths that work on raw position slices.
func Frontier(cubes []Pos) []Pos {
	occ := occSet(cubes)
	seen := make(map[Pos]struct{}, len(cubes)*4)
	out := make([]Pos, 0, len(cubes)*4)
	for _, c := range cubes {
		for _, nb := range c.Neighbors() {
			if _, ok := occ[nb]; ok {
				continue
			}
			if _, ok := seen[nb]; ok {
				continue
			}
			seen[nb] = struct{}{}
			out = append(out, nb)
		}
	}
	return out
}

// Normalize translates the shape so the minimum coordinate on every
// axis is zero. Relative order of positions is preserved; p is untouched.
func (p Polycube) Normalize() Polycube {
	out := p.Clone()
	normalize(out.Cubes)
	return out
}

func normalize(cubes []Pos) {
	if len(cubes) == 0 {
		return
	}
	min := cubes[0]
	for _, c := range cubes[1:] {
		if c.X < min.X {
			min.X = c.X
		}
		if c.Y < min.Y {
			min.Y = c.Y
		}
		if c.Z < min.Z {
			min.Z = c.Z
		}
	}
	if min == (Pos{}) {
		return
	}
	for i := range cubes {
		cubes[i].X -= min.X
		cubes[i].Y -= min.Y
		cubes[i].Z -= min.Z
	}
}

func sortCubes(cubes []Pos) {
	sort.Slice(cubes, func(i, j int) bool { return cubes[i].Less(cubes[j]) })
}

// IsConnected reports whether every cube is face-reachable from the
// first. Shapes of size zero or one are connected.
func (p Polycube) IsConnected() bool {
	return Connected(p.Cubes)
}

// Connected is the slice form of Polycube.IsConnected.
func Connected(cubes []Pos) bool {
	if len(cubes) <= 1 {
		return true
	}
	occ := occSet(cubes)
	visited := make(map[Pos]struct{}, len(cubes))
	queue := make([]Pos, 0, len(cubes))
	queue = append(queue, cubes[0])
	visited[cubes[0]] = struct{}{}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range cur.Neighbors() {
			if _, ok := occ[nb]; !ok {
				continue
			}
			if _, ok := visited[nb]; ok {
				continue
			}
			visited[nb] = struct{}{}
			queue = append(queue, nb)
		}
	}
	return len(visited) == len(cubes)
}

// Bounds returns the per-axis minimum and maximum over all cubes.
func (p Polycube) Bounds() (lo, hi Pos) {
	if len(p.Cubes) == 0 {
		return Pos{}, Pos{}
	}
	lo, hi = p.Cubes[0], p.Cubes[0]
	for _, c := range p.Cubes[1:] {
		if c.X < lo.X {
			lo.X = c.X
		}
		if c.Y < lo.Y {
			lo.Y = c.Y
		}
		if c.Z < lo.Z {
			lo.Z = c.Z
		}
		if c.X > hi.X {
			hi.X = c.X
		}
		if c.Y > hi.Y {
			hi.Y = c.Y
		}
		if c.Z > hi.Z {
			hi.Z = c.Z
		}
	}
	return lo, hi
}

// Dimensions returns the bounding-box extent along each axis.
func (p Polycube) Dimensions() (dx, dy, dz int) {
	if len(p.Cubes) == 0 {
		return 0, 0, 0
	}
	lo, hi := p.Bounds()
	return int(hi.X-lo.X) + 1, int(hi.Y-lo.Y) + 1, int(hi.Z-lo.Z) + 1
}
