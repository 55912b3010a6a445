package cube

import "bytes"

// Rotation is a 3x3 integer matrix applied to positions column-wise.
type Rotation [3][3]int8

// Apply rotates p.
func (r Rotation) Apply(p Pos) Pos {
	return Pos{
		X: r[0][0]*p.X + r[0][1]*p.Y + r[0][2]*p.Z,
		Y: r[1][0]*p.X + r[1][1]*p.Y + r[1][2]*p.Z,
		Z: r[2][0]*p.X + r[2][1]*p.Y + r[2][2]*p.Z,
	}
}

// Rotations holds the 24 proper rotations of the cube (determinant +1,
// no reflections), grouped by the face the x axis maps to, four quarter
// turns each.
var Rotations = [24]Rotation{
	// +X
	{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	{{1, 0, 0}, {0, -1, 0}, {0, 0, -1}},
	{{1, 0, 0}, {0, 0, 1}, {0, -1, 0}},
	// -X
	{{-1, 0, 0}, {0, 1, 0}, {0, 0, -1}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{-1, 0, 0}, {0, -1, 0}, {0, 0, 1}},
	{{-1, 0, 0}, {0, 0, -1}, {0, -1, 0}},
	// +Y
	{{0, 1, 0}, {-1, 0, 0}, {0, 0, 1}},
	{{0, 1, 0}, {0, 0, -1}, {-1, 0, 0}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}},
	// -Y
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	{{0, -1, 0}, {0, 0, -1}, {1, 0, 0}},
	{{0, -1, 0}, {-1, 0, 0}, {0, 0, -1}},
	{{0, -1, 0}, {0, 0, 1}, {-1, 0, 0}},
	// +Z
	{{0, 0, 1}, {0, 1, 0}, {-1, 0, 0}},
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, 1}, {0, -1, 0}, {1, 0, 0}},
	{{0, 0, 1}, {-1, 0, 0}, {0, -1, 0}},
	// -Z
	{{0, 0, -1}, {0, 1, 0}, {1, 0, 0}},
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {0, -1, 0}, {-1, 0, 0}},
	{{0, 0, -1}, {1, 0, 0}, {0, -1, 0}},
}

// Rotate applies r to every cube. The result is not normalized.
func (p Polycube) Rotate(r Rotation) Polycube {
	out := make([]Pos, len(p.Cubes))
	for i, c := range p.Cubes {
		out[i] = r.Apply(c)
	}
	return Polycube{Cubes: out}
}

// Signature identifies a rotation-equivalence class: two shapes carry
// equal signatures exactly when a proper rotation plus a translation
// maps one onto the other. Mirror images stay distinct unless the shape
// is achiral. The value is the canonical position sequence packed three
// bytes per cube.
type Signature string

// Canonicalize returns the canonical representative of p's rotation
// class together with its signature. The representative is whichever
// rotated, normalized, sorted position sequence encodes smallest over
// all 24 rotations, so re-canonicalizing it is a no-op.
func Canonicalize(p Polycube) (Polycube, Signature) {
	n := len(p.Cubes)
	if n == 0 {
		return Polycube{}, ""
	}
	scratch := make([]Pos, n)
	enc := make([]byte, 3*n)
	best := make([]byte, 0, 3*n)
	bestCubes := make([]Pos, 0, n)
	for _, r := range Rotations {
		for i, c := range p.Cubes {
			scratch[i] = r.Apply(c)
		}
		normalize(scratch)
		sortCubes(scratch)
		encodeCubes(enc, scratch)
		if len(best) == 0 || bytes.Compare(enc, best) < 0 {
			best = append(best[:0], enc...)
			bestCubes = append(bestCubes[:0], scratch...)
		}
	}
	return Polycube{Cubes: bestCubes}, Signature(best)
}

// encodeCubes packs positions into dst, three bytes per cube.
// Coordinates are non-negative after normalization, so byte order
// equals position order.
func encodeCubes(dst []byte, cubes []Pos) {
	for i, c := range cubes {
		dst[3*i] = byte(c.X)
		dst[3*i+1] = byte(c.Y)
		dst[3*i+2] = byte(c.Z)
	}
}
