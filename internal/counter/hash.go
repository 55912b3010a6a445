package counter

import (
	"sort"

	"polycube.ai/internal/cube"
)

// canonFixed translates cubes so the minimum coordinate per axis is
// zero and sorts them. Two slices are equal afterwards exactly when the
// shapes differ only by translation. Rotation is deliberately not
// applied: the counting search identifies fixed polycubes, a different
// equivalence than cube.Canonicalize.
func canonFixed(cubes []cube.Pos) {
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
	if min != (cube.Pos{}) {
		for i := range cubes {
			cubes[i].X -= min.X
			cubes[i].Y -= min.Y
			cubes[i].Z -= min.Z
		}
	}
	sort.Slice(cubes, func(i, j int) bool { return cubes[i].Less(cubes[j]) })
}

// Dedup key modes for the counting search.
const (
	DedupHash      = "hash"      // 64-bit key, compact, collision risk
	DedupSignature = "signature" // exact encoded sequence, more memory
)

// seenSet records translation-canonical forms already visited. claim
// reports whether cubes were unseen, marking them as a side effect. The
// slice must already be in canonFixed form.
type seenSet interface {
	claim(cubes []cube.Pos) bool
}

// hashSeen keys on a 64-bit mix of the position sequence. A collision
// merges two distinct shapes and silently undercounts; at practical
// sizes the per-pair window is 2^-64, an accepted trade for memory.
type hashSeen map[uint64]struct{}

func (s hashSeen) claim(cubes []cube.Pos) bool {
	h := hashCubes(cubes)
	if _, ok := s[h]; ok {
		return false
	}
	s[h] = struct{}{}
	return true
}

// sigSeen keys on the exact encoded sequence: no false merges.
type sigSeen map[string]struct{}

func (s sigSeen) claim(cubes []cube.Pos) bool {
	k := encodeFixed(cubes)
	if _, ok := s[k]; ok {
		return false
	}
	s[k] = struct{}{}
	return true
}

func encodeFixed(cubes []cube.Pos) string {
	b := make([]byte, 3*len(cubes))
	for i, c := range cubes {
		b[3*i] = byte(c.X)
		b[3*i+1] = byte(c.Y)
		b[3*i+2] = byte(c.Z)
	}
	return string(b)
}

// hashCubes folds each position into a splitmix-style mix, seeded with
// the length. Slices in canonFixed form have non-negative coordinates,
// so each position packs injectively into 24 bits before mixing.
func hashCubes(cubes []cube.Pos) uint64 {
	h := mix64(uint64(len(cubes)))
	for _, c := range cubes {
		p := uint64(uint8(c.X))<<16 | uint64(uint8(c.Y))<<8 | uint64(uint8(c.Z))
		h = mix64(h ^ p)
	}
	return h
}

// mix64 is the splitmix64 finalizer.
func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
