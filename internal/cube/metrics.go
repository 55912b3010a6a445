package cube

// Shape type labels used by exports and summaries.
const (
	ShapeLinear = "Linear"
	ShapeFlat   = "Flat"
	Shape3D     = "3D"
)

// Metrics summarizes the geometry of one shape for cataloging.
type Metrics struct {
	DimX            int
	DimY            int
	DimZ            int
	Linear          bool
	Flat            bool
	SurfaceArea     int
	Volume          int
	ShapeType       string
	AvgConnectivity float32
}

// MaxDim returns the largest bounding-box extent.
func (m Metrics) MaxDim() int {
	max := m.DimX
	if m.DimY > max {
		max = m.DimY
	}
	if m.DimZ > max {
		max = m.DimZ
	}
	return max
}

// Measure computes catalog metrics for p. Linear means the shape spans
// a single axis, flat means it fits in one grid plane. Surface area is
// the count of cube faces not shared with another cube, and average
// connectivity the mean number of occupied neighbors per cube.
func Measure(p Polycube) Metrics {
	n := len(p.Cubes)
	if n == 0 {
		return Metrics{}
	}
	dx, dy, dz := p.Dimensions()
	linear := (dx == 1 && dy == 1) || (dx == 1 && dz == 1) || (dy == 1 && dz == 1)
	flat := dx == 1 || dy == 1 || dz == 1

	occ := occSet(p.Cubes)
	surface := 0
	for _, c := range p.Cubes {
		for _, nb := range c.Neighbors() {
			if _, ok := occ[nb]; !ok {
				surface++
			}
		}
	}

	m := Metrics{
		DimX:            dx,
		DimY:            dy,
		DimZ:            dz,
		Linear:          linear,
		Flat:            flat,
		SurfaceArea:     surface,
		Volume:          n,
		AvgConnectivity: float32(6*n-surface) / float32(n),
	}
	switch {
	case linear:
		m.ShapeType = ShapeLinear
	case flat:
		m.ShapeType = ShapeFlat
	default:
		m.ShapeType = Shape3D
	}
	return m
}
