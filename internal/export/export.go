// Package export writes shape catalogs for downstream viewers. The CSV
// form carries one row per cube so a renderer can rebuild each shape;
// the text form is a human-readable catalog with ASCII layer art.
package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"polycube.ai/internal/cube"
)

// Text catalogs blow up fast; above this size only CSV makes sense.
const textSizeLimit = 7

var ErrTooLarge = errors.New("text export limited to sizes below 7")

type Entry struct {
	Shape   cube.Polycube
	Metrics cube.Metrics
}

// Catalog measures every shape, preserving input order.
func Catalog(shapes []cube.Polycube) []Entry {
	out := make([]Entry, len(shapes))
	for i, s := range shapes {
		out[i] = Entry{Shape: s, Metrics: cube.Measure(s)}
	}
	return out
}

// Summary buckets a generation result by dimensionality. SingleLayer
// counts shapes that fit in one grid plane along any axis.
type Summary struct {
	Linear      int
	Planar      int
	ThreeD      int
	SingleLayer int
	MultiLayer  int
	MaxDim      int
	DimCounts   []int
}

func Summarize(shapes []cube.Polycube) Summary {
	var s Summary
	if len(shapes) == 0 {
		return s
	}
	dims := make([]int, len(shapes))
	for i, shape := range shapes {
		m := cube.Measure(shape)
		switch {
		case m.Linear:
			s.Linear++
		case m.Flat:
			s.Planar++
		default:
			s.ThreeD++
		}
		if m.Flat {
			s.SingleLayer++
		}
		d := m.MaxDim()
		dims[i] = d
		if d > s.MaxDim {
			s.MaxDim = d
		}
	}
	s.MultiLayer = len(shapes) - s.SingleLayer
	s.DimCounts = make([]int, s.MaxDim+1)
	for _, d := range dims {
		s.DimCounts[d]++
	}
	return s
}

func CSVPath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("polycubes_%d.csv", n))
}

func TextPath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("polycubes_%d.txt", n))
}

// WriteCSV emits the catalog with one row per cube. IDs are 1-based and
// shared by all cubes of a shape.
func WriteCSV(w io.Writer, shapes []cube.Polycube) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "ShapeType", "DimensionX", "DimensionY", "DimensionZ", "SurfaceArea", "Connectivity", "CubeX", "CubeY", "CubeZ"}); err != nil {
		return err
	}
	for i, e := range Catalog(shapes) {
		m := e.Metrics
		for _, pos := range e.Shape.Cubes {
			rec := []string{
				strconv.Itoa(i + 1),
				m.ShapeType,
				strconv.Itoa(m.DimX),
				strconv.Itoa(m.DimY),
				strconv.Itoa(m.DimZ),
				strconv.Itoa(m.SurfaceArea),
				fmt.Sprintf("%.2f", m.AvgConnectivity),
				strconv.Itoa(int(pos.X)),
				strconv.Itoa(int(pos.Y)),
				strconv.Itoa(int(pos.Z)),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes dir/polycubes_<n>.csv and returns its path.
func ExportCSV(dir string, shapes []cube.Polycube, n int) (string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	path := CSVPath(dir, n)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	bw := bufio.NewWriter(f)
	if err := WriteCSV(bw, shapes); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// WriteText emits the full human-readable catalog: a summary block,
// then every shape grouped by dimensionality and type, with coordinates
// and layer art.
func WriteText(w io.Writer, shapes []cube.Polycube, n int) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Polycubes of size %d - Total count: %d\n", n, len(shapes))
	fmt.Fprintln(bw, strings.Repeat("=", 50))

	entries := Catalog(shapes)
	sum := Summarize(shapes)

	fmt.Fprintln(bw, "Summary Information:")
	fmt.Fprintf(bw, "  1D Linear shapes: %d\n", sum.Linear)
	fmt.Fprintf(bw, "  2D Planar shapes: %d\n", sum.Planar)
	fmt.Fprintf(bw, "  3D shapes: %d\n", sum.ThreeD)
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "  Single-layer shapes: %d\n", sum.SingleLayer)
	fmt.Fprintf(bw, "  Multi-layer shapes: %d\n", sum.MultiLayer)
	fmt.Fprintln(bw)

	ordered := orderEntries(entries)
	fmt.Fprintf(bw, "Shapes organized systematically (%d total)\n", len(ordered))
	fmt.Fprintln(bw, strings.Repeat("-", 50))
	fmt.Fprintln(bw)

	currentDim := -1
	currentType := ""
	for i, e := range ordered {
		dim := dimensionalityOrder(e.Metrics)
		if currentDim != dim {
			currentDim = dim
			currentType = ""
			fmt.Fprintln(bw)
			switch dim {
			case 1:
				fmt.Fprintln(bw, "1D LINEAR SHAPES")
			case 2:
				fmt.Fprintln(bw, "2D PLANAR SHAPES")
			case 3:
				fmt.Fprintln(bw, "3D SHAPES")
			}
			fmt.Fprintln(bw, strings.Repeat("-", 30))
		}
		if currentType != e.Metrics.ShapeType {
			currentType = e.Metrics.ShapeType
			fmt.Fprintln(bw)
			fmt.Fprintf(bw, "-- %s Shapes --\n", e.Metrics.ShapeType)
		}

		fmt.Fprintln(bw)
		fmt.Fprintf(bw, "Polycube #%d\n", i+1)
		fmt.Fprintf(bw, "Type: %s, Dimensions: %d×%d×%d\n",
			e.Metrics.ShapeType, e.Metrics.DimX, e.Metrics.DimY, e.Metrics.DimZ)
		fmt.Fprintf(bw, "S/V Ratio: %.2f, Connectivity: %.1f\n",
			float32(e.Metrics.SurfaceArea)/float32(e.Metrics.Volume),
			e.Metrics.AvgConnectivity)

		coords := make([]string, len(e.Shape.Cubes))
		for j, pos := range e.Shape.Cubes {
			coords[j] = fmt.Sprintf("(%d,%d,%d)", pos.X, pos.Y, pos.Z)
		}
		sort.Strings(coords)
		fmt.Fprintf(bw, "Cubes: %s\n", strings.Join(coords, ", "))

		fmt.Fprintln(bw, layerArt(e.Shape))
		fmt.Fprintln(bw, strings.Repeat("-", 40))
	}

	return bw.Flush()
}

// ExportText writes dir/polycubes_<n>.txt, refusing sizes where the
// catalog would be unreadable.
func ExportText(dir string, shapes []cube.Polycube, n int) (string, error) {
	if n >= textSizeLimit {
		return "", ErrTooLarge
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	path := TextPath(dir, n)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteText(f, shapes, n); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// orderEntries sorts dimensionality, then shape type, then volume.
// Stable so equal shapes keep their generation order.
func orderEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := dimensionalityOrder(out[i].Metrics), dimensionalityOrder(out[j].Metrics)
		if di != dj {
			return di < dj
		}
		if out[i].Metrics.ShapeType != out[j].Metrics.ShapeType {
			return out[i].Metrics.ShapeType < out[j].Metrics.ShapeType
		}
		return out[i].Metrics.Volume < out[j].Metrics.Volume
	})
	return out
}

func dimensionalityOrder(m cube.Metrics) int {
	if m.Linear {
		return 1
	}
	if m.Flat {
		return 2
	}
	return 3
}

// layerArt renders the shape as '#'/'.' grids, one per z layer, rows in
// descending y.
func layerArt(p cube.Polycube) string {
	if len(p.Cubes) == 0 {
		return "Empty polycube"
	}
	lo, hi := p.Bounds()
	occ := p.Occupied()

	var b strings.Builder
	for z := lo.Z; z <= hi.Z; z++ {
		fmt.Fprintf(&b, "Layer z=%d\n", z)
		for y := hi.Y; y >= lo.Y; y-- {
			for x := lo.X; x <= hi.X; x++ {
				if _, ok := occ[cube.Pos{X: x, Y: y, Z: z}]; ok {
					b.WriteByte('#')
				} else {
					b.WriteByte('.')
				}
			}
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String()
}
