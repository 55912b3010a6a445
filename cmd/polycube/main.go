package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"polycube.ai/internal/bench"
	"polycube.ai/internal/counter"
	"polycube.ai/internal/cube"
	"polycube.ai/internal/export"
	"polycube.ai/internal/generator"
	"polycube.ai/internal/persistence/rundb"
	"polycube.ai/internal/tuning"
)

func main() {
	var (
		countMode  = flag.Bool("count", false, "count polycubes instead of materializing them")
		symmetry   = flag.Bool("symmetry", false, "with -count, deduplicate rotations (free polycubes)")
		noCache    = flag.Bool("no-cache", false, "skip the shape cache")
		exportCSV  = flag.Bool("export-csv", false, "export the catalog to polycubes_<n>.csv")
		exportText = flag.Bool("export-text", false, "export the catalog to polycubes_<n>.txt")
		benchMax   = flag.Int("bench", 0, "benchmark generation for sizes 1..N and exit")
		workers    = flag.Int("workers", 0, "worker goroutines (0 = all CPUs)")
		dataDir    = flag.String("data", "", "directory for cache files and exports (default current dir)")
		tuningPath = flag.String("tuning", "", "path to tuning yaml (optional)")
		dbPath     = flag.String("db", "", "sqlite run history path (empty to disable)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[polycube] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}
	if *workers > 0 {
		tune.Workers = *workers
	}
	if *dataDir != "" {
		tune.Cache.Dir = filepath.Join(*dataDir, "cubes")
	}
	if *noCache {
		tune.Cache.Enabled = false
	}
	if *dbPath != "" {
		tune.DB = *dbPath
	}

	fmt.Println("High-Performance Polycube Generator")
	fmt.Println("===================================")

	var runs *rundb.SQLiteIndex
	if tune.DB != "" {
		runs, err = rundb.OpenSQLite(tune.DB)
		if err != nil {
			logger.Printf("run db unavailable: %v", err)
			runs = nil
		} else {
			defer runs.Close()
		}
	}

	cacheDir := ""
	if tune.Cache.Enabled {
		cacheDir = tune.Cache.Dir
	}

	if *benchMax > 0 {
		runBench(logger, tune, cacheDir, runs, *benchMax)
		return
	}

	n := resolveSize(flag.Arg(0), os.Stdin)
	if n < 1 || n > generator.MaxSize {
		logger.Fatalf("size %d out of range 1..%d", n, generator.MaxSize)
	}

	if *countMode {
		runCount(logger, tune, runs, n, *symmetry)
		return
	}

	g := generator.New(generator.Config{
		Workers:  tune.Workers,
		CacheDir: cacheDir,
		Logger:   logger,
		Progress: progressPrinter("Generating"),
	})

	start := time.Now()
	shapes := g.Generate(n, tune.Cache.Enabled)
	elapsed := time.Since(start)

	fmt.Printf("Generated %s unique polycubes of size %d\n", humanize.Comma(int64(len(shapes))), n)
	fmt.Printf("Time taken: %.2f seconds\n", elapsed.Seconds())

	if expected, ok := generator.Known(n); ok {
		fmt.Printf("Expected count for size %d: %s\n", n, humanize.Comma(int64(expected)))
		switch got := uint64(len(shapes)); {
		case got < expected:
			fmt.Printf("WARNING: Missing %d polycubes!\n", expected-got)
		case got > expected:
			fmt.Printf("WARNING: Found %d extra polycubes!\n", got-expected)
		default:
			fmt.Println("Generated count matches expected count!")
		}
	}

	printSummary(shapes)

	runs.RecordRun(rundb.Run{
		Kind:     rundb.KindGenerate,
		Size:     n,
		Count:    uint64(len(shapes)),
		Exact:    true,
		Source:   rundb.SourceComputed,
		Workers:  tune.Workers,
		Duration: elapsed,
	})

	wantCSV, wantText := *exportCSV, *exportText
	if !wantCSV && !wantText {
		wantCSV, wantText = askExport(os.Stdin)
	}
	if wantCSV {
		doExportCSV(*dataDir, shapes, n)
	}
	if wantText {
		doExportText(*dataDir, shapes, n)
	}
}

// resolveSize takes the positional size argument, falling back to an
// interactive prompt when it is absent or not a number. The prompt follows
// the catalog tool convention of defaulting rather than refusing.
func resolveSize(arg string, in io.Reader) int {
	if arg != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(arg)); err == nil && n != 0 {
			return n
		}
	}
	fmt.Print("Enter the size of polycubes to generate (1-18): ")
	n := 0
	sc := bufio.NewScanner(in)
	if sc.Scan() {
		if v, err := strconv.Atoi(strings.TrimSpace(sc.Text())); err == nil {
			n = v
		}
	}
	if n < 1 || n > generator.MaxSize {
		fmt.Println("Invalid input. Using default size 5.")
		n = 5
	}
	return n
}

func runCount(logger *log.Logger, tune tuning.Tuning, runs *rundb.SQLiteIndex, n int, free bool) {
	c := counter.New(counter.Config{
		Workers:   tune.Workers,
		Dedup:     tune.Counter.Dedup,
		SmallSeed: tune.Counter.SmallSeed,
		LargeSeed: tune.Counter.LargeSeed,
		LargeFrom: tune.Counter.LargeFrom,
		Logger:    logger,
		Progress:  progressPrinter("Counting"),
	})

	start := time.Now()
	total := c.Count(n, free)
	elapsed := time.Since(start)

	kind := "fixed (translation-only)"
	if free {
		kind = "free (rotation-deduplicated)"
	}
	fmt.Printf("Counted %s %s polycubes of size %d\n", humanize.Comma(int64(total)), kind, n)
	fmt.Printf("Time taken: %.2f seconds\n", elapsed.Seconds())

	exact := !free || n <= counter.FreeExactLimit
	source := rundb.SourceComputed
	switch {
	case free && n <= counter.FreeExactLimit:
		source = rundb.SourceTable
	case free:
		source = rundb.SourceApprox
	case n <= counter.SmallSizeLimit:
		source = rundb.SourceTable
	}
	runs.RecordRun(rundb.Run{
		Kind:     rundb.KindCount,
		Size:     n,
		Count:    total,
		Exact:    exact,
		Source:   source,
		Workers:  tune.Workers,
		Duration: elapsed,
	})
}

func runBench(logger *log.Logger, tune tuning.Tuning, cacheDir string, runs *rundb.SQLiteIndex, maxSize int) {
	if maxSize > generator.MaxSize {
		maxSize = generator.MaxSize
	}
	g := generator.New(generator.Config{
		Workers:  tune.Workers,
		CacheDir: cacheDir,
		Logger:   logger,
	})

	fmt.Printf("\nRunning benchmarks up to size %d:\n", maxSize)
	results := bench.Run(g, maxSize, tune.Cache.Enabled, func(r bench.Result) {
		logger.Printf("bench size %d: %s shapes in %dms", r.Size, humanize.Comma(int64(r.Count)), r.Duration.Milliseconds())
		runs.RecordRun(rundb.Run{
			Kind:     rundb.KindBench,
			Size:     r.Size,
			Count:    r.Count,
			Exact:    true,
			Source:   rundb.SourceComputed,
			Workers:  tune.Workers,
			Duration: r.Duration,
		})
	})
	fmt.Print(bench.Table(results))
}

// printSummary mirrors the catalog summary block: dimensionality buckets
// followed by the spread of bounding-box maxima.
func printSummary(shapes []cube.Polycube) {
	sum := export.Summarize(shapes)
	if len(shapes) == 0 {
		fmt.Println("Summary: No polycubes to analyze")
		return
	}
	fmt.Println("\nSummary:")
	fmt.Printf("  1D Linear shapes: %d\n", sum.Linear)
	fmt.Printf("  2D Flat shapes: %d\n", sum.Planar)
	fmt.Printf("  3D shapes: %d\n", sum.ThreeD)
	fmt.Printf("\n  Maximum dimension: %d\n", sum.MaxDim)
	fmt.Println("  Distribution by maximum dimension:")
	for dim, cnt := range sum.DimCounts {
		if cnt > 0 {
			fmt.Printf("    Max dim %d: %d shapes\n", dim, cnt)
		}
	}
}

func askExport(in io.Reader) (csv, text bool) {
	fmt.Println("\nExport options:")
	fmt.Println("  1. Export to CSV (for web viewer)")
	fmt.Println("  2. Export to text file")
	fmt.Println("  3. Skip export")
	fmt.Print("Choose an option (1-3): ")
	choice := ""
	sc := bufio.NewScanner(in)
	if sc.Scan() {
		choice = strings.TrimSpace(sc.Text())
	}
	switch choice {
	case "1":
		return true, false
	case "2":
		return false, true
	default:
		fmt.Println("Skipping export.")
		return false, false
	}
}

func doExportCSV(dir string, shapes []cube.Polycube, n int) {
	fmt.Printf("Exporting %d polycubes to %s...\n", len(shapes), export.CSVPath(dir, n))
	path, err := export.ExportCSV(dir, shapes, n)
	if err != nil {
		fmt.Printf("Error exporting to CSV: %v\n", err)
		return
	}
	fmt.Printf("Exported to CSV file: %s\n", path)
}

func doExportText(dir string, shapes []cube.Polycube, n int) {
	path, err := export.ExportText(dir, shapes, n)
	if err != nil {
		if errors.Is(err, export.ErrTooLarge) {
			fmt.Println("Warning: Export to text file is only available for n < 7 due to the large number of shapes.")
			fmt.Printf("Found %d polycubes of size %d.\n", len(shapes), n)
			return
		}
		fmt.Printf("Error exporting to text file: %v\n", err)
		return
	}
	fmt.Printf("Exported to text file: %s\n", path)
}

// progressPrinter renders worker progress as an in-place percentage line.
// Callbacks may arrive from several goroutines; the terminal tolerates the
// occasional out-of-order repaint.
func progressPrinter(label string) func(done, total int) {
	return func(done, total int) {
		if total <= 0 {
			return
		}
		fmt.Printf("\r%s: %3d%%", label, done*100/total)
		if done >= total {
			fmt.Println()
		}
	}
}
