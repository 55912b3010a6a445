// Package bench times generation across a range of sizes and checks
// the counts against the reference table.
package bench

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"polycube.ai/internal/generator"
)

type Result struct {
	Size     int
	Count    uint64
	Expected uint64
	HasRef   bool
	Match    bool
	Duration time.Duration
}

// Run generates sizes 1..maxSize in order. onResult, when non-nil, is
// called after each size so callers can stream rows. A size without a
// reference entry counts as a match.
func Run(g *generator.Generator, maxSize int, useCache bool, onResult func(Result)) []Result {
	if maxSize < 1 {
		return nil
	}
	results := make([]Result, 0, maxSize)
	for n := 1; n <= maxSize; n++ {
		start := time.Now()
		shapes := g.Generate(n, useCache)
		r := Result{
			Size:     n,
			Count:    uint64(len(shapes)),
			Duration: time.Since(start),
			Match:    true,
		}
		if expected, ok := generator.Known(n); ok {
			r.Expected = expected
			r.HasRef = true
			r.Match = r.Count == expected
		}
		results = append(results, r)
		if onResult != nil {
			onResult(r)
		}
	}
	return results
}

// Table renders results as a fixed-width text table.
func Table(results []Result) string {
	rule := strings.Repeat("-", 43)
	var b strings.Builder
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "| %4s | %12s | %9s | %5s |\n", "Size", "Count", "Time (ms)", "Match")
	b.WriteString(rule + "\n")
	for _, r := range results {
		mark := "yes"
		if !r.Match {
			mark = "NO"
		}
		fmt.Fprintf(&b, "| %4d | %12s | %9d | %5s |\n",
			r.Size, humanize.Comma(int64(r.Count)), r.Duration.Milliseconds(), mark)
	}
	b.WriteString(rule + "\n")
	return b.String()
}
