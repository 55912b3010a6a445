// Package tuning carries the knobs shared by the CLI and the viewer
// service. Everything has a usable default; a missing file is not an
// error, a malformed one is.
package tuning

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"polycube.ai/internal/counter"
)

type Tuning struct {
	Workers int         `yaml:"workers"`
	Cache   CacheSpec   `yaml:"cache"`
	Counter CounterSpec `yaml:"counter"`
	Viewer  ViewerSpec  `yaml:"viewer"`
	DB      string      `yaml:"db"`
}

type CacheSpec struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type CounterSpec struct {
	Dedup     string `yaml:"dedup"`
	SmallSeed int    `yaml:"small_seed"`
	LargeSeed int    `yaml:"large_seed"`
	LargeFrom int    `yaml:"large_from"`
}

type ViewerSpec struct {
	Addr        string `yaml:"addr"`
	MaxGenerate int    `yaml:"max_generate"`
	MaxCount    int    `yaml:"max_count"`
}

func Defaults() Tuning {
	return Tuning{
		Workers: 0, // all CPUs
		Cache: CacheSpec{
			Enabled: true,
			Dir:     "data/cubes",
		},
		Counter: CounterSpec{
			Dedup:     counter.DedupHash,
			SmallSeed: 3,
			LargeSeed: 4,
			LargeFrom: 11,
		},
		Viewer: ViewerSpec{
			Addr:        ":8080",
			MaxGenerate: 10,
			MaxCount:    16,
		},
	}
}

// Load reads tuning from path, over the defaults. An empty path or a
// missing file yields the defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	if strings.TrimSpace(path) == "" {
		t.Normalize()
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Normalize()
			return t, nil
		}
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning: %w", err)
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning: %w", err)
	}
	return t, nil
}

func (t *Tuning) Normalize() {
	if t == nil {
		return
	}
	if t.Workers < 0 {
		t.Workers = 0
	}
	if strings.TrimSpace(t.Cache.Dir) == "" {
		t.Cache.Dir = "data/cubes"
	}
	if strings.TrimSpace(t.Counter.Dedup) == "" {
		t.Counter.Dedup = counter.DedupHash
	}
	if t.Counter.SmallSeed <= 0 {
		t.Counter.SmallSeed = 3
	}
	if t.Counter.LargeSeed <= 0 {
		t.Counter.LargeSeed = 4
	}
	if t.Counter.LargeFrom <= 0 {
		t.Counter.LargeFrom = 11
	}
	if strings.TrimSpace(t.Viewer.Addr) == "" {
		t.Viewer.Addr = ":8080"
	}
	if t.Viewer.MaxGenerate <= 0 {
		t.Viewer.MaxGenerate = 10
	}
	if t.Viewer.MaxCount <= 0 {
		t.Viewer.MaxCount = 16
	}
}

func (t Tuning) Validate() error {
	switch t.Counter.Dedup {
	case counter.DedupHash, counter.DedupSignature:
	default:
		return fmt.Errorf("counter.dedup must be %q or %q, got %q",
			counter.DedupHash, counter.DedupSignature, t.Counter.Dedup)
	}
	if t.Counter.SmallSeed > t.Counter.LargeSeed {
		return fmt.Errorf("counter.small_seed %d above counter.large_seed %d",
			t.Counter.SmallSeed, t.Counter.LargeSeed)
	}
	if t.Viewer.MaxGenerate > t.Viewer.MaxCount {
		return fmt.Errorf("viewer.max_generate %d above viewer.max_count %d",
			t.Viewer.MaxGenerate, t.Viewer.MaxCount)
	}
	return nil
}
