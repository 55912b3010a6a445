package cache

import (
	"errors"
	"os"
	"testing"

	"polycube.ai/internal/cube"
)

func sampleShapes() []cube.Polycube {
	shapes := []cube.Polycube{
		cube.New([]cube.Pos{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}}),
		cube.New([]cube.Pos{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}}),
	}
	for i, s := range shapes {
		canon, _ := cube.Canonicalize(s)
		shapes[i] = canon
	}
	return shapes
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	shapes := sampleShapes()
	if err := Save(dir, 3, shapes); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(dir, 3)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(shapes) {
		t.Fatalf("loaded %d shapes, want %d", len(got), len(shapes))
	}
	want := make(map[cube.Signature]bool)
	for _, s := range shapes {
		_, sig := cube.Canonicalize(s)
		want[sig] = true
	}
	for _, s := range got {
		_, sig := cube.Canonicalize(s)
		if !want[sig] {
			t.Fatalf("loaded shape %v not in saved set", s.Cubes)
		}
	}
}

func TestLoadMiss(t *testing.T) {
	_, err := Load(t.TempDir(), 5)
	if !errors.Is(err, ErrMiss) {
		t.Fatalf("err = %v, want ErrMiss", err)
	}
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(Path(dir, 4), []byte("not a cache artifact"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(dir, 4); err == nil {
		t.Fatalf("corrupt artifact loaded without error")
	}
}

func TestLoadSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	if err := Save(dir, 3, sampleShapes()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := os.Rename(Path(dir, 3), Path(dir, 6)); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := Load(dir, 6); err == nil {
		t.Fatalf("size mismatch loaded without error")
	}
}

func TestSaveCreatesDir(t *testing.T) {
	dir := t.TempDir() + "/nested/cubes"
	if err := Save(dir, 3, sampleShapes()); err != nil {
		t.Fatalf("save into missing dir: %v", err)
	}
	if _, err := os.Stat(Path(dir, 3)); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
}
