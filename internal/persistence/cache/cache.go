// Package cache persists generation results as one compressed artifact
// per size, so rebuilding size n can start from the stored n-1 set. Any
// read problem is reported as an error for the caller to treat as a
// miss; a partial or corrupt artifact never yields partial data.
package cache

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"polycube.ai/internal/cube"
)

const formatVersion = 1

// ErrMiss reports that no artifact exists for the requested size.
var ErrMiss = errors.New("no cached shapes")

type header struct {
	Version int `json:"version"`
	Size    int `json:"size"`
	Count   int `json:"count"`
}

// Path returns the artifact location for one size.
func Path(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("cubes_%d.zst", n))
}

// Save writes the shapes of one size under dir, creating it if needed.
func Save(dir string, n int, shapes []cube.Polycube) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(Path(dir, n), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(header{Version: formatVersion, Size: n, Count: len(shapes)})
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(shapes); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Load reads the shapes of one size back. A missing artifact returns
// ErrMiss; anything malformed returns a describing error. Either way
// the caller regenerates.
func Load(dir string, n int) ([]cube.Polycube, error) {
	f, err := os.Open(Path(dir, n))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMiss
		}
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	hb, err := br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var h header
	if err := json.Unmarshal(hb, &h); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	if h.Version != formatVersion {
		return nil, fmt.Errorf("unsupported cache version %d", h.Version)
	}
	if h.Size != n {
		return nil, fmt.Errorf("artifact holds size %d, want %d", h.Size, n)
	}

	var shapes []cube.Polycube
	if err := gob.NewDecoder(br).Decode(&shapes); err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}
	if len(shapes) != h.Count {
		return nil, fmt.Errorf("artifact holds %d shapes, header says %d", len(shapes), h.Count)
	}
	return shapes, nil
}
