// Package rundb keeps a small SQLite index of finished runs so the CLI
// and the viewer can show history. All writes go through one goroutine;
// reads hit the db directly.
package rundb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	KindGenerate = "generate"
	KindCount    = "count"
	KindBench    = "bench"

	SourceComputed = "computed"
	SourceCache    = "cache"
	SourceTable    = "table"
	SourceApprox   = "approx"
)

type Run struct {
	ID        string
	Kind      string
	Size      int
	Count     uint64
	Exact     bool
	Source    string
	Workers   int
	Duration  time.Duration
	CreatedAt time.Time
}

type SQLiteIndex struct {
	db *sql.DB

	ch   chan Run
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan Run, 256),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			size INTEGER NOT NULL,
			count INTEGER NOT NULL,
			exact INTEGER NOT NULL,
			source TEXT NOT NULL,
			workers INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_kind_size ON runs(kind, size);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close drains pending writes and closes the db.
func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordRun queues a run for insertion. An empty ID gets a fresh uuid.
// Runs arrive at most a few per second, so the send blocks rather than
// drops.
func (s *SQLiteIndex) RecordRun(r Run) string {
	if s == nil || s.closed.Load() {
		return r.ID
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	s.ch <- r
	return r.ID
}

func (s *SQLiteIndex) loop() {
	insert, err := s.db.Prepare(`INSERT OR REPLACE INTO runs(id,kind,size,count,exact,source,workers,duration_ms,created_at) VALUES(?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		for range s.ch {
		}
		return
	}
	defer insert.Close()

	for r := range s.ch {
		exact := 0
		if r.Exact {
			exact = 1
		}
		_, _ = insert.Exec(
			r.ID,
			r.Kind,
			r.Size,
			int64(r.Count),
			exact,
			r.Source,
			r.Workers,
			r.Duration.Milliseconds(),
			r.CreatedAt.Format(time.RFC3339Nano),
		)
	}
}

// RecentRuns returns up to limit runs, newest first.
func (s *SQLiteIndex) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT id,kind,size,count,exact,source,workers,duration_ms,created_at FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r          Run
			count      int64
			exact      int
			durationMS int64
			createdAt  string
		)
		if err := rows.Scan(&r.ID, &r.Kind, &r.Size, &count, &exact, &r.Source, &r.Workers, &durationMS, &createdAt); err != nil {
			return nil, err
		}
		r.Count = uint64(count)
		r.Exact = exact != 0
		r.Duration = time.Duration(durationMS) * time.Millisecond
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			r.CreatedAt = ts
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// BestRun returns the most recent run for a kind and size, if any.
func (s *SQLiteIndex) BestRun(kind string, size int) (Run, bool, error) {
	row := s.db.QueryRow(`SELECT id,kind,size,count,exact,source,workers,duration_ms,created_at FROM runs WHERE kind=? AND size=? ORDER BY created_at DESC LIMIT 1`, kind, size)
	var (
		r          Run
		count      int64
		exact      int
		durationMS int64
		createdAt  string
	)
	err := row.Scan(&r.ID, &r.Kind, &r.Size, &count, &exact, &r.Source, &r.Workers, &durationMS, &createdAt)
	if err == sql.ErrNoRows {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	r.Count = uint64(count)
	r.Exact = exact != 0
	r.Duration = time.Duration(durationMS) * time.Millisecond
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		r.CreatedAt = ts
	}
	return r, true, nil
}
