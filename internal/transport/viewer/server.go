// Package viewer serves shape data over HTTP and runs generate/count
// jobs over a websocket, streaming progress as they go. Size limits are
// enforced here so the engines below never see an out-of-range request.
package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"polycube.ai/internal/counter"
	"polycube.ai/internal/generator"
	"polycube.ai/internal/persistence/rundb"
	"polycube.ai/internal/protocol"
	"polycube.ai/internal/tuning"
)

type Config struct {
	Tune   tuning.Tuning
	Runs   *rundb.SQLiteIndex // optional run history
	Logger *log.Logger
}

type Server struct {
	tune tuning.Tuning
	runs *rundb.SQLiteIndex
	log  *log.Logger

	upgrader websocket.Upgrader

	sessions  atomic.Int64
	jobsTotal atomic.Uint64
	shapeGets atomic.Uint64
}

func NewServer(cfg Config) *Server {
	cfg.Tune.Normalize()
	s := &Server{
		tune: cfg.Tune,
		runs: cfg.Runs,
		log:  cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

func (s *Server) cacheDir() string {
	if s.tune.Cache.Enabled {
		return s.tune.Cache.Dir
	}
	return ""
}

// Metrics is a point-in-time read of the service counters.
type Metrics struct {
	Sessions  int64  // currently connected websocket sessions
	JobsTotal uint64 // jobs accepted across all sessions
	ShapeGets uint64 // /v1/shapes requests served
}

func (s *Server) Metrics() Metrics {
	return Metrics{
		Sessions:  s.sessions.Load(),
		JobsTotal: s.jobsTotal.Load(),
		ShapeGets: s.shapeGets.Load(),
	}
}

// Handler upgrades to a websocket, sends WELCOME, then accepts RUN
// messages. One job per connection at a time; results and progress go
// through a single writer goroutine.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		s.sessions.Add(1)
		defer s.sessions.Add(-1)

		sessionID := uuid.NewString()
		if err := writeJSON(conn, protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			SessionID:       sessionID,
			MaxGenerate:     s.tune.Viewer.MaxGenerate,
			MaxCount:        s.tune.Viewer.MaxCount,
		}); err != nil {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		eg, ctx := errgroup.WithContext(ctx)

		out := make(chan []byte, 32)

		// Writer goroutine.
		eg.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						return err
					}
				}
			}
		})

		// Reader loop.
		var running atomic.Bool
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				s.sendError(ctx, out, protocol.ErrProtoBadRequest, "malformed json")
				continue
			}
			if base.Type != protocol.TypeRun {
				continue
			}
			var run protocol.RunMsg
			if err := json.Unmarshal(msg, &run); err != nil {
				s.sendError(ctx, out, protocol.ErrProtoBadRequest, "malformed RUN")
				continue
			}
			if run.ProtocolVersion != "" && run.ProtocolVersion != protocol.Version {
				s.sendError(ctx, out, protocol.ErrProtoBadRequest,
					fmt.Sprintf("unsupported protocol_version %q", run.ProtocolVersion))
				continue
			}
			if code, reason := s.validateRun(run); code != "" {
				s.sendError(ctx, out, code, reason)
				continue
			}
			if !running.CompareAndSwap(false, true) {
				s.sendError(ctx, out, protocol.ErrJobRunning, "a job is already running on this connection")
				continue
			}
			s.jobsTotal.Add(1)
			jobID := uuid.NewString()
			req := run
			s.logf("session %s: job %s %s size=%d", sessionID, jobID, req.Job, req.Size)
			eg.Go(func() error {
				defer running.Store(false)
				s.runJob(ctx, out, jobID, req)
				return nil
			})
		}

		cancel()
		_ = eg.Wait()
	}
}

func (s *Server) validateRun(run protocol.RunMsg) (code, reason string) {
	switch run.Job {
	case protocol.JobGenerate, protocol.JobCount:
	default:
		return protocol.ErrBadJob, fmt.Sprintf("unknown job %q", run.Job)
	}
	if run.Size < 1 {
		return protocol.ErrSizeRange, fmt.Sprintf("size %d below minimum 1", run.Size)
	}
	limit := s.tune.Viewer.MaxGenerate
	if run.Job == protocol.JobCount {
		limit = s.tune.Viewer.MaxCount
	}
	if run.Size > limit {
		return protocol.ErrSizeRange, fmt.Sprintf("size %d above limit %d", run.Size, limit)
	}
	return "", ""
}

func (s *Server) runJob(ctx context.Context, out chan<- []byte, jobID string, run protocol.RunMsg) {
	start := time.Now()
	progress := func(done, total int) {
		send(ctx, out, protocol.ProgressMsg{
			Type:            protocol.TypeProgress,
			ProtocolVersion: protocol.Version,
			JobID:           jobID,
			Done:            done,
			Total:           total,
		})
	}

	var (
		count  uint64
		exact  = true
		source = rundb.SourceComputed
	)
	switch run.Job {
	case protocol.JobGenerate:
		g := generator.New(generator.Config{
			Workers:  s.tune.Workers,
			CacheDir: s.cacheDir(),
			Logger:   s.log,
			Progress: progress,
		})
		count = uint64(len(g.Generate(run.Size, run.UseCache)))
	case protocol.JobCount:
		c := counter.New(counter.Config{
			Workers:   s.tune.Workers,
			Dedup:     s.tune.Counter.Dedup,
			SmallSeed: s.tune.Counter.SmallSeed,
			LargeSeed: s.tune.Counter.LargeSeed,
			LargeFrom: s.tune.Counter.LargeFrom,
			Logger:    s.log,
			Progress:  progress,
		})
		count = c.Count(run.Size, run.Symmetry)
		if run.Symmetry {
			if run.Size <= counter.FreeExactLimit {
				source = rundb.SourceTable
			} else {
				exact = false
				source = rundb.SourceApprox
			}
		} else if run.Size <= counter.SmallSizeLimit {
			source = rundb.SourceTable
		}
	}
	elapsed := time.Since(start)

	send(ctx, out, protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		JobID:           jobID,
		Job:             run.Job,
		Size:            run.Size,
		Count:           count,
		Exact:           exact,
		DurationMS:      elapsed.Milliseconds(),
	})
	s.logf("job %s done: %s size=%d count=%d in %s", jobID, run.Job, run.Size, count, elapsed.Round(time.Millisecond))

	if s.runs != nil {
		kind := rundb.KindGenerate
		if run.Job == protocol.JobCount {
			kind = rundb.KindCount
		}
		s.runs.RecordRun(rundb.Run{
			ID:       jobID,
			Kind:     kind,
			Size:     run.Size,
			Count:    count,
			Exact:    exact,
			Source:   source,
			Workers:  s.tune.Workers,
			Duration: elapsed,
		})
	}
}

func (s *Server) sendError(ctx context.Context, out chan<- []byte, code, message string) {
	send(ctx, out, protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	})
}

// ShapesHandler dumps the shapes of one size as JSON coordinate lists.
func (s *Server) ShapesHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		q := r.URL.Query().Get("size")
		size, err := strconv.Atoi(q)
		if err != nil {
			httpError(rw, http.StatusBadRequest, protocol.ErrSizeRange, fmt.Sprintf("bad size %q", q))
			return
		}
		if size < 1 || size > s.tune.Viewer.MaxGenerate {
			httpError(rw, http.StatusBadRequest, protocol.ErrSizeRange,
				fmt.Sprintf("size must be between 1 and %d", s.tune.Viewer.MaxGenerate))
			return
		}

		s.shapeGets.Add(1)
		g := generator.New(generator.Config{
			Workers:  s.tune.Workers,
			CacheDir: s.cacheDir(),
			Logger:   s.log,
		})
		shapes := g.Generate(size, s.tune.Cache.Enabled)

		resp := shapesResponse{Size: size, Count: len(shapes), Shapes: make([][][3]int, len(shapes))}
		for i, p := range shapes {
			cs := make([][3]int, len(p.Cubes))
			for j, c := range p.Cubes {
				cs[j] = [3]int{int(c.X), int(c.Y), int(c.Z)}
			}
			resp.Shapes[i] = cs
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

// RunsHandler lists recent runs from the history index, newest first.
func (s *Server) RunsHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		resp := runsResponse{Runs: []runJSON{}}
		if s.runs != nil {
			runs, err := s.runs.RecentRuns(20)
			if err != nil {
				httpError(rw, http.StatusInternalServerError, protocol.ErrInternal, err.Error())
				return
			}
			for _, run := range runs {
				resp.Runs = append(resp.Runs, runJSON{
					ID:         run.ID,
					Kind:       run.Kind,
					Size:       run.Size,
					Count:      run.Count,
					Exact:      run.Exact,
					Source:     run.Source,
					Workers:    run.Workers,
					DurationMS: run.Duration.Milliseconds(),
					CreatedAt:  run.CreatedAt.UTC().Format(time.RFC3339Nano),
				})
			}
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

type shapesResponse struct {
	Size   int        `json:"size"`
	Count  int        `json:"count"`
	Shapes [][][3]int `json:"shapes"`
}

type runsResponse struct {
	Runs []runJSON `json:"runs"`
}

type runJSON struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Size       int    `json:"size"`
	Count      uint64 `json:"count"`
	Exact      bool   `json:"exact"`
	Source     string `json:"source"`
	Workers    int    `json:"workers"`
	DurationMS int64  `json:"duration_ms"`
	CreatedAt  string `json:"created_at"`
}

func httpError(rw http.ResponseWriter, status int, code, message string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(map[string]string{"code": code, "message": message})
}

func send(ctx context.Context, out chan<- []byte, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case out <- b:
	case <-ctx.Done():
	}
}

func writeJSON(conn *websocket.Conn, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
