package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"polycube.ai/internal/persistence/rundb"
	"polycube.ai/internal/transport/viewer"
	"polycube.ai/internal/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", "", "http listen address (default from tuning)")
		dataDir    = flag.String("data", "", "data directory for cache files (default from tuning)")
		tuningPath = flag.String("tuning", "", "path to tuning yaml (optional)")
		dbPath     = flag.String("db", "data/runs.db", "sqlite run history path (empty to use tuning)")
		workers    = flag.Int("workers", 0, "worker goroutines (0 = all CPUs)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[viewer] ", log.LstdFlags|log.Lmicroseconds)

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
	if *addr != "" {
		tune.Viewer.Addr = *addr
	}
	if *dbPath != "" {
		tune.DB = *dbPath
	}

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

	ctx, cancel := signalContext()
	defer cancel()

	vs := viewer.NewServer(viewer.Config{
		Tune:   tune,
		Runs:   runs,
		Logger: logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		m := vs.Metrics()

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP polycube_viewer_sessions Currently connected websocket sessions.\n")
		fmt.Fprintf(rw, "# TYPE polycube_viewer_sessions gauge\n")
		fmt.Fprintf(rw, "polycube_viewer_sessions %d\n", m.Sessions)

		fmt.Fprintf(rw, "# HELP polycube_viewer_jobs_total Jobs accepted over the websocket.\n")
		fmt.Fprintf(rw, "# TYPE polycube_viewer_jobs_total counter\n")
		fmt.Fprintf(rw, "polycube_viewer_jobs_total %d\n", m.JobsTotal)

		fmt.Fprintf(rw, "# HELP polycube_viewer_shape_requests_total Shape dump requests served.\n")
		fmt.Fprintf(rw, "# TYPE polycube_viewer_shape_requests_total counter\n")
		fmt.Fprintf(rw, "polycube_viewer_shape_requests_total %d\n", m.ShapeGets)
	})
	if envBool("PC_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/shapes", vs.ShapesHandler())
	mux.HandleFunc("/v1/runs", vs.RunsHandler())
	mux.HandleFunc("/v1/ws", vs.Handler())

	srv := &http.Server{
		Addr:              tune.Viewer.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", tune.Viewer.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
