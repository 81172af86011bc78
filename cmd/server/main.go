package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"genesis.ai/internal/logging"
	persistlog "genesis.ai/internal/persistence/log"
	"genesis.ai/internal/persistence/snapshot"
	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tuning"
	"genesis.ai/internal/sim/world"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "genesis_1", "world id")
		seed       = flag.Int64("seed", 1337, "world seed (used only when starting a fresh world)")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite read index")
		agents     = flag.Int("agents", 0, "initial population (default: tuning initial_agents)")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")

		logLevel  = flag.String("log_level", "", "log level (default: LOG_LEVEL or info)")
		logFormat = flag.String("log_format", "", "log format text|json (default: LOG_FORMAT or text)")
	)
	flag.Parse()

	logger := logging.New(logging.Options{Level: *logLevel, Format: *logFormat})
	log := logger.WithField("component", "server")

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		log.Fatalf("load catalogs: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("load tuning: %v", err)
		}
		log.WithField("path", tp).Warn("tuning not found; using defaults")
		tune = tuning.Defaults()
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		log.Fatalf("data dir: %v", err)
	}

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		if p, _, err := snapshot.Latest(worldDir); err == nil {
			snapshotToLoad = p
		} else if !errors.Is(err, snapshot.ErrNoSnapshot) {
			log.WithError(err).Warn("scan snapshots")
		}
	}

	cfg := world.WorldConfig{ID: *worldID, Seed: *seed, InitialAgents: *agents}
	var w *world.World
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			log.Fatalf("read snapshot: %v", err)
		}
		w, err = world.FromSnapshot(cfg, cats, tune, snap, logger)
		if err != nil {
			log.Fatalf("world: %v", err)
		}
		log.WithFields(logrus.Fields{"snapshot": filepath.Base(snapshotToLoad), "tick": w.CurrentTick()}).Info("resumed from snapshot")
	} else {
		w, err = world.New(cfg, cats, tune, logger)
		if err != nil {
			log.Fatalf("world: %v", err)
		}
	}

	// Optional read-model index (does not affect sim determinism).
	idx, err := openRuntimeIndex(worldDir, *disableDB)
	if err != nil {
		log.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.RecordRun(w.ID(), w.RunID(), w.Seed(), *configDir, cats, tune); err != nil {
			log.WithError(err).Warn("index: record run")
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	tickLog := persistlog.NewTickLogger(worldDir)
	defer tickLog.Close()
	loggers := persistlog.MultiTickLogger{tickLog}
	if idx != nil {
		loggers = append(loggers, idx)
	}
	w.SetTickLogger(loggers)

	snapCh := make(chan snapshot.WorldSnapshotV1, 2)
	w.SetSnapshotSink(snapCh)
	snapDone := make(chan struct{})
	go func() {
		defer close(snapDone)
		runSnapshotWriter(ctx, snapCh, worldDir, idx, log)
	}()

	worldDone := make(chan struct{})
	go func() {
		defer close(worldDone)
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("world stopped")
		}
	}()

	enableAdmin := envBool("GENESIS_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP())
	if !enableAdmin {
		log.Info("admin endpoints disabled (GENESIS_ENABLE_ADMIN_HTTP=false)")
	}
	srv := &http.Server{
		Addr:              *addr,
		Handler:           newMux(w, idx, enableAdmin, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	log.WithFields(logrus.Fields{"addr": *addr, "world_id": w.ID(), "run_id": w.RunID()}).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("ListenAndServe: %v", err)
	}
	<-worldDone
	<-snapDone
}

// runSnapshotWriter persists snapshots off the world loop until ctx ends,
// then drains what is already queued.
func runSnapshotWriter(ctx context.Context, ch <-chan snapshot.WorldSnapshotV1, worldDir string, idx runtimeIndex, log logrus.FieldLogger) {
	write := func(snap snapshot.WorldSnapshotV1) {
		path := snapshot.Path(worldDir, snap.Header.Tick)
		if err := snapshot.WriteSnapshot(path, snap); err != nil {
			log.WithError(err).WithField("tick", snap.Header.Tick).Error("snapshot write")
			return
		}
		log.WithFields(logrus.Fields{"tick": snap.Header.Tick, "path": path}).Info("snapshot written")
		if idx != nil {
			idx.RecordSnapshot(path, snap)
		}
	}
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case snap := <-ch:
					write(snap)
				default:
					return
				}
			}
		case snap := <-ch:
			write(snap)
		}
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

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}
