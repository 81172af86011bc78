package world

import (
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"genesis.ai/internal/persistence/snapshot"
	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tuning"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
	"genesis.ai/internal/sim/world/logic/ids"
	"genesis.ai/internal/sim/world/logic/mathx"
	"genesis.ai/internal/sim/world/logic/point"
	"genesis.ai/internal/sim/world/terrain/gen"
	"genesis.ai/internal/sim/world/terrain/store"
)

type WorldConfig struct {
	ID   string
	Seed int64
	// InitialAgents overrides tuning.initial_agents when positive.
	InitialAgents int
	// RunID identifies this process's run in logs, snapshots and the index.
	// Generated when empty.
	RunID string
}

// World is a single-threaded authoritative simulation.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg      WorldConfig
	tuning   *tuning.Tuning
	catalogs *catalogs.Catalogs
	log      logrus.FieldLogger

	tick atomic.Uint64

	grid   *store.Grid
	rng    *rand.Rand
	ids    *ids.Sequence
	agents []*modelpkg.Agent // ascending id

	paused bool

	admin         chan adminSnapshotReq
	control       chan controlReq
	stateReq      chan stateReq
	observerJoin  chan ObserverJoinRequest
	observerSub   chan ObserverSubscribeRequest
	observerLeave chan string
	stop          chan struct{}

	observers map[string]*observerClient

	// Optional tick logger (may be nil). Implemented in internal/persistence/log.
	tickLogger TickLogger

	// Optional snapshot sink (may be nil). Snapshot writing should be off-thread.
	snapshotSink chan<- snapshot.WorldSnapshotV1

	// entry collects the log record of the tick being stepped.
	entry       *TickLogEntry
	deathsTotal uint64
	metrics     atomic.Value
}

// New generates a fresh world and spawns the initial population.
func New(cfg WorldConfig, cats *catalogs.Catalogs, tun tuning.Tuning, log logrus.FieldLogger) (*World, error) {
	w, err := newWorld(cfg, cats, tun, log)
	if err != nil {
		return nil, err
	}
	w.grid = store.New(tun.Grid.Width, tun.Grid.Height, cats.Resources, tun.DayLengthSeconds)
	w.rng = rand.New(rand.NewSource(cfg.Seed))
	w.ids = ids.NewSequence(1)

	rep := gen.Generate(w.grid, tun.WorldGen, w.rng, w.log)
	w.log.WithFields(logrus.Fields{
		"width":       w.grid.Width,
		"height":      w.grid.Height,
		"water_cells": rep.WaterCells,
		"shortfalls":  len(rep.Shortfalls),
	}).Info("world generated")

	if err := w.spawnPopulation(w.initialAgents()); err != nil {
		return nil, err
	}
	w.storeMetrics(0)
	return w, nil
}

// FromSnapshot restores terrain, nodes, clock and the id sequence. Agents are
// not persisted, so a fresh population is spawned on the restored map.
func FromSnapshot(cfg WorldConfig, cats *catalogs.Catalogs, tun tuning.Tuning, snap snapshot.WorldSnapshotV1, log logrus.FieldLogger) (*World, error) {
	if cfg.ID == "" {
		cfg.ID = snap.Header.WorldID
	}
	if snap.Header.WorldID != "" && snap.Header.WorldID != cfg.ID {
		return nil, fmt.Errorf("snapshot belongs to world %q, not %q", snap.Header.WorldID, cfg.ID)
	}
	cfg.Seed = snap.Seed
	w, err := newWorld(cfg, cats, tun, log)
	if err != nil {
		return nil, err
	}
	if d := cats.Digest(); snap.Header.CatalogsDigest != "" && snap.Header.CatalogsDigest != d {
		w.log.WithFields(logrus.Fields{
			"snapshot_digest": snap.Header.CatalogsDigest,
			"catalogs_digest": d,
		}).Warn("catalogs changed since snapshot")
	}
	if err := w.importSnapshot(snap); err != nil {
		return nil, err
	}
	if err := w.spawnPopulation(w.initialAgents()); err != nil {
		return nil, err
	}
	w.log.WithFields(logrus.Fields{
		"tick":          snap.Tick,
		"nodes":         len(snap.Nodes),
		"next_agent_id": w.ids.Peek(),
	}).Info("world resumed from snapshot")
	w.storeMetrics(0)
	return w, nil
}

// FromGrid wraps a prepared grid without generating terrain or spawning;
// callers place agents with AddAgent.
func FromGrid(cfg WorldConfig, cats *catalogs.Catalogs, tun tuning.Tuning, g *store.Grid, log logrus.FieldLogger) (*World, error) {
	if g == nil {
		return nil, errors.New("world: grid is required")
	}
	w, err := newWorld(cfg, cats, tun, log)
	if err != nil {
		return nil, err
	}
	w.grid = g
	w.rng = rand.New(rand.NewSource(cfg.Seed))
	w.ids = ids.NewSequence(1)
	w.storeMetrics(0)
	return w, nil
}

func newWorld(cfg WorldConfig, cats *catalogs.Catalogs, tun tuning.Tuning, log logrus.FieldLogger) (*World, error) {
	if cats == nil {
		return nil, errors.New("world: catalogs are required")
	}
	if err := tun.Validate(); err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	if cfg.ID == "" {
		cfg.ID = "genesis_1"
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &World{
		cfg:      cfg,
		tuning:   &tun,
		catalogs: cats,
		log:      log.WithFields(logrus.Fields{"component": "world", "world_id": cfg.ID}),

		admin:         make(chan adminSnapshotReq, 16),
		control:       make(chan controlReq, 16),
		stateReq:      make(chan stateReq, 64),
		observerJoin:  make(chan ObserverJoinRequest, 32),
		observerSub:   make(chan ObserverSubscribeRequest, 64),
		observerLeave: make(chan string, 32),
		stop:          make(chan struct{}),

		observers: map[string]*observerClient{},
	}, nil
}

func (w *World) initialAgents() int {
	if w.cfg.InitialAgents > 0 {
		return w.cfg.InitialAgents
	}
	return w.tuning.InitialAgents
}

// spawnPopulation places n agents on distinct walkable ground cells with
// personality drawn uniformly from the configured ranges.
func (w *World) spawnPopulation(n int) error {
	taken := map[point.Point]bool{}
	for _, a := range w.agents {
		taken[a.Pos] = true
	}
	attempts := w.grid.Width * w.grid.Height
	for i := 0; i < n; i++ {
		pos, ok := gen.SpawnCell(w.grid, w.rng, taken, attempts)
		if !ok {
			return fmt.Errorf("world: no free cell for agent %d of %d", i+1, n)
		}
		taken[pos] = true
		soc := mathx.Uniform(w.rng, w.tuning.Agent.SociabilityMin, w.tuning.Agent.SociabilityMax)
		intel := mathx.Uniform(w.rng, w.tuning.Agent.IntelligenceMin, w.tuning.Agent.IntelligenceMax)
		a := modelpkg.NewAgent(w.ids.Next(), pos, w.tuning, &w.catalogs.Recipes, soc, intel)
		w.agents = append(w.agents, a)
		w.log.WithFields(logrus.Fields{
			"agent_id":     a.ID,
			"pos":          pos,
			"sociability":  soc,
			"intelligence": intel,
		}).Debug("agent spawned")
	}
	modelpkg.SortByID(w.agents)
	return nil
}

// AddAgent places an agent built by the caller, assigning the next id when
// a.ID is zero. It must be called from the world loop goroutine or before Run.
func (w *World) AddAgent(a *modelpkg.Agent) *modelpkg.Agent {
	if a.ID == 0 {
		a.ID = w.ids.Next()
	} else {
		w.ids.Observe(a.ID)
	}
	w.agents = append(w.agents, a)
	modelpkg.SortByID(w.agents)
	return a
}

func (w *World) SetTickLogger(l TickLogger) { w.tickLogger = l }

func (w *World) SetSnapshotSink(ch chan<- snapshot.WorldSnapshotV1) { w.snapshotSink = ch }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) RunID() string { return w.cfg.RunID }

func (w *World) Seed() int64 { return w.cfg.Seed }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) TickRateHz() int { return w.tuning.TickRateHz }

func (w *World) Tuning() tuning.Tuning { return *w.tuning }

func (w *World) Catalogs() *catalogs.Catalogs { return w.catalogs }

// Grid exposes the resource model. Loop goroutine or tests only.
func (w *World) Grid() *store.Grid { return w.grid }

// Agents returns the living agents in id order. Loop goroutine or tests only.
func (w *World) Agents() []*modelpkg.Agent {
	out := make([]*modelpkg.Agent, len(w.agents))
	copy(out, w.agents)
	return out
}

func (w *World) Agent(id uint64) *modelpkg.Agent {
	for _, a := range w.agents {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// Rng is the world's seeded random source. Loop goroutine or tests only.
func (w *World) Rng() *rand.Rand { return w.rng }
