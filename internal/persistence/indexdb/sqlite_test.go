package indexdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"genesis.ai/internal/persistence/snapshot"
	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tuning"
	"genesis.ai/internal/sim/world"
)

func openTemp(t *testing.T) *SQLiteIndex {
	t.Helper()
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func flush(t *testing.T, idx *SQLiteIndex) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := idx.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqTick, tick: world.TickLogEntry{Tick: 1}}

	_ = s.WriteTick(world.TickLogEntry{Tick: 2})
	s.RecordSnapshot("/tmp/2.snap.zst", snapshot.WorldSnapshotV1{})

	st := s.Stats()
	if st.DropTickTotal != 1 || st.DropSnapshotTotal != 1 {
		t.Fatalf("drop stats mismatch: %+v", st)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_TicksDecisionsAndDeaths(t *testing.T) {
	idx := openTemp(t)

	_ = idx.WriteTick(world.TickLogEntry{
		Tick: 1, RunID: "r1", SimTime: 1, Population: 2,
		Decisions: []world.RecordedDecision{
			{AgentID: 1, Action: "eat", Utility: 1, Trigger: "decide"},
			{AgentID: 2, Action: "gather_wood", Utility: 0.4, Trigger: "decide"},
		},
		Outcomes: []world.RecordedOutcome{{AgentID: 1, Action: "eat", Status: "completed"}},
	})
	_ = idx.WriteTick(world.TickLogEntry{
		Tick: 2, RunID: "r1", SimTime: 2, Population: 1,
		Decisions: []world.RecordedDecision{{AgentID: 1, Action: "eat", Utility: 0.9, Trigger: "danger"}},
		Deaths:    []world.RecordedDeath{{AgentID: 2, Cause: "starvation", Pos: [2]int{3, 4}}},
	})
	// A rewritten tick replaces its rows.
	_ = idx.WriteTick(world.TickLogEntry{
		Tick: 2, RunID: "r1", SimTime: 2, Population: 1,
		Decisions: []world.RecordedDecision{{AgentID: 1, Action: "eat", Utility: 0.9, Trigger: "danger"}},
		Deaths:    []world.RecordedDeath{{AgentID: 2, Cause: "starvation", Pos: [2]int{3, 4}}},
	})
	flush(t, idx)

	counts, err := idx.DecisionCounts(1)
	if err != nil {
		t.Fatalf("DecisionCounts: %v", err)
	}
	if counts["eat"] != 2 || len(counts) != 1 {
		t.Fatalf("unexpected counts %+v", counts)
	}
	if c, _ := idx.DecisionCounts(99); len(c) != 0 {
		t.Fatalf("unknown agent has no decisions, got %+v", c)
	}

	deaths, err := idx.Deaths()
	if err != nil {
		t.Fatalf("Deaths: %v", err)
	}
	if len(deaths) != 1 {
		t.Fatalf("expected one death, got %+v", deaths)
	}
	if d := deaths[0]; d.Tick != 2 || d.AgentID != 2 || d.Cause != "starvation" || d.X != 3 || d.Y != 4 {
		t.Fatalf("unexpected death %+v", d)
	}

	var ticks, pop int
	if err := idx.db.QueryRow(`SELECT COUNT(*), MIN(population) FROM ticks`).Scan(&ticks, &pop); err != nil {
		t.Fatalf("query ticks: %v", err)
	}
	if ticks != 2 || pop != 1 {
		t.Fatalf("ticks=%d min population=%d", ticks, pop)
	}
}

func TestSQLiteIndex_RecordSnapshot(t *testing.T) {
	idx := openTemp(t)
	snap := snapshot.WorldSnapshotV1{
		Header:      snapshot.Header{Version: snapshot.Version, WorldID: "w1", Tick: 900},
		Width:       10,
		Height:      8,
		Seed:        42,
		Nodes:       []snapshot.NodeV1{{Type: "Food", X: 1, Y: 1, Quantity: 3, MaxQuantity: 6}},
		NextAgentID: 11,
		Tick:        900,
	}
	idx.RecordSnapshot("/data/worlds/w1/snapshots/900.snap.zst", snap)
	flush(t, idx)

	var (
		path        string
		seed        int64
		w, h, nodes int
		nextAgentID int64
	)
	err := idx.db.QueryRow(`SELECT path, seed, width, height, nodes, next_agent_id FROM snapshots WHERE tick=900`).
		Scan(&path, &seed, &w, &h, &nodes, &nextAgentID)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if path != "/data/worlds/w1/snapshots/900.snap.zst" || seed != 42 || w != 10 || h != 8 || nodes != 1 || nextAgentID != 11 {
		t.Fatalf("unexpected row path=%s seed=%d size=%dx%d nodes=%d next=%d", path, seed, w, h, nodes, nextAgentID)
	}
}

func TestSQLiteIndex_RecordRun(t *testing.T) {
	idx := openTemp(t)
	configDir := filepath.Join("..", "..", "..", "configs")
	cats, err := catalogs.Load(configDir)
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	if err := idx.RecordRun("w1", "run-1", 7, configDir, cats, tuning.Defaults()); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if v, _ := idx.Meta("run_id"); v != "run-1" {
		t.Fatalf("run_id=%q", v)
	}
	if v, _ := idx.Meta("catalogs_digest"); v != cats.Digest() {
		t.Fatalf("catalogs_digest=%q", v)
	}
	var n int
	if err := idx.db.QueryRow(`SELECT COUNT(*) FROM catalogs`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected resources, recipes, tools and tuning rows, got %d", n)
	}
}

func TestSQLiteIndex_ClosedIsNoop(t *testing.T) {
	idx := openTemp(t)
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := idx.WriteTick(world.TickLogEntry{Tick: 1}); err != nil {
		t.Fatalf("write after close: %v", err)
	}
	idx.RecordSnapshot("x", snapshot.WorldSnapshotV1{})
	if err := idx.Flush(context.Background()); err != nil {
		t.Fatalf("flush after close: %v", err)
	}
}
