package worldtest

import (
	"bytes"
	"encoding/json"
	"testing"

	"genesis.ai/internal/logging"
	"genesis.ai/internal/persistence/snapshot"
	"genesis.ai/internal/sim/tuning"
	world "genesis.ai/internal/sim/world"
	"genesis.ai/internal/sim/world/featurectx/agentenv/envtest"
)

func newGenerated(t *testing.T, seed int64) *world.World {
	t.Helper()
	w, err := world.New(world.WorldConfig{ID: "test", Seed: seed}, envtest.Catalogs(t), tuning.Defaults(), logging.Discard())
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return w
}

func stateJSON(t *testing.T, w *world.World) []byte {
	t.Helper()
	b, err := json.Marshal(w.PublicState(true))
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}
	return b
}

func TestDeterminism_SameSeedSameState(t *testing.T) {
	w1 := newGenerated(t, 42)
	w2 := newGenerated(t, 42)
	for i := 0; i < 120; i++ {
		e1 := w1.StepOnce()
		e2 := w2.StepOnce()
		if len(e1.Decisions) != len(e2.Decisions) || len(e1.Outcomes) != len(e2.Outcomes) {
			t.Fatalf("tick %d diverged: %+v vs %+v", i, e1, e2)
		}
	}
	if !bytes.Equal(stateJSON(t, w1), stateJSON(t, w2)) {
		t.Fatalf("same seed must produce the same world")
	}

	w3 := newGenerated(t, 43)
	if bytes.Equal(w1.PublicState(false).Terrain, w3.PublicState(false).Terrain) {
		t.Fatalf("different seeds should generate different terrain")
	}
}

func TestSnapshotRoundTripThroughFile(t *testing.T) {
	w := newGenerated(t, 7)
	for i := 0; i < 30; i++ {
		w.StepOnce()
	}
	want := w.PublicState(false)

	path := snapshot.Path(t.TempDir(), w.CurrentTick())
	if err := snapshot.WriteSnapshot(path, w.ExportSnapshot()); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if snap.Header.RunID != w.RunID() || snap.Header.CatalogsDigest == "" {
		t.Fatalf("unexpected header %+v", snap.Header)
	}

	back, err := world.FromSnapshot(world.WorldConfig{ID: "test"}, envtest.Catalogs(t), tuning.Defaults(), snap, logging.Discard())
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	got := back.PublicState(false)
	if got.Tick != want.Tick || got.Clock != want.Clock {
		t.Fatalf("tick/clock mismatch: %d %+v vs %d %+v", got.Tick, got.Clock, want.Tick, want.Clock)
	}
	if !bytes.Equal(got.Terrain, want.Terrain) {
		t.Fatalf("terrain codes must round trip")
	}
	gn, _ := json.Marshal(got.Nodes)
	wn, _ := json.Marshal(want.Nodes)
	if !bytes.Equal(gn, wn) {
		t.Fatalf("node tuples must round trip:\n%s\n%s", gn, wn)
	}

	// Agents are not persisted: the resumed world spawns a fresh population
	// with ids continuing the old sequence.
	agents := back.Agents()
	if len(agents) != tuning.Defaults().InitialAgents {
		t.Fatalf("expected a fresh population, got %d agents", len(agents))
	}
	if agents[0].ID != snap.NextAgentID {
		t.Fatalf("ids must continue at %d, got %d", snap.NextAgentID, agents[0].ID)
	}

	if _, err := world.FromSnapshot(world.WorldConfig{ID: "other"}, envtest.Catalogs(t), tuning.Defaults(), snap, logging.Discard()); err == nil {
		t.Fatalf("a snapshot of another world must be rejected")
	}
}
