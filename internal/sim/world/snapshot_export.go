package world

import (
	"fmt"
	"math/rand"

	"genesis.ai/internal/persistence/snapshot"
	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/world/logic/ids"
	"genesis.ai/internal/sim/world/logic/point"
	"genesis.ai/internal/sim/world/terrain/store"
)

// ExportSnapshot captures the persistent world state after the last
// completed tick. Loop goroutine only.
func (w *World) ExportSnapshot() snapshot.WorldSnapshotV1 {
	st := w.grid.Export()
	tick := w.tick.Load()
	nodes := make([]snapshot.NodeV1, 0, len(st.Nodes))
	for _, n := range st.Nodes {
		nodes = append(nodes, snapshot.NodeV1{
			Type:        string(n.Type),
			X:           n.Pos.X,
			Y:           n.Pos.Y,
			Quantity:    n.Quantity,
			MaxQuantity: n.MaxQuantity,
			RegenRate:   n.RegenRate,
		})
	}
	return snapshot.WorldSnapshotV1{
		Header: snapshot.Header{
			Version:        snapshot.Version,
			WorldID:        w.cfg.ID,
			RunID:          w.cfg.RunID,
			Tick:           tick,
			CatalogsDigest: w.catalogs.Digest(),
		},
		Width:   st.Width,
		Height:  st.Height,
		Seed:    w.cfg.Seed,
		Terrain: st.Terrain,
		Nodes:   nodes,
		Clock: snapshot.ClockV1{
			Elapsed:   st.Clock.Elapsed,
			DayLength: st.Clock.DayLength,
			Day:       st.Clock.Day(),
		},
		NextAgentID: w.ids.Peek(),
		Tick:        tick,
	}
}

func (w *World) importSnapshot(snap snapshot.WorldSnapshotV1) error {
	st := store.State{
		Width:   snap.Width,
		Height:  snap.Height,
		Terrain: snap.Terrain,
		Clock:   store.Clock{Elapsed: snap.Clock.Elapsed, DayLength: snap.Clock.DayLength},
	}
	if st.Clock.DayLength <= 0 {
		st.Clock.DayLength = w.tuning.DayLengthSeconds
	}
	for _, n := range snap.Nodes {
		t := catalogs.ResourceType(n.Type)
		def, ok := w.catalogs.Resource(t)
		if !ok {
			return fmt.Errorf("snapshot: node at (%d,%d): %w: %s", n.X, n.Y, store.ErrUnknownResource, n.Type)
		}
		st.Nodes = append(st.Nodes, store.Node{
			Type:        t,
			Pos:         point.Pt(n.X, n.Y),
			Quantity:    n.Quantity,
			MaxQuantity: n.MaxQuantity,
			RegenRate:   n.RegenRate,
			BlocksWalk:  def.BlocksWalk,
		})
	}
	g, err := store.FromState(st, w.catalogs.Resources)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	w.grid = g
	w.ids = ids.NewSequence(snap.NextAgentID)
	w.tick.Store(snap.Tick)
	// A resumed run draws from seed+tick.
	w.rng = rand.New(rand.NewSource(snap.Seed + int64(snap.Tick)))
	return nil
}
