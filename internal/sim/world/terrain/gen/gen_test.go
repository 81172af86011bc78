package gen

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tuning"
	"genesis.ai/internal/sim/world/logic/point"
	"genesis.ai/internal/sim/world/terrain/store"
)

func loadResources(t *testing.T) catalogs.ResourceCatalog {
	t.Helper()
	c, err := catalogs.Load(filepath.Join("..", "..", "..", "..", "..", "configs"))
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return c.Resources
}

func TestGenerateDefaultWorld(t *testing.T) {
	tun := tuning.Defaults()
	g := store.New(tun.Grid.Width, tun.Grid.Height, loadResources(t), tun.DayLengthSeconds)
	rep := Generate(g, tun.WorldGen, rand.New(rand.NewSource(1337)), nil)

	if rep.WaterCells == 0 {
		t.Fatalf("expected water patches")
	}
	food := 0
	for _, n := range g.Nodes() {
		if g.Terrain(n.Pos) != store.TerrainGround {
			t.Fatalf("node %v placed on terrain %d", n.Pos, g.Terrain(n.Pos))
		}
		if n.Type == catalogs.ResourceFood {
			food++
		}
	}
	if got := food; got != rep.Placed[catalogs.ResourceFood] {
		t.Fatalf("report/grid mismatch: %d vs %d", got, rep.Placed[catalogs.ResourceFood])
	}
	if rep.Placed[catalogs.ResourceWorkbench] != 1 {
		t.Fatalf("expected one workbench, got %d", rep.Placed[catalogs.ResourceWorkbench])
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	tun := tuning.Defaults()
	res := loadResources(t)
	a := store.New(20, 20, res, 600)
	b := store.New(20, 20, res, 600)
	Generate(a, tun.WorldGen, rand.New(rand.NewSource(5)), nil)
	Generate(b, tun.WorldGen, rand.New(rand.NewSource(5)), nil)
	na, nb := a.Nodes(), b.Nodes()
	if len(na) != len(nb) {
		t.Fatalf("node count differs: %d vs %d", len(na), len(nb))
	}
	for i := range na {
		if na[i] != nb[i] {
			t.Fatalf("node %d differs: %+v vs %+v", i, na[i], nb[i])
		}
	}
}

func TestGenerateShortfallIsWarned(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	cfg := tuning.WorldGen{
		Counts:          map[string]int{"Wood": 10},
		AttemptsPerUnit: 100,
		WaterPatchMin:   1,
		WaterPatchMax:   1,
	}
	g := store.New(2, 2, loadResources(t), 600)
	rep := Generate(g, cfg, rand.New(rand.NewSource(1)), log)

	if len(rep.Shortfalls) != 1 || rep.Shortfalls[0].Placed != 4 {
		t.Fatalf("expected a wood shortfall with 4 placed, got %+v", rep.Shortfalls)
	}
	if e := hook.LastEntry(); e == nil || e.Level != logrus.WarnLevel || e.Data["resource"] != catalogs.ResourceWood {
		t.Fatalf("expected a shortfall warning, got %+v", e)
	}
}

func TestSpawnCellAvoidsTakenAndBlocked(t *testing.T) {
	g := store.New(2, 1, loadResources(t), 600)
	_ = g.AddNode(catalogs.ResourceStone, point.Pt(0, 0), -1)
	p, ok := SpawnCell(g, rand.New(rand.NewSource(2)), nil, 10)
	if !ok || p != point.Pt(1, 0) {
		t.Fatalf("expected the only free cell, got %v ok=%v", p, ok)
	}
	if _, ok := SpawnCell(g, rand.New(rand.NewSource(2)), map[point.Point]bool{{X: 1, Y: 0}: true}, 10); ok {
		t.Fatalf("expected no spawn cell")
	}
}
