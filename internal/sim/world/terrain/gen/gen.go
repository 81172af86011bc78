package gen

import (
	"github.com/sirupsen/logrus"

	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tuning"
	"genesis.ai/internal/sim/world/logic/mathx"
	"genesis.ai/internal/sim/world/logic/point"
	"genesis.ai/internal/sim/world/terrain/store"
)

// placementOrder fixes the rng consumption order across runs.
var placementOrder = []catalogs.ResourceType{
	catalogs.ResourceFood,
	catalogs.ResourceWood,
	catalogs.ResourceStone,
	catalogs.ResourceWorkbench,
}

type Shortfall struct {
	Type     catalogs.ResourceType
	Wanted   int
	Placed   int
	Attempts int
}

type Report struct {
	WaterCells int
	Placed     map[catalogs.ResourceType]int
	Shortfalls []Shortfall
}

// Generate paints water patches and scatters resource nodes on empty ground.
// Placement that runs out of attempts is reported, never fatal.
func Generate(g *store.Grid, cfg tuning.WorldGen, rng mathx.Rand, log logrus.FieldLogger) Report {
	rep := Report{Placed: map[catalogs.ResourceType]int{}}

	for i := 0; i < cfg.WaterPatches; i++ {
		w := randBetween(rng, cfg.WaterPatchMin, cfg.WaterPatchMax)
		h := randBetween(rng, cfg.WaterPatchMin, cfg.WaterPatchMax)
		if w > g.Width {
			w = g.Width
		}
		if h > g.Height {
			h = g.Height
		}
		x0 := rng.Intn(g.Width - w + 1)
		y0 := rng.Intn(g.Height - h + 1)
		for y := y0; y < y0+h; y++ {
			for x := x0; x < x0+w; x++ {
				p := point.Pt(x, y)
				if g.Terrain(p) != store.TerrainWater {
					rep.WaterCells++
				}
				g.SetTerrain(p, store.TerrainWater)
			}
		}
	}

	for _, t := range placementOrder {
		want := cfg.Counts[string(t)]
		if want <= 0 {
			continue
		}
		placed, attempts := 0, 0
		maxAttempts := want * cfg.AttemptsPerUnit
		for placed < want && attempts < maxAttempts {
			attempts++
			p := point.Pt(rng.Intn(g.Width), rng.Intn(g.Height))
			if g.AddNode(t, p, -1) == nil {
				placed++
			}
		}
		rep.Placed[t] = placed
		if placed < want {
			rep.Shortfalls = append(rep.Shortfalls, Shortfall{Type: t, Wanted: want, Placed: placed, Attempts: attempts})
			if log != nil {
				log.WithFields(logrus.Fields{
					"resource": t,
					"wanted":   want,
					"placed":   placed,
					"attempts": attempts,
				}).Warn("world generation shortfall")
			}
		}
	}
	return rep
}

// SpawnCell picks a random walkable ground cell not in taken.
func SpawnCell(g *store.Grid, rng mathx.Rand, taken map[point.Point]bool, attempts int) (point.Point, bool) {
	for i := 0; i < attempts; i++ {
		p := point.Pt(rng.Intn(g.Width), rng.Intn(g.Height))
		if g.Walkable(p) && g.Terrain(p) == store.TerrainGround && !taken[p] {
			return p, true
		}
	}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p := point.Pt(x, y)
			if g.Walkable(p) && !taken[p] {
				return p, true
			}
		}
	}
	return point.Point{}, false
}

func randBetween(rng mathx.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}
