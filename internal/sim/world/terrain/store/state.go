package store

import (
	"fmt"

	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/world/logic/point"
)

// State is the lossless exported form of a grid.
type State struct {
	Width   int
	Height  int
	Terrain []uint8 // row-major
	Nodes   []Node
	Clock   Clock
}

func (g *Grid) Export() State {
	terr := make([]uint8, len(g.terrain))
	for i, t := range g.terrain {
		terr[i] = uint8(t)
	}
	return State{Width: g.Width, Height: g.Height, Terrain: terr, Nodes: g.Nodes(), Clock: g.Clock}
}

func FromState(s State, resources catalogs.ResourceCatalog) (*Grid, error) {
	if s.Width <= 0 || s.Height <= 0 || len(s.Terrain) != s.Width*s.Height {
		return nil, fmt.Errorf("grid state: terrain has %d cells for %dx%d", len(s.Terrain), s.Width, s.Height)
	}
	g := New(s.Width, s.Height, resources, s.Clock.DayLength)
	g.Clock = s.Clock
	for i, t := range s.Terrain {
		if Terrain(t) > TerrainObstacle {
			return nil, fmt.Errorf("grid state: bad terrain code %d", t)
		}
		g.SetTerrain(point.Pt(i%s.Width, i/s.Width), Terrain(t))
	}
	for _, n := range s.Nodes {
		if err := g.PutNode(n); err != nil {
			return nil, fmt.Errorf("grid state: node %s at %v: %w", n.Type, n.Pos, err)
		}
	}
	return g, nil
}
