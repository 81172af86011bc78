package store

import (
	"sort"

	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/world/logic/movement"
	"genesis.ai/internal/sim/world/logic/point"
)

// Terrain reports the terrain at p; cells outside the grid read as obstacles.
func (g *Grid) Terrain(p point.Point) Terrain {
	if !g.InBounds(p) {
		return TerrainObstacle
	}
	return g.terrain[g.idx(p)]
}

// SetTerrain is used by world generation and snapshot import only.
func (g *Grid) SetTerrain(p point.Point, t Terrain) {
	if !g.InBounds(p) {
		return
	}
	g.terrain[g.idx(p)] = t
	g.refreshCell(p)
}

func (g *Grid) Walkable(p point.Point) bool {
	return g.InBounds(p) && g.walkable[g.idx(p)]
}

// MaskWith overlays blocked cells (other agents) on the persistent mask.
func (g *Grid) MaskWith(blocked []point.Point) movement.Overlay {
	return movement.NewOverlay(g, blocked)
}

func (g *Grid) refreshCell(p point.Point) {
	w := g.terrain[g.idx(p)] == TerrainGround
	if n, ok := g.nodes[p]; ok && n.BlocksWalk {
		w = false
	}
	g.walkable[g.idx(p)] = w
}

func (g *Grid) Node(p point.Point) (Node, bool) {
	n, ok := g.nodes[p]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns every node in row-major order.
func (g *Grid) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pos.Less(out[j].Pos) })
	return out
}

// AddNode places a node with catalog defaults; quantity < 0 means full.
func (g *Grid) AddNode(t catalogs.ResourceType, p point.Point, quantity int) error {
	def, ok := g.defs[t]
	if !ok || t == catalogs.ResourceWater {
		return ErrUnknownResource
	}
	if quantity < 0 || quantity > def.MaxQuantity {
		quantity = def.MaxQuantity
	}
	return g.PutNode(Node{
		Type:        t,
		Pos:         p,
		Quantity:    quantity,
		MaxQuantity: def.MaxQuantity,
		RegenRate:   def.Regen,
		BlocksWalk:  def.BlocksWalk,
	})
}

// PutNode inserts a fully specified node (snapshot import keeps stored values).
func (g *Grid) PutNode(n Node) error {
	if !g.InBounds(n.Pos) {
		return ErrOutOfBounds
	}
	if g.Terrain(n.Pos) != TerrainGround {
		return ErrNotGround
	}
	if _, taken := g.nodes[n.Pos]; taken {
		return ErrOccupied
	}
	if n.Quantity < 0 {
		n.Quantity = 0
	}
	if n.Quantity > n.MaxQuantity {
		n.Quantity = n.MaxQuantity
	}
	g.nodes[n.Pos] = &n
	g.refreshCell(n.Pos)
	return nil
}

func (g *Grid) RemoveNode(p point.Point) bool {
	if _, ok := g.nodes[p]; !ok {
		return false
	}
	delete(g.nodes, p)
	g.refreshCell(p)
	return true
}

// Consume takes up to n units at p and returns how many were taken. Water
// terrain is inexhaustible.
func (g *Grid) Consume(p point.Point, n int) int {
	if n <= 0 {
		return 0
	}
	if g.Terrain(p) == TerrainWater {
		return n
	}
	node, ok := g.nodes[p]
	if !ok || node.Quantity <= 0 {
		return 0
	}
	if n > node.Quantity {
		n = node.Quantity
	}
	node.Quantity -= n
	return n
}

// HasResource reports whether p currently offers resource t.
func (g *Grid) HasResource(t catalogs.ResourceType, p point.Point) bool {
	if t == catalogs.ResourceWater {
		return g.Terrain(p) == TerrainWater
	}
	n, ok := g.nodes[p]
	return ok && n.Type == t && n.Quantity > 0
}

// ResourceWithin finds the node of type t within Chebyshev radius r of p
// closest to p, ties broken row-major.
func (g *Grid) ResourceWithin(t catalogs.ResourceType, p point.Point, r int) (point.Point, bool) {
	best, bestD := point.Point{}, -1
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			q := point.Pt(p.X+dx, p.Y+dy)
			if !g.HasResource(t, q) {
				continue
			}
			if d := q.DistSq(p); bestD < 0 || d < bestD {
				best, bestD = q, d
			}
		}
	}
	return best, bestD >= 0
}
