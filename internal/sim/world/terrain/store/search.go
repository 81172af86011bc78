package store

import (
	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/world/logic/mathx"
	"genesis.ai/internal/sim/world/logic/movement"
	"genesis.ai/internal/sim/world/logic/point"
)

func neighbourOrder(rng mathx.Rand) [8]point.Point {
	if rng == nil {
		return point.Neighbors8
	}
	var out [8]point.Point
	for i, j := range rng.Perm(8) {
		out[i] = point.Neighbors8[j]
	}
	return out
}

// NearestResource runs a breadth-first search through walkable cells from
// `from`, closer than maxDist steps, for the closest cell offering resource t.
// Walkable resources are stood on; blocking ones and water are used from a
// walkable neighbour. A nil rng expands neighbours in fixed order.
func (g *Grid) NearestResource(from point.Point, t catalogs.ResourceType, maxDist int, rng mathx.Rand) (Target, bool) {
	if !g.Walkable(from) {
		return Target{}, false
	}
	type item struct {
		p    point.Point
		dist int
	}
	seen := map[point.Point]bool{from: true}
	queue := []item{{p: from}}
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		if cur.dist >= maxDist {
			continue
		}
		if g.HasResource(t, cur.p) {
			return Target{Goal: cur.p, Stand: cur.p, Dist: cur.dist}, true
		}
		dirs := neighbourOrder(rng)
		for _, d := range dirs {
			np := cur.p.Add(d)
			if !g.InBounds(np) || g.Walkable(np) {
				continue
			}
			if g.HasResource(t, np) {
				return Target{Goal: np, Stand: cur.p, Dist: cur.dist}, true
			}
		}
		for _, d := range dirs {
			np := cur.p.Add(d)
			if seen[np] || !g.Walkable(np) {
				continue
			}
			seen[np] = true
			queue = append(queue, item{p: np, dist: cur.dist + 1})
		}
	}
	return Target{}, false
}

// StandFor resolves the cell to occupy when using resource t at goal, picking
// the walkable neighbour closest to `from` when goal itself blocks or is water.
func (g *Grid) StandFor(t catalogs.ResourceType, goal, from point.Point, mask movement.Mask) (point.Point, bool) {
	if mask == nil {
		mask = g
	}
	if t != catalogs.ResourceWater && g.Walkable(goal) {
		if goal == from || mask.Walkable(goal) {
			return goal, true
		}
		return point.Point{}, false
	}
	best := point.Point{}
	bestD := -1
	for _, d := range point.Neighbors8 {
		n := goal.Add(d)
		if n != from && !mask.Walkable(n) {
			continue
		}
		if !g.Walkable(n) {
			continue
		}
		if dd := n.DistSq(from); bestD < 0 || dd < bestD {
			best, bestD = n, dd
		}
	}
	return best, bestD >= 0
}

// AdjacentWalkable returns a walkable neighbour of p under mask, in random
// order when rng is set.
func (g *Grid) AdjacentWalkable(p point.Point, mask movement.Mask, rng mathx.Rand) (point.Point, bool) {
	if mask == nil {
		mask = g
	}
	for _, d := range neighbourOrder(rng) {
		n := p.Add(d)
		if mask.InBounds(n) && mask.Walkable(n) {
			return n, true
		}
	}
	return point.Point{}, false
}
