package movement

import (
	"container/heap"
	"errors"
	"math"

	"genesis.ai/internal/sim/world/logic/point"
)

var (
	ErrOutOfBounds  = errors.New("path endpoint out of bounds")
	ErrStartBlocked = errors.New("path start is not walkable")
	ErrGoalBlocked  = errors.New("path goal is blocked with no walkable neighbour")
)

// Mask answers walkability queries for path planning.
type Mask interface {
	InBounds(p point.Point) bool
	Walkable(p point.Point) bool
}

// Overlay marks extra cells (typically other agents) as unwalkable on top of base.
type Overlay struct {
	Base    Mask
	Blocked map[point.Point]bool
}

func NewOverlay(base Mask, blocked []point.Point) Overlay {
	m := make(map[point.Point]bool, len(blocked))
	for _, p := range blocked {
		m[p] = true
	}
	return Overlay{Base: base, Blocked: m}
}

func (o Overlay) InBounds(p point.Point) bool { return o.Base.InBounds(p) }

func (o Overlay) Walkable(p point.Point) bool {
	return !o.Blocked[p] && o.Base.Walkable(p)
}

const diagCost = math.Sqrt2

// Octile is the admissible heuristic for 8-directional unit/sqrt2 moves.
func Octile(a, b point.Point) float64 {
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))
	return (dx + dy) + (diagCost-2)*math.Min(dx, dy)
}

// SubstituteGoal returns goal when walkable, else the walkable neighbour of
// goal closest to start (fixed order on ties).
func SubstituteGoal(m Mask, start, goal point.Point) (point.Point, bool) {
	if m.Walkable(goal) {
		return goal, true
	}
	best := point.Point{}
	bestH := math.Inf(1)
	found := false
	for _, d := range point.Neighbors8 {
		n := goal.Add(d)
		if !m.InBounds(n) || !m.Walkable(n) {
			continue
		}
		if h := Octile(start, n); h < bestH {
			best, bestH, found = n, h, true
		}
	}
	return best, found
}

type node struct {
	p     point.Point
	g, h  float64
	seq   int
	index int
}

type openSet []*node

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	fi, fj := o[i].g+o[i].h, o[j].g+o[j].h
	if fi != fj {
		return fi < fj
	}
	if o[i].h != o[j].h {
		return o[i].h < o[j].h
	}
	return o[i].seq < o[j].seq
}
func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}
func (o *openSet) Push(x any) {
	n := x.(*node)
	n.index = len(*o)
	*o = append(*o, n)
}
func (o *openSet) Pop() any {
	old := *o
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*o = old[:len(old)-1]
	n.index = -1
	return n
}

// FindPath runs A* from start to goal. The result excludes start; an empty
// non-nil slice means start is already the goal. A nil path with a nil error
// means no route exists within maxIter expansions.
func FindPath(m Mask, start, goal point.Point, maxIter int) ([]point.Point, error) {
	if !m.InBounds(start) || !m.InBounds(goal) {
		return nil, ErrOutOfBounds
	}
	if !m.Walkable(start) {
		return nil, ErrStartBlocked
	}
	target, ok := SubstituteGoal(m, start, goal)
	if !ok {
		return nil, ErrGoalBlocked
	}
	if start == target {
		return []point.Point{}, nil
	}

	open := &openSet{}
	nodes := map[point.Point]*node{}
	cameFrom := map[point.Point]point.Point{}
	closed := map[point.Point]bool{}
	seq := 0

	s := &node{p: start, h: Octile(start, target), seq: seq}
	nodes[start] = s
	heap.Push(open, s)

	for iter := 0; open.Len() > 0; iter++ {
		if maxIter > 0 && iter >= maxIter {
			return nil, nil
		}
		cur := heap.Pop(open).(*node)
		if cur.p == target {
			return reconstruct(cameFrom, start, target), nil
		}
		closed[cur.p] = true

		for i, d := range point.Neighbors8 {
			np := cur.p.Add(d)
			if closed[np] || !m.InBounds(np) || !m.Walkable(np) {
				continue
			}
			step := 1.0
			if i >= 4 {
				step = diagCost
			}
			g := cur.g + step
			if n, seen := nodes[np]; seen {
				if g >= n.g {
					continue
				}
				n.g = g
				cameFrom[np] = cur.p
				heap.Fix(open, n.index)
				continue
			}
			seq++
			n := &node{p: np, g: g, h: Octile(np, target), seq: seq}
			nodes[np] = n
			cameFrom[np] = cur.p
			heap.Push(open, n)
		}
	}
	return nil, nil
}

func reconstruct(cameFrom map[point.Point]point.Point, start, goal point.Point) []point.Point {
	var rev []point.Point
	for p := goal; p != start; p = cameFrom[p] {
		rev = append(rev, p)
	}
	out := make([]point.Point, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}
