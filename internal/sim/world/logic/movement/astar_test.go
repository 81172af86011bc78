package movement

import (
	"errors"
	"strings"
	"testing"

	"genesis.ai/internal/sim/world/logic/point"
)

// asciiMask: '#' blocked, anything else walkable.
type asciiMask struct {
	rows []string
}

func mask(s string) asciiMask {
	return asciiMask{rows: strings.Split(strings.TrimSpace(s), "\n")}
}

func (m asciiMask) InBounds(p point.Point) bool {
	return p.Y >= 0 && p.Y < len(m.rows) && p.X >= 0 && p.X < len(m.rows[p.Y])
}

func (m asciiMask) Walkable(p point.Point) bool {
	return m.InBounds(p) && m.rows[p.Y][p.X] != '#'
}

func assertContiguous(t *testing.T, m Mask, start point.Point, path []point.Point) {
	t.Helper()
	prev := start
	for i, p := range path {
		if prev.Chebyshev(p) != 1 {
			t.Fatalf("step %d not adjacent: %v -> %v", i, prev, p)
		}
		if !m.Walkable(p) {
			t.Fatalf("step %d onto unwalkable cell %v", i, p)
		}
		if p == start {
			t.Fatalf("path must not contain the start cell")
		}
		prev = p
	}
}

func TestFindPathAroundWall(t *testing.T) {
	m := mask(`
.....
.###.
.#...
.#.#.
.....`)
	start, goal := point.Pt(0, 0), point.Pt(2, 3)
	path, err := FindPath(m, start, goal, 3500)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if len(path) == 0 || path[len(path)-1] != goal {
		t.Fatalf("expected path ending at goal, got %v", path)
	}
	assertContiguous(t, m, start, path)
	if len(path) != 5 {
		t.Fatalf("expected shortest 5-step route, got %d: %v", len(path), path)
	}
}

func TestFindPathDiagonalCornerCutting(t *testing.T) {
	m := mask(`
.#
#.`)
	path, err := FindPath(m, point.Pt(0, 0), point.Pt(1, 1), 100)
	if err != nil || len(path) != 1 || path[0] != point.Pt(1, 1) {
		t.Fatalf("expected single diagonal step, got %v err=%v", path, err)
	}
}

func TestFindPathAlreadyAtGoal(t *testing.T) {
	m := mask("...")
	path, err := FindPath(m, point.Pt(1, 0), point.Pt(1, 0), 10)
	if err != nil || path == nil || len(path) != 0 {
		t.Fatalf("expected empty non-nil path, got %#v err=%v", path, err)
	}
}

func TestFindPathErrors(t *testing.T) {
	m := mask(`
..#..
.###.
..#..`)
	if _, err := FindPath(m, point.Pt(-1, 0), point.Pt(0, 0), 10); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if _, err := FindPath(m, point.Pt(2, 0), point.Pt(0, 0), 10); !errors.Is(err, ErrStartBlocked) {
		t.Fatalf("expected ErrStartBlocked, got %v", err)
	}
	// (1,0) has no walkable neighbour.
	enclosed := mask(`
###
###
###
...`)
	if _, err := FindPath(enclosed, point.Pt(0, 3), point.Pt(1, 0), 10); !errors.Is(err, ErrGoalBlocked) {
		t.Fatalf("expected ErrGoalBlocked, got %v", err)
	}
}

func TestFindPathBlockedGoalUsesNeighbour(t *testing.T) {
	m := mask(`
.....
..#..
.....`)
	path, err := FindPath(m, point.Pt(0, 1), point.Pt(2, 1), 100)
	if err != nil || len(path) != 1 || path[0] != point.Pt(1, 1) {
		t.Fatalf("expected to stop next to the blocked goal, got %v err=%v", path, err)
	}
}

func TestFindPathUnreachableAndBound(t *testing.T) {
	m := mask(`
..#..
..#..
..#..`)
	path, err := FindPath(m, point.Pt(0, 0), point.Pt(4, 0), 3500)
	if err != nil || path != nil {
		t.Fatalf("expected nil path without error, got %v err=%v", path, err)
	}

	open := mask(strings.Repeat(strings.Repeat(".", 40)+"\n", 40))
	path, err = FindPath(open, point.Pt(0, 0), point.Pt(39, 39), 5)
	if err != nil || path != nil {
		t.Fatalf("expected iteration bound to yield no path, got %d steps err=%v", len(path), err)
	}
}

func TestFindPathAvoidsOverlay(t *testing.T) {
	base := mask(`
.....
.....
.....`)
	agents := []point.Point{point.Pt(1, 1), point.Pt(2, 1), point.Pt(3, 1), point.Pt(2, 0)}
	ov := NewOverlay(base, agents)
	start, goal := point.Pt(0, 1), point.Pt(4, 1)
	path, err := FindPath(ov, start, goal, 3500)
	if err != nil || len(path) == 0 {
		t.Fatalf("expected a detour, got %v err=%v", path, err)
	}
	for _, p := range path {
		for _, a := range agents {
			if p == a {
				t.Fatalf("path steps onto overlay cell %v", p)
			}
		}
	}
	assertContiguous(t, ov, start, path)
}
