package runtime

import (
	"testing"

	"genesis.ai/internal/sim/world/featurectx/agentenv/envtest"
	"genesis.ai/internal/sim/world/logic/point"
)

func TestPlanPathExcludesStartAndAvoidsAgents(t *testing.T) {
	f := envtest.New(t,
		"1....",
		".2...",
		".....",
	)
	env := f.Env()
	a := f.Agent(1)
	path, ok := PlanPath(env, a, point.Pt(2, 2))
	if !ok || len(path) == 0 {
		t.Fatalf("expected a path, got %v ok=%v", path, ok)
	}
	for _, p := range path {
		if p == a.Pos || p == f.Agent(2).Pos {
			t.Fatalf("path must skip start and occupied cells: %v", path)
		}
	}
	if path[len(path)-1] != point.Pt(2, 2) {
		t.Fatalf("path should end at target: %v", path)
	}

	if same, ok := PlanPath(env, a, a.Pos); !ok || same == nil || len(same) != 0 {
		t.Fatalf("expected empty non-nil path for start==target")
	}
}

func TestPlanPathUnreachable(t *testing.T) {
	f := envtest.New(t,
		"1.#..",
		"..#..",
		"..#..",
	)
	if _, ok := PlanPath(f.Env(), f.Agent(1), point.Pt(4, 1)); ok {
		t.Fatalf("expected no route through the wall")
	}
}

func TestStepConsumesOneWaypointAndPaysEnergy(t *testing.T) {
	f := envtest.New(t, "1...")
	env := f.Env()
	a := f.Agent(1)
	a.Path = []point.Point{point.Pt(1, 0), point.Pt(2, 0)}

	if got := Step(env, a, point.Pt(2, 0)); got != Moving {
		t.Fatalf("expected Moving, got %v", got)
	}
	if a.Pos != point.Pt(1, 0) || len(a.Path) != 1 {
		t.Fatalf("unexpected state pos=%v path=%v", a.Pos, a.Path)
	}
	if want := 100 - f.Tuning.Actions.MoveEnergyCost; a.Energy != want {
		t.Fatalf("expected energy %v, got %v", want, a.Energy)
	}
	if got := Step(env, a, point.Pt(2, 0)); got != Arrived {
		t.Fatalf("expected Arrived on last waypoint, got %v", got)
	}
}

func TestStepReplansAroundNewObstacle(t *testing.T) {
	f := envtest.New(t,
		"1...",
		"....",
	)
	env := f.Env()
	a := f.Agent(1)
	a.Path = []point.Point{point.Pt(1, 0), point.Pt(2, 0), point.Pt(3, 0)}
	blocker := f.AddAgent(2, point.Pt(1, 0))

	if got := Step(env, a, point.Pt(3, 0)); got != Moving {
		t.Fatalf("expected yield after replan, got %v", got)
	}
	if a.Pos != point.Pt(0, 0) {
		t.Fatalf("agent must not move on a replan tick")
	}
	for _, p := range a.Path {
		if p == blocker.Pos {
			t.Fatalf("replanned path steps on the blocker: %v", a.Path)
		}
	}
}

func TestStepBlockedWithoutAlternative(t *testing.T) {
	f := envtest.New(t,
		"1..",
		"###",
	)
	env := f.Env()
	a := f.Agent(1)
	a.Path = []point.Point{point.Pt(1, 0), point.Pt(2, 0)}
	f.AddAgent(2, point.Pt(1, 0))

	if got := Step(env, a, point.Pt(2, 0)); got != Blocked {
		t.Fatalf("expected Blocked, got %v", got)
	}
}

func TestPlanPathRefusesOccupiedTarget(t *testing.T) {
	f := envtest.New(t, "1.2.")
	if path, ok := PlanPath(f.Env(), f.Agent(1), point.Pt(2, 0)); ok {
		t.Fatalf("another agent holds the target, got %v", path)
	}
}
