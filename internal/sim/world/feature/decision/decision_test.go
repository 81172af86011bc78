package decision

import (
	"testing"

	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tasks"
	"genesis.ai/internal/sim/world/featurectx/agentenv/envtest"
	"genesis.ai/internal/sim/world/logic/point"
)

func find(cands []Candidate, label string) (Candidate, bool) {
	for _, c := range cands {
		if tasks.Label(c.Action) == label {
			return c, true
		}
	}
	return Candidate{}, false
}

func TestHungryAgentPrefersFoodOverWood(t *testing.T) {
	f := envtest.New(t,
		"1...F",
		".....",
		"W....",
	)
	f.Tuning.AI.UtilityThreshold = 0.2
	env := f.Env()
	a := f.Agent(1)
	a.Hunger = 100

	cands := Candidates(env, a)
	eat, _ := find(cands, "EAT")
	wood, ok := find(cands, "GATHER:Wood")
	if eat.Utility != 1 || !ok || wood.Utility < 0.39 || wood.Utility > 0.41 {
		t.Fatalf("unexpected scores: eat=%v wood=%v", eat.Utility, wood.Utility)
	}

	ch := Decide(env, a)
	act, ok := ch.Action.(*tasks.Eat)
	if !ok {
		t.Fatalf("expected EAT, got %s", tasks.Label(ch.Action))
	}
	if act.Goal != point.Pt(4, 0) || act.Stand != point.Pt(4, 0) {
		t.Fatalf("food is walkable and should be stood on: %+v", act.Spot)
	}
	if a.ActionUtility != 1 || len(a.Path) == 0 || a.Path[len(a.Path)-1] != act.Stand {
		t.Fatalf("commit should store utility and a path to the stand: %v %v", a.ActionUtility, a.Path)
	}
	if !a.Knowledge.KnowsSighting(catalogs.ResourceFood, act.Goal) {
		t.Fatalf("search finds should be remembered")
	}
}

func TestDepletedSightingIsForgotten(t *testing.T) {
	f := envtest.New(t, "1W..")
	env := f.Env()
	a := f.Agent(1)
	wood := point.Pt(1, 0)
	a.Knowledge.AddSighting(catalogs.ResourceWood, wood)
	f.Grid.Consume(wood, 100)

	if _, ok := Feasible(env, a, &tasks.Gather{Resource: catalogs.ResourceWood, Quantity: 2}); ok {
		t.Fatalf("gather on a depleted node must be infeasible")
	}
	if a.Knowledge.KnowsSighting(catalogs.ResourceWood, wood) {
		t.Fatalf("stale sighting should be removed")
	}
}

func TestFullInventoryPenalisesGather(t *testing.T) {
	f := envtest.New(t, "1.W")
	env := f.Env()
	a := f.Agent(1)

	before, _ := find(Candidates(env, a), "GATHER:Wood")
	a.AddItem("Stone", a.Limits.InventoryCapacity)
	after, ok := find(Candidates(env, a), "GATHER:Wood")
	if !ok {
		t.Fatalf("full inventory should penalise, not suppress, gathering")
	}
	if want := before.Utility * f.Tuning.AI.FullInventoryPenalty; after.Utility < want-1e-9 || after.Utility > want+1e-9 {
		t.Fatalf("expected %v, got %v", want, after.Utility)
	}
	if _, ok := Feasible(env, a, after.Action); ok {
		t.Fatalf("gathering with a full inventory is infeasible")
	}
}

func TestStockpileGoalNeedsMoodAndRecipes(t *testing.T) {
	f := envtest.New(t, "1")
	env := f.Env()
	a := f.Agent(1)
	def, _ := f.Cats.Resource(catalogs.ResourceWood)

	if got := GatherGoal(env, a, def, Needs{Met: 1}); got != 5 {
		t.Fatalf("content agent should stockpile 5 wood, got %d", got)
	}
	if got := GatherGoal(env, a, def, Needs{Met: 0}); got != 2 {
		t.Fatalf("needy agent only gathers for the axe, got %d", got)
	}
	a.Skills["BasicCrafting"] = 3
	if got := GatherGoal(env, a, def, Needs{Met: 0}); got != 5 {
		t.Fatalf("a workbench it can build and has never seen wants 5 wood, got %d", got)
	}
	a.Knowledge.AddSighting(catalogs.ResourceWorkbench, point.Pt(0, 0))
	if got := GatherGoal(env, a, def, Needs{Met: 0}); got != 2 {
		t.Fatalf("with a known workbench only the axe drives demand, got %d", got)
	}
}

func TestCraftBoostWhenToolMissing(t *testing.T) {
	f := envtest.New(t, "1..")
	env := f.Env()
	a := f.Agent(1)
	a.AddItem("Wood", 2)
	a.AddItem("Stone", 1)

	c, ok := find(Candidates(env, a), "CRAFT:CrudeAxe")
	if !ok || c.Utility != 0.75 {
		t.Fatalf("expected boosted CrudeAxe craft at 0.75, got %v ok=%v", c.Utility, ok)
	}
	ch := Decide(env, a)
	if tasks.Label(ch.Action) != "CRAFT:CrudeAxe" || len(a.Path) != 0 {
		t.Fatalf("expected local craft, got %s path=%v", tasks.Label(ch.Action), a.Path)
	}
}

func TestUnroutableCommitFallsBackToIdle(t *testing.T) {
	f := envtest.New(t,
		"1.#.~",
		"..#..",
	)
	env := f.Env()
	a := f.Agent(1)
	a.Thirst = 100
	a.Knowledge.AddSighting(catalogs.ResourceWater, point.Pt(4, 0))

	ch := Decide(env, a)
	if _, ok := ch.Action.(*tasks.Idle); !ok {
		t.Fatalf("expected Idle after failed routing, got %s", tasks.Label(ch.Action))
	}
	if len(f.Hook.AllEntries()) == 0 {
		t.Fatalf("expected the routing failure to be logged")
	}
}

func TestHelpPicksHungryNeighbour(t *testing.T) {
	f := envtest.New(t, "12.3")
	env := f.Env()
	helper := f.Agent(1)
	helper.AddItem("Food", 2)
	f.Agent(2).Hunger = 90
	f.Agent(3).Hunger = 95 // out of range

	c, ok := find(Candidates(env, helper), "HELP:Food")
	if !ok {
		t.Fatalf("expected a help candidate")
	}
	if c.Action.(*tasks.Help).TargetID != 2 {
		t.Fatalf("only agent 2 is within the help radius")
	}
	act, ok := Feasible(env, helper, c.Action)
	if !ok || act.At().Stand != helper.Pos {
		t.Fatalf("adjacent helper should help from its own cell: %+v %v", act, ok)
	}
}

func TestTeachNeedsAdvantage(t *testing.T) {
	f := envtest.New(t, "12")
	env := f.Env()
	teacher := f.Agent(1)
	teacher.Skills["GatherWood"] = 30
	f.Agent(2).Skills["GatherWood"] = 25

	if _, ok := find(Candidates(env, teacher), "TEACH:GatherWood"); ok {
		t.Fatalf("a 5 point lead is not enough to teach")
	}
	f.Agent(2).Skills["GatherWood"] = 10
	c, ok := find(Candidates(env, teacher), "TEACH:GatherWood")
	if !ok || c.Utility <= 0 {
		t.Fatalf("expected a teach candidate, got %v", c)
	}
}

func TestDecideIsDeterministicWithoutRandomness(t *testing.T) {
	rows := []string{
		"1....W",
		"..~...",
		"F.....",
	}
	var labels []string
	var spots []tasks.Spot
	for i := 0; i < 2; i++ {
		f := envtest.New(t, rows...)
		a := f.Agent(1)
		a.Thirst, a.Hunger = 60, 40
		ch := Decide(f.Env(), a)
		labels = append(labels, tasks.Label(ch.Action))
		spots = append(spots, ch.Action.At())
	}
	if labels[0] != labels[1] || spots[0] != spots[1] {
		t.Fatalf("decisions differ: %v %v", labels, spots)
	}
}

func TestWanderFallback(t *testing.T) {
	f := envtest.New(t,
		"1..",
		"...",
	)
	env := f.Env()
	a := f.Agent(1)

	ch := Decide(env, a)
	w, ok := ch.Action.(*tasks.Wander)
	if !ok {
		t.Fatalf("expected wander, got %s", tasks.Label(ch.Action))
	}
	if w.Stand == a.Pos || !f.Grid.Walkable(w.Stand) {
		t.Fatalf("wander target must be a different walkable cell: %v", w.Stand)
	}
}

func TestAverageAgentAtWorkbenchInvents(t *testing.T) {
	f := envtest.New(t, "1B..")
	env := f.Env()
	a := f.Agent(1)
	a.AddItem("Wood", 1)
	a.AddItem("Stone", 1)

	c, ok := find(Candidates(env, a), "INVENT")
	if !ok || c.Utility <= f.Tuning.AI.UtilityThreshold {
		t.Fatalf("invent must clear the threshold, got %v ok=%v", c.Utility, ok)
	}
	ch := Decide(env, a)
	if _, ok := ch.Action.(*tasks.Invent); !ok {
		t.Fatalf("expected INVENT, got %s", tasks.Label(ch.Action))
	}
	if ch.Action.At().Goal != point.Pt(1, 0) || len(a.Path) != 0 {
		t.Fatalf("invent happens in place at the bench: %+v path=%v", ch.Action.At(), a.Path)
	}
}

func TestWorkbenchTripOnlyWhenInventionWouldFollow(t *testing.T) {
	f := envtest.New(t, "1....B")
	env := f.Env()
	a := f.Agent(1)
	a.AddItem("Wood", 1)
	a.AddItem("Stone", 1)
	a.Knowledge.AddSighting(catalogs.ResourceWorkbench, point.Pt(5, 0))

	if _, ok := find(Candidates(env, a), "GO_TO_WORKBENCH"); !ok {
		t.Fatalf("an average agent should head to a known workbench")
	}
	a.Intelligence = 0.3
	if _, ok := find(Candidates(env, a), "GO_TO_WORKBENCH"); ok {
		t.Fatalf("no trip when invention would not clear the threshold on arrival")
	}
}

func TestCommitMovesStandOffAnotherAgent(t *testing.T) {
	f := envtest.New(t,
		"12~",
		"...",
	)
	env := f.Env()
	a := f.Agent(1)
	drink := &tasks.Drink{Spot: tasks.Spot{Goal: point.Pt(2, 0), Stand: point.Pt(1, 0)}}

	ch := Commit(env, a, drink, 0.5)
	got, ok := ch.Action.(*tasks.Drink)
	if !ok {
		t.Fatalf("expected DRINK, got %s", tasks.Label(ch.Action))
	}
	if got.Stand != point.Pt(1, 1) || got.Goal != drink.Goal {
		t.Fatalf("expected the free cell beside the water, got %+v", got.Spot)
	}
	if got.Stand.Chebyshev(got.Goal) > 1 || a.Path[len(a.Path)-1] != got.Stand {
		t.Fatalf("path must end on a stand that reaches the water: %v", a.Path)
	}
}
