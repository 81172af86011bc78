package decision

import (
	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tasks"
	"genesis.ai/internal/sim/world/feature/work"
	"genesis.ai/internal/sim/world/featurectx/agentenv"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
	"genesis.ai/internal/sim/world/logic/mathx"
	"genesis.ai/internal/sim/world/logic/point"
	"genesis.ai/internal/sim/world/terrain/store"
)

func nearbyWorkbench(env agentenv.Env, a *modelpkg.Agent) (point.Point, bool) {
	return env.Grid.ResourceWithin(catalogs.ResourceWorkbench, a.Pos, env.Tuning.AI.WorkbenchRadius)
}

// BestResource picks where a should go for resource t. Remembered sightings
// are checked first and stale ones forgotten; a breadth-first search runs
// when none is usable or the best is far. Search finds are remembered,
// except water.
func BestResource(env agentenv.Env, a *modelpkg.Agent, t catalogs.ResourceType) (store.Target, bool) {
	var best store.Target
	bestD := -1
	for _, p := range a.Knowledge.Sightings(t) {
		if !env.Grid.HasResource(t, p) {
			a.Knowledge.RemoveSighting(t, p)
			continue
		}
		stand, ok := env.Grid.StandFor(t, p, a.Pos, env.Mask(a.ID))
		if !ok {
			continue
		}
		if d := stand.DistSq(a.Pos); bestD < 0 || d < bestD {
			best, bestD = store.Target{Goal: p, Stand: stand}, d
		}
	}
	view := env.Tuning.AI.ViewRadius
	far := env.Tuning.AI.KnownSearchFactor * float64(view)
	if bestD >= 0 && float64(bestD) <= far*far {
		return best, true
	}
	found, ok := env.Grid.NearestResource(a.Pos, t, view, env.SearchRng())
	if ok {
		if t != catalogs.ResourceWater {
			a.Knowledge.AddSighting(t, found.Goal)
		}
		if d := found.Stand.DistSq(a.Pos); bestD < 0 || d < bestD {
			best, bestD = found, d
		}
	}
	return best, bestD >= 0
}

func here(a *modelpkg.Agent) tasks.Spot { return tasks.Spot{Goal: a.Pos, Stand: a.Pos} }

func spotOf(t store.Target) tasks.Spot { return tasks.Spot{Goal: t.Goal, Stand: t.Stand} }

// Feasible resolves an unresolved action against the current world. It
// returns a new action with its cells filled in; the input is not modified.
func Feasible(env agentenv.Env, a *modelpkg.Agent, act tasks.Action) (tasks.Action, bool) {
	switch v := act.(type) {
	case *tasks.Idle:
		return &tasks.Idle{Spot: here(a)}, true
	case *tasks.Drink:
		t, ok := BestResource(env, a, catalogs.ResourceWater)
		if !ok {
			return nil, false
		}
		return &tasks.Drink{Spot: spotOf(t)}, true
	case *tasks.Eat:
		for _, item := range []string{"CookedFood", "Food"} {
			if a.Inventory[item] > 0 {
				return &tasks.Eat{Spot: here(a), FromInventory: true, Item: item}, true
			}
		}
		t, ok := BestResource(env, a, catalogs.ResourceFood)
		if !ok {
			return nil, false
		}
		return &tasks.Eat{Spot: spotOf(t)}, true
	case *tasks.Gather:
		if a.InventoryFull() {
			return nil, false
		}
		t, ok := BestResource(env, a, v.Resource)
		if !ok {
			return nil, false
		}
		return &tasks.Gather{Spot: spotOf(t), Resource: v.Resource, Quantity: v.Quantity}, true
	case *tasks.Craft:
		return feasibleCraft(env, a, v)
	case *tasks.Invent:
		wb, ok := nearbyWorkbench(env, a)
		if !ok || a.ItemTypes() < env.Tuning.AI.InventMinItemTypes || a.InventoryFull() {
			return nil, false
		}
		return &tasks.Invent{Spot: tasks.Spot{Goal: wb, Stand: a.Pos}}, true
	case *tasks.GoToWorkbench:
		if _, at := nearbyWorkbench(env, a); at {
			return nil, false
		}
		t, ok := BestResource(env, a, catalogs.ResourceWorkbench)
		if !ok {
			return nil, false
		}
		return &tasks.GoToWorkbench{Spot: spotOf(t), Purpose: v.Purpose}, true
	case *tasks.Help:
		return feasibleHelp(env, a, v)
	case *tasks.Teach:
		return feasibleTeach(env, a, v)
	case *tasks.Rest:
		block := env.Tuning.AI.RestBlockingNeeds
		if a.HungerFrac() >= block || a.ThirstFrac() >= block {
			return nil, false
		}
		return &tasks.Rest{Spot: here(a)}, true
	case *tasks.Signal:
		if v.Type == modelpkg.SignalHelpFood && !signalAllowed(env, a) {
			return nil, false
		}
		return &tasks.Signal{Spot: here(a), Type: v.Type}, true
	case *tasks.Investigate:
		if !env.Grid.Walkable(v.Stand) {
			return nil, false
		}
		cp := *v
		return &cp, true
	case *tasks.Wander:
		p, ok := WanderTarget(env, a)
		if !ok {
			return nil, false
		}
		return &tasks.Wander{Spot: tasks.Spot{Goal: p, Stand: p}}, true
	}
	return nil, false
}

func feasibleCraft(env agentenv.Env, a *modelpkg.Agent, v *tasks.Craft) (tasks.Action, bool) {
	r, ok := env.Recipe(v.RecipeID)
	if !ok || !a.Knowledge.KnowsRecipe(r.ID) || !a.HasItems(r.Ingredients) || !work.HasSkillFor(a, r) {
		return nil, false
	}
	if !r.Workbench {
		return &tasks.Craft{Spot: here(a), RecipeID: r.ID}, true
	}
	if wb, ok := nearbyWorkbench(env, a); ok {
		return &tasks.Craft{Spot: tasks.Spot{Goal: wb, Stand: a.Pos}, RecipeID: r.ID, RequiresWorkbench: true}, true
	}
	t, ok := BestResource(env, a, catalogs.ResourceWorkbench)
	if !ok {
		return nil, false
	}
	return &tasks.Craft{Spot: spotOf(t), RecipeID: r.ID, RequiresWorkbench: true}, true
}

// spotResource is the resource whose cell act is used from, for actions that
// must stand beside or on it.
func spotResource(act tasks.Action) (catalogs.ResourceType, bool) {
	switch v := act.(type) {
	case *tasks.Drink:
		return catalogs.ResourceWater, true
	case *tasks.Eat:
		return catalogs.ResourceFood, !v.FromInventory
	case *tasks.Gather:
		return v.Resource, true
	case *tasks.Craft:
		return catalogs.ResourceWorkbench, v.RequiresWorkbench
	case *tasks.GoToWorkbench:
		return catalogs.ResourceWorkbench, true
	case *tasks.Investigate:
		return v.Resource, true
	}
	return "", false
}

// FreeStand moves act's stand off a cell another agent holds, choosing a free
// cell within reach of the goal. ok is false when none exists.
func FreeStand(env agentenv.Env, a *modelpkg.Agent, act tasks.Action) (tasks.Action, bool) {
	spot := act.At()
	t, ok := spotResource(act)
	if !ok || spot.Stand == a.Pos || !env.Occupied(spot.Stand, a.ID) {
		return act, true
	}
	mask := env.Mask(a.ID)
	stand, ok := env.Grid.StandFor(t, spot.Goal, a.Pos, mask)
	if !ok {
		if stand, ok = env.Grid.AdjacentWalkable(spot.Goal, mask, env.SearchRng()); !ok {
			return nil, false
		}
	}
	spot.Stand = stand
	switch v := act.(type) {
	case *tasks.Drink:
		return &tasks.Drink{Spot: spot}, true
	case *tasks.Eat:
		cp := *v
		cp.Spot = spot
		return &cp, true
	case *tasks.Gather:
		cp := *v
		cp.Spot = spot
		return &cp, true
	case *tasks.Craft:
		cp := *v
		cp.Spot = spot
		return &cp, true
	case *tasks.GoToWorkbench:
		cp := *v
		cp.Spot = spot
		return &cp, true
	case *tasks.Investigate:
		cp := *v
		cp.Spot = spot
		return &cp, true
	}
	return act, true
}

// standNear is where a should stand to interact with other: its own cell when
// already adjacent, else a free neighbour of other.
func standNear(env agentenv.Env, a, other *modelpkg.Agent) (point.Point, bool) {
	if a.Pos.Chebyshev(other.Pos) <= 1 {
		return a.Pos, true
	}
	return env.Grid.AdjacentWalkable(other.Pos, env.Mask(a.ID), env.SearchRng())
}

func feasibleHelp(env agentenv.Env, a *modelpkg.Agent, v *tasks.Help) (tasks.Action, bool) {
	s := env.Tuning.Social
	other := env.AgentByID(v.TargetID)
	if other == nil || other.ID == a.ID || a.Inventory[v.Item] <= 0 || !helpable(env, v.Item) {
		return nil, false
	}
	if a.Pos.Chebyshev(other.Pos) > s.HelpRadius || a.Knowledge.Relationship(other.ID) < s.HelpMinRelationship {
		return nil, false
	}
	if other.HungerFrac() <= s.HelpTargetNeed || a.HungerFrac() > s.HelpSelfNeed || a.ThirstFrac() > s.HelpSelfNeed {
		return nil, false
	}
	stand, ok := standNear(env, a, other)
	if !ok {
		return nil, false
	}
	return &tasks.Help{Spot: tasks.Spot{Goal: other.Pos, Stand: stand}, TargetID: other.ID, Item: v.Item}, true
}

func helpable(env agentenv.Env, item string) bool {
	for _, h := range env.Tuning.Social.HelpableItems {
		if h == item {
			return true
		}
	}
	return false
}

func feasibleTeach(env agentenv.Env, a *modelpkg.Agent, v *tasks.Teach) (tasks.Action, bool) {
	s := env.Tuning.Social
	other := env.AgentByID(v.TargetID)
	if other == nil || other.ID == a.ID || !canTeach(env, a) {
		return nil, false
	}
	mine, theirs := a.Skill(v.Skill), other.Skill(v.Skill)
	if mine < s.TeachMinAdvantage || mine < theirs+s.TeachMinAdvantage {
		return nil, false
	}
	if a.Pos.Chebyshev(other.Pos) > s.TeachRadius || a.Knowledge.Relationship(other.ID) < s.TeachMinRelationship {
		return nil, false
	}
	stand, ok := standNear(env, a, other)
	if !ok {
		return nil, false
	}
	return &tasks.Teach{Spot: tasks.Spot{Goal: other.Pos, Stand: stand}, TargetID: other.ID, Skill: v.Skill}, true
}

// WanderTarget draws random ground cells within the wander radius, falling
// back to any walkable neighbour.
func WanderTarget(env agentenv.Env, a *modelpkg.Agent) (point.Point, bool) {
	r := env.Tuning.AI.WanderRadius
	for i := 0; i < env.Tuning.AI.WanderAttempts; i++ {
		p := ClampToGrid(env.Grid, point.Pt(a.Pos.X+mathx.Between(env.Rng, -r, r), a.Pos.Y+mathx.Between(env.Rng, -r, r)))
		if p != a.Pos && env.Grid.Walkable(p) && env.Grid.Terrain(p) == store.TerrainGround {
			return p, true
		}
	}
	return env.Grid.AdjacentWalkable(a.Pos, env.Grid, env.SearchRng())
}

func ClampToGrid(g *store.Grid, p point.Point) point.Point {
	if p.X < 0 {
		p.X = 0
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.X >= g.Width {
		p.X = g.Width - 1
	}
	if p.Y >= g.Height {
		p.Y = g.Height - 1
	}
	return p
}
