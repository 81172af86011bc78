package runtime

import (
	"genesis.ai/internal/sim/tasks"
	"genesis.ai/internal/sim/world/feature/work"
	"genesis.ai/internal/sim/world/featurectx/agentenv"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
)

// gather harvests one unit per elapsed duration and keeps looping until the
// goal is held, the inventory fills, energy runs low or the node empties.
func gather(env agentenv.Env, a *modelpkg.Agent, v *tasks.Gather) Result {
	def, ok := env.Catalogs.Resource(v.Resource)
	if !ok || def.Item == "" {
		return failed("not gatherable")
	}
	if !env.Grid.HasResource(v.Resource, v.Goal) {
		a.Knowledge.RemoveSighting(v.Resource, v.Goal)
		return failed("resource gone")
	}
	if a.InventoryFull() {
		return failed("inventory full")
	}
	if !elapsed(env, a) {
		return continuing()
	}
	if env.Grid.Consume(v.Goal, 1) == 0 {
		a.Knowledge.RemoveSighting(v.Resource, v.Goal)
		return failed("resource gone")
	}
	a.AddItem(def.Item, 1)
	cost := work.GatherCost(a, env.Tuning, env.Catalogs, v.Resource)
	a.SpendEnergy(cost)
	work.LearnSkill(a, env.Tuning.Skills, def.GatherSkill, 1)
	a.ActionTimer = 0

	depleted := !env.Grid.HasResource(v.Resource, v.Goal)
	if depleted {
		a.Knowledge.RemoveSighting(v.Resource, v.Goal)
	} else {
		a.Knowledge.AddSighting(v.Resource, v.Goal)
	}
	switch {
	case a.Inventory[def.Item] >= v.Quantity:
		return completed("goal reached")
	case a.InventoryFull():
		return completed("inventory full")
	case a.Energy < env.Tuning.Actions.GatherStopEnergyFactor*cost:
		return completed("low energy")
	case depleted:
		return completed("depleted")
	}
	return continuing()
}
