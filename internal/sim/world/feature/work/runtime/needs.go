package runtime

import (
	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tasks"
	"genesis.ai/internal/sim/world/featurectx/agentenv"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
	"genesis.ai/internal/sim/world/terrain/store"
)

func drink(env agentenv.Env, a *modelpkg.Agent, v *tasks.Drink) Result {
	if env.Grid.Terrain(v.Goal) != store.TerrainWater {
		return failed("no water")
	}
	if !elapsed(env, a) {
		return continuing()
	}
	a.Thirst -= env.Tuning.Actions.DrinkThirstReduction
	a.SpendEnergy(env.Tuning.Actions.NeedEnergyCost)
	a.ClampVitals()
	return completed("")
}

func eat(env agentenv.Env, a *modelpkg.Agent, v *tasks.Eat) Result {
	act := env.Tuning.Actions
	if v.FromInventory {
		if a.Inventory[v.Item] <= 0 {
			return failed("no food held")
		}
		if !elapsed(env, a) {
			return continuing()
		}
		a.RemoveItem(v.Item, 1)
		if v.Item == "CookedFood" {
			a.Hunger -= act.CookedHungerReduction
		} else {
			a.Hunger -= act.EatHungerReduction
		}
		a.SpendEnergy(act.NeedEnergyCost)
		a.ClampVitals()
		return completed(v.Item)
	}

	if !env.Grid.HasResource(catalogs.ResourceFood, v.Goal) {
		a.Knowledge.RemoveSighting(catalogs.ResourceFood, v.Goal)
		return failed("food gone")
	}
	if !elapsed(env, a) {
		return continuing()
	}
	if env.Grid.Consume(v.Goal, 1) == 0 {
		a.Knowledge.RemoveSighting(catalogs.ResourceFood, v.Goal)
		return failed("food gone")
	}
	a.Hunger -= act.EatHungerReduction
	a.SpendEnergy(act.NeedEnergyCost)
	a.ClampVitals()

	carrying := a.Inventory["Food"] > 0 || a.Inventory["CookedFood"] > 0
	if act.ForageOnEat && !carrying && !a.InventoryFull() && env.Grid.HasResource(catalogs.ResourceFood, v.Goal) {
		if env.Grid.Consume(v.Goal, 1) == 1 {
			a.AddItem("Food", 1)
		}
	}

	left := 0
	if n, ok := env.Grid.Node(v.Goal); ok {
		left = n.Quantity
	}
	if left > 0 {
		a.Knowledge.AddSighting(catalogs.ResourceFood, v.Goal)
	} else {
		a.Knowledge.RemoveSighting(catalogs.ResourceFood, v.Goal)
	}
	if left >= env.Tuning.Social.FoundFoodMinQuantity {
		env.Broadcast(a, modelpkg.SignalFoundFood, v.Goal)
	}
	return completed("")
}

// rest runs until energy is full or another need becomes pressing; the
// energy itself comes back through needs decay.
func rest(env agentenv.Env, a *modelpkg.Agent) Result {
	stop := env.Tuning.AI.RestInterruptingNeeds
	switch {
	case a.Energy >= a.Limits.MaxEnergy:
		return completed("rested")
	case a.HungerFrac() > stop || a.ThirstFrac() > stop:
		return completed("needs")
	}
	return continuing()
}
