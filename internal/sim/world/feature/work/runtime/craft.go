package runtime

import (
	"github.com/sirupsen/logrus"

	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tasks"
	"genesis.ai/internal/sim/world/feature/work"
	"genesis.ai/internal/sim/world/featurectx/agentenv"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
)

func craft(env agentenv.Env, a *modelpkg.Agent, v *tasks.Craft) Result {
	r, ok := env.Recipe(v.RecipeID)
	if !ok {
		return failed("unknown recipe " + v.RecipeID)
	}
	if !elapsed(env, a) {
		return continuing()
	}
	if !work.HasSkillFor(a, r) || !a.RemoveItems(r.Ingredients) {
		return failed("missing ingredients")
	}

	if r.Places != "" {
		if err := env.Grid.AddNode(r.Places, a.Pos, -1); err != nil {
			env.Logger().WithFields(logrus.Fields{
				"agent_id": a.ID,
				"recipe":   r.ID,
				"pos":      a.Pos,
			}).WithError(err).Warn("crafted structure could not be placed; ingredients lost")
			a.SpendEnergy(env.Tuning.Actions.CraftEnergyCost)
			return failed("placement failed")
		}
		a.Knowledge.AddSighting(r.Places, a.Pos)
	} else {
		a.AddItem(r.OutputItem(), 1)
	}
	a.SpendEnergy(env.Tuning.Actions.CraftEnergyCost)
	work.LearnSkill(a, env.Tuning.Skills, r.Skill, 1)
	a.Knowledge.LearnRecipe(r.ID)
	env.Broadcast(a, modelpkg.CraftedSignal(r.ID), a.Pos)
	return completed(r.ID)
}

func invent(env agentenv.Env, a *modelpkg.Agent) Result {
	if !elapsed(env, a) {
		return continuing()
	}
	act := env.Tuning.Actions
	a.SpendEnergy(act.InventEnergyCost)
	id, ok := a.Knowledge.AttemptInvention(a.Inventory, a.Skills, act.InventAttempts, env.Tuning.AI.InventMinItemTypes, env.Rng)
	if !ok {
		return completed("nothing discovered")
	}
	env.Logger().WithFields(logrus.Fields{"agent_id": a.ID, "recipe": id}).Info("recipe invented")
	env.Broadcast(a, modelpkg.InventedSignal(id), a.Pos)
	return completed(id)
}

func arriveAtWorkbench(env agentenv.Env, a *modelpkg.Agent) Result {
	wb, ok := env.Grid.ResourceWithin(catalogs.ResourceWorkbench, a.Pos, env.Tuning.AI.WorkbenchRadius)
	if !ok {
		return failed("no workbench")
	}
	a.Knowledge.AddSighting(catalogs.ResourceWorkbench, wb)
	return completed("")
}
