package runtime

import (
	"genesis.ai/internal/sim/tasks"
	"genesis.ai/internal/sim/world/feature/work"
	"genesis.ai/internal/sim/world/featurectx/agentenv"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
)

// Duration is how long the current action's timed phase lasts. Actions that
// finish on a condition or on arrival report false.
func Duration(env agentenv.Env, a *modelpkg.Agent) (float64, bool) {
	t := env.Tuning
	switch v := a.Action.(type) {
	case *tasks.Drink:
		return t.Actions.DrinkDuration, true
	case *tasks.Eat:
		return t.Actions.EatDuration, true
	case *tasks.Gather:
		def, ok := env.Catalogs.Resource(v.Resource)
		if !ok {
			return 0, false
		}
		return work.GatherDuration(a, t, env.Catalogs, def), true
	case *tasks.Craft:
		r, ok := env.Recipe(v.RecipeID)
		if !ok {
			return 0, false
		}
		return work.CraftDuration(a, t, r), true
	case *tasks.Invent:
		return t.Actions.InventDuration, true
	case *tasks.Help:
		return t.Actions.HelpDuration, true
	case *tasks.Teach:
		return work.TeachDuration(a, t), true
	}
	return 0, false
}

// Progress is the completed fraction of the current timed phase; 0 while
// walking or for untimed actions.
func Progress(env agentenv.Env, a *modelpkg.Agent) float64 {
	if len(a.Path) > 0 {
		return 0
	}
	d, ok := Duration(env, a)
	if !ok {
		return 0
	}
	return work.TimedProgress(a.ActionTimer, d)
}

func elapsed(env agentenv.Env, a *modelpkg.Agent) bool {
	d, ok := Duration(env, a)
	return ok && a.ActionTimer >= d
}
