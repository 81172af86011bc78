package runtime

import (
	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tasks"
	"genesis.ai/internal/sim/world/feature/social"
	"genesis.ai/internal/sim/world/featurectx/agentenv"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
)

// help re-validates every tick and hands the item over once the duration
// has passed.
func help(env agentenv.Env, a *modelpkg.Agent, v *tasks.Help) Result {
	target := env.AgentByID(v.TargetID)
	if err := social.ValidateHelp(env, a, target, v.Item); err != nil {
		return failed(err.Error())
	}
	if !elapsed(env, a) {
		return continuing()
	}
	if err := social.AttemptHelp(env, a, target, v.Item); err != nil {
		return failed(err.Error())
	}
	return completed(v.Item)
}

func teach(env agentenv.Env, a *modelpkg.Agent, v *tasks.Teach) Result {
	student := env.AgentByID(v.TargetID)
	if err := social.ValidateTeach(env, a, student, v.Skill); err != nil {
		return failed(err.Error())
	}
	if !elapsed(env, a) {
		return continuing()
	}
	if err := social.AttemptTeach(env, a, student, v.Skill); err != nil {
		return failed(err.Error())
	}
	return completed(v.Skill)
}

func signal(env agentenv.Env, a *modelpkg.Agent, v *tasks.Signal) Result {
	if v.Type == modelpkg.SignalHelpFood {
		s := env.Tuning.Social
		if ok, _ := a.HelpSignals.Allow(env.Tick(), uint64(s.HelpSignalWindowTicks), s.HelpSignalMax); !ok {
			return failed("rate limited")
		}
	}
	env.Broadcast(a, v.Type, a.Pos)
	a.SpendEnergy(env.Tuning.Actions.SignalEnergyCost)
	return completed(v.Type)
}

// investigate confirms a reported sighting on arrival.
func investigate(env agentenv.Env, a *modelpkg.Agent, v *tasks.Investigate) Result {
	res := v.Resource
	if res == "" {
		res = catalogs.ResourceFood
	}
	if !env.Grid.HasResource(res, v.Goal) {
		return failed("nothing at sighting")
	}
	a.Knowledge.AddSighting(res, v.Goal)
	return completed("")
}
