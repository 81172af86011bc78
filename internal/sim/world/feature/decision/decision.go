// Package decision is the utility engine: it scores every action family for
// an idle agent and commits the best one that can actually be carried out.
package decision

import (
	"sort"

	"github.com/sirupsen/logrus"

	"genesis.ai/internal/sim/tasks"
	movementruntime "genesis.ai/internal/sim/world/feature/movement/runtime"
	"genesis.ai/internal/sim/world/featurectx/agentenv"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
	"genesis.ai/internal/sim/world/logic/point"
)

// Choice is what Decide committed.
type Choice struct {
	Action  tasks.Action
	Utility float64
	// Considered counts candidates that passed the threshold.
	Considered int
}

// Decide commits an action for an idle agent, or Idle when nothing is
// feasible or the committed action cannot be routed.
func Decide(env agentenv.Env, a *modelpkg.Agent) Choice {
	cands := Candidates(env, a)
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Utility > cands[j].Utility })

	threshold := env.Tuning.AI.UtilityThreshold
	considered := 0
	for _, c := range cands {
		if c.Utility <= threshold && c.Action.Kind() != tasks.KindWander {
			continue
		}
		considered++
		act, ok := Feasible(env, a, c.Action)
		if !ok {
			continue
		}
		ch := Commit(env, a, act, c.Utility)
		ch.Considered = considered
		return ch
	}
	if act, ok := Feasible(env, a, &tasks.Wander{}); ok {
		ch := Commit(env, a, act, env.Tuning.AI.WanderUtility)
		ch.Considered = considered
		return ch
	}
	idle := &tasks.Idle{Spot: here(a)}
	a.SetAction(idle, 0, nil)
	return Choice{Action: idle, Considered: considered}
}

// Commit installs a resolved action and plans its path. A routing failure
// leaves the agent Idle.
func Commit(env agentenv.Env, a *modelpkg.Agent, act tasks.Action, utility float64) Choice {
	stand := act.At().Stand
	var path []point.Point
	freed, ok := FreeStand(env, a, act)
	if ok {
		act, stand = freed, freed.At().Stand
		path, ok = movementruntime.PlanPath(env, a, stand)
	}
	if !ok {
		env.Logger().WithFields(logrus.Fields{
			"agent_id": a.ID,
			"action":   tasks.Label(act),
			"stand":    stand,
		}).Debug("no route to action; idling")
		idle := &tasks.Idle{Spot: here(a)}
		a.SetAction(idle, 0, nil)
		return Choice{Action: idle}
	}
	a.SetAction(act, utility, path)
	return Choice{Action: act, Utility: utility}
}
