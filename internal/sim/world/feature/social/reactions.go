package social

import (
	"math"

	"github.com/sirupsen/logrus"

	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tasks"
	"genesis.ai/internal/sim/world/feature/decision"
	"genesis.ai/internal/sim/world/featurectx/agentenv"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
	"genesis.ai/internal/sim/world/logic/mathx"
	"genesis.ai/internal/sim/world/logic/point"
	"genesis.ai/internal/sim/world/terrain/store"
)

// Reaction describes what an agent did with its pending signal.
type Reaction struct {
	Signal      string
	Interrupted bool
	Action      tasks.Action
	// LearnedRecipe is set when the signal taught a recipe.
	LearnedRecipe string
}

// ProcessSignal consumes the pending signal, if any, and reacts to it.
func ProcessSignal(env agentenv.Env, a *modelpkg.Agent) (Reaction, bool) {
	sig := a.PendingSignal
	if sig == nil {
		return Reaction{}, false
	}
	a.PendingSignal = nil
	r := Reaction{Signal: sig.Type}

	switch sig.Type {
	case modelpkg.SignalDanger:
		flee(env, a, sig, &r)
	case modelpkg.SignalFoundFood:
		investigate(env, a, sig, &r)
	case modelpkg.SignalHelpFood:
		answerHelp(env, a, sig, &r)
	default:
		if id, ok := modelpkg.RecipeFromSignal(sig.Type); ok {
			r.LearnedRecipe = observeRecipe(env, a, sig, id)
		}
	}
	return r, true
}

// interrupt replaces the current action when the reaction outscores it.
func interrupt(env agentenv.Env, a *modelpkg.Agent, act tasks.Action, utility float64, r *Reaction) {
	if a.Action != nil && utility <= a.ActionUtility {
		return
	}
	env.Logger().WithFields(logrus.Fields{
		"agent_id": a.ID,
		"from":     tasks.Label(a.Action),
		"to":       tasks.Label(act),
		"signal":   r.Signal,
	}).Debug("signal interrupt")
	a.ClearAction()
	r.Action = decision.Commit(env, a, act, utility).Action
	r.Interrupted = true
	a.DeferExecution = true
}

func flee(env agentenv.Env, a *modelpkg.Agent, sig *modelpkg.Signal, r *Reaction) {
	u := env.Tuning.Social.FleeUtility
	if a.Action != nil && u <= a.ActionUtility {
		return
	}
	if p, ok := fleeTarget(env, a, sig.Origin); ok {
		interrupt(env, a, &tasks.Wander{Spot: tasks.Spot{Goal: p, Stand: p}}, u, r)
		return
	}
	if act, ok := decision.Feasible(env, a, &tasks.Wander{}); ok {
		interrupt(env, a, act, u, r)
	}
}

// fleeTarget draws wander cells pushed two cells away from origin.
func fleeTarget(env agentenv.Env, a *modelpkg.Agent, origin point.Point) (point.Point, bool) {
	rad := env.Tuning.AI.WanderRadius
	away := a.Pos.Sub(origin)
	norm := math.Hypot(float64(away.X), float64(away.Y))
	for i := 0; i < env.Tuning.Social.FleeAttempts; i++ {
		dx, dy := mathx.Between(env.Rng, -rad, rad), mathx.Between(env.Rng, -rad, rad)
		if norm > 0 {
			dx += int(float64(away.X) / norm * 2)
			dy += int(float64(away.Y) / norm * 2)
		}
		p := decision.ClampToGrid(env.Grid, point.Pt(a.Pos.X+dx, a.Pos.Y+dy))
		if p != a.Pos && env.Grid.Walkable(p) && env.Grid.Terrain(p) == store.TerrainGround {
			return p, true
		}
	}
	return point.Point{}, false
}

func investigate(env agentenv.Env, a *modelpkg.Agent, sig *modelpkg.Signal, r *Reaction) {
	s := env.Tuning.Social
	rel := a.Knowledge.Relationship(sig.Sender)
	if a.HungerFrac() <= s.InvestigateHunger || rel < s.HelpMinRelationship {
		return
	}
	if a.Knowledge.KnowsSighting(catalogs.ResourceFood, sig.Origin) {
		return
	}
	u := a.HungerFrac() * (0.5 + 0.5*rel)
	if a.Action != nil && u <= a.ActionUtility {
		return
	}
	stand, ok := env.Grid.AdjacentWalkable(sig.Origin, env.Grid, env.SearchRng())
	if !ok {
		return
	}
	act := &tasks.Investigate{
		Spot:     tasks.Spot{Goal: sig.Origin, Stand: stand},
		Resource: catalogs.ResourceFood,
		Source:   sig.Sender,
	}
	interrupt(env, a, act, u, r)
}

func answerHelp(env agentenv.Env, a *modelpkg.Agent, sig *modelpkg.Signal, r *Reaction) {
	s := env.Tuning.Social
	sender := env.AgentByID(sig.Sender)
	if sender == nil {
		return
	}
	if a.Sociability <= s.HelpMinSociability || a.Knowledge.Relationship(sender.ID) <= s.HelpMinRelationship {
		return
	}
	if a.HungerFrac() >= s.HelpSelfNeed {
		return
	}
	item, ok := decision.HelpItem(env, a)
	if !ok {
		return
	}
	u := decision.HelpUtility(env, a, sender, decision.ScoreNeeds(env, a))
	if a.Action != nil && u <= a.ActionUtility {
		return
	}
	stand := a.Pos
	if a.Pos.Chebyshev(sender.Pos) > 1 {
		if stand, ok = env.Grid.AdjacentWalkable(sender.Pos, env.Mask(a.ID), env.SearchRng()); !ok {
			return
		}
	}
	act := &tasks.Help{Spot: tasks.Spot{Goal: sender.Pos, Stand: stand}, TargetID: sender.ID, Item: item}
	interrupt(env, a, act, u, r)
}

// observeRecipe may teach the announced recipe to a nearby, friendly
// recipient. The chance falls off with squared distance.
func observeRecipe(env agentenv.Env, a *modelpkg.Agent, sig *modelpkg.Signal, id string) string {
	s := env.Tuning.Social
	if a.Knowledge.KnowsRecipe(id) {
		return ""
	}
	rel := a.Knowledge.Relationship(sig.Sender)
	if rel <= s.HostileRelationship {
		return ""
	}
	d2 := float64(a.Pos.DistSq(sig.Origin))
	r2 := s.PassiveLearnRadius * s.PassiveLearnRadius
	if d2 >= r2 {
		return ""
	}
	chance := s.PassiveLearnChance * math.Max(0.5, 1+rel*0.5) * (1 - d2/r2)
	if !mathx.Chance(env.Rng, chance) || !a.Knowledge.LearnRecipe(id) {
		return ""
	}
	return id
}
