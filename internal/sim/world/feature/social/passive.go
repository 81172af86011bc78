package social

import (
	"math"

	"genesis.ai/internal/sim/tasks"
	"genesis.ai/internal/sim/world/feature/work"
	"genesis.ai/internal/sim/world/featurectx/agentenv"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
	"genesis.ai/internal/sim/world/logic/mathx"
)

// ObservedSkill is the skill another agent is visibly exercising.
func ObservedSkill(env agentenv.Env, other *modelpkg.Agent) string {
	switch act := other.Action.(type) {
	case *tasks.Gather:
		if def, ok := env.Catalogs.Resource(act.Resource); ok {
			return def.GatherSkill
		}
	case *tasks.Craft:
		if r, ok := env.Recipe(act.RecipeID); ok {
			return r.Skill
		}
	}
	return ""
}

// PassiveLearning lets a pick up skills from gathering or crafting
// neighbours, at most once per interval. It returns the skills that grew.
func PassiveLearning(env agentenv.Env, a *modelpkg.Agent) []string {
	s := env.Tuning.Social
	now := env.Now()
	if now < a.NextPassiveLearn {
		return nil
	}
	a.NextPassiveLearn = now + s.PassiveLearnInterval

	r2 := s.PassiveLearnRadius * s.PassiveLearnRadius
	var learned []string
	for _, other := range env.LivingAgents() {
		if other.ID == a.ID || float64(a.Pos.DistSq(other.Pos)) > r2 {
			continue
		}
		skill := ObservedSkill(env, other)
		if skill == "" || a.Skill(skill) >= env.Tuning.Skills.Max {
			continue
		}
		rel := a.Knowledge.Relationship(other.ID)
		if !mathx.Chance(env.Rng, s.PassiveLearnChance*math.Max(0.5, 1+rel*0.5)) {
			continue
		}
		if work.LearnSkill(a, env.Tuning.Skills, skill, s.PassiveLearnBoost) {
			learned = append(learned, skill)
		}
	}
	return learned
}
