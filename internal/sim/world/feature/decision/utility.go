package decision

import (
	"math"
	"sort"

	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tasks"
	"genesis.ai/internal/sim/world/feature/work"
	"genesis.ai/internal/sim/world/featurectx/agentenv"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
)

// Candidate is an unresolved action with its score. Feasible fills in the
// target cells.
type Candidate struct {
	Action  tasks.Action
	Utility float64
}

// Needs are the survival utilities an agent's other scores are scaled by.
type Needs struct {
	Thirst float64
	Hunger float64
	Rest   float64
	// Met is 1 minus the most pressing need, floored at 0.
	Met float64
}

func ScoreNeeds(env agentenv.Env, a *modelpkg.Agent) Needs {
	ai := env.Tuning.AI
	n := Needs{
		Thirst: math.Pow(a.ThirstFrac(), 2) * ai.ThirstWeight,
		Hunger: math.Pow(a.HungerFrac(), 2) * ai.HungerWeight,
	}
	if needsRest(env, a) {
		deficit := 1 - a.EnergyFrac()
		n.Rest = deficit * deficit * ai.RestWeight
	}
	n.Met = math.Max(0, 1-math.Max(n.Thirst, math.Max(n.Hunger, n.Rest)))
	return n
}

func needsRest(env agentenv.Env, a *modelpkg.Agent) bool {
	ai := env.Tuning.AI
	if a.EnergyFrac() > ai.RestEnergyCeiling {
		return false
	}
	if a.EnergyFrac() < ai.RestEnergyLow {
		return true
	}
	return a.HealthFrac() < ai.RestHealthLow &&
		a.HungerFrac() < ai.RestNeedsCeiling &&
		a.ThirstFrac() < ai.RestNeedsCeiling
}

// BoostApplies reports whether a recipe's priority condition holds for a.
func BoostApplies(env agentenv.Env, a *modelpkg.Agent, r catalogs.Recipe) bool {
	if r.Boost == nil {
		return false
	}
	switch r.Boost.When {
	case catalogs.BoostMissingOutput:
		out := r.OutputItem()
		return out != "" && a.Inventory[out] == 0
	case catalogs.BoostNoWorkbenchKnown:
		return a.Knowledge.SightingCount(catalogs.ResourceWorkbench) == 0
	case catalogs.BoostHungry:
		return a.HungerFrac() > env.Tuning.AI.HungryFraction
	}
	return false
}

// Candidates scores every action family for a in a fixed order; equal
// scores keep that order after sorting.
func Candidates(env agentenv.Env, a *modelpkg.Agent) []Candidate {
	n := ScoreNeeds(env, a)
	out := []Candidate{
		{Action: &tasks.Drink{}, Utility: n.Thirst},
		{Action: &tasks.Eat{}, Utility: n.Hunger},
		{Action: &tasks.Rest{}, Utility: n.Rest},
	}
	out = append(out, gatherCandidates(env, a, n)...)
	if c, ok := craftCandidate(env, a, n); ok {
		out = append(out, c)
	}
	out = append(out, workbenchCandidates(env, a, n)...)
	if c, ok := signalCandidate(env, a, n); ok {
		out = append(out, c)
	}
	if c, ok := helpCandidate(env, a, n); ok {
		out = append(out, c)
	}
	if c, ok := teachCandidate(env, a, n); ok {
		out = append(out, c)
	}
	out = append(out, Candidate{Action: &tasks.Wander{}, Utility: env.Tuning.AI.WanderUtility})
	return out
}

func gatherables(c *catalogs.Catalogs) []catalogs.ResourceDef {
	var out []catalogs.ResourceDef
	for _, def := range c.Resources.ByType {
		if def.GatherSkill != "" && def.Item != "" {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// GatherGoal is how many units of item the agent wants to hold.
func GatherGoal(env agentenv.Env, a *modelpkg.Agent, def catalogs.ResourceDef, n Needs) int {
	goal := 0
	for _, id := range a.Knowledge.KnownRecipes() {
		r, ok := env.Recipe(id)
		if !ok || !work.HasSkillFor(a, r) || !BoostApplies(env, a, r) {
			continue
		}
		if need := r.Ingredients[def.Item] - a.Inventory[def.Item]; need > goal {
			goal = need
		}
	}
	if n.Met > env.Tuning.AI.StockpileNeedsMet {
		if s := env.Tuning.AI.StockpileGoal[string(def.Type)]; s > goal {
			goal = s
		}
	}
	return goal
}

func gatherCandidates(env agentenv.Env, a *modelpkg.Agent, n Needs) []Candidate {
	ai := env.Tuning.AI
	var out []Candidate
	for _, def := range gatherables(env.Catalogs) {
		base := ai.GatherBase[string(def.Type)]
		if base <= 0 {
			continue
		}
		goal := GatherGoal(env, a, def, n)
		held := a.Inventory[def.Item]
		if goal <= held {
			continue
		}
		norm := float64(goal-held) / float64(goal)
		u := norm * base * work.AgentMultiplier(a, env.Tuning.Skills, def.GatherSkill) * work.ToolUtility(a, env.Catalogs, def.Type)
		if a.InventoryFull() {
			u *= ai.FullInventoryPenalty
		}
		out = append(out, Candidate{Action: &tasks.Gather{Resource: def.Type, Quantity: goal}, Utility: u})
	}
	return out
}

func craftCandidate(env agentenv.Env, a *modelpkg.Agent, n Needs) (Candidate, bool) {
	_, atBench := nearbyWorkbench(env, a)
	knowsBench := a.Knowledge.SightingCount(catalogs.ResourceWorkbench) > 0
	var best Candidate
	found := false
	for _, id := range a.Knowledge.KnownRecipes() {
		r, ok := env.Recipe(id)
		if !ok || !a.HasItems(r.Ingredients) || !work.HasSkillFor(a, r) {
			continue
		}
		if r.Workbench && !atBench && !knowsBench {
			continue
		}
		u := env.Tuning.AI.CraftBase * n.Met * work.AgentMultiplier(a, env.Tuning.Skills, r.Skill)
		if BoostApplies(env, a, r) {
			u = r.Boost.Utility
		}
		if !found || u > best.Utility {
			best = Candidate{Action: &tasks.Craft{RecipeID: r.ID, RequiresWorkbench: r.Workbench}, Utility: u}
			found = true
		}
	}
	return best, found
}

// CanInvent is the inventory and mood gate for invention, wherever the agent stands.
func CanInvent(env agentenv.Env, a *modelpkg.Agent, n Needs) bool {
	ai := env.Tuning.AI
	return n.Met > ai.InventNeedsMet &&
		a.ItemTypes() >= ai.InventMinItemTypes &&
		!a.InventoryFull() &&
		len(a.Knowledge.UnknownRecipes()) > 0
}

// InventUtility scores an invention attempt at a workbench.
func InventUtility(env agentenv.Env, a *modelpkg.Agent, n Needs) float64 {
	return env.Tuning.AI.InventBase * a.Intelligence * n.Met
}

// workbenchCandidates offers Invent at a workbench, or a walk to a known one
// when Invent would clear the threshold on arrival.
func workbenchCandidates(env agentenv.Env, a *modelpkg.Agent, n Needs) []Candidate {
	if !CanInvent(env, a, n) {
		return nil
	}
	ai := env.Tuning.AI
	u := InventUtility(env, a, n)
	if _, at := nearbyWorkbench(env, a); at {
		return []Candidate{{Action: &tasks.Invent{}, Utility: u}}
	}
	if u <= ai.UtilityThreshold || a.Knowledge.SightingCount(catalogs.ResourceWorkbench) == 0 {
		return nil
	}
	return []Candidate{{Action: &tasks.GoToWorkbench{Purpose: tasks.PurposeInvent}, Utility: ai.GoToWorkbenchBase * n.Met}}
}

func signalCandidate(env agentenv.Env, a *modelpkg.Agent, n Needs) (Candidate, bool) {
	s := env.Tuning.Social
	if a.HungerFrac() <= s.HelpSignalNeed || !signalAllowed(env, a) {
		return Candidate{}, false
	}
	u := a.HungerFrac() * 0.8 * a.Sociability * math.Max(0.1, 0.2+n.Met*0.8)
	return Candidate{Action: &tasks.Signal{Type: modelpkg.SignalHelpFood}, Utility: u}, true
}

func signalAllowed(env agentenv.Env, a *modelpkg.Agent) bool {
	s := env.Tuning.Social
	return a.HelpSignals.Peek(env.Tick(), uint64(s.HelpSignalWindowTicks), s.HelpSignalMax)
}

// HelpItem is the first helpable item a carries.
func HelpItem(env agentenv.Env, a *modelpkg.Agent) (string, bool) {
	for _, item := range env.Tuning.Social.HelpableItems {
		if a.Inventory[item] > 0 {
			return item, true
		}
	}
	return "", false
}

// HelpUtility scores giving food to other.
func HelpUtility(env agentenv.Env, a, other *modelpkg.Agent, n Needs) float64 {
	rel := a.Knowledge.Relationship(other.ID)
	return other.HungerFrac() * (rel + 1.1) * a.Sociability * 0.75 * math.Max(0.2, 0.4+n.Met*0.6)
}

func canHelp(env agentenv.Env, a *modelpkg.Agent) bool {
	s := env.Tuning.Social
	return a.HungerFrac() < s.HelpSelfNeed && a.ThirstFrac() < s.HelpSelfNeed && a.EnergyFrac() > s.HelpMinEnergy
}

func helpCandidate(env agentenv.Env, a *modelpkg.Agent, n Needs) (Candidate, bool) {
	if !canHelp(env, a) {
		return Candidate{}, false
	}
	item, ok := HelpItem(env, a)
	if !ok {
		return Candidate{}, false
	}
	s := env.Tuning.Social
	var best Candidate
	found := false
	for _, other := range env.LivingAgents() {
		if other.ID == a.ID || a.Pos.Chebyshev(other.Pos) > s.HelpRadius {
			continue
		}
		if a.Knowledge.Relationship(other.ID) < s.HelpMinRelationship || other.HungerFrac() <= s.HelpTargetNeed {
			continue
		}
		if u := HelpUtility(env, a, other, n); !found || u > best.Utility {
			best = Candidate{Action: &tasks.Help{TargetID: other.ID, Item: item}, Utility: u}
			found = true
		}
	}
	return best, found
}

// TeachableSkill is the first skill, in name order, a can teach other.
func TeachableSkill(env agentenv.Env, a, other *modelpkg.Agent) (string, bool) {
	s := env.Tuning.Social
	names := make([]string, 0, len(a.Skills))
	for name := range a.Skills {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mine, theirs := a.Skill(name), other.Skill(name)
		if mine > s.TeachMinAdvantage && mine > theirs+s.TeachMinAdvantage && theirs < env.Tuning.Skills.Max*s.TeachTargetCeiling {
			return name, true
		}
	}
	return "", false
}

func canTeach(env agentenv.Env, a *modelpkg.Agent) bool {
	s := env.Tuning.Social
	return a.HungerFrac() < s.HelpSelfNeed && a.ThirstFrac() < s.HelpSelfNeed && a.EnergyFrac() > s.TeachMinEnergy
}

func teachCandidate(env agentenv.Env, a *modelpkg.Agent, n Needs) (Candidate, bool) {
	if !canTeach(env, a) {
		return Candidate{}, false
	}
	s := env.Tuning.Social
	var best Candidate
	found := false
	for _, other := range env.LivingAgents() {
		if other.ID == a.ID || a.Pos.Chebyshev(other.Pos) > s.TeachRadius {
			continue
		}
		rel := a.Knowledge.Relationship(other.ID)
		if rel < s.TeachMinRelationship {
			continue
		}
		skill, ok := TeachableSkill(env, a, other)
		if !ok {
			continue
		}
		gap := (a.Skill(skill) - other.Skill(skill)) / env.Tuning.Skills.Max
		u := gap * (rel + 1.1) * a.Sociability * 0.5 * math.Max(0.25, 0.5+n.Met*0.5)
		if !found || u > best.Utility {
			best = Candidate{Action: &tasks.Teach{TargetID: other.ID, Skill: skill}, Utility: u}
			found = true
		}
	}
	return best, found
}
