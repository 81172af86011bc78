// Package work holds the skill and tool arithmetic shared by action
// scoring and action execution.
package work

import (
	"math"

	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tuning"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
)

// SkillMultiplier is 1 + scale*(level/max)^exp, floored at the minimum.
func SkillMultiplier(s tuning.Skills, level float64) float64 {
	if level < 0 {
		level = 0
	}
	m := 1 + s.MultiplierScale*math.Pow(level/s.Max, s.MultiplierExponent)
	if m < s.MinMultiplier {
		return s.MinMultiplier
	}
	return m
}

// AgentMultiplier is the agent's multiplier for skill; no skill means 1.
func AgentMultiplier(a *modelpkg.Agent, s tuning.Skills, skill string) float64 {
	if skill == "" {
		return 1
	}
	return SkillMultiplier(s, a.Skill(skill))
}

// LearnSkill raises a skill by rate*boost*(1-level/(max+1)) and reports
// whether the gain was large enough to apply.
func LearnSkill(a *modelpkg.Agent, s tuning.Skills, skill string, boost float64) bool {
	if skill == "" || boost <= 0 {
		return false
	}
	lvl := a.Skill(skill)
	if lvl >= s.Max {
		return false
	}
	gain := s.IncreaseRate * boost * (1 - lvl/(s.Max+1))
	if gain <= s.MinGain {
		return false
	}
	if a.Skills == nil {
		a.Skills = map[string]float64{}
	}
	a.Skills[skill] = math.Min(s.Max, lvl+gain)
	return true
}

func HasSkillFor(a *modelpkg.Agent, r catalogs.Recipe) bool {
	return r.Skill == "" || a.Skill(r.Skill) >= r.MinLevel
}

// OwnedTool returns the tool for resource t when the agent carries one.
func OwnedTool(a *modelpkg.Agent, c *catalogs.Catalogs, t catalogs.ResourceType) (catalogs.Tool, bool) {
	tool, ok := c.ToolFor(t)
	if !ok || a.Inventory[tool.Item] <= 0 {
		return catalogs.Tool{}, false
	}
	return tool, true
}

func ToolSpeed(a *modelpkg.Agent, c *catalogs.Catalogs, t catalogs.ResourceType) float64 {
	if tool, ok := OwnedTool(a, c, t); ok && tool.SpeedMult > 0 {
		return tool.SpeedMult
	}
	return 1
}

func ToolUtility(a *modelpkg.Agent, c *catalogs.Catalogs, t catalogs.ResourceType) float64 {
	if tool, ok := OwnedTool(a, c, t); ok && tool.UtilityMult > 0 {
		return tool.UtilityMult
	}
	return 1
}

func GatherDuration(a *modelpkg.Agent, t *tuning.Tuning, c *catalogs.Catalogs, def catalogs.ResourceDef) float64 {
	return t.Actions.GatherBaseDuration / (AgentMultiplier(a, t.Skills, def.GatherSkill) * ToolSpeed(a, c, def.Type))
}

func GatherCost(a *modelpkg.Agent, t *tuning.Tuning, c *catalogs.Catalogs, r catalogs.ResourceType) float64 {
	return t.Actions.GatherEnergyCost / ToolSpeed(a, c, r)
}

func CraftDuration(a *modelpkg.Agent, t *tuning.Tuning, r catalogs.Recipe) float64 {
	return t.Actions.CraftBaseDuration / AgentMultiplier(a, t.Skills, r.Skill)
}

func TeachDuration(a *modelpkg.Agent, t *tuning.Tuning) float64 {
	return t.Actions.TeachBaseDuration / math.Max(0.5, a.Intelligence)
}
