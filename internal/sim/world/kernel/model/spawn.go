package model

import (
	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tuning"
	"genesis.ai/internal/sim/world/feature/knowledge"
	"genesis.ai/internal/sim/world/logic/point"
)

// NewAgent builds a freshly spawned agent: full health and energy, no needs,
// the initial skill table and the bootstrap recipes.
func NewAgent(id uint64, pos point.Point, t *tuning.Tuning, recipes *catalogs.RecipeCatalog, sociability, intelligence float64) *Agent {
	a := &Agent{
		ID:  id,
		Pos: pos,
		Vitals: Vitals{
			Health: t.Agent.MaxHealth,
			Energy: t.Agent.MaxEnergy,
		},
		Limits: Limits{
			MaxHealth:         t.Agent.MaxHealth,
			MaxEnergy:         t.Agent.MaxEnergy,
			MaxHunger:         t.Agent.MaxHunger,
			MaxThirst:         t.Agent.MaxThirst,
			InventoryCapacity: t.Agent.InventoryCapacity,
		},
		Inventory:    map[string]int{},
		Skills:       make(map[string]float64, len(t.Skills.Initial)),
		Sociability:  sociability,
		Intelligence: intelligence,
		Knowledge:    knowledge.New(id, recipes),
	}
	for name, lvl := range t.Skills.Initial {
		a.Skills[name] = lvl
	}
	for _, rid := range t.Skills.BootstrapRecipes {
		a.Knowledge.LearnRecipe(rid)
	}
	return a
}
