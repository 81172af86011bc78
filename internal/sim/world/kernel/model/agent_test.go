package model

import (
	"path/filepath"
	"testing"

	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tasks"
	"genesis.ai/internal/sim/tuning"
	"genesis.ai/internal/sim/world/logic/point"
)

func newAgent() *Agent {
	return &Agent{
		ID:        1,
		Vitals:    Vitals{Health: 100, Energy: 100},
		Limits:    Limits{MaxHealth: 100, MaxEnergy: 100, MaxHunger: 100, MaxThirst: 100, InventoryCapacity: 5},
		Inventory: map[string]int{},
	}
}

func TestInventoryCapacityAndRemoval(t *testing.T) {
	a := newAgent()
	if got := a.AddItem("Wood", 4); got != 4 {
		t.Fatalf("expected 4 added, got %d", got)
	}
	if got := a.AddItem("Stone", 3); got != 1 {
		t.Fatalf("expected only 1 to fit, got %d", got)
	}
	if !a.InventoryFull() || a.ItemTypes() != 2 {
		t.Fatalf("expected full inventory with 2 types: %+v", a.Inventory)
	}
	if a.RemoveItems(map[string]int{"Wood": 2, "Stone": 2}) {
		t.Fatalf("partial removal must fail")
	}
	if a.Inventory["Wood"] != 4 {
		t.Fatalf("failed removal must not change inventory: %+v", a.Inventory)
	}
	if !a.RemoveItem("Stone", 1) {
		t.Fatalf("expected removal")
	}
	if _, ok := a.Inventory["Stone"]; ok {
		t.Fatalf("zero entries must be deleted")
	}
}

func TestVitalsClampAndEnergyFloor(t *testing.T) {
	a := newAgent()
	a.Hunger = 130
	a.Thirst = -4
	a.ClampVitals()
	if a.Hunger != 100 || a.Thirst != 0 {
		t.Fatalf("unexpected clamp %+v", a.Vitals)
	}
	a.Energy = 0.05
	a.SpendEnergy(0.07)
	if a.Energy != 0 {
		t.Fatalf("energy must not go negative, got %v", a.Energy)
	}
}

func TestSetActionDropsCurrentCellFromPath(t *testing.T) {
	a := newAgent()
	a.Pos = point.Pt(2, 2)
	a.SetAction(&tasks.Wander{}, 0.05, []point.Point{{X: 2, Y: 2}, {X: 3, Y: 2}})
	if len(a.Path) != 1 || a.Path[0] != point.Pt(3, 2) {
		t.Fatalf("unexpected path %v", a.Path)
	}
	a.ClearAction()
	if a.Action != nil || a.Path != nil || a.ActionTimer != 0 {
		t.Fatalf("ClearAction left state behind")
	}
}

func TestRecipeFromSignal(t *testing.T) {
	if id, ok := RecipeFromSignal(CraftedSignal("CrudeAxe")); !ok || id != "CrudeAxe" {
		t.Fatalf("crafted: parse failed")
	}
	if id, ok := RecipeFromSignal(InventedSignal("StonePick")); !ok || id != "StonePick" {
		t.Fatalf("invented: parse failed")
	}
	for _, bad := range []string{SignalDanger, "crafted:", "CRAFTED:x"} {
		if _, ok := RecipeFromSignal(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestNewAgentStartsWithBootstrapKnowledge(t *testing.T) {
	cats, err := catalogs.Load(filepath.Join("..", "..", "..", "..", "..", "configs"))
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	tun := tuning.Defaults()
	a := NewAgent(7, point.Pt(3, 4), &tun, &cats.Recipes, 0.5, 0.6)
	if a.Health != 100 || a.Energy != 100 || a.Hunger != 0 || a.Limits.InventoryCapacity != 20 {
		t.Fatalf("unexpected vitals: %+v %+v", a.Vitals, a.Limits)
	}
	if a.Skill("BasicCrafting") != 1 || a.Skill("GatherWood") != 0 {
		t.Fatalf("unexpected skills: %v", a.Skills)
	}
	got := a.Knowledge.KnownRecipes()
	if len(got) != 2 || got[0] != "CrudeAxe" || got[1] != "Workbench" {
		t.Fatalf("unexpected bootstrap recipes: %v", got)
	}
}
