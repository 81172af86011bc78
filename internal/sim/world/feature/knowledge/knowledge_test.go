package knowledge

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/world/logic/point"
)

func testRecipes() *catalogs.RecipeCatalog {
	byID := map[string]catalogs.Recipe{
		"CrudeAxe":   {ID: "CrudeAxe", Ingredients: map[string]int{"Wood": 2, "Stone": 1}, Skill: "BasicCrafting", MinLevel: 1},
		"CookedFood": {ID: "CookedFood", Ingredients: map[string]int{"Food": 1}, Skill: "BasicCrafting", MinLevel: 2, Workbench: true},
		"StonePick":  {ID: "StonePick", Ingredients: map[string]int{"Wood": 2, "Stone": 3}, Skill: "BasicCrafting", MinLevel: 5, Workbench: true},
	}
	return &catalogs.RecipeCatalog{ByID: byID, IDs: []string{"CookedFood", "CrudeAxe", "StonePick"}}
}

func TestSightingsDeduplicateAndSort(t *testing.T) {
	s := New(1, testRecipes())
	s.AddSighting(catalogs.ResourceFood, point.Pt(3, 1))
	s.AddSighting(catalogs.ResourceFood, point.Pt(0, 2))
	s.AddSighting(catalogs.ResourceFood, point.Pt(3, 1))

	assert.Equal(t, []point.Point{{X: 3, Y: 1}, {X: 0, Y: 2}}, s.Sightings(catalogs.ResourceFood))
	s.RemoveSighting(catalogs.ResourceFood, point.Pt(3, 1))
	s.RemoveSighting(catalogs.ResourceWood, point.Pt(9, 9))
	assert.False(t, s.KnowsSighting(catalogs.ResourceFood, point.Pt(3, 1)))
	assert.Equal(t, 1, s.SightingCount(catalogs.ResourceFood))
}

func TestLearnRecipeOnlyOnceAndOnlyCatalog(t *testing.T) {
	s := New(1, testRecipes())
	assert.True(t, s.LearnRecipe("CrudeAxe"))
	assert.False(t, s.LearnRecipe("CrudeAxe"))
	assert.False(t, s.LearnRecipe("Laser"))
	assert.Equal(t, []string{"CrudeAxe"}, s.KnownRecipes())
	assert.Equal(t, []string{"CookedFood", "StonePick"}, s.UnknownRecipes())
}

func TestRelationshipsClampSelfAndDecay(t *testing.T) {
	s := New(7, testRecipes())
	assert.Zero(t, s.Relationship(3))
	assert.Equal(t, 1.0, s.AdjustRelationship(3, 1.7))
	assert.Equal(t, -1.0, s.AdjustRelationship(4, -3))
	assert.Zero(t, s.AdjustRelationship(7, 0.5))
	assert.Zero(t, s.Relationship(7))

	s.AdjustRelationship(5, 0.015)
	s.DecayRelationships(10, 0.001, 0.01)
	assert.InDelta(t, 0.99, s.Relationship(3), 1e-9)
	assert.InDelta(t, -0.99, s.Relationship(4), 1e-9)
	assert.Zero(t, s.Relationship(5))
	assert.Len(t, s.Summary().Relationships, 2)
}

func TestAttemptInventionMatchesExactIngredientSet(t *testing.T) {
	s := New(1, testRecipes())
	s.LearnRecipe("CrudeAxe")
	inv := map[string]int{"Wood": 2, "Stone": 3}
	skills := map[string]float64{"BasicCrafting": 6}

	// With only two item types every attempt picks {Wood, Stone}.
	id, ok := s.AttemptInvention(inv, skills, 3, 2, rand.New(rand.NewSource(1)))
	require.True(t, ok)
	assert.Equal(t, "StonePick", id)
	assert.True(t, s.KnowsRecipe("StonePick"))

	_, ok = s.AttemptInvention(inv, skills, 3, 2, rand.New(rand.NewSource(1)))
	assert.False(t, ok, "nothing left to discover for this combination")
}

func TestAttemptInventionRespectsSkillAndQuantity(t *testing.T) {
	s := New(1, testRecipes())
	s.LearnRecipe("CrudeAxe")
	rng := rand.New(rand.NewSource(1))
	_, ok := s.AttemptInvention(map[string]int{"Wood": 2, "Stone": 3}, map[string]float64{"BasicCrafting": 1}, 3, 2, rng)
	assert.False(t, ok, "skill too low")
	_, ok = s.AttemptInvention(map[string]int{"Wood": 2, "Stone": 1}, map[string]float64{"BasicCrafting": 9}, 3, 2, rng)
	assert.False(t, ok, "not enough stone")
	_, ok = s.AttemptInvention(map[string]int{"Wood": 9}, map[string]float64{"BasicCrafting": 9}, 3, 2, rng)
	assert.False(t, ok, "a single item type never invents")
}
