// Package knowledge is an agent's private memory: where resources were
// seen, which recipes it knows and how it feels about other agents.
package knowledge

import (
	"sort"

	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/world/logic/mathx"
	"genesis.ai/internal/sim/world/logic/point"
)

type Store struct {
	Owner uint64

	recipes       *catalogs.RecipeCatalog
	sightings     map[catalogs.ResourceType]map[point.Point]struct{}
	known         map[string]struct{}
	relationships map[uint64]float64
}

func New(owner uint64, recipes *catalogs.RecipeCatalog) *Store {
	return &Store{
		Owner:         owner,
		recipes:       recipes,
		sightings:     map[catalogs.ResourceType]map[point.Point]struct{}{},
		known:         map[string]struct{}{},
		relationships: map[uint64]float64{},
	}
}

func (s *Store) AddSighting(t catalogs.ResourceType, p point.Point) {
	set, ok := s.sightings[t]
	if !ok {
		set = map[point.Point]struct{}{}
		s.sightings[t] = set
	}
	set[p] = struct{}{}
}

func (s *Store) RemoveSighting(t catalogs.ResourceType, p point.Point) {
	delete(s.sightings[t], p)
}

func (s *Store) KnowsSighting(t catalogs.ResourceType, p point.Point) bool {
	_, ok := s.sightings[t][p]
	return ok
}

// Sightings returns the remembered cells for t in row-major order.
func (s *Store) Sightings(t catalogs.ResourceType) []point.Point {
	set := s.sightings[t]
	out := make([]point.Point, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func (s *Store) SightingCount(t catalogs.ResourceType) int { return len(s.sightings[t]) }

// LearnRecipe adds a catalog recipe and reports whether it was new.
func (s *Store) LearnRecipe(id string) bool {
	if s.recipes == nil {
		return false
	}
	if _, ok := s.recipes.ByID[id]; !ok {
		return false
	}
	if _, ok := s.known[id]; ok {
		return false
	}
	s.known[id] = struct{}{}
	return true
}

func (s *Store) KnowsRecipe(id string) bool {
	_, ok := s.known[id]
	return ok
}

// KnownRecipes is sorted by id.
func (s *Store) KnownRecipes() []string {
	out := make([]string, 0, len(s.known))
	for id := range s.known {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// UnknownRecipes is sorted by id.
func (s *Store) UnknownRecipes() []string {
	if s.recipes == nil {
		return nil
	}
	var out []string
	for _, id := range s.recipes.IDs {
		if !s.KnowsRecipe(id) {
			out = append(out, id)
		}
	}
	return out
}

func (s *Store) Relationship(other uint64) float64 {
	if other == s.Owner {
		return 0
	}
	return s.relationships[other]
}

func (s *Store) AdjustRelationship(other uint64, delta float64) float64 {
	if other == s.Owner {
		return 0
	}
	v := mathx.Clamp(s.relationships[other]+delta, -1, 1)
	s.relationships[other] = v
	return v
}

// DecayRelationships moves every score toward neutral by rate*dt and drops
// entries whose magnitude falls below floor.
func (s *Store) DecayRelationships(dt, rate, floor float64) {
	step := rate * dt
	if step <= 0 {
		return
	}
	for id, v := range s.relationships {
		switch {
		case v > 0:
			v -= step
			if v < 0 {
				v = 0
			}
		case v < 0:
			v += step
			if v > 0 {
				v = 0
			}
		}
		if v > -floor && v < floor {
			delete(s.relationships, id)
			continue
		}
		s.relationships[id] = v
	}
}

// AttemptInvention tries a few random 2-3 item combinations from the
// inventory against the ingredient sets of unknown recipes. A match also
// needs enough of every ingredient and the recipe's skill level.
func (s *Store) AttemptInvention(inventory map[string]int, skills map[string]float64, attempts, minTypes int, rng mathx.Rand) (string, bool) {
	if s.recipes == nil || rng == nil {
		return "", false
	}
	items := make([]string, 0, len(inventory))
	for item, n := range inventory {
		if n > 0 {
			items = append(items, item)
		}
	}
	if len(items) < 2 || len(items) < minTypes {
		return "", false
	}
	sort.Strings(items)

	for try := 0; try < attempts; try++ {
		k := 2
		if len(items) >= 3 {
			k += rng.Intn(2)
		}
		perm := rng.Perm(len(items))
		combo := map[string]bool{}
		for _, i := range perm[:k] {
			combo[items[i]] = true
		}
		for _, id := range s.UnknownRecipes() {
			r := s.recipes.ByID[id]
			if !sameItems(combo, r.Ingredients) {
				continue
			}
			if !hasIngredients(inventory, r.Ingredients) || skills[r.Skill] < r.MinLevel {
				continue
			}
			if s.LearnRecipe(id) {
				return id, true
			}
		}
	}
	return "", false
}

func sameItems(combo map[string]bool, ingredients map[string]int) bool {
	if len(combo) != len(ingredients) {
		return false
	}
	for item := range ingredients {
		if !combo[item] {
			return false
		}
	}
	return true
}

func hasIngredients(inventory map[string]int, ingredients map[string]int) bool {
	for item, n := range ingredients {
		if inventory[item] < n {
			return false
		}
	}
	return true
}

// Summary is the read-only view exposed to observers.
type Summary struct {
	Sightings     map[catalogs.ResourceType]int `json:"sightings"`
	KnownRecipes  []string                      `json:"known_recipes"`
	Relationships map[uint64]float64            `json:"relationships,omitempty"`
}

func (s *Store) Summary() Summary {
	out := Summary{
		Sightings:    map[catalogs.ResourceType]int{},
		KnownRecipes: s.KnownRecipes(),
	}
	for t, set := range s.sightings {
		if len(set) > 0 {
			out.Sightings[t] = len(set)
		}
	}
	if len(s.relationships) > 0 {
		out.Relationships = make(map[uint64]float64, len(s.relationships))
		for id, v := range s.relationships {
			out.Relationships[id] = v
		}
	}
	return out
}
