package model

import (
	"sort"
	"strings"

	"genesis.ai/internal/sim/tasks"
	"genesis.ai/internal/sim/world/feature/knowledge"
	"genesis.ai/internal/sim/world/logic/mathx"
	"genesis.ai/internal/sim/world/logic/point"
	"genesis.ai/internal/sim/world/logic/rates"
)

type Vitals struct {
	Health float64
	Energy float64
	Hunger float64 // higher is hungrier
	Thirst float64 // higher is thirstier
}

type Limits struct {
	MaxHealth         float64
	MaxEnergy         float64
	MaxHunger         float64
	MaxThirst         float64
	InventoryCapacity int
}

type Agent struct {
	ID  uint64
	Pos point.Point

	Vitals
	Limits Limits

	Inventory map[string]int
	Skills    map[string]float64

	Sociability  float64
	Intelligence float64

	Knowledge *knowledge.Store

	Action        tasks.Action
	ActionUtility float64
	Path          []point.Point
	ActionTimer   float64

	PendingSignal  *Signal
	DeferExecution bool

	Dead        bool
	DeathCause  string
	HelpSignals rates.Window
	// NextPassiveLearn is the sim time of the next passive skill-learning check.
	NextPassiveLearn float64
}

func (a *Agent) Alive() bool { return a != nil && !a.Dead }

func (a *Agent) ClampVitals() {
	a.Health = mathx.Clamp(a.Health, 0, a.Limits.MaxHealth)
	a.Energy = mathx.Clamp(a.Energy, 0, a.Limits.MaxEnergy)
	a.Hunger = mathx.Clamp(a.Hunger, 0, a.Limits.MaxHunger)
	a.Thirst = mathx.Clamp(a.Thirst, 0, a.Limits.MaxThirst)
}

// SpendEnergy deducts cost, never going below zero.
func (a *Agent) SpendEnergy(cost float64) {
	a.Energy -= cost
	if a.Energy < 0 {
		a.Energy = 0
	}
}

func (a *Agent) HungerFrac() float64 { return frac(a.Hunger, a.Limits.MaxHunger) }
func (a *Agent) ThirstFrac() float64 { return frac(a.Thirst, a.Limits.MaxThirst) }
func (a *Agent) EnergyFrac() float64 { return frac(a.Energy, a.Limits.MaxEnergy) }
func (a *Agent) HealthFrac() float64 { return frac(a.Health, a.Limits.MaxHealth) }

func frac(v, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return v / max
}

func (a *Agent) InventoryCount() int {
	n := 0
	for _, c := range a.Inventory {
		n += c
	}
	return n
}

func (a *Agent) InventoryFull() bool {
	return a.InventoryCount() >= a.Limits.InventoryCapacity
}

// ItemTypes counts distinct items held.
func (a *Agent) ItemTypes() int {
	n := 0
	for _, c := range a.Inventory {
		if c > 0 {
			n++
		}
	}
	return n
}

// AddItem stores up to n items within capacity and returns how many fit.
func (a *Agent) AddItem(item string, n int) int {
	if n <= 0 {
		return 0
	}
	if room := a.Limits.InventoryCapacity - a.InventoryCount(); n > room {
		n = room
	}
	if n <= 0 {
		return 0
	}
	if a.Inventory == nil {
		a.Inventory = map[string]int{}
	}
	a.Inventory[item] += n
	return n
}

// RemoveItem takes exactly n items or nothing.
func (a *Agent) RemoveItem(item string, n int) bool {
	if n <= 0 {
		return true
	}
	if a.Inventory[item] < n {
		return false
	}
	a.Inventory[item] -= n
	if a.Inventory[item] == 0 {
		delete(a.Inventory, item)
	}
	return true
}

func (a *Agent) HasItems(items map[string]int) bool {
	for item, n := range items {
		if a.Inventory[item] < n {
			return false
		}
	}
	return true
}

// RemoveItems takes every listed count, or nothing when any is short.
func (a *Agent) RemoveItems(items map[string]int) bool {
	if !a.HasItems(items) {
		return false
	}
	for item, n := range items {
		a.RemoveItem(item, n)
	}
	return true
}

func (a *Agent) Skill(name string) float64 { return a.Skills[name] }

// SetAction commits a new action; the path excludes the current cell.
func (a *Agent) SetAction(act tasks.Action, utility float64, path []point.Point) {
	a.Action = act
	a.ActionUtility = utility
	a.ActionTimer = 0
	a.Path = trimStart(a.Pos, path)
}

func (a *Agent) ClearAction() {
	a.Action = nil
	a.ActionUtility = 0
	a.ActionTimer = 0
	a.Path = nil
}

func trimStart(pos point.Point, path []point.Point) []point.Point {
	for len(path) > 0 && path[0] == pos {
		path = path[1:]
	}
	return path
}

// AgentView is the read-only public state of an agent.
type AgentView struct {
	ID           uint64             `json:"id"`
	Pos          [2]int             `json:"pos"`
	Health       float64            `json:"health"`
	Energy       float64            `json:"energy"`
	Hunger       float64            `json:"hunger"`
	Thirst       float64            `json:"thirst"`
	Action       string             `json:"action"`
	Path         [][2]int           `json:"path,omitempty"`
	Inventory    map[string]int     `json:"inventory,omitempty"`
	Skills       map[string]float64 `json:"skills,omitempty"`
	Sociability  float64            `json:"sociability"`
	Intelligence float64            `json:"intelligence"`
	Knowledge    *knowledge.Summary `json:"knowledge,omitempty"`
}

// View copies the public state; detail adds inventory, skills and knowledge.
func (a *Agent) View(detail bool) AgentView {
	v := AgentView{
		ID:           a.ID,
		Pos:          [2]int{a.Pos.X, a.Pos.Y},
		Health:       a.Health,
		Energy:       a.Energy,
		Hunger:       a.Hunger,
		Thirst:       a.Thirst,
		Action:       tasks.Label(a.Action),
		Sociability:  a.Sociability,
		Intelligence: a.Intelligence,
	}
	for _, p := range a.Path {
		v.Path = append(v.Path, [2]int{p.X, p.Y})
	}
	if !detail {
		return v
	}
	v.Inventory = make(map[string]int, len(a.Inventory))
	for k, n := range a.Inventory {
		v.Inventory[k] = n
	}
	v.Skills = make(map[string]float64, len(a.Skills))
	for k, n := range a.Skills {
		v.Skills[k] = n
	}
	if a.Knowledge != nil {
		s := a.Knowledge.Summary()
		v.Knowledge = &s
	}
	return v
}

// SortByID orders agents by ascending id in place.
func SortByID(agents []*Agent) {
	sort.Slice(agents, func(i, j int) bool { return agents[i].ID < agents[j].ID })
}

const (
	SignalDanger    = "danger"
	SignalFoundFood = "found-food"
	SignalHelpFood  = "help-food"

	craftedPrefix  = "crafted:"
	inventedPrefix = "invented:"
)

// Signal is a short-lived broadcast held in a recipient's single slot.
type Signal struct {
	Sender    uint64
	Type      string
	Origin    point.Point
	EmittedAt float64
	Radius    float64
}

func CraftedSignal(recipeID string) string  { return craftedPrefix + recipeID }
func InventedSignal(recipeID string) string { return inventedPrefix + recipeID }

// RecipeFromSignal extracts the recipe announced by a crafted:/invented: signal.
func RecipeFromSignal(typ string) (string, bool) {
	for _, prefix := range []string{craftedPrefix, inventedPrefix} {
		if strings.HasPrefix(typ, prefix) && len(typ) > len(prefix) {
			return typ[len(prefix):], true
		}
	}
	return "", false
}
