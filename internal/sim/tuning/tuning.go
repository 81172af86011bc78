package tuning

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	TickRateHz         int     `yaml:"tick_rate_hz"`
	SpeedFactor        float64 `yaml:"speed_factor"` // simulation seconds per wall second
	DayLengthSeconds   float64 `yaml:"day_length_seconds"`
	SnapshotEveryTicks int     `yaml:"snapshot_every_ticks"`
	InitialAgents      int     `yaml:"initial_agents"`

	// DeterministicSearch disables the randomized neighbour order of the
	// nearest-resource search.
	DeterministicSearch bool `yaml:"deterministic_search"`

	Grid        Grid        `yaml:"grid"`
	Agent       Agent       `yaml:"agent"`
	Needs       Needs       `yaml:"needs"`
	Actions     Actions     `yaml:"actions"`
	AI          AI          `yaml:"ai"`
	Skills      Skills      `yaml:"skills"`
	Social      Social      `yaml:"social"`
	WorldGen    WorldGen    `yaml:"worldgen"`
	Pathfinding Pathfinding `yaml:"pathfinding"`
}

type Grid struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Agent struct {
	MaxHealth         float64 `yaml:"max_health"`
	MaxEnergy         float64 `yaml:"max_energy"`
	MaxHunger         float64 `yaml:"max_hunger"`
	MaxThirst         float64 `yaml:"max_thirst"`
	InventoryCapacity int     `yaml:"inventory_capacity"`
	SociabilityMin    float64 `yaml:"sociability_min"`
	SociabilityMax    float64 `yaml:"sociability_max"`
	IntelligenceMin   float64 `yaml:"intelligence_min"`
	IntelligenceMax   float64 `yaml:"intelligence_max"`
}

type Needs struct {
	HungerRate        float64 `yaml:"hunger_rate"`
	ThirstRate        float64 `yaml:"thirst_rate"`
	EnergyDecay       float64 `yaml:"energy_decay"`
	ActiveEnergyDecay float64 `yaml:"active_energy_decay"` // extra drain while any non-rest action runs
	EnergyRegen       float64 `yaml:"energy_regen"`
	HealthRegen       float64 `yaml:"health_regen"`
	StarvationDamage  float64 `yaml:"starvation_damage"`
	DehydrationDamage float64 `yaml:"dehydration_damage"`
	ExhaustionDamage  float64 `yaml:"exhaustion_damage"`
	CriticalFraction  float64 `yaml:"critical_fraction"`
}

type Actions struct {
	MoveEnergyCost         float64 `yaml:"move_energy_cost"`
	DrinkDuration          float64 `yaml:"drink_duration"`
	EatDuration            float64 `yaml:"eat_duration"`
	NeedEnergyCost         float64 `yaml:"need_energy_cost"`
	DrinkThirstReduction   float64 `yaml:"drink_thirst_reduction"`
	EatHungerReduction     float64 `yaml:"eat_hunger_reduction"`
	CookedHungerReduction  float64 `yaml:"cooked_hunger_reduction"`
	ForageOnEat            bool    `yaml:"forage_on_eat"`
	GatherBaseDuration     float64 `yaml:"gather_base_duration"`
	GatherEnergyCost       float64 `yaml:"gather_energy_cost"`
	CraftBaseDuration      float64 `yaml:"craft_base_duration"`
	CraftEnergyCost        float64 `yaml:"craft_energy_cost"`
	InventDuration         float64 `yaml:"invent_duration"`
	InventEnergyCost       float64 `yaml:"invent_energy_cost"`
	InventAttempts         int     `yaml:"invent_attempts"`
	HelpDuration           float64 `yaml:"help_duration"`
	HelpEnergyCost         float64 `yaml:"help_energy_cost"`
	TeachBaseDuration      float64 `yaml:"teach_base_duration"`
	TeachEnergyCost        float64 `yaml:"teach_energy_cost"`
	SignalEnergyCost       float64 `yaml:"signal_energy_cost"`
	GatherStopEnergyFactor float64 `yaml:"gather_stop_energy_factor"`
}

type AI struct {
	UtilityThreshold      float64            `yaml:"utility_threshold"`
	ThirstWeight          float64            `yaml:"thirst_weight"`
	HungerWeight          float64            `yaml:"hunger_weight"`
	RestWeight            float64            `yaml:"rest_weight"`
	WanderUtility         float64            `yaml:"wander_utility"`
	WanderRadius          int                `yaml:"wander_radius"`
	WanderAttempts        int                `yaml:"wander_attempts"`
	ViewRadius            int                `yaml:"view_radius"`
	KnownSearchFactor     float64            `yaml:"known_search_factor"`
	WorkbenchRadius       int                `yaml:"workbench_radius"`
	CraftBase             float64            `yaml:"craft_base"`
	GatherBase            map[string]float64 `yaml:"gather_base"`
	StockpileGoal         map[string]int     `yaml:"stockpile_goal"`
	StockpileNeedsMet     float64            `yaml:"stockpile_needs_met"`
	FullInventoryPenalty  float64            `yaml:"full_inventory_penalty"`
	InventBase            float64            `yaml:"invent_base"`
	InventNeedsMet        float64            `yaml:"invent_needs_met"`
	InventMinItemTypes    int                `yaml:"invent_min_item_types"`
	GoToWorkbenchBase     float64            `yaml:"go_to_workbench_base"`
	HungryFraction        float64            `yaml:"hungry_fraction"`
	RestEnergyCeiling     float64            `yaml:"rest_energy_ceiling"`
	RestEnergyLow         float64            `yaml:"rest_energy_low"`
	RestHealthLow         float64            `yaml:"rest_health_low"`
	RestNeedsCeiling      float64            `yaml:"rest_needs_ceiling"`
	RestBlockingNeeds     float64            `yaml:"rest_blocking_needs"`
	RestInterruptingNeeds float64            `yaml:"rest_interrupting_needs"`
}

type Skills struct {
	Max                float64            `yaml:"max"`
	IncreaseRate       float64            `yaml:"increase_rate"`
	MultiplierScale    float64            `yaml:"multiplier_scale"`
	MultiplierExponent float64            `yaml:"multiplier_exponent"`
	MinMultiplier      float64            `yaml:"min_multiplier"`
	MinGain            float64            `yaml:"min_gain"`
	Initial            map[string]float64 `yaml:"initial"`
	BootstrapRecipes   []string           `yaml:"bootstrap_recipes"`
}

type Social struct {
	SignalRadius          float64  `yaml:"signal_radius"`
	HostileRelationship   float64  `yaml:"hostile_relationship"`
	RelationshipDecay     float64  `yaml:"relationship_decay"`
	RelationshipFloor     float64  `yaml:"relationship_floor"`
	FleeUtility           float64  `yaml:"flee_utility"`
	FleeAttempts          int      `yaml:"flee_attempts"`
	InvestigateHunger     float64  `yaml:"investigate_hunger"`
	HelpRadius            int      `yaml:"help_radius"`
	HelpMinRelationship   float64  `yaml:"help_min_relationship"`
	HelpTargetNeed        float64  `yaml:"help_target_need"`
	HelpSelfNeed          float64  `yaml:"help_self_need"`
	HelpMinEnergy         float64  `yaml:"help_min_energy"`
	HelpMinSociability    float64  `yaml:"help_min_sociability"`
	HelpRelationshipGain  float64  `yaml:"help_relationship_gain"`
	HelpableItems         []string `yaml:"helpable_items"`
	TeachRadius           int      `yaml:"teach_radius"`
	TeachMinRelationship  float64  `yaml:"teach_min_relationship"`
	TeachMinAdvantage     float64  `yaml:"teach_min_advantage"`
	TeachTargetCeiling    float64  `yaml:"teach_target_ceiling"`
	TeachMinEnergy        float64  `yaml:"teach_min_energy"`
	TeachBoost            float64  `yaml:"teach_boost"`
	TeachRelationshipGain float64  `yaml:"teach_relationship_gain"`
	PassiveLearnRadius    float64  `yaml:"passive_learn_radius"`
	PassiveLearnChance    float64  `yaml:"passive_learn_chance"`
	PassiveLearnBoost     float64  `yaml:"passive_learn_boost"`
	PassiveLearnInterval  float64  `yaml:"passive_learn_interval"`
	HelpSignalNeed        float64  `yaml:"help_signal_need"`
	HelpSignalWindowTicks int      `yaml:"help_signal_window_ticks"`
	HelpSignalMax         int      `yaml:"help_signal_max"`
	FoundFoodMinQuantity  int      `yaml:"found_food_min_quantity"`
}

type WorldGen struct {
	WaterPatches    int            `yaml:"water_patches"`
	WaterPatchMin   int            `yaml:"water_patch_min"`
	WaterPatchMax   int            `yaml:"water_patch_max"`
	Counts          map[string]int `yaml:"counts"`
	AttemptsPerUnit int            `yaml:"attempts_per_unit"`
}

type Pathfinding struct {
	MaxIterations int `yaml:"max_iterations"`
}

func Defaults() Tuning {
	return Tuning{
		TickRateHz:         15,
		SpeedFactor:        50,
		DayLengthSeconds:   600,
		SnapshotEveryTicks: 900,
		InitialAgents:      5,
		Grid:               Grid{Width: 37, Height: 37},
		Agent: Agent{
			MaxHealth: 100, MaxEnergy: 100, MaxHunger: 100, MaxThirst: 100,
			InventoryCapacity: 20,
			SociabilityMin:    0.1, SociabilityMax: 0.9,
			IntelligenceMin: 0.3, IntelligenceMax: 0.8,
		},
		Needs: Needs{
			HungerRate:        0.40,
			ThirstRate:        0.55,
			EnergyDecay:       0.18,
			ActiveEnergyDecay: 0.18,
			EnergyRegen:       1.5,
			HealthRegen:       0.15,
			StarvationDamage:  0.8,
			DehydrationDamage: 1.0,
			ExhaustionDamage:  0.5,
			CriticalFraction:  0.95,
		},
		Actions: Actions{
			MoveEnergyCost:         0.07,
			DrinkDuration:          2.8,
			EatDuration:            2.4,
			NeedEnergyCost:         0.007,
			DrinkThirstReduction:   70,
			EatHungerReduction:     60,
			CookedHungerReduction:  80,
			ForageOnEat:            true,
			GatherBaseDuration:     2.0,
			GatherEnergyCost:       0.5,
			CraftBaseDuration:      4.0,
			CraftEnergyCost:        1.0,
			InventDuration:         8.0,
			InventEnergyCost:       1.8,
			InventAttempts:         3,
			HelpDuration:           1.0,
			HelpEnergyCost:         0.2,
			TeachBaseDuration:      15.0,
			TeachEnergyCost:        1.2,
			SignalEnergyCost:       0.1,
			GatherStopEnergyFactor: 1.5,
		},
		AI: AI{
			UtilityThreshold:      0.15,
			ThirstWeight:          1.0,
			HungerWeight:          1.0,
			RestWeight:            1.1,
			WanderUtility:         0.05,
			WanderRadius:          6,
			WanderAttempts:        10,
			ViewRadius:            25,
			KnownSearchFactor:     0.7,
			WorkbenchRadius:       1,
			CraftBase:             0.3,
			GatherBase:            map[string]float64{"Wood": 0.4, "Stone": 0.35},
			StockpileGoal:         map[string]int{"Wood": 5, "Stone": 3},
			StockpileNeedsMet:     0.6,
			FullInventoryPenalty:  0.1,
			InventBase:            0.35,
			InventNeedsMet:        0.7,
			InventMinItemTypes:    2,
			GoToWorkbenchBase:     0.45,
			HungryFraction:        0.5,
			RestEnergyCeiling:     0.7,
			RestEnergyLow:         0.3,
			RestHealthLow:         0.8,
			RestNeedsCeiling:      0.8,
			RestBlockingNeeds:     0.95,
			RestInterruptingNeeds: 0.9,
		},
		Skills: Skills{
			Max:                100,
			IncreaseRate:       0.8,
			MultiplierScale:    2,
			MultiplierExponent: 0.8,
			MinMultiplier:      0.1,
			MinGain:            0.001,
			Initial:            map[string]float64{"GatherWood": 0, "GatherStone": 0, "BasicCrafting": 1},
			BootstrapRecipes:   []string{"CrudeAxe", "Workbench"},
		},
		Social: Social{
			SignalRadius:          18,
			HostileRelationship:   -0.2,
			RelationshipDecay:     0.001,
			RelationshipFloor:     0.01,
			FleeUtility:           0.9,
			FleeAttempts:          5,
			InvestigateHunger:     0.5,
			HelpRadius:            2,
			HelpMinRelationship:   -0.1,
			HelpTargetNeed:        0.8,
			HelpSelfNeed:          0.7,
			HelpMinEnergy:         0.3,
			HelpMinSociability:    0.4,
			HelpRelationshipGain:  0.20,
			HelpableItems:         []string{"Food", "CookedFood"},
			TeachRadius:           2,
			TeachMinRelationship:  0,
			TeachMinAdvantage:     8,
			TeachTargetCeiling:    0.6,
			TeachMinEnergy:        0.4,
			TeachBoost:            5,
			TeachRelationshipGain: 0.15,
			PassiveLearnRadius:    5,
			PassiveLearnChance:    0.05,
			PassiveLearnBoost:     0.05,
			PassiveLearnInterval:  1.0,
			HelpSignalNeed:        0.8,
			HelpSignalWindowTicks: 60,
			HelpSignalMax:         1,
			FoundFoodMinQuantity:  2,
		},
		WorldGen: WorldGen{
			WaterPatches:    5,
			WaterPatchMin:   3,
			WaterPatchMax:   8,
			Counts:          map[string]int{"Food": 35, "Wood": 25, "Stone": 15, "Workbench": 1},
			AttemptsPerUnit: 100,
		},
		Pathfinding: Pathfinding{MaxIterations: 3500},
	}
}

// Load reads a YAML file over Defaults and validates the result.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// SimSecondsPerTick is the simulated time one tick advances.
func (t Tuning) SimSecondsPerTick() float64 {
	return t.SpeedFactor / float64(t.TickRateHz)
}

func (t Tuning) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(t.TickRateHz > 0, "tick_rate_hz must be > 0")
	check(t.SpeedFactor > 0, "speed_factor must be > 0")
	check(t.DayLengthSeconds > 0, "day_length_seconds must be > 0")
	check(t.Grid.Width > 0 && t.Grid.Height > 0, "grid must be non-empty, got %dx%d", t.Grid.Width, t.Grid.Height)
	check(t.Agent.MaxHealth > 0 && t.Agent.MaxEnergy > 0 && t.Agent.MaxHunger > 0 && t.Agent.MaxThirst > 0, "agent maxima must be > 0")
	check(t.Agent.InventoryCapacity > 0, "agent.inventory_capacity must be > 0")
	check(t.Agent.SociabilityMin <= t.Agent.SociabilityMax, "agent sociability range is inverted")
	check(t.Agent.IntelligenceMin <= t.Agent.IntelligenceMax, "agent intelligence range is inverted")
	check(t.Skills.Max > 0, "skills.max must be > 0")
	check(t.Skills.MinMultiplier > 0, "skills.min_multiplier must be > 0")
	check(t.AI.UtilityThreshold >= 0, "ai.utility_threshold must be >= 0")
	check(t.AI.WanderRadius > 0, "ai.wander_radius must be > 0")
	check(t.AI.ViewRadius > 0, "ai.view_radius must be > 0")
	check(t.Pathfinding.MaxIterations > 0, "pathfinding.max_iterations must be > 0")
	check(t.Social.SignalRadius > 0, "social.signal_radius must be > 0")
	check(t.WorldGen.WaterPatchMin > 0 && t.WorldGen.WaterPatchMin <= t.WorldGen.WaterPatchMax, "worldgen water patch range invalid")
	check(t.WorldGen.AttemptsPerUnit > 0, "worldgen.attempts_per_unit must be > 0")
	for name, n := range t.WorldGen.Counts {
		check(n >= 0, "worldgen.counts.%s must be >= 0", name)
	}
	return errors.Join(errs...)
}
