package runtime

import (
	"genesis.ai/internal/sim/tasks"
	"genesis.ai/internal/sim/tuning"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
)

const (
	CauseStarvation  = "starvation"
	CauseDehydration = "dehydration"
	CauseExhaustion  = "exhaustion"
)

func resting(a *modelpkg.Agent) bool {
	_, ok := a.Action.(*tasks.Rest)
	return ok
}

// active holds for any committed action other than Rest, Idle included.
func active(a *modelpkg.Agent) bool {
	return a.Action != nil && !resting(a)
}

// EnergyDelta is the per-second energy change for the agent's current activity.
func EnergyDelta(a *modelpkg.Agent, n tuning.Needs) float64 {
	if resting(a) {
		return n.EnergyRegen
	}
	d := -n.EnergyDecay
	if active(a) {
		d -= n.ActiveEnergyDecay
	}
	return d
}

// HealthDrain is the per-second health loss from critical needs, and the
// dominant cause when any applies.
func HealthDrain(a *modelpkg.Agent, n tuning.Needs) (float64, string) {
	drain, worst, cause := 0.0, 0.0, ""
	add := func(v float64, c string) {
		drain += v
		if v > worst {
			worst, cause = v, c
		}
	}
	if a.Hunger >= a.Limits.MaxHunger*n.CriticalFraction {
		add(n.StarvationDamage, CauseStarvation)
	}
	if a.Thirst >= a.Limits.MaxThirst*n.CriticalFraction {
		add(n.DehydrationDamage, CauseDehydration)
	}
	if a.Energy <= 0 && !resting(a) {
		add(n.ExhaustionDamage, CauseExhaustion)
	}
	return drain, cause
}

// Regenerates reports whether resting health regeneration applies.
func Regenerates(a *modelpkg.Agent) bool {
	return resting(a) &&
		a.Energy > a.Limits.MaxEnergy*0.5 &&
		a.Hunger < a.Limits.MaxHunger*0.8 &&
		a.Thirst < a.Limits.MaxThirst*0.8
}
