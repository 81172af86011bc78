package runtime

import (
	"genesis.ai/internal/sim/tuning"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
)

type TickInput struct {
	DT    float64
	Needs tuning.Needs
}

type TickHooks struct {
	// OnDeath runs once, right after the agent is marked dead.
	OnDeath func(a *modelpkg.Agent, cause string)
}

// Decay advances one agent's needs by in.DT simulated seconds.
func Decay(a *modelpkg.Agent, in TickInput) {
	dt := in.DT
	a.Hunger += in.Needs.HungerRate * dt
	a.Thirst += in.Needs.ThirstRate * dt
	a.Energy += EnergyDelta(a, in.Needs) * dt
	a.ClampVitals()

	if Regenerates(a) {
		a.Health += in.Needs.HealthRegen * dt
	}
	drain, cause := HealthDrain(a, in.Needs)
	a.Health -= drain * dt
	a.ClampVitals()
	if drain > 0 {
		a.DeathCause = cause
	}
}

// CheckDeath marks the agent dead once health is gone. It reports true only on
// the tick the agent dies.
func CheckDeath(a *modelpkg.Agent, hooks TickHooks) bool {
	if a.Dead || a.Health > 0 {
		return false
	}
	a.Dead = true
	if a.DeathCause == "" {
		a.DeathCause = "unknown"
	}
	a.ClearAction()
	a.PendingSignal = nil
	if hooks.OnDeath != nil {
		hooks.OnDeath(a, a.DeathCause)
	}
	return true
}
