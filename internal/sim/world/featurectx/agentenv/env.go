package agentenv

import (
	"github.com/sirupsen/logrus"

	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tuning"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
	"genesis.ai/internal/sim/world/logic/mathx"
	"genesis.ai/internal/sim/world/logic/movement"
	"genesis.ai/internal/sim/world/logic/point"
	"genesis.ai/internal/sim/world/terrain/store"
)

// Env is everything the agent features read from or command on the world.
// The World builds one per tick; tests assemble their own.
type Env struct {
	Grid     *store.Grid
	Catalogs *catalogs.Catalogs
	Tuning   *tuning.Tuning
	Rng      mathx.Rand
	Log      logrus.FieldLogger

	NowFn       func() float64
	TickFn      func() uint64
	AgentsFn    func() []*modelpkg.Agent
	BroadcastFn func(sender *modelpkg.Agent, typ string, origin point.Point) int
}

func (e Env) Now() float64 {
	if e.NowFn == nil {
		return e.Grid.Clock.Elapsed
	}
	return e.NowFn()
}

func (e Env) Tick() uint64 {
	if e.TickFn == nil {
		return 0
	}
	return e.TickFn()
}

func (e Env) Logger() logrus.FieldLogger {
	if e.Log == nil {
		return logrus.StandardLogger()
	}
	return e.Log
}

// SearchRng is the rng for neighbour shuffling, nil when searches must be
// deterministic.
func (e Env) SearchRng() mathx.Rand {
	if e.Tuning != nil && e.Tuning.DeterministicSearch {
		return nil
	}
	return e.Rng
}

// LivingAgents returns the agents that are still alive, in id order.
func (e Env) LivingAgents() []*modelpkg.Agent {
	if e.AgentsFn == nil {
		return nil
	}
	all := e.AgentsFn()
	out := make([]*modelpkg.Agent, 0, len(all))
	for _, a := range all {
		if a.Alive() {
			out = append(out, a)
		}
	}
	return out
}

func (e Env) AgentByID(id uint64) *modelpkg.Agent {
	for _, a := range e.LivingAgents() {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// AgentCells lists the cells of living agents other than self.
func (e Env) AgentCells(self uint64) []point.Point {
	var out []point.Point
	for _, a := range e.LivingAgents() {
		if a.ID != self {
			out = append(out, a.Pos)
		}
	}
	return out
}

func (e Env) Occupied(p point.Point, self uint64) bool {
	for _, a := range e.LivingAgents() {
		if a.ID != self && a.Pos == p {
			return true
		}
	}
	return false
}

// Mask is the persistent walkability with other agents as obstacles.
func (e Env) Mask(self uint64) movement.Overlay {
	return e.Grid.MaskWith(e.AgentCells(self))
}

func (e Env) Broadcast(sender *modelpkg.Agent, typ string, origin point.Point) int {
	if e.BroadcastFn == nil {
		return 0
	}
	return e.BroadcastFn(sender, typ, origin)
}

func (e Env) Recipe(id string) (catalogs.Recipe, bool) {
	return e.Catalogs.Recipe(id)
}
