package worldtest

import (
	"testing"

	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tuning"
	world "genesis.ai/internal/sim/world"
	"genesis.ai/internal/sim/world/featurectx/agentenv/envtest"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
	"genesis.ai/internal/sim/world/logic/point"
)

// Harness is a small black-box test helper for driving a world via exported APIs.
// The map is drawn with the envtest legend; every digit becomes an agent with
// that id. Step/StepFor go through StepOnce and keep every tick log entry.
type Harness struct {
	T      *testing.T
	Cats   *catalogs.Catalogs
	Tuning tuning.Tuning
	W      *world.World

	Entries []world.TickLogEntry
}

type Option func(*options)

type options struct {
	cfg    world.WorldConfig
	tuning func(*tuning.Tuning)
	agent  func(*modelpkg.Agent)
}

func WithSeed(seed int64) Option { return func(o *options) { o.cfg.Seed = seed } }

// WithTuning edits the defaults before the world is built.
func WithTuning(fn func(*tuning.Tuning)) Option { return func(o *options) { o.tuning = fn } }

// WithAgents edits every agent parsed from the map.
func WithAgents(fn func(*modelpkg.Agent)) Option { return func(o *options) { o.agent = fn } }

func NewHarness(t *testing.T, rows []string, opts ...Option) *Harness {
	t.Helper()
	o := options{cfg: world.WorldConfig{ID: "test", Seed: 42, RunID: "test-run"}}
	for _, opt := range opts {
		opt(&o)
	}

	f := envtest.New(t, rows...)
	tun := tuning.Defaults()
	tun.DeterministicSearch = true
	if o.tuning != nil {
		o.tuning(&tun)
	}

	w, err := world.FromGrid(o.cfg, f.Cats, tun, f.Grid, nil)
	if err != nil {
		t.Fatalf("world.FromGrid: %v", err)
	}
	h := &Harness{T: t, Cats: f.Cats, Tuning: tun, W: w}
	for _, a := range f.Agents {
		fresh := h.NewAgent(a.ID, a.Pos)
		if o.agent != nil {
			o.agent(fresh)
		}
		w.AddAgent(fresh)
	}
	return h
}

// NewAgent builds an agent with the harness tuning and neutral personality.
func (h *Harness) NewAgent(id uint64, p point.Point) *modelpkg.Agent {
	return modelpkg.NewAgent(id, p, &h.Tuning, &h.Cats.Recipes, 0.5, 0.5)
}

func (h *Harness) Step() world.TickLogEntry {
	h.T.Helper()
	e := h.W.StepOnce()
	h.Entries = append(h.Entries, e)
	return e
}

func (h *Harness) StepFor(n int) {
	h.T.Helper()
	for i := 0; i < n; i++ {
		h.Step()
	}
}

// StepUntil steps until cond holds, failing the test after max ticks.
func (h *Harness) StepUntil(max int, cond func() bool) {
	h.T.Helper()
	for i := 0; i < max; i++ {
		if cond() {
			return
		}
		h.Step()
	}
	if !cond() {
		h.T.Fatalf("condition not met after %d ticks", max)
	}
}

// Agent returns a living agent or nil.
func (h *Harness) Agent(id uint64) *modelpkg.Agent { return h.W.Agent(id) }

func (h *Harness) MustAgent(id uint64) *modelpkg.Agent {
	h.T.Helper()
	a := h.W.Agent(id)
	if a == nil {
		h.T.Fatalf("agent %d is not alive", id)
	}
	return a
}

// Outcomes lists every recorded outcome of one agent, oldest first.
func (h *Harness) Outcomes(id uint64) []world.RecordedOutcome {
	var out []world.RecordedOutcome
	for _, e := range h.Entries {
		for _, o := range e.Outcomes {
			if o.AgentID == id {
				out = append(out, o)
			}
		}
	}
	return out
}

func (h *Harness) Decisions(id uint64) []world.RecordedDecision {
	var out []world.RecordedDecision
	for _, e := range h.Entries {
		for _, d := range e.Decisions {
			if d.AgentID == id {
				out = append(out, d)
			}
		}
	}
	return out
}
