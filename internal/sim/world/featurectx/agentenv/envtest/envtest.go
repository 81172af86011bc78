// Package envtest builds small hand-drawn worlds for feature tests.
//
// Map legend: '.' ground, '~' water, '#' obstacle, 'F' food, 'W' wood,
// 'S' stone, 'B' workbench, '1'-'9' an agent with that id on ground.
package envtest

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tuning"
	"genesis.ai/internal/sim/world/featurectx/agentenv"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
	"genesis.ai/internal/sim/world/logic/mathx"
	"genesis.ai/internal/sim/world/logic/point"
	"genesis.ai/internal/sim/world/terrain/store"
)

// ConfigDir is the repository's configs directory.
func ConfigDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "configs"
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "..", "..", "configs"))
}

func Catalogs(t testing.TB) *catalogs.Catalogs {
	t.Helper()
	c, err := catalogs.Load(ConfigDir())
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return c
}

type Broadcast struct {
	Sender uint64
	Type   string
	Origin point.Point
}

type Fixture struct {
	T      testing.TB
	Cats   *catalogs.Catalogs
	Tuning *tuning.Tuning
	Grid   *store.Grid
	Agents []*modelpkg.Agent
	// Rng is nil by default so searches run in fixed order.
	Rng mathx.Rand
	Log *logrus.Logger
	// Hook captures everything logged through the fixture's env.
	Hook *logtest.Hook

	Tick       uint64
	Broadcasts []Broadcast
}

// New parses rows into a grid. Every row must have the same width.
func New(t testing.TB, rows ...string) *Fixture {
	t.Helper()
	if len(rows) == 0 {
		t.Fatalf("envtest: empty map")
	}
	tun := tuning.Defaults()
	cats := Catalogs(t)
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	f := &Fixture{
		T:      t,
		Cats:   cats,
		Tuning: &tun,
		Grid:   store.New(len(rows[0]), len(rows), cats.Resources, tun.DayLengthSeconds),
		Log:    log,
		Hook:   hook,
	}
	for y, row := range rows {
		if len(row) != f.Grid.Width {
			t.Fatalf("envtest: row %d has width %d, want %d", y, len(row), f.Grid.Width)
		}
		for x, c := range row {
			p := point.Pt(x, y)
			switch c {
			case '.':
			case '~':
				f.Grid.SetTerrain(p, store.TerrainWater)
			case '#':
				f.Grid.SetTerrain(p, store.TerrainObstacle)
			case 'F':
				f.node(catalogs.ResourceFood, p)
			case 'W':
				f.node(catalogs.ResourceWood, p)
			case 'S':
				f.node(catalogs.ResourceStone, p)
			case 'B':
				f.node(catalogs.ResourceWorkbench, p)
			default:
				if c >= '1' && c <= '9' {
					f.AddAgent(uint64(c-'0'), p)
					continue
				}
				t.Fatalf("envtest: unknown map symbol %q", c)
			}
		}
	}
	modelpkg.SortByID(f.Agents)
	return f
}

func (f *Fixture) node(t catalogs.ResourceType, p point.Point) {
	if err := f.Grid.AddNode(t, p, -1); err != nil {
		f.T.Fatalf("envtest: add %s at %v: %v", t, p, err)
	}
}

// AddAgent spawns a default agent with sociability and intelligence 0.5.
func (f *Fixture) AddAgent(id uint64, p point.Point) *modelpkg.Agent {
	a := modelpkg.NewAgent(id, p, f.Tuning, &f.Cats.Recipes, 0.5, 0.5)
	f.Agents = append(f.Agents, a)
	modelpkg.SortByID(f.Agents)
	return a
}

func (f *Fixture) Agent(id uint64) *modelpkg.Agent {
	for _, a := range f.Agents {
		if a.ID == id {
			return a
		}
	}
	f.T.Fatalf("envtest: no agent %d", id)
	return nil
}

// Env wires the fixture the way the World wires itself; broadcasts are
// recorded instead of delivered.
func (f *Fixture) Env() agentenv.Env {
	return agentenv.Env{
		Grid:     f.Grid,
		Catalogs: f.Cats,
		Tuning:   f.Tuning,
		Rng:      f.Rng,
		Log:      f.Log,
		TickFn:   func() uint64 { return f.Tick },
		AgentsFn: func() []*modelpkg.Agent { return f.Agents },
		BroadcastFn: func(sender *modelpkg.Agent, typ string, origin point.Point) int {
			f.Broadcasts = append(f.Broadcasts, Broadcast{Sender: sender.ID, Type: typ, Origin: origin})
			return 0
		},
	}
}
