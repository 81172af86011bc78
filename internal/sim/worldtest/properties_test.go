package worldtest

import (
	"testing"

	"genesis.ai/internal/sim/tasks"
	world "genesis.ai/internal/sim/world"
)

func checkBounds(t *testing.T, w *world.World, seed int64) {
	t.Helper()
	tick := w.CurrentTick()
	for _, a := range w.Agents() {
		l := a.Limits
		if a.Health < 0 || a.Health > l.MaxHealth || a.Energy < 0 || a.Energy > l.MaxEnergy ||
			a.Hunger < 0 || a.Hunger > l.MaxHunger || a.Thirst < 0 || a.Thirst > l.MaxThirst {
			t.Fatalf("seed %d tick %d: agent %d vitals out of range: health=%v energy=%v hunger=%v thirst=%v",
				seed, tick, a.ID, a.Health, a.Energy, a.Hunger, a.Thirst)
		}
		for item, n := range a.Inventory {
			if n < 0 {
				t.Fatalf("seed %d tick %d: agent %d holds %d %s", seed, tick, a.ID, n, item)
			}
		}
	}
	for _, n := range w.Grid().Nodes() {
		if n.Quantity < 0 || n.Quantity > n.MaxQuantity {
			t.Fatalf("seed %d tick %d: node %s at %v holds %d of %d", seed, tick, n.Type, n.Pos, n.Quantity, n.MaxQuantity)
		}
	}
}

func TestLongRunsStayWithinBounds(t *testing.T) {
	if testing.Short() {
		t.Skip("long run")
	}
	for _, seed := range []int64{1, 2, 3} {
		w := newGenerated(t, seed)
		for i := 0; i < 1500; i++ {
			w.StepOnce()
			checkBounds(t, w, seed)
		}
	}
}

func TestGeneratedWorldsInvent(t *testing.T) {
	if testing.Short() {
		t.Skip("long run")
	}
	invents := 0
	for seed := int64(1); seed <= 6 && invents == 0; seed++ {
		w := newGenerated(t, seed)
		for i := 0; i < 3000 && invents == 0; i++ {
			for _, o := range w.StepOnce().Outcomes {
				if o.Action == string(tasks.KindInvent) {
					invents++
				}
			}
		}
	}
	if invents == 0 {
		t.Fatalf("no agent attempted an invention in any run")
	}
}
