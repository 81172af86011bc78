package store

import (
	"math"

	"genesis.ai/internal/sim/world/logic/mathx"
)

type Clock struct {
	Elapsed   float64
	DayLength float64
}

func (c *Clock) Advance(dt float64) {
	if dt > 0 {
		c.Elapsed += dt
	}
}

func (c Clock) Day() int {
	if c.DayLength <= 0 {
		return 0
	}
	return int(math.Floor(c.Elapsed / c.DayLength))
}

// Intraday is the number of seconds since the current day began.
func (c Clock) Intraday() float64 {
	if c.DayLength <= 0 {
		return c.Elapsed
	}
	return c.Elapsed - float64(c.Day())*c.DayLength
}

// TimeOfDay is Intraday as a fraction of the day in [0,1).
func (c Clock) TimeOfDay() float64 {
	if c.DayLength <= 0 {
		return 0
	}
	return c.Intraday() / c.DayLength
}

// Regenerate gives every non-full node one unit with probability regen*dt.
// Nodes are visited in row-major order so a seeded rng replays identically.
func (g *Grid) Regenerate(dt float64, rng mathx.Rand) int {
	if rng == nil || dt <= 0 {
		return 0
	}
	grown := 0
	for _, n := range g.Nodes() {
		if n.RegenRate <= 0 || n.Quantity >= n.MaxQuantity {
			continue
		}
		if mathx.Chance(rng, n.RegenRate*dt) {
			g.nodes[n.Pos].Quantity++
			grown++
		}
	}
	return grown
}
