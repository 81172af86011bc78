// Package social carries signals between agents and settles the
// transactions agents make with each other.
package social

import (
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
	"genesis.ai/internal/sim/world/logic/point"
)

// Broadcast drops a signal into the slot of every other living agent within
// radius of origin, replacing whatever was pending. It returns the number
// of recipients.
func Broadcast(sender *modelpkg.Agent, typ string, origin point.Point, now, radius float64, agents []*modelpkg.Agent) int {
	r2 := radius * radius
	n := 0
	for _, other := range agents {
		if other == nil || other.ID == sender.ID || !other.Alive() {
			continue
		}
		if float64(other.Pos.DistSq(origin)) >= r2 {
			continue
		}
		other.PendingSignal = &modelpkg.Signal{
			Sender:    sender.ID,
			Type:      typ,
			Origin:    origin,
			EmittedAt: now,
			Radius:    radius,
		}
		n++
	}
	return n
}
