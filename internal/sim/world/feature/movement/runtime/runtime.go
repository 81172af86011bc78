package runtime

import (
	"errors"

	"genesis.ai/internal/sim/world/featurectx/agentenv"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
	logicmovement "genesis.ai/internal/sim/world/logic/movement"
	"genesis.ai/internal/sim/world/logic/point"
)

type Status int

const (
	// Moving: still walking, or yielded after a replan.
	Moving Status = iota
	// Arrived: no waypoints left; execution may run this tick.
	Arrived
	// Blocked: the next waypoint is unusable and no new route exists.
	Blocked
)

// PlanPath routes the agent to target around other living agents. The path
// excludes the current cell; ok is false when no route exists or another
// agent stands on target.
func PlanPath(env agentenv.Env, a *modelpkg.Agent, target point.Point) ([]point.Point, bool) {
	if a.Pos == target {
		return []point.Point{}, true
	}
	if env.Occupied(target, a.ID) {
		return nil, false
	}
	mask := env.Mask(a.ID)
	maxIter := 0
	if env.Tuning != nil {
		maxIter = env.Tuning.Pathfinding.MaxIterations
	}
	path, err := logicmovement.FindPath(mask, a.Pos, target, maxIter)
	if errors.Is(err, logicmovement.ErrStartBlocked) {
		// Sharing a cell with another agent: step off first.
		adj, ok := env.Grid.AdjacentWalkable(a.Pos, mask, env.SearchRng())
		if !ok {
			return nil, false
		}
		rest, err := logicmovement.FindPath(mask, adj, target, maxIter)
		if err != nil || rest == nil {
			return nil, false
		}
		return append([]point.Point{adj}, rest...), true
	}
	if err != nil {
		env.Logger().WithField("agent_id", a.ID).WithError(err).Debug("path request rejected")
		return nil, false
	}
	if path == nil {
		return nil, false
	}
	return path, true
}

// Step moves the agent at most one waypoint toward stand.
func Step(env agentenv.Env, a *modelpkg.Agent, stand point.Point) Status {
	if len(a.Path) == 0 {
		return Arrived
	}
	next := a.Path[0]
	if !env.Grid.Walkable(next) || env.Occupied(next, a.ID) {
		path, ok := PlanPath(env, a, stand)
		if !ok {
			return Blocked
		}
		a.Path = path
		return Moving
	}
	a.Pos = next
	a.Path = a.Path[1:]
	if env.Tuning != nil {
		a.SpendEnergy(env.Tuning.Actions.MoveEnergyCost)
	}
	if len(a.Path) > 0 {
		return Moving
	}
	return Arrived
}
