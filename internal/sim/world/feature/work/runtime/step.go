// Package runtime runs the execution half of the action state machine:
// it walks an agent along its path and then performs the committed action
// over as many ticks as it takes.
package runtime

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tasks"
	movementruntime "genesis.ai/internal/sim/world/feature/movement/runtime"
	"genesis.ai/internal/sim/world/featurectx/agentenv"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
)

type Status int

const (
	Continuing Status = iota
	Completed
	Failed
)

func (s Status) String() string {
	switch s {
	case Continuing:
		return "continuing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

type Result struct {
	Status Status
	Reason string
}

func (r Result) Done() bool { return r.Status != Continuing }

func continuing() Result             { return Result{Status: Continuing} }
func completed(reason string) Result { return Result{Status: Completed, Reason: reason} }
func failed(reason string) Result    { return Result{Status: Failed, Reason: reason} }

// Step advances the agent's current action by dt sim-seconds. A panic inside
// an executor is reported as Failed.
func Step(env agentenv.Env, a *modelpkg.Agent, dt float64) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			env.Logger().WithFields(logrus.Fields{
				"agent_id": a.ID,
				"action":   tasks.Label(a.Action),
			}).Errorf("action step panicked: %v", r)
			res = failed(fmt.Sprintf("panic: %v", r))
		}
	}()
	if a.Action == nil {
		return completed("")
	}

	switch movementruntime.Step(env, a, a.Action.At().Stand) {
	case movementruntime.Moving:
		return continuing()
	case movementruntime.Blocked:
		return failed("path blocked")
	}

	if !positioned(env, a) {
		return failed("not in position")
	}
	a.ActionTimer += dt
	return execute(env, a)
}

func execute(env agentenv.Env, a *modelpkg.Agent) Result {
	switch v := a.Action.(type) {
	case *tasks.Idle, *tasks.Wander:
		return completed("")
	case *tasks.Drink:
		return drink(env, a, v)
	case *tasks.Eat:
		return eat(env, a, v)
	case *tasks.Rest:
		return rest(env, a)
	case *tasks.Gather:
		return gather(env, a, v)
	case *tasks.Craft:
		return craft(env, a, v)
	case *tasks.Invent:
		return invent(env, a)
	case *tasks.GoToWorkbench:
		return arriveAtWorkbench(env, a)
	case *tasks.Help:
		return help(env, a, v)
	case *tasks.Teach:
		return teach(env, a, v)
	case *tasks.Signal:
		return signal(env, a, v)
	case *tasks.Investigate:
		return investigate(env, a, v)
	}
	return failed("unknown action " + tasks.Label(a.Action))
}

// positioned reports whether a may act from where it stands. Help and teach
// range is checked by the transactions themselves.
func positioned(env agentenv.Env, a *modelpkg.Agent) bool {
	spot := a.Action.At()
	near := a.Pos == spot.Stand || a.Pos.Chebyshev(spot.Goal) <= 1
	switch v := a.Action.(type) {
	case *tasks.Drink, *tasks.Gather:
		return near
	case *tasks.Eat:
		return v.FromInventory || near
	case *tasks.Craft:
		return !v.RequiresWorkbench || atWorkbench(env, a)
	case *tasks.Invent, *tasks.GoToWorkbench:
		return atWorkbench(env, a)
	}
	return true
}

func atWorkbench(env agentenv.Env, a *modelpkg.Agent) bool {
	_, ok := env.Grid.ResourceWithin(catalogs.ResourceWorkbench, a.Pos, env.Tuning.AI.WorkbenchRadius)
	return ok
}
