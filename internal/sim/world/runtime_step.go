package world

import (
	"time"

	"github.com/sirupsen/logrus"

	"genesis.ai/internal/sim/tasks"
	"genesis.ai/internal/sim/world/feature/decision"
	"genesis.ai/internal/sim/world/feature/social"
	survivalruntime "genesis.ai/internal/sim/world/feature/survival/runtime"
	workruntime "genesis.ai/internal/sim/world/feature/work/runtime"
	"genesis.ai/internal/sim/world/featurectx/agentenv"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
	"genesis.ai/internal/sim/world/logic/point"
)

const triggerDecide = "decide"

func (w *World) stepInternal() TickLogEntry {
	stepStart := time.Now()
	nowTick := w.tick.Load()
	dt := w.tuning.SimSecondsPerTick()

	entry := TickLogEntry{Tick: nowTick, RunID: w.cfg.RunID, SimTime: w.grid.Clock.Elapsed}
	w.entry = &entry
	defer func() { w.entry = nil }()

	env := w.env(nowTick)
	living := w.Agents()
	for _, a := range living {
		w.stepAgent(env, a, dt)
	}

	w.grid.Regenerate(dt, w.rng)
	w.grid.Clock.Advance(dt)
	w.removeDead()
	entry.Population = len(w.agents)

	// Observer stream (admin-only, read-only).
	w.stepObservers(nowTick, &entry)

	if w.tickLogger != nil {
		if err := w.tickLogger.WriteTick(entry); err != nil {
			w.log.WithError(err).WithField("tick", nowTick).Warn("tick log write failed")
		}
	}

	nextTick := w.tick.Add(1)

	// Snapshot every N ticks; the snapshot tick is the number of completed ticks.
	if w.snapshotSink != nil && w.tuning.SnapshotEveryTicks > 0 {
		if nextTick%uint64(w.tuning.SnapshotEveryTicks) == 0 {
			select {
			case w.snapshotSink <- w.ExportSnapshot():
			default:
				w.log.WithField("tick", nextTick).Warn("snapshot sink backed up; snapshot dropped")
			}
		}
	}

	w.storeMetrics(float64(time.Since(stepStart).Microseconds()) / 1000.0)
	return entry
}

// stepAgent runs one agent through decay, death, signal reaction, decision
// or execution, passive learning and relationship decay.
func (w *World) stepAgent(env agentenv.Env, a *modelpkg.Agent, dt float64) {
	if !a.Alive() {
		return
	}
	log := w.log.WithFields(logrus.Fields{"tick": env.Tick(), "agent_id": a.ID})

	survivalruntime.Decay(a, survivalruntime.TickInput{DT: dt, Needs: w.tuning.Needs})
	if survivalruntime.CheckDeath(a, survivalruntime.TickHooks{OnDeath: w.onDeath}) {
		return
	}

	if r, ok := social.ProcessSignal(env, a); ok {
		if r.Interrupted {
			w.recordDecision(a, r.Signal)
		}
		if r.LearnedRecipe != "" {
			log.WithFields(logrus.Fields{"recipe": r.LearnedRecipe, "signal": r.Signal}).Debug("learned recipe by observation")
		}
	}

	switch {
	case a.Action == nil:
		ch := decision.Decide(env, a)
		w.recordDecision(a, triggerDecide)
		log.WithFields(logrus.Fields{
			"action":     tasks.Label(ch.Action),
			"utility":    ch.Utility,
			"considered": ch.Considered,
		}).Debug("decided")
	case a.DeferExecution:
		a.DeferExecution = false
	default:
		label := tasks.Label(a.Action)
		res := workruntime.Step(env, a, dt)
		if res.Done() {
			w.recordOutcome(a.ID, label, res)
			fields := logrus.Fields{"action": label, "status": res.Status.String(), "reason": res.Reason}
			if res.Status == workruntime.Failed {
				log.WithFields(fields).Debug("action failed")
			} else {
				log.WithFields(fields).Debug("action completed")
			}
			a.ClearAction()
		}
	}

	for _, skill := range social.PassiveLearning(env, a) {
		log.WithField("skill", skill).Debug("learned by watching")
	}
	a.Knowledge.DecayRelationships(dt, w.tuning.Social.RelationshipDecay, w.tuning.Social.RelationshipFloor)
}

// onDeath records the death and warns everyone nearby while the tick is
// still running, so agents later in the order can react this tick.
func (w *World) onDeath(a *modelpkg.Agent, cause string) {
	w.deathsTotal++
	if w.entry != nil {
		w.entry.Deaths = append(w.entry.Deaths, RecordedDeath{AgentID: a.ID, Cause: cause, Pos: pos2(a.Pos)})
	}
	w.log.WithFields(logrus.Fields{"agent_id": a.ID, "cause": cause, "pos": a.Pos}).Info("agent died")
	w.broadcast(a, modelpkg.SignalDanger, a.Pos)
}

func (w *World) removeDead() {
	kept := w.agents[:0]
	for _, a := range w.agents {
		if a.Alive() {
			kept = append(kept, a)
		}
	}
	for i := len(kept); i < len(w.agents); i++ {
		w.agents[i] = nil
	}
	w.agents = kept
}

func (w *World) env(tick uint64) agentenv.Env {
	return agentenv.Env{
		Grid:        w.grid,
		Catalogs:    w.catalogs,
		Tuning:      w.tuning,
		Rng:         w.rng,
		Log:         w.log,
		TickFn:      func() uint64 { return tick },
		AgentsFn:    func() []*modelpkg.Agent { return w.agents },
		BroadcastFn: w.broadcast,
	}
}

func (w *World) broadcast(sender *modelpkg.Agent, typ string, origin point.Point) int {
	n := social.Broadcast(sender, typ, origin, w.grid.Clock.Elapsed, w.tuning.Social.SignalRadius, w.agents)
	if w.entry != nil {
		w.entry.Signals = append(w.entry.Signals, RecordedSignal{
			Sender:     sender.ID,
			Type:       typ,
			Origin:     pos2(origin),
			Recipients: n,
		})
	}
	return n
}

func (w *World) recordDecision(a *modelpkg.Agent, trigger string) {
	if w.entry == nil {
		return
	}
	w.entry.Decisions = append(w.entry.Decisions, RecordedDecision{
		AgentID: a.ID,
		Action:  tasks.Label(a.Action),
		Utility: a.ActionUtility,
		Trigger: trigger,
	})
}

func (w *World) recordOutcome(agentID uint64, label string, res workruntime.Result) {
	if w.entry == nil {
		return
	}
	w.entry.Outcomes = append(w.entry.Outcomes, RecordedOutcome{
		AgentID: agentID,
		Action:  label,
		Status:  res.Status.String(),
		Reason:  res.Reason,
	})
}
