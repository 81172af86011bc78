package world

import (
	"encoding/json"
	"sort"

	"genesis.ai/internal/observerproto"
	"genesis.ai/internal/sim/tasks"
	workruntime "genesis.ai/internal/sim/world/feature/work/runtime"
	"genesis.ai/internal/sim/world/featurectx/agentenv"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
	"genesis.ai/internal/sim/world/logic/point"
	"genesis.ai/internal/sim/world/terrain/store"
)

// ObserverJoinRequest registers a read-only observer session that receives
// one TICK frame per tick on TickOut. All observer state is maintained by the
// world loop goroutine, which closes TickOut when the session goes away.
type ObserverJoinRequest struct {
	SessionID   string
	TickOut     chan []byte
	AgentDetail bool
}

// ObserverSubscribeRequest updates an existing observer session subscription settings.
type ObserverSubscribeRequest struct {
	SessionID   string
	AgentDetail bool
}

type observerClient struct {
	id      string
	tickOut chan []byte
	detail  bool

	// nodes is the last quantity sent per node cell; nil forces a full resend.
	nodes map[point.Point]int
}

func (w *World) handleObserverJoin(req ObserverJoinRequest) {
	if req.SessionID == "" || req.TickOut == nil {
		return
	}
	if old := w.observers[req.SessionID]; old != nil {
		close(old.tickOut)
	}
	w.observers[req.SessionID] = &observerClient{
		id:      req.SessionID,
		tickOut: req.TickOut,
		detail:  req.AgentDetail,
	}
	w.log.WithField("session", req.SessionID).Info("observer joined")
}

func (w *World) handleObserverSubscribe(req ObserverSubscribeRequest) {
	c := w.observers[req.SessionID]
	if c == nil {
		return
	}
	c.detail = req.AgentDetail
}

func (w *World) handleObserverLeave(sessionID string) {
	c := w.observers[sessionID]
	if c == nil {
		return
	}
	close(c.tickOut)
	delete(w.observers, sessionID)
	w.log.WithField("session", sessionID).Info("observer left")
}

func (w *World) closeObservers() {
	for id, c := range w.observers {
		close(c.tickOut)
		delete(w.observers, id)
	}
}

func (w *World) stepObservers(nowTick uint64, entry *TickLogEntry) {
	if len(w.observers) == 0 {
		return
	}
	env := w.env(nowTick)
	clock := observerproto.ClockState{
		Elapsed:   w.grid.Clock.Elapsed,
		Day:       w.grid.Clock.Day(),
		TimeOfDay: w.grid.Clock.TimeOfDay(),
	}
	var brief, full []observerproto.AgentState
	for _, a := range w.agents {
		brief = append(brief, agentState(env, a, false))
		full = append(full, agentState(env, a, true))
	}
	deaths := make([]observerproto.DeathInfo, 0, len(entry.Deaths))
	for _, d := range entry.Deaths {
		deaths = append(deaths, observerproto.DeathInfo{AgentID: d.AgentID, Cause: d.Cause, Pos: d.Pos})
	}
	signals := make([]observerproto.SignalInfo, 0, len(entry.Signals))
	for _, s := range entry.Signals {
		signals = append(signals, observerproto.SignalInfo{Sender: s.Sender, Type: s.Type, Origin: s.Origin, Recipients: s.Recipients})
	}
	nodes := w.grid.Nodes()

	for _, c := range w.observers {
		msg := observerproto.TickMsg{
			Type:            observerproto.TypeTick,
			ProtocolVersion: observerproto.Version,
			Tick:            nowTick,
			Clock:           clock,
			Agents:          brief,
			Deaths:          deaths,
			Signals:         signals,
		}
		if c.detail {
			msg.Agents = full
		}
		next, changed := nodeDelta(c.nodes, nodes)
		msg.Nodes = changed
		b, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		if sendLatest(c.tickOut, b) {
			// A lost frame may have carried node changes.
			c.nodes = nil
			continue
		}
		c.nodes = next
	}
}

func nodeDelta(prev map[point.Point]int, nodes []store.Node) (map[point.Point]int, []observerproto.NodeState) {
	next := make(map[point.Point]int, len(nodes))
	var out []observerproto.NodeState
	for _, n := range nodes {
		next[n.Pos] = n.Quantity
		if q, ok := prev[n.Pos]; prev != nil && ok && q == n.Quantity {
			continue
		}
		out = append(out, observerproto.NodeState{
			Type:        string(n.Type),
			Pos:         pos2(n.Pos),
			Quantity:    n.Quantity,
			MaxQuantity: n.MaxQuantity,
		})
	}
	var removed []point.Point
	for p := range prev {
		if _, ok := next[p]; !ok {
			removed = append(removed, p)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].Less(removed[j]) })
	for _, p := range removed {
		out = append(out, observerproto.NodeState{Pos: pos2(p), Removed: true})
	}
	return next, out
}

func agentState(env agentenv.Env, a *modelpkg.Agent, detail bool) observerproto.AgentState {
	v := a.View(detail)
	st := observerproto.AgentState{
		ID:     v.ID,
		Pos:    v.Pos,
		Health: v.Health,
		Energy: v.Energy,
		Hunger: v.Hunger,
		Thirst: v.Thirst,
		Path:   v.Path,
	}
	if a.Action != nil {
		st.Task = &observerproto.TaskState{
			Kind:     string(a.Action.Kind()),
			Label:    tasks.Label(a.Action),
			Target:   pos2(a.Action.At().Goal),
			Progress: workruntime.Progress(env, a),
		}
	}
	if detail {
		st.Inventory = v.Inventory
		st.Skills = v.Skills
		if v.Knowledge != nil {
			st.KnownRecipes = v.Knowledge.KnownRecipes
		}
	}
	return st
}
