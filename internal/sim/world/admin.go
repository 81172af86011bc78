package world

import (
	"context"
	"errors"

	"genesis.ai/internal/sim/world/logic/point"
)

var (
	ErrSnapshotUnavailable  = errors.New("snapshot sink not configured")
	ErrSnapshotBackpressure = errors.New("snapshot sink backpressure")
)

type adminSnapshotReq struct {
	Resp chan adminSnapshotResp
}

type adminSnapshotResp struct {
	Tick uint64
	Err  error
}

type controlReq struct {
	Pause bool
	Resp  chan bool
}

type stateReq struct {
	Detail bool
	Resp   chan PublicState
}

// RequestSnapshot asks the world loop goroutine to enqueue a snapshot.
// It is safe to call from other goroutines (e.g. HTTP handlers).
func (w *World) RequestSnapshot(ctx context.Context) (tick uint64, err error) {
	if w == nil || w.admin == nil {
		return 0, ErrSnapshotUnavailable
	}
	resp := make(chan adminSnapshotResp, 1)
	select {
	case w.admin <- adminSnapshotReq{Resp: resp}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case r := <-resp:
		return r.Tick, r.Err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (w *World) handleAdminSnapshotRequests(reqs []adminSnapshotReq) {
	if len(reqs) == 0 {
		return
	}
	resp := adminSnapshotResp{Tick: w.tick.Load()}
	if w.snapshotSink == nil {
		resp.Err = ErrSnapshotUnavailable
	} else {
		select {
		case w.snapshotSink <- w.ExportSnapshot():
		default:
			resp.Err = ErrSnapshotBackpressure
		}
	}
	for _, r := range reqs {
		if r.Resp == nil {
			continue
		}
		select {
		case r.Resp <- resp:
		default:
			// Client timed out; don't block the sim loop.
		}
	}
}

// RequestPause stops ticking until RequestResume. It reports the paused
// state after the request is applied.
func (w *World) RequestPause(ctx context.Context) (bool, error) {
	return w.requestControl(ctx, true)
}

func (w *World) RequestResume(ctx context.Context) (bool, error) {
	return w.requestControl(ctx, false)
}

func (w *World) requestControl(ctx context.Context, pause bool) (bool, error) {
	resp := make(chan bool, 1)
	select {
	case w.control <- controlReq{Pause: pause, Resp: resp}:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case paused := <-resp:
		return paused, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (w *World) handleControl(req controlReq) {
	if w.paused != req.Pause {
		w.paused = req.Pause
		w.log.WithField("tick", w.tick.Load()).Infof("world paused=%v", w.paused)
		w.storeMetrics(w.Metrics().StepMS)
	}
	if req.Resp != nil {
		select {
		case req.Resp <- w.paused:
		default:
		}
	}
}

// RequestState returns the public state as seen between ticks.
func (w *World) RequestState(ctx context.Context, detail bool) (PublicState, error) {
	resp := make(chan PublicState, 1)
	select {
	case w.stateReq <- stateReq{Detail: detail, Resp: resp}:
	case <-ctx.Done():
		return PublicState{}, ctx.Err()
	}
	select {
	case st := <-resp:
		return st, nil
	case <-ctx.Done():
		return PublicState{}, ctx.Err()
	}
}

func (w *World) handleStateReq(req stateReq) {
	if req.Resp == nil {
		return
	}
	select {
	case req.Resp <- w.PublicState(req.Detail):
	default:
	}
}

// PublicState builds the read-only world view. Loop goroutine or tests only.
func (w *World) PublicState(detail bool) PublicState {
	st := w.grid.Export()
	out := PublicState{
		WorldID: w.cfg.ID,
		Tick:    w.tick.Load(),
		Width:   st.Width,
		Height:  st.Height,
		Terrain: st.Terrain,
		Nodes:   make([]NodeView, 0, len(st.Nodes)),
		Clock: ClockView{
			Elapsed:   st.Clock.Elapsed,
			Day:       st.Clock.Day(),
			TimeOfDay: st.Clock.TimeOfDay(),
			DayLength: st.Clock.DayLength,
		},
		Paused: w.paused,
	}
	for _, n := range st.Nodes {
		out.Nodes = append(out.Nodes, NodeView{
			Type:        n.Type,
			Pos:         pos2(n.Pos),
			Quantity:    n.Quantity,
			MaxQuantity: n.MaxQuantity,
			RegenRate:   n.RegenRate,
		})
	}
	for _, a := range w.agents {
		out.Agents = append(out.Agents, a.View(detail))
	}
	return out
}

func pos2(p point.Point) [2]int { return [2]int{p.X, p.Y} }
