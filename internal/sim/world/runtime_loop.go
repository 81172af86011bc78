package world

import (
	"context"
	"time"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.tuning.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.log.WithField("tick_interval", interval).Info("world loop started")
	defer w.closeObservers()

	var pendingAdmin []adminSnapshotReq

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.observerJoin:
			w.handleObserverJoin(req)
		case req := <-w.observerSub:
			w.handleObserverSubscribe(req)
		case id := <-w.observerLeave:
			w.handleObserverLeave(id)
		case req := <-w.control:
			w.handleControl(req)
		case req := <-w.stateReq:
			w.handleStateReq(req)
		case req := <-w.admin:
			pendingAdmin = append(pendingAdmin, req)
		case <-ticker.C:
			if !w.paused {
				w.stepInternal()
			}
			w.handleAdminSnapshotRequests(pendingAdmin)
			pendingAdmin = pendingAdmin[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// StepOnce advances the world by a single tick using the same ordering
// semantics as the server loop. It is intended for tests and replays and
// must not be called while Run is active.
func (w *World) StepOnce() TickLogEntry {
	return w.stepInternal()
}

func (w *World) ObserverJoin() chan<- ObserverJoinRequest { return w.observerJoin }

func (w *World) ObserverSubscribe() chan<- ObserverSubscribeRequest { return w.observerSub }

func (w *World) ObserverLeave() chan<- string { return w.observerLeave }

// sendLatest delivers b, discarding the oldest queued frame when ch is full.
// It reports whether a frame was lost.
func sendLatest(ch chan []byte, b []byte) (dropped bool) {
	select {
	case ch <- b:
		return false
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
	return true
}
