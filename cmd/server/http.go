package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"genesis.ai/internal/sim/world"
	"genesis.ai/internal/transport/observer"
)

func newMux(w *world.World, idx runtimeIndex, enableAdmin bool, logger logrus.FieldLogger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", metricsHandler(w, idx))
	if !enableAdmin {
		return mux
	}

	// Local-only admin endpoints.
	mux.HandleFunc("/admin/v1/state", adminOnly(http.MethodGet, func(rw http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		st, err := w.RequestState(ctx, r.URL.Query().Get("detail") == "1")
		if err != nil {
			writeJSON(rw, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		writeJSON(rw, http.StatusOK, struct {
			world.PublicState
			Metrics world.WorldMetrics `json:"metrics"`
		}{st, w.Metrics()})
	}))
	mux.HandleFunc("/admin/v1/snapshot", adminOnly(http.MethodPost, func(rw http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		tick, err := w.RequestSnapshot(ctx)
		if err != nil {
			status := http.StatusServiceUnavailable
			if errors.Is(err, world.ErrSnapshotBackpressure) {
				status = http.StatusTooManyRequests
			}
			writeJSON(rw, status, map[string]any{"ok": false, "tick": tick, "error": err.Error()})
			return
		}
		writeJSON(rw, http.StatusOK, map[string]any{"ok": true, "tick": tick})
	}))
	control := func(pause bool) http.HandlerFunc {
		return adminOnly(http.MethodPost, func(rw http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()
			req := w.RequestResume
			if pause {
				req = w.RequestPause
			}
			paused, err := req(ctx)
			if err != nil {
				writeJSON(rw, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
				return
			}
			writeJSON(rw, http.StatusOK, map[string]any{"ok": true, "paused": paused, "tick": w.CurrentTick()})
		})
	}
	mux.HandleFunc("/admin/v1/pause", control(true))
	mux.HandleFunc("/admin/v1/resume", control(false))

	obsSrv := observer.NewServer(w, logger)
	mux.HandleFunc("/admin/v1/observer/bootstrap", obsSrv.BootstrapHandler())
	mux.HandleFunc("/admin/v1/observer/ws", obsSrv.WSHandler())
	return mux
}

func adminOnly(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !observer.IsLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		h(rw, r)
	}
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func metricsHandler(w *world.World, idx runtimeIndex) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		m := w.Metrics()
		id := w.ID()

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP genesis_world_tick Current world tick.\n")
		fmt.Fprintf(rw, "# TYPE genesis_world_tick gauge\n")
		fmt.Fprintf(rw, "genesis_world_tick{world=%q} %d\n", id, m.Tick)

		fmt.Fprintf(rw, "# HELP genesis_world_agents Living agents.\n")
		fmt.Fprintf(rw, "# TYPE genesis_world_agents gauge\n")
		fmt.Fprintf(rw, "genesis_world_agents{world=%q} %d\n", id, m.Agents)

		fmt.Fprintf(rw, "# HELP genesis_world_nodes Resource nodes on the map.\n")
		fmt.Fprintf(rw, "# TYPE genesis_world_nodes gauge\n")
		fmt.Fprintf(rw, "genesis_world_nodes{world=%q} %d\n", id, m.Nodes)

		fmt.Fprintf(rw, "# HELP genesis_world_observers Connected observer sessions.\n")
		fmt.Fprintf(rw, "# TYPE genesis_world_observers gauge\n")
		fmt.Fprintf(rw, "genesis_world_observers{world=%q} %d\n", id, m.Observers)

		fmt.Fprintf(rw, "# HELP genesis_world_deaths_total Agents that died since start.\n")
		fmt.Fprintf(rw, "# TYPE genesis_world_deaths_total counter\n")
		fmt.Fprintf(rw, "genesis_world_deaths_total{world=%q} %d\n", id, m.DeathsTotal)

		paused := 0
		if m.Paused {
			paused = 1
		}
		fmt.Fprintf(rw, "# HELP genesis_world_paused 1 while the simulation is paused.\n")
		fmt.Fprintf(rw, "# TYPE genesis_world_paused gauge\n")
		fmt.Fprintf(rw, "genesis_world_paused{world=%q} %d\n", id, paused)

		fmt.Fprintf(rw, "# HELP genesis_world_queue_depth Channel backlog depth.\n")
		fmt.Fprintf(rw, "# TYPE genesis_world_queue_depth gauge\n")
		fmt.Fprintf(rw, "genesis_world_queue_depth{world=%q,queue=%q} %d\n", id, "admin", m.QueueDepths.Admin)
		fmt.Fprintf(rw, "genesis_world_queue_depth{world=%q,queue=%q} %d\n", id, "control", m.QueueDepths.Control)
		fmt.Fprintf(rw, "genesis_world_queue_depth{world=%q,queue=%q} %d\n", id, "state", m.QueueDepths.State)
		fmt.Fprintf(rw, "genesis_world_queue_depth{world=%q,queue=%q} %d\n", id, "observer_join", m.QueueDepths.ObserverJoin)

		fmt.Fprintf(rw, "# HELP genesis_world_step_ms Last tick step duration in milliseconds.\n")
		fmt.Fprintf(rw, "# TYPE genesis_world_step_ms gauge\n")
		fmt.Fprintf(rw, "genesis_world_step_ms{world=%q} %.3f\n", id, m.StepMS)

		if idx == nil {
			return
		}
		s := idx.Stats()
		fmt.Fprintf(rw, "# HELP genesis_index_queue_depth Index writer queue depth.\n")
		fmt.Fprintf(rw, "# TYPE genesis_index_queue_depth gauge\n")
		fmt.Fprintf(rw, "genesis_index_queue_depth{world=%q} %d\n", id, s.QueueDepth)

		fmt.Fprintf(rw, "# HELP genesis_index_dropped_total Index writes dropped because the queue was full.\n")
		fmt.Fprintf(rw, "# TYPE genesis_index_dropped_total counter\n")
		fmt.Fprintf(rw, "genesis_index_dropped_total{world=%q,kind=%q} %d\n", id, "tick", s.DropTickTotal)
		fmt.Fprintf(rw, "genesis_index_dropped_total{world=%q,kind=%q} %d\n", id, "snapshot", s.DropSnapshotTotal)
	}
}
