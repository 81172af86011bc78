package world

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`

	Agents      int    `json:"agents"`
	Nodes       int    `json:"nodes"`
	Observers   int    `json:"observers"`
	DeathsTotal uint64 `json:"deaths_total"`
	Paused      bool   `json:"paused"`

	QueueDepths QueueDepths `json:"queue_depths"`

	StepMS float64 `json:"step_ms"`
}

type QueueDepths struct {
	Admin        int `json:"admin"`
	Control      int `json:"control"`
	State        int `json:"state"`
	ObserverJoin int `json:"observer_join"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}

func (w *World) storeMetrics(stepMS float64) {
	w.metrics.Store(WorldMetrics{
		Tick:        w.tick.Load(),
		Agents:      len(w.agents),
		Nodes:       len(w.grid.Nodes()),
		Observers:   len(w.observers),
		DeathsTotal: w.deathsTotal,
		Paused:      w.paused,
		QueueDepths: QueueDepths{
			Admin:        len(w.admin),
			Control:      len(w.control),
			State:        len(w.stateReq),
			ObserverJoin: len(w.observerJoin),
		},
		StepMS: stepMS,
	})
}
