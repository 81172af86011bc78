package rates

// Window is a fixed-window counter keyed on tick numbers.
type Window struct {
	StartTick uint64
	Count     int
}

// Allow records one event at nowTick and reports whether it fits in the
// current window; cooldownTicks is the wait until the window resets.
func (w *Window) Allow(nowTick uint64, window uint64, max int) (ok bool, cooldownTicks uint64) {
	if window == 0 || max <= 0 {
		return true, 0
	}
	if nowTick < w.StartTick || nowTick-w.StartTick >= window {
		w.StartTick = nowTick
		w.Count = 0
	}
	if w.Count >= max {
		return false, (w.StartTick + window) - nowTick
	}
	w.Count++
	return true, 0
}

// Peek reports whether Allow would succeed without recording anything.
func (w Window) Peek(nowTick uint64, window uint64, max int) bool {
	ok, _ := w.Allow(nowTick, window, max)
	return ok
}
