package work

// TimedProgress is the completed fraction of a timed action phase.
func TimedProgress(elapsed, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return clamp01(elapsed / total)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
