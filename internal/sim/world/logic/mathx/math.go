package mathx

// Rand is the subset of *rand.Rand the simulation draws from.
type Rand interface {
	Float64() float64
	Intn(n int) int
	Perm(n int) []int
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Chance reports whether a draw from r falls under p. A nil r never succeeds.
func Chance(r Rand, p float64) bool {
	if r == nil || p <= 0 {
		return false
	}
	return r.Float64() < p
}

// Uniform draws in [lo, hi); a nil r yields the midpoint.
func Uniform(r Rand, lo, hi float64) float64 {
	if r == nil {
		return (lo + hi) / 2
	}
	return lo + r.Float64()*(hi-lo)
}

// Between draws an int in [lo, hi]; a nil r yields lo.
func Between(r Rand, lo, hi int) int {
	if r == nil || hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}
