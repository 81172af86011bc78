package point

import "testing"

func TestDistances(t *testing.T) {
	a, b := Pt(1, 1), Pt(4, -1)
	if got := a.DistSq(b); got != 13 {
		t.Fatalf("DistSq=%d", got)
	}
	if got := a.Chebyshev(b); got != 3 {
		t.Fatalf("Chebyshev=%d", got)
	}
	if got := a.Add(Pt(2, 3)).Sub(Pt(1, 1)); got != Pt(2, 3) {
		t.Fatalf("Add/Sub=%v", got)
	}
}

func TestLessIsRowMajor(t *testing.T) {
	if !Pt(9, 0).Less(Pt(0, 1)) {
		t.Fatalf("expected row-major order")
	}
	if Pt(2, 3).Less(Pt(2, 3)) {
		t.Fatalf("point must not be less than itself")
	}
}
