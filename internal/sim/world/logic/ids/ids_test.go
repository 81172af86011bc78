package ids

import "testing"

func TestSequence(t *testing.T) {
	var s Sequence
	if got := s.Next(); got != 1 {
		t.Fatalf("zero sequence should start at 1, got %d", got)
	}
	if got := s.Next(); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	s.Observe(10)
	if got := s.Peek(); got != 11 {
		t.Fatalf("expected 11 after observe, got %d", got)
	}
	s.Observe(3)
	if got := s.Next(); got != 11 {
		t.Fatalf("observing an old id must not rewind, got %d", got)
	}

	resumed := NewSequence(42)
	if got := resumed.Next(); got != 42 {
		t.Fatalf("expected resumed sequence to continue at 42, got %d", got)
	}
}

func TestAgentLabelRoundTrip(t *testing.T) {
	id, ok := ParseAgentLabel(AgentLabel(17))
	if !ok || id != 17 {
		t.Fatalf("round trip failed: %d %v", id, ok)
	}
	for _, bad := range []string{"", "A", "B7", "A0", "Ax"} {
		if _, ok := ParseAgentLabel(bad); ok {
			t.Fatalf("expected parse failure for %q", bad)
		}
	}
}
