package ids

import (
	"strconv"
	"strings"
)

// Sequence issues monotonically increasing agent ids. The zero value starts at 1.
type Sequence struct {
	next uint64
}

func NewSequence(next uint64) *Sequence {
	return &Sequence{next: next}
}

func (s *Sequence) Next() uint64 {
	if s.next == 0 {
		s.next = 1
	}
	id := s.next
	s.next++
	return id
}

// Peek is the id the next call to Next will return; snapshots persist it.
func (s *Sequence) Peek() uint64 {
	if s.next == 0 {
		return 1
	}
	return s.next
}

// Observe bumps the sequence past an id issued elsewhere (e.g. restored state).
func (s *Sequence) Observe(id uint64) {
	if id >= s.Peek() {
		s.next = id + 1
	}
}

func AgentLabel(id uint64) string {
	return "A" + strconv.FormatUint(id, 10)
}

func ParseAgentLabel(label string) (uint64, bool) {
	if !strings.HasPrefix(label, "A") {
		return 0, false
	}
	n, err := strconv.ParseUint(label[1:], 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}
