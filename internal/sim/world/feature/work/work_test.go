package work

import (
	"math"
	"testing"

	"genesis.ai/internal/sim/tuning"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
)

func TestSkillMultiplierCurve(t *testing.T) {
	s := tuning.Defaults().Skills
	if got := SkillMultiplier(s, 0); got != 1 {
		t.Fatalf("level 0: expected 1, got %v", got)
	}
	if got := SkillMultiplier(s, 100); math.Abs(got-3) > 1e-9 {
		t.Fatalf("level max: expected 3, got %v", got)
	}
	s.MultiplierScale = -5
	if got := SkillMultiplier(s, 100); got != s.MinMultiplier {
		t.Fatalf("expected floor %v, got %v", s.MinMultiplier, got)
	}
}

func TestLearnSkillBoundedAndMonotonic(t *testing.T) {
	s := tuning.Defaults().Skills
	a := &modelpkg.Agent{Skills: map[string]float64{"GatherWood": 0}}
	if !LearnSkill(a, s, "GatherWood", 1) {
		t.Fatalf("expected a gain at level 0")
	}
	if got := a.Skill("GatherWood"); math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("expected 0.8, got %v", got)
	}
	if LearnSkill(a, s, "GatherWood", 0.001) {
		t.Fatalf("tiny boosts must not apply")
	}
	a.Skills["GatherWood"] = 99.9
	LearnSkill(a, s, "GatherWood", 10)
	if got := a.Skill("GatherWood"); got > s.Max {
		t.Fatalf("skill exceeded max: %v", got)
	}
	if LearnSkill(a, s, "", 1) {
		t.Fatalf("empty skill must not learn")
	}
}

func TestTimedProgress(t *testing.T) {
	if TimedProgress(1, 4) != 0.25 || TimedProgress(9, 4) != 1 || TimedProgress(1, 0) != 0 {
		t.Fatalf("unexpected progress values")
	}
}
