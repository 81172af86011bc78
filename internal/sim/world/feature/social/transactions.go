package social

import (
	"errors"
	"math"

	"genesis.ai/internal/sim/world/feature/work"
	"genesis.ai/internal/sim/world/featurectx/agentenv"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
)

var (
	ErrTargetGone    = errors.New("target is gone")
	ErrOutOfRange    = errors.New("target out of range")
	ErrNoItem        = errors.New("item not held")
	ErrRecipientFull = errors.New("recipient inventory full")
	ErrNoAdvantage   = errors.New("no skill advantage left")
)

func ValidateHelp(env agentenv.Env, helper, target *modelpkg.Agent, item string) error {
	if !target.Alive() || target.ID == helper.ID {
		return ErrTargetGone
	}
	if helper.Pos.Chebyshev(target.Pos) > env.Tuning.Social.HelpRadius {
		return ErrOutOfRange
	}
	if helper.Inventory[item] <= 0 {
		return ErrNoItem
	}
	if target.InventoryFull() {
		return ErrRecipientFull
	}
	return nil
}

// AttemptHelp hands one item from helper to target.
func AttemptHelp(env agentenv.Env, helper, target *modelpkg.Agent, item string) error {
	if err := ValidateHelp(env, helper, target, item); err != nil {
		return err
	}
	s := env.Tuning.Social
	helper.RemoveItem(item, 1)
	target.AddItem(item, 1)
	helper.SpendEnergy(env.Tuning.Actions.HelpEnergyCost)
	helper.Knowledge.AdjustRelationship(target.ID, s.HelpRelationshipGain)
	target.Knowledge.AdjustRelationship(helper.ID, s.HelpRelationshipGain)
	return nil
}

func ValidateTeach(env agentenv.Env, teacher, student *modelpkg.Agent, skill string) error {
	s := env.Tuning.Social
	if !student.Alive() || student.ID == teacher.ID {
		return ErrTargetGone
	}
	if teacher.Pos.Chebyshev(student.Pos) > s.TeachRadius {
		return ErrOutOfRange
	}
	if teacher.Skill(skill) < student.Skill(skill)+s.TeachMinAdvantage {
		return ErrNoAdvantage
	}
	return nil
}

// AttemptTeach passes skill on with a boost scaled by the teacher's
// intelligence.
func AttemptTeach(env agentenv.Env, teacher, student *modelpkg.Agent, skill string) error {
	if err := ValidateTeach(env, teacher, student, skill); err != nil {
		return err
	}
	s := env.Tuning.Social
	work.LearnSkill(student, env.Tuning.Skills, skill, s.TeachBoost*math.Max(0.5, teacher.Intelligence))
	teacher.SpendEnergy(env.Tuning.Actions.TeachEnergyCost)
	teacher.Knowledge.AdjustRelationship(student.ID, s.TeachRelationshipGain)
	student.Knowledge.AdjustRelationship(teacher.ID, s.TeachRelationshipGain)
	return nil
}
