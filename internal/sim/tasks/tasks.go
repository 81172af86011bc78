package tasks

import (
	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/world/logic/point"
)

type Kind string

const (
	KindIdle          Kind = "IDLE"
	KindDrink         Kind = "DRINK"
	KindEat           Kind = "EAT"
	KindGather        Kind = "GATHER"
	KindCraft         Kind = "CRAFT"
	KindInvent        Kind = "INVENT"
	KindGoToWorkbench Kind = "GO_TO_WORKBENCH"
	KindHelp          Kind = "HELP"
	KindTeach         Kind = "TEACH"
	KindSignal        Kind = "SIGNAL"
	KindInvestigate   Kind = "INVESTIGATE"
	KindWander        Kind = "WANDER"
	KindRest          Kind = "REST"
)

// Action is the closed set of things an agent can be doing. Only pointer
// variants implement it.
type Action interface {
	Kind() Kind
	At() Spot
	isAction()
}

// Spot holds the cell acted upon and the walkable cell occupied while acting.
type Spot struct {
	Goal  point.Point
	Stand point.Point
}

func (s Spot) At() Spot { return s }

type Idle struct{ Spot }

// Drink from water terrain next to Stand.
type Drink struct{ Spot }

// Eat from a food node, or from the inventory when FromInventory is set.
type Eat struct {
	Spot
	FromInventory bool
	Item          string
}

type Gather struct {
	Spot
	Resource catalogs.ResourceType
	Quantity int // held amount that ends the gather loop
}

type Craft struct {
	Spot
	RecipeID          string
	RequiresWorkbench bool
}

type Invent struct{ Spot }

type Purpose string

const PurposeInvent Purpose = "invent"

type GoToWorkbench struct {
	Spot
	Purpose Purpose
}

type Help struct {
	Spot
	TargetID uint64
	Item     string
}

type Teach struct {
	Spot
	TargetID uint64
	Skill    string
}

type Signal struct {
	Spot
	Type string
}

// Investigate walks to a reported food sighting.
type Investigate struct {
	Spot
	Resource catalogs.ResourceType
	Source   uint64
}

type Wander struct{ Spot }

type Rest struct{ Spot }

func (Idle) Kind() Kind          { return KindIdle }
func (Drink) Kind() Kind         { return KindDrink }
func (Eat) Kind() Kind           { return KindEat }
func (Gather) Kind() Kind        { return KindGather }
func (Craft) Kind() Kind         { return KindCraft }
func (Invent) Kind() Kind        { return KindInvent }
func (GoToWorkbench) Kind() Kind { return KindGoToWorkbench }
func (Help) Kind() Kind          { return KindHelp }
func (Teach) Kind() Kind         { return KindTeach }
func (Signal) Kind() Kind        { return KindSignal }
func (Investigate) Kind() Kind   { return KindInvestigate }
func (Wander) Kind() Kind        { return KindWander }
func (Rest) Kind() Kind          { return KindRest }

func (*Idle) isAction()          {}
func (*Drink) isAction()         {}
func (*Eat) isAction()           {}
func (*Gather) isAction()        {}
func (*Craft) isAction()         {}
func (*Invent) isAction()        {}
func (*GoToWorkbench) isAction() {}
func (*Help) isAction()          {}
func (*Teach) isAction()         {}
func (*Signal) isAction()        {}
func (*Investigate) isAction()   {}
func (*Wander) isAction()        {}
func (*Rest) isAction()          {}

// Label is a short human-readable description for logs and observers.
func Label(a Action) string {
	switch v := a.(type) {
	case nil:
		return string(KindIdle)
	case *Gather:
		return string(v.Kind()) + ":" + string(v.Resource)
	case *Craft:
		return string(v.Kind()) + ":" + v.RecipeID
	case *Signal:
		return string(v.Kind()) + ":" + v.Type
	case *Teach:
		return string(v.Kind()) + ":" + v.Skill
	case *Help:
		return string(v.Kind()) + ":" + v.Item
	default:
		return string(a.Kind())
	}
}
