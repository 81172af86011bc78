package store

import (
	"errors"

	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/world/logic/point"
)

type Terrain uint8

const (
	TerrainGround   Terrain = 0
	TerrainWater    Terrain = 1
	TerrainObstacle Terrain = 2
)

var (
	ErrOutOfBounds     = errors.New("cell out of bounds")
	ErrNotGround       = errors.New("resource nodes require ground terrain")
	ErrOccupied        = errors.New("cell already holds a resource node")
	ErrUnknownResource = errors.New("unknown resource type")
)

type Node struct {
	Type        catalogs.ResourceType
	Pos         point.Point
	Quantity    int
	MaxQuantity int
	RegenRate   float64
	BlocksWalk  bool
}

// Target is the result of a resource search: the resource cell and the
// walkable cell an agent has to occupy to use it.
type Target struct {
	Goal  point.Point
	Stand point.Point
	Dist  int
}

// Grid owns terrain, resource nodes and the derived walkability mask.
type Grid struct {
	Width  int
	Height int
	Clock  Clock

	terrain  []Terrain
	walkable []bool
	nodes    map[point.Point]*Node
	defs     map[catalogs.ResourceType]catalogs.ResourceDef
}

func New(width, height int, resources catalogs.ResourceCatalog, dayLength float64) *Grid {
	g := &Grid{
		Width:    width,
		Height:   height,
		Clock:    Clock{DayLength: dayLength},
		terrain:  make([]Terrain, width*height),
		walkable: make([]bool, width*height),
		nodes:    map[point.Point]*Node{},
		defs:     resources.ByType,
	}
	for i := range g.walkable {
		g.walkable[i] = true
	}
	return g
}

func (g *Grid) idx(p point.Point) int { return p.Y*g.Width + p.X }

func (g *Grid) InBounds(p point.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.Width && p.Y < g.Height
}
