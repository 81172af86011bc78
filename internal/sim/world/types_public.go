package world

import (
	"genesis.ai/internal/sim/catalogs"
	modelpkg "genesis.ai/internal/sim/world/kernel/model"
)

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

// TickLogEntry is the per-tick record written to the event log and index.
type TickLogEntry struct {
	Tick       uint64             `json:"tick"`
	RunID      string             `json:"run_id,omitempty"`
	SimTime    float64            `json:"sim_time"`
	Decisions  []RecordedDecision `json:"decisions,omitempty"`
	Outcomes   []RecordedOutcome  `json:"outcomes,omitempty"`
	Deaths     []RecordedDeath    `json:"deaths,omitempty"`
	Signals    []RecordedSignal   `json:"signals,omitempty"`
	Population int                `json:"population"`
}

type RecordedDecision struct {
	AgentID uint64  `json:"agent_id"`
	Action  string  `json:"action"`
	Utility float64 `json:"utility"`
	// Trigger is "decide" for the utility engine or the signal type that
	// interrupted the previous action.
	Trigger string `json:"trigger"`
}

type RecordedOutcome struct {
	AgentID uint64 `json:"agent_id"`
	Action  string `json:"action"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
}

type RecordedDeath struct {
	AgentID uint64 `json:"agent_id"`
	Cause   string `json:"cause"`
	Pos     [2]int `json:"pos"`
}

type RecordedSignal struct {
	Sender     uint64 `json:"sender"`
	Type       string `json:"type"`
	Origin     [2]int `json:"origin"`
	Recipients int    `json:"recipients"`
}

// PublicState is the read-only view of the whole world.
type PublicState struct {
	WorldID string               `json:"world_id"`
	Tick    uint64               `json:"tick"`
	Width   int                  `json:"width"`
	Height  int                  `json:"height"`
	Terrain []uint8              `json:"terrain"`
	Nodes   []NodeView           `json:"nodes"`
	Clock   ClockView            `json:"clock"`
	Agents  []modelpkg.AgentView `json:"agents"`
	Paused  bool                 `json:"paused"`
}

type NodeView struct {
	Type        catalogs.ResourceType `json:"type"`
	Pos         [2]int                `json:"pos"`
	Quantity    int                   `json:"quantity"`
	MaxQuantity int                   `json:"max_quantity"`
	RegenRate   float64               `json:"regen_rate"`
}

type ClockView struct {
	Elapsed   float64 `json:"elapsed"`
	Day       int     `json:"day"`
	TimeOfDay float64 `json:"time_of_day"`
	DayLength float64 `json:"day_length"`
}
