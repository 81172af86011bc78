package observerproto

// Version is the observer protocol version.
const Version = "1.0"

const (
	TypeSubscribe = "SUBSCRIBE"
	TypeTick      = "TICK"
)

// Client -> Server. First message on the observer WS connection, and can be re-sent to update settings.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// AgentDetail adds inventory, skills and knowledge to every agent.
	AgentDetail bool `json:"agent_detail,omitempty"`
}

// HTTP response for GET /admin/v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string      `json:"protocol_version"`
	WorldID         string      `json:"world_id"`
	RunID           string      `json:"run_id"`
	Tick            uint64      `json:"tick"`
	WorldParams     WorldParams `json:"world_params"`
	Terrain         []uint8     `json:"terrain"` // row-major: 0 ground, 1 water, 2 obstacle
	CatalogsDigest  string      `json:"catalogs_digest"`
}

type WorldParams struct {
	TickRateHz        int     `json:"tick_rate_hz"`
	SimSecondsPerTick float64 `json:"sim_seconds_per_tick"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	DayLength         float64 `json:"day_length"`
	Seed              int64   `json:"seed"`
}

// Server -> Client. Sent every tick.
type TickMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`

	Clock ClockState `json:"clock"`

	Agents []AgentState `json:"agents"`
	// Nodes holds the nodes that changed since the last frame sent to this
	// session; the first frame carries all of them.
	Nodes   []NodeState  `json:"nodes,omitempty"`
	Deaths  []DeathInfo  `json:"deaths,omitempty"`
	Signals []SignalInfo `json:"signals,omitempty"`
}

type ClockState struct {
	Elapsed   float64 `json:"elapsed"`
	Day       int     `json:"day"`
	TimeOfDay float64 `json:"time_of_day"`
}

type AgentState struct {
	ID  uint64 `json:"id"`
	Pos [2]int `json:"pos"`

	Health float64 `json:"health"`
	Energy float64 `json:"energy"`
	Hunger float64 `json:"hunger"`
	Thirst float64 `json:"thirst"`

	Task *TaskState `json:"task,omitempty"`
	Path [][2]int   `json:"path,omitempty"`

	Inventory    map[string]int     `json:"inventory,omitempty"`
	Skills       map[string]float64 `json:"skills,omitempty"`
	KnownRecipes []string           `json:"known_recipes,omitempty"`
}

type TaskState struct {
	Kind     string  `json:"kind"`
	Label    string  `json:"label"`
	Target   [2]int  `json:"target"`
	Progress float64 `json:"progress"`
}

type NodeState struct {
	Type        string `json:"type"`
	Pos         [2]int `json:"pos"`
	Quantity    int    `json:"quantity"`
	MaxQuantity int    `json:"max_quantity"`
	Removed     bool   `json:"removed,omitempty"`
}

type DeathInfo struct {
	AgentID uint64 `json:"agent_id"`
	Cause   string `json:"cause"`
	Pos     [2]int `json:"pos"`
}

type SignalInfo struct {
	Sender     uint64 `json:"sender"`
	Type       string `json:"type"`
	Origin     [2]int `json:"origin"`
	Recipients int    `json:"recipients"`
}
