package catalogs

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type ResourceType string

const (
	ResourceFood      ResourceType = "Food"
	ResourceWater     ResourceType = "Water"
	ResourceWood      ResourceType = "Wood"
	ResourceStone     ResourceType = "Stone"
	ResourceWorkbench ResourceType = "Workbench"
)

// BoostCondition names the agent state under which a recipe's priority utility applies.
type BoostCondition string

const (
	BoostMissingOutput    BoostCondition = "missing_output"
	BoostNoWorkbenchKnown BoostCondition = "no_workbench_known"
	BoostHungry           BoostCondition = "hungry"
)

type Catalogs struct {
	Recipes   RecipeCatalog
	Resources ResourceCatalog
	Tools     ToolCatalog
}

type RecipeCatalog struct {
	ByID   map[string]Recipe
	IDs    []string // sorted
	Digest string
}

type Recipe struct {
	ID          string         `json:"id"`
	Ingredients map[string]int `json:"ingredients"`
	Skill       string         `json:"skill"`
	MinLevel    float64        `json:"min_level"`
	Workbench   bool           `json:"workbench"`
	Output      string         `json:"output,omitempty"`
	Places      ResourceType   `json:"places,omitempty"`
	Boost       *Boost         `json:"boost,omitempty"`
}

type Boost struct {
	Utility float64        `json:"utility"`
	When    BoostCondition `json:"when"`
}

// OutputItem is the inventory item a successful craft produces. Recipes that
// place a structure produce no item.
func (r Recipe) OutputItem() string {
	if r.Places != "" {
		return ""
	}
	if r.Output != "" {
		return r.Output
	}
	return r.ID
}

type ResourceCatalog struct {
	ByType map[ResourceType]ResourceDef
	ByCode map[uint8]ResourceType
	Digest string
}

type ResourceDef struct {
	Type        ResourceType `json:"type"`
	Code        uint8        `json:"code"`
	Item        string       `json:"item,omitempty"`
	GatherSkill string       `json:"gather_skill,omitempty"`
	BlocksWalk  bool         `json:"blocks_walk"`
	MaxQuantity int          `json:"max_quantity"`
	Regen       float64      `json:"regen"`
}

type ToolCatalog struct {
	ByItem     map[string]Tool
	ByResource map[ResourceType]Tool
	Digest     string
}

type Tool struct {
	Item        string       `json:"item"`
	Gathers     ResourceType `json:"gathers"`
	UtilityMult float64      `json:"utility_mult"`
	SpeedMult   float64      `json:"speed_mult"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	schemas := filepath.Join(configDir, "schemas")

	if err := loadResources(filepath.Join(configDir, "resources.json"), filepath.Join(schemas, "resources.schema.json"), &c.Resources); err != nil {
		return nil, err
	}
	if err := loadRecipes(filepath.Join(configDir, "recipes.json"), filepath.Join(schemas, "recipes.schema.json"), &c.Recipes); err != nil {
		return nil, err
	}
	if err := loadTools(filepath.Join(configDir, "tools.json"), filepath.Join(schemas, "tools.schema.json"), &c.Tools); err != nil {
		return nil, err
	}
	if err := c.crossCheck(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalogs) Recipe(id string) (Recipe, bool) {
	r, ok := c.Recipes.ByID[id]
	return r, ok
}

func (c *Catalogs) Resource(t ResourceType) (ResourceDef, bool) {
	d, ok := c.Resources.ByType[t]
	return d, ok
}

// ToolFor returns the tool definition that speeds up gathering t.
func (c *Catalogs) ToolFor(t ResourceType) (Tool, bool) {
	tool, ok := c.Tools.ByResource[t]
	return tool, ok
}

// Digest combines the per-file digests; it changes whenever any catalog file changes.
func (c *Catalogs) Digest() string {
	return sha256Hex([]byte(c.Resources.Digest + c.Recipes.Digest + c.Tools.Digest))
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// readValidated reads a catalog file and validates the decoded document
// against its JSON schema before typed decoding.
func readValidated(path, schemaPath string) ([]byte, error) {
	name := filepath.Base(path)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	schema, err := jsonschema.Compile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("%s: compile schema: %w", name, err)
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return raw, nil
}

func loadResources(path, schemaPath string, out *ResourceCatalog) error {
	raw, err := readValidated(path, schemaPath)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []ResourceDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("resources.json: %w", err)
	}
	out.ByType = map[ResourceType]ResourceDef{}
	out.ByCode = map[uint8]ResourceType{}
	for _, d := range defs {
		if _, dup := out.ByType[d.Type]; dup {
			return fmt.Errorf("resources.json: duplicate type %s", d.Type)
		}
		if _, dup := out.ByCode[d.Code]; dup {
			return fmt.Errorf("resources.json: duplicate code %d", d.Code)
		}
		out.ByType[d.Type] = d
		out.ByCode[d.Code] = d.Type
	}
	for _, t := range []ResourceType{ResourceFood, ResourceWater, ResourceWood, ResourceStone, ResourceWorkbench} {
		if _, ok := out.ByType[t]; !ok {
			return fmt.Errorf("resources.json: missing %s", t)
		}
	}
	return nil
}

func loadRecipes(path, schemaPath string, out *RecipeCatalog) error {
	raw, err := readValidated(path, schemaPath)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []Recipe
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("recipes.json: %w", err)
	}
	out.ByID = map[string]Recipe{}
	for _, r := range defs {
		if _, dup := out.ByID[r.ID]; dup {
			return fmt.Errorf("recipes.json: duplicate recipe %s", r.ID)
		}
		out.ByID[r.ID] = r
	}
	out.IDs = make([]string, 0, len(out.ByID))
	for id := range out.ByID {
		out.IDs = append(out.IDs, id)
	}
	sort.Strings(out.IDs)
	return nil
}

func loadTools(path, schemaPath string, out *ToolCatalog) error {
	raw, err := readValidated(path, schemaPath)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []Tool
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("tools.json: %w", err)
	}
	out.ByItem = map[string]Tool{}
	out.ByResource = map[ResourceType]Tool{}
	for _, t := range defs {
		if _, dup := out.ByResource[t.Gathers]; dup {
			return fmt.Errorf("tools.json: second tool for %s", t.Gathers)
		}
		out.ByItem[t.Item] = t
		out.ByResource[t.Gathers] = t
	}
	return nil
}

// crossCheck rejects references between catalogs that do not resolve.
func (c *Catalogs) crossCheck() error {
	items := map[string]bool{}
	for _, d := range c.Resources.ByType {
		if d.Item != "" {
			items[d.Item] = true
		}
	}
	for _, r := range c.Recipes.ByID {
		if out := r.OutputItem(); out != "" {
			items[out] = true
		}
	}
	for _, id := range c.Recipes.IDs {
		r := c.Recipes.ByID[id]
		for item := range r.Ingredients {
			if !items[item] {
				return fmt.Errorf("recipes.json: %s: unknown ingredient %s", id, item)
			}
		}
		if r.Places != "" {
			if _, ok := c.Resources.ByType[r.Places]; !ok {
				return fmt.Errorf("recipes.json: %s: places unknown resource %s", id, r.Places)
			}
		}
	}
	for item := range c.Tools.ByItem {
		if !items[item] {
			return fmt.Errorf("tools.json: tool %s is not craftable", item)
		}
	}
	return nil
}
