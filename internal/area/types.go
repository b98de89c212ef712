package area

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MaxAreaSize is the default bound on width and height.
const MaxAreaSize = 128

type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

func (p Point) Add(dx, dy int) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// InBounds reports whether p lies in [0,width) x [0,height).
func (p Point) InBounds(width, height int) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < width && p.Y < height
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type LocationKind int

const (
	Outdoors LocationKind = iota
	Indoors
	Underground
)

var locationKindNames = [...]string{"Outdoors", "Indoors", "Underground"}

func LocationKinds() []LocationKind { return []LocationKind{Outdoors, Indoors, Underground} }

func (k LocationKind) String() string {
	if k < 0 || int(k) >= len(locationKindNames) {
		return fmt.Sprintf("LocationKind(%d)", int(k))
	}
	return locationKindNames[k]
}

func (k LocationKind) MarshalYAML() (any, error) {
	if k < 0 || int(k) >= len(locationKindNames) {
		return nil, fmt.Errorf("unknown location kind %d", int(k))
	}
	return k.String(), nil
}

func (k *LocationKind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	for i, name := range locationKindNames {
		if name == s {
			*k = LocationKind(i)
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown location kind %q", value.Line, s)
}

// OnRest is one of RestDisabled or RestFireScript.
type OnRest interface{ onRest() }

type RestDisabled struct {
	Message string `yaml:"message"`
}

type RestFireScript struct {
	ID   string `yaml:"id"`
	Func string `yaml:"func"`
}

func (RestDisabled) onRest()   {}
func (RestFireScript) onRest() {}

// Destination is where a transition leads: ToArea, ToCurArea, ToWorldMap or ToFindLink.
type Destination interface{ destination() }

type ToArea struct {
	ID string `yaml:"id"`
	X  int    `yaml:"x"`
	Y  int    `yaml:"y"`
}

type ToCurArea struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type ToWorldMap struct{}

type ToFindLink struct {
	ID      string `yaml:"id"`
	XOffset int    `yaml:"x_offset"`
	YOffset int    `yaml:"y_offset"`
}

func (ToArea) destination()     {}
func (ToCurArea) destination()  {}
func (ToWorldMap) destination() {}
func (ToFindLink) destination() {}

// TriggerKind is the condition a trigger fires on.
type TriggerKind interface{ triggerKind() }

type OnCampaignStart struct{}

type OnAreaLoad struct{}

type OnPlayerEnter struct {
	Location Point `yaml:"location"`
	Size     Size  `yaml:"size"`
}

type OnEncounterCleared struct {
	EncounterLocation Point `yaml:"encounter_location"`
}

type OnEncounterActivated struct {
	EncounterLocation Point `yaml:"encounter_location"`
}

func (OnCampaignStart) triggerKind()      {}
func (OnAreaLoad) triggerKind()           {}
func (OnPlayerEnter) triggerKind()        {}
func (OnEncounterCleared) triggerKind()   {}
func (OnEncounterActivated) triggerKind() {}

// encounterLocation returns the linked location for the two encounter kinds.
func encounterLocation(k TriggerKind) (Point, bool) {
	switch k := k.(type) {
	case OnEncounterCleared:
		return k.EncounterLocation, true
	case OnEncounterActivated:
		return k.EncounterLocation, true
	default:
		return Point{}, false
	}
}

// Action is one step of a trigger's script. The payload belongs to the
// rules engine and is carried through untouched.
type Action struct {
	Kind string
	Args *yaml.Node
}

type ActorData struct {
	ID       string `yaml:"id"`
	Location Point  `yaml:"location"`
	UniqueID string `yaml:"unique_id,omitempty"`
}

type ItemEntry struct {
	ID       string `yaml:"id"`
	Quantity uint32 `yaml:"quantity"`
}

type PropDataBuilder struct {
	ID        string      `yaml:"id"`
	Location  Point       `yaml:"location"`
	Items     []ItemEntry `yaml:"items,omitempty"`
	Enabled   *bool       `yaml:"enabled,omitempty"`
	HoverText string      `yaml:"hover_text,omitempty"`
}

type EncounterDataBuilder struct {
	ID       string `yaml:"id"`
	Location Point  `yaml:"location"`
	Size     Size   `yaml:"size"`
}

type TransitionBuilder struct {
	From         Point
	Size         string
	To           Destination
	HoverText    string
	ImageDisplay string
}

type TriggerBuilder struct {
	Kind             TriggerKind
	OnActivate       []Action
	InitiallyEnabled bool
	FireMoreThanOnce bool
}

type GeneratorParamsBuilder struct {
	ID          string                 `yaml:"id"`
	Transitions []TransitionAreaParams `yaml:"transitions"`
	Encounters  WeightedIDs            `yaml:"encounters"`
	Props       WeightedIDs            `yaml:"props"`
}

type TransitionAreaParams struct {
	To        string `yaml:"to"`
	Kind      string `yaml:"kind"`
	HoverText string `yaml:"hover_text"`
}

type WeightedIDs struct {
	Entries []WeightedID `yaml:"entries"`
}

type WeightedID struct {
	ID     string `yaml:"id"`
	Weight uint32 `yaml:"weight"`
}
