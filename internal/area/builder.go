package area

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Builder is the authored, round-trippable form of an area. Grids are
// unpacked from their persisted form at decode time.
type Builder struct {
	ID                  string                  `yaml:"id"`
	Name                string                  `yaml:"name"`
	Width               int                     `yaml:"width"`
	Height              int                     `yaml:"height"`
	VisibilityTile      string                  `yaml:"visibility_tile"`
	ExploredTile        string                  `yaml:"explored_tile"`
	MaxVisDistance      int                     `yaml:"max_vis_distance"`
	MaxVisUpOneDistance int                     `yaml:"max_vis_up_one_distance"`
	WorldMapLocation    string                  `yaml:"world_map_location,omitempty"`
	AmbientSound        string                  `yaml:"ambient_sound,omitempty"`
	DefaultMusic        string                  `yaml:"default_music,omitempty"`
	DefaultCombatMusic  string                  `yaml:"default_combat_music,omitempty"`
	OnRest              OnRest                  `yaml:"-"`
	LocationKind        LocationKind            `yaml:"location_kind"`
	Generator           *GeneratorParamsBuilder `yaml:"generator,omitempty"`
	Layers              []string                `yaml:"layers"`
	EntityLayer         int                     `yaml:"entity_layer"`
	Actors              []ActorData             `yaml:"actors"`
	Props               []PropDataBuilder       `yaml:"props"`
	Encounters          []EncounterDataBuilder  `yaml:"encounters"`
	Transitions         []TransitionBuilder     `yaml:"transitions"`
	Triggers            []TriggerBuilder        `yaml:"triggers"`
	Terrain             Terrain                 `yaml:"terrain"`
	Walls               Walls                   `yaml:"walls"`
	LayerSet            LayerSet                `yaml:"layer_set"`
	Elevation           Elevation               `yaml:"elevation"`
}

// builderFields drops Builder's methods so the shadow documents below
// can reuse its field tags.
type builderFields Builder

type builderDoc struct {
	Fields builderFields `yaml:",inline"`
	OnRest yaml.Node     `yaml:"on_rest"`
}

func (b *Builder) UnmarshalYAML(value *yaml.Node) error {
	var doc builderDoc
	if err := decodeStrict(value, &doc); err != nil {
		return err
	}
	rest, err := decodeOnRest(&doc.OnRest)
	if err != nil {
		return err
	}
	*b = Builder(doc.Fields)
	b.OnRest = rest
	return nil
}

func (b Builder) MarshalYAML() (any, error) {
	rest, err := encodeOnRest(b.OnRest)
	if err != nil {
		return nil, fmt.Errorf("area %s: %w", b.ID, err)
	}
	return struct {
		Fields builderFields `yaml:",inline"`
		OnRest any           `yaml:"on_rest"`
	}{builderFields(b), rest}, nil
}

// Decode reads one authored area document, rejecting unknown fields.
func Decode(r io.Reader) (*Builder, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var b Builder
	if err := dec.Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (b *Builder) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return err
	}
	return enc.Close()
}
