package area

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/brunt/sulis/internal/area/encoding"
)

// decodeStrict decodes node into out rejecting unknown fields.
// yaml.Node.Decode does not carry KnownFields, so keys are checked against
// out's yaml tags first. Errors keep the source document's line numbers.
func decodeStrict(node *yaml.Node, out any) error {
	if err := checkFields(node, reflect.TypeOf(out)); err != nil {
		return err
	}
	return node.Decode(out)
}

var (
	unmarshalerType = reflect.TypeOf((*yaml.Unmarshaler)(nil)).Elem()
	nodeType        = reflect.TypeOf(yaml.Node{})
)

// checkFields walks node alongside t. Types with their own UnmarshalYAML
// check themselves; shape mismatches are left for Decode to report.
func checkFields(node *yaml.Node, t reflect.Type) error {
	if node == nil {
		return nil
	}
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) != 1 {
			return nil
		}
		return checkFields(node.Content[0], t)
	case yaml.AliasNode:
		return checkFields(node.Alias, t)
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nodeType || reflect.PointerTo(t).Implements(unmarshalerType) {
		return nil
	}
	switch t.Kind() {
	case reflect.Struct:
		if node.Kind != yaml.MappingNode {
			return nil
		}
		fields := make(map[string]reflect.Type)
		collectFields(t, fields)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			if key.Tag == "!!merge" {
				continue
			}
			ft, ok := fields[key.Value]
			if !ok {
				return fmt.Errorf("line %d: field %s not found in type %s", key.Line, key.Value, t)
			}
			if err := checkFields(val, ft); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		if node.Kind != yaml.SequenceNode {
			return nil
		}
		for _, item := range node.Content {
			if err := checkFields(item, t.Elem()); err != nil {
				return err
			}
		}
	case reflect.Map:
		if node.Kind != yaml.MappingNode {
			return nil
		}
		for i := 1; i < len(node.Content); i += 2 {
			if err := checkFields(node.Content[i], t.Elem()); err != nil {
				return err
			}
		}
	}
	return nil
}

func collectFields(t reflect.Type, fields map[string]reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("yaml")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if strings.Contains(opts, "inline") {
			ft := f.Type
			for ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				collectFields(ft, fields)
			}
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		fields[name] = f.Type
	}
}

// splitVariant reads an externally tagged value: a bare scalar for unit
// variants or a single-key mapping for variants with data.
func splitVariant(node *yaml.Node, what string) (string, *yaml.Node, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Value, nil, nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return "", nil, fmt.Errorf("line %d: %s must have exactly one variant, got %d", node.Line, what, len(node.Content)/2)
		}
		return node.Content[0].Value, node.Content[1], nil
	case 0:
		return "", nil, fmt.Errorf("missing %s", what)
	default:
		return "", nil, fmt.Errorf("line %d: %s must be a string or a mapping", node.Line, what)
	}
}

func variantPayload(tag string, payload *yaml.Node, what string, out any) error {
	if payload == nil {
		return fmt.Errorf("%s %s requires fields", what, tag)
	}
	if err := decodeStrict(payload, out); err != nil {
		return fmt.Errorf("%s %s: %w", what, tag, err)
	}
	return nil
}

func unitVariant(tag string, payload *yaml.Node, what string) error {
	if payload != nil && !(payload.Kind == yaml.ScalarNode && payload.Tag == "!!null") {
		return fmt.Errorf("%s %s takes no fields", what, tag)
	}
	return nil
}

func tagged(tag string, v any) map[string]any { return map[string]any{tag: v} }

func decodeTriggerKind(node *yaml.Node) (TriggerKind, error) {
	const what = "trigger kind"
	tag, payload, err := splitVariant(node, what)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "OnCampaignStart":
		if err := unitVariant(tag, payload, what); err != nil {
			return nil, err
		}
		return OnCampaignStart{}, nil
	case "OnAreaLoad":
		if err := unitVariant(tag, payload, what); err != nil {
			return nil, err
		}
		return OnAreaLoad{}, nil
	case "OnPlayerEnter":
		var k OnPlayerEnter
		if err := variantPayload(tag, payload, what, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "OnEncounterCleared":
		var k OnEncounterCleared
		if err := variantPayload(tag, payload, what, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "OnEncounterActivated":
		var k OnEncounterActivated
		if err := variantPayload(tag, payload, what, &k); err != nil {
			return nil, err
		}
		return k, nil
	default:
		return nil, fmt.Errorf("line %d: unknown %s %q", node.Line, what, tag)
	}
}

func encodeTriggerKind(k TriggerKind) (any, error) {
	switch k := k.(type) {
	case OnCampaignStart:
		return "OnCampaignStart", nil
	case OnAreaLoad:
		return "OnAreaLoad", nil
	case OnPlayerEnter:
		return tagged("OnPlayerEnter", k), nil
	case OnEncounterCleared:
		return tagged("OnEncounterCleared", k), nil
	case OnEncounterActivated:
		return tagged("OnEncounterActivated", k), nil
	default:
		return nil, fmt.Errorf("unknown trigger kind %T", k)
	}
}

func decodeDestination(node *yaml.Node) (Destination, error) {
	const what = "transition destination"
	tag, payload, err := splitVariant(node, what)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "Area":
		var d ToArea
		if err := variantPayload(tag, payload, what, &d); err != nil {
			return nil, err
		}
		return d, nil
	case "CurArea":
		var d ToCurArea
		if err := variantPayload(tag, payload, what, &d); err != nil {
			return nil, err
		}
		return d, nil
	case "WorldMap":
		if err := unitVariant(tag, payload, what); err != nil {
			return nil, err
		}
		return ToWorldMap{}, nil
	case "FindLink":
		var d ToFindLink
		if err := variantPayload(tag, payload, what, &d); err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("line %d: unknown %s %q", node.Line, what, tag)
	}
}

func encodeDestination(d Destination) (any, error) {
	switch d := d.(type) {
	case ToArea:
		return tagged("Area", d), nil
	case ToCurArea:
		return tagged("CurArea", d), nil
	case ToWorldMap:
		return "WorldMap", nil
	case ToFindLink:
		return tagged("FindLink", d), nil
	default:
		return nil, fmt.Errorf("unknown transition destination %T", d)
	}
}

func decodeOnRest(node *yaml.Node) (OnRest, error) {
	const what = "on_rest"
	tag, payload, err := splitVariant(node, what)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "Disabled":
		var r RestDisabled
		if err := variantPayload(tag, payload, what, &r); err != nil {
			return nil, err
		}
		return r, nil
	case "FireScript":
		var r RestFireScript
		if err := variantPayload(tag, payload, what, &r); err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("line %d: unknown %s %q", node.Line, what, tag)
	}
}

func encodeOnRest(r OnRest) (any, error) {
	switch r := r.(type) {
	case RestDisabled:
		return tagged("Disabled", r), nil
	case RestFireScript:
		return tagged("FireScript", r), nil
	default:
		return nil, fmt.Errorf("unknown on_rest %T", r)
	}
}

func (a *Action) UnmarshalYAML(value *yaml.Node) error {
	tag, payload, err := splitVariant(value, "action")
	if err != nil {
		return err
	}
	if tag == "" {
		return fmt.Errorf("line %d: empty action", value.Line)
	}
	a.Kind = tag
	a.Args = payload
	return nil
}

func (a Action) MarshalYAML() (any, error) {
	if a.Args == nil {
		return a.Kind, nil
	}
	return map[string]*yaml.Node{a.Kind: a.Args}, nil
}

type triggerDoc struct {
	Kind             yaml.Node `yaml:"kind"`
	OnActivate       *[]Action `yaml:"on_activate"`
	InitiallyEnabled *bool     `yaml:"initially_enabled"`
	FireMoreThanOnce bool      `yaml:"fire_more_than_once"`
}

func (t *TriggerBuilder) UnmarshalYAML(value *yaml.Node) error {
	var doc triggerDoc
	if err := decodeStrict(value, &doc); err != nil {
		return err
	}
	kind, err := decodeTriggerKind(&doc.Kind)
	if err != nil {
		return err
	}
	if doc.OnActivate == nil {
		return fmt.Errorf("line %d: trigger missing on_activate", value.Line)
	}
	if doc.InitiallyEnabled == nil {
		return fmt.Errorf("line %d: trigger missing initially_enabled", value.Line)
	}
	*t = TriggerBuilder{
		Kind:             kind,
		OnActivate:       *doc.OnActivate,
		InitiallyEnabled: *doc.InitiallyEnabled,
		FireMoreThanOnce: doc.FireMoreThanOnce,
	}
	return nil
}

func (t TriggerBuilder) MarshalYAML() (any, error) {
	kind, err := encodeTriggerKind(t.Kind)
	if err != nil {
		return nil, err
	}
	actions := t.OnActivate
	if actions == nil {
		actions = []Action{}
	}
	return struct {
		Kind             any      `yaml:"kind"`
		OnActivate       []Action `yaml:"on_activate"`
		InitiallyEnabled bool     `yaml:"initially_enabled"`
		FireMoreThanOnce bool     `yaml:"fire_more_than_once"`
	}{kind, actions, t.InitiallyEnabled, t.FireMoreThanOnce}, nil
}

type transitionDoc struct {
	From         Point     `yaml:"from"`
	Size         string    `yaml:"size"`
	To           yaml.Node `yaml:"to"`
	HoverText    string    `yaml:"hover_text"`
	ImageDisplay string    `yaml:"image_display"`
}

func (t *TransitionBuilder) UnmarshalYAML(value *yaml.Node) error {
	var doc transitionDoc
	if err := decodeStrict(value, &doc); err != nil {
		return err
	}
	to, err := decodeDestination(&doc.To)
	if err != nil {
		return err
	}
	*t = TransitionBuilder{
		From:         doc.From,
		Size:         doc.Size,
		To:           to,
		HoverText:    doc.HoverText,
		ImageDisplay: doc.ImageDisplay,
	}
	return nil
}

func (t TransitionBuilder) MarshalYAML() (any, error) {
	to, err := encodeDestination(t.To)
	if err != nil {
		return nil, err
	}
	return struct {
		From         Point  `yaml:"from"`
		Size         string `yaml:"size"`
		To           any    `yaml:"to"`
		HoverText    string `yaml:"hover_text"`
		ImageDisplay string `yaml:"image_display"`
	}{t.From, t.Size, to, t.HoverText, t.ImageDisplay}, nil
}

// Terrain is one optional kind per tile, persisted interned.
type Terrain []string

func (t Terrain) MarshalYAML() (any, error) {
	g, err := encoding.PackTerrain(t)
	if err != nil {
		return nil, fmt.Errorf("terrain: %w", err)
	}
	return g, nil
}

func (t *Terrain) UnmarshalYAML(value *yaml.Node) error {
	var g encoding.KindGrid
	if err := decodeStrict(value, &g); err != nil {
		return fmt.Errorf("terrain: %w", err)
	}
	labels, err := encoding.UnpackTerrain(g)
	if err != nil {
		return err
	}
	*t = labels
	return nil
}

// Walls is one (elevation, optional kind) pair per tile, persisted interned.
type Walls []encoding.WallCell

func (w Walls) MarshalYAML() (any, error) {
	g, err := encoding.PackWalls(w)
	if err != nil {
		return nil, fmt.Errorf("walls: %w", err)
	}
	return g, nil
}

func (w *Walls) UnmarshalYAML(value *yaml.Node) error {
	var g encoding.KindGrid
	if err := decodeStrict(value, &g); err != nil {
		return fmt.Errorf("walls: %w", err)
	}
	cells, err := encoding.UnpackWalls(g)
	if err != nil {
		return err
	}
	*w = cells
	return nil
}

// LayerSet maps a layer name to the tiles it occupies.
type LayerSet map[string][]encoding.Coord

func (l LayerSet) MarshalYAML() (any, error) {
	return encoding.EncodeLayers(l), nil
}

func (l *LayerSet) UnmarshalYAML(value *yaml.Node) error {
	var blobs map[string]string
	if err := value.Decode(&blobs); err != nil {
		return fmt.Errorf("layer_set: %w", err)
	}
	layers, err := encoding.DecodeLayers(blobs)
	if err != nil {
		return fmt.Errorf("layer_set: %w", err)
	}
	*l = layers
	return nil
}

// Elevation is one raw byte per tile.
type Elevation []byte

func (e Elevation) MarshalYAML() (any, error) {
	return base64.StdEncoding.EncodeToString(e), nil
}

func (e *Elevation) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("elevation: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("elevation: %w", err)
	}
	*e = raw
	return nil
}
