package area

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brunt/sulis/internal/area/encoding"
)

const sampleArea = `id: crypt
name: Old Crypt
width: 3
height: 3
visibility_tile: gui/vis
explored_tile: gui/explored
max_vis_distance: 12
max_vis_up_one_distance: 4
ambient_sound: wind
on_rest:
  FireScript:
    id: crypt
    func: on_rest
location_kind: Underground
generator:
  id: crypt_gen
  transitions:
    - to: crypt_lower
      kind: stairs
      hover_text: Descend
  encounters:
    entries:
      - id: goblins
        weight: 2
  props:
    entries: []
layers: [terrain, walls]
entity_layer: 1
actors:
  - id: guard
    location: {x: 0, y: 1}
    unique_id: crypt_guard
props:
  - id: chest
    location: {x: 2, y: 0}
    items:
      - id: gold
        quantity: 10
encounters:
  - id: goblins
    location: {x: 1, y: 1}
    size: {width: 1, height: 1}
transitions:
  - from: {x: 0, y: 0}
    size: 1by1
    to:
      Area:
        id: town
        x: 4
        y: 9
    hover_text: To town
    image_display: door
  - from: {x: 2, y: 2}
    size: 1by1
    to: WorldMap
    hover_text: Leave
    image_display: door
triggers:
  - kind: OnAreaLoad
    on_activate:
      - ShowMessage:
          text: It is cold here.
      - Heal
    initially_enabled: true
    fire_more_than_once: false
  - kind:
      OnEncounterCleared:
        encounter_location: {x: 1, y: 1}
    on_activate: []
    initially_enabled: true
    fire_more_than_once: true
terrain:
  kinds: [stone]
  entries: AAAAAAAAAAAA
walls:
  kinds: []
  entries: /wD/AP8A/wD/AP8A/wD/AP8A
layer_set:
  floor: AAEAAQ==
elevation: AAAAAAAAAAAA
`

func TestDecode_SampleArea(t *testing.T) {
	b, err := Decode(strings.NewReader(sampleArea))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b.ID != "crypt" || b.Width != 3 || b.LocationKind != Underground || b.EntityLayer != 1 {
		t.Fatalf("header=%+v", b)
	}
	if r, ok := b.OnRest.(RestFireScript); !ok || r.Func != "on_rest" {
		t.Fatalf("on_rest=%#v", b.OnRest)
	}
	if d, ok := b.Transitions[0].To.(ToArea); !ok || d.ID != "town" || d.Y != 9 {
		t.Fatalf("transition 0 to=%#v", b.Transitions[0].To)
	}
	if _, ok := b.Transitions[1].To.(ToWorldMap); !ok {
		t.Fatalf("transition 1 to=%#v", b.Transitions[1].To)
	}
	if _, ok := b.Triggers[0].Kind.(OnAreaLoad); !ok {
		t.Fatalf("trigger 0 kind=%#v", b.Triggers[0].Kind)
	}
	acts := b.Triggers[0].OnActivate
	if len(acts) != 2 || acts[0].Kind != "ShowMessage" || acts[0].Args == nil || acts[1].Kind != "Heal" || acts[1].Args != nil {
		t.Fatalf("actions=%+v", acts)
	}
	if k, ok := b.Triggers[1].Kind.(OnEncounterCleared); !ok || k.EncounterLocation != (Point{X: 1, Y: 1}) || !b.Triggers[1].FireMoreThanOnce {
		t.Fatalf("trigger 1=%+v", b.Triggers[1])
	}
	if len(b.Terrain) != 9 || b.Terrain[4] != "stone" {
		t.Fatalf("terrain=%v", b.Terrain)
	}
	for i, w := range b.Walls {
		if w != (encoding.WallCell{}) {
			t.Fatalf("wall %d=%+v", i, w)
		}
	}
	if pts := b.LayerSet["floor"]; len(pts) != 1 || pts[0] != (encoding.Coord{X: 1, Y: 1}) {
		t.Fatalf("layer_set=%v", b.LayerSet)
	}
	if len(b.Elevation) != 9 {
		t.Fatalf("elevation=%v", b.Elevation)
	}
	if b.Generator == nil || b.Generator.Encounters.Entries[0].Weight != 2 || b.Generator.Transitions[0].Kind != "stairs" {
		t.Fatalf("generator=%+v", b.Generator)
	}
	if b.Props[0].Enabled != nil {
		t.Fatalf("enabled should be unset")
	}

	if _, err := New(b, newFakeResources(), Config{}); err != nil {
		t.Fatalf("New: %v", err)
	}
}

func TestEncode_Stable(t *testing.T) {
	b, err := Decode(strings.NewReader(sampleArea))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var first bytes.Buffer
	if err := b.Encode(&first); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	again, err := Decode(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("Decode re-encoded: %v\n%s", err, first.String())
	}
	var second bytes.Buffer
	if err := again.Encode(&second); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if first.String() != second.String() {
		t.Fatalf("encoding not stable:\n%s\n---\n%s", first.String(), second.String())
	}
	if !strings.Contains(first.String(), "to: WorldMap") || !strings.Contains(first.String(), "- Heal") {
		t.Fatalf("unit variants should encode as bare names:\n%s", first.String())
	}
}

func TestEncode_FromScratch(t *testing.T) {
	b := newTestBuilder(2, 2)
	b.Terrain = Terrain{"grass", "", "sand", "grass"}
	b.Walls[1] = encoding.WallCell{Elevation: 3, Kind: "brick"}
	b.Transitions = []TransitionBuilder{{From: Point{X: 1}, Size: "1by1", To: ToFindLink{ID: "cave", XOffset: 1, YOffset: -1}, ImageDisplay: "door"}}
	b.Triggers = []TriggerBuilder{{Kind: OnPlayerEnter{Location: Point{X: 1, Y: 1}, Size: Size{Width: 1, Height: 1}}}}

	var buf bytes.Buffer
	if err := b.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if strings.Join(got.Terrain, ",") != "grass,,sand,grass" {
		t.Fatalf("terrain=%v", got.Terrain)
	}
	if got.Walls[1] != (encoding.WallCell{Elevation: 3, Kind: "brick"}) {
		t.Fatalf("walls=%v", got.Walls)
	}
	if d, ok := got.Transitions[0].To.(ToFindLink); !ok || d.YOffset != -1 {
		t.Fatalf("to=%#v", got.Transitions[0].To)
	}
	if k, ok := got.Triggers[0].Kind.(OnPlayerEnter); !ok || k.Size.Width != 1 {
		t.Fatalf("kind=%#v", got.Triggers[0].Kind)
	}
	if r, ok := got.OnRest.(RestDisabled); !ok || r.Message != "Not here." {
		t.Fatalf("on_rest=%#v", got.OnRest)
	}
}

func TestEncode_TooManyKinds(t *testing.T) {
	b := newTestBuilder(16, 16)
	for i := range b.Terrain {
		b.Terrain[i] = "t" + strings.Repeat("x", i)
	}
	var buf bytes.Buffer
	if err := b.Encode(&buf); err == nil {
		t.Fatalf("expected capacity error for 256 distinct kinds")
	}
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]struct{ old, new string }{
		"unknown top-level field": {"entity_layer: 1\n", "entity_layer: 1\nweather: rain\n"},
		"unknown variant":         {"to: WorldMap", "to: Moon"},
		"unit variant with data":  {"to: WorldMap", "to: {WorldMap: {x: 1}}"},
		"unknown variant field":   {"encounter_location: {x: 1, y: 1}", "encounter_location: {x: 1, y: 1}\n        radius: 2"},
		"unknown location kind":   {"location_kind: Underground", "location_kind: Space"},
		"bad terrain index":       {"kinds: [stone]", "kinds: []"},
		"odd layer blob":          {"floor: AAEAAQ==", "floor: AAEA"},
		"missing on_rest":         {"on_rest:\n  FireScript:\n    id: crypt\n    func: on_rest\n", ""},
		"missing on_activate":     {"    on_activate: []\n", ""},
		"no initially_enabled":    {"    initially_enabled: true\n    fire_more_than_once: false\n", "    fire_more_than_once: false\n"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			doc := strings.Replace(sampleArea, tc.old, tc.new, 1)
			if doc == sampleArea {
				t.Fatalf("replacement %q did not apply", tc.old)
			}
			if _, err := Decode(strings.NewReader(doc)); err == nil {
				t.Fatalf("expected decode error")
			}
		})
	}
}

func TestDecode_OptionalFields(t *testing.T) {
	doc := strings.Replace(sampleArea, "    initially_enabled: true\n    fire_more_than_once: false\n", "    initially_enabled: true\n", 1)
	doc = strings.Replace(doc, "  transitions:\n    - to: crypt_lower\n      kind: stairs\n      hover_text: Descend\n", "", 1)
	doc = strings.Replace(doc, "  encounters:\n    entries:\n      - id: goblins\n        weight: 2\n  props:\n    entries: []\n", "", 1)
	if doc == sampleArea {
		t.Fatalf("replacements did not apply")
	}
	b, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b.Triggers[0].FireMoreThanOnce || !b.Triggers[0].InitiallyEnabled {
		t.Fatalf("trigger 0=%+v", b.Triggers[0])
	}
	g := b.Generator
	if g == nil || g.ID != "crypt_gen" || len(g.Transitions) != 0 || len(g.Encounters.Entries) != 0 || len(g.Props.Entries) != 0 {
		t.Fatalf("generator=%+v", g)
	}
}

// lineOf returns the 1-based line of the first line in doc containing s.
func lineOf(t *testing.T, doc, s string) int {
	t.Helper()
	for i, line := range strings.Split(doc, "\n") {
		if strings.Contains(line, s) {
			return i + 1
		}
	}
	t.Fatalf("%q not in document", s)
	return 0
}

func TestDecode_ErrorLinesPointIntoDocument(t *testing.T) {
	cases := map[string]struct{ old, new, at, want string }{
		"unknown point field": {
			"encounter_location: {x: 1, y: 1}", "encounter_location: {x: 1, y: 1, z: 2}",
			"z: 2", "field z not found in type area.Point",
		},
		"bad coordinate": {
			"from: {x: 2, y: 2}", "from: {x: two, y: 2}",
			"x: two", "cannot unmarshal",
		},
		"unknown trigger field": {
			"    fire_more_than_once: true\n", "    fire_more_than_once: true\n    cooldown: 3\n",
			"cooldown: 3", "field cooldown not found",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			doc := strings.Replace(sampleArea, tc.old, tc.new, 1)
			if doc == sampleArea {
				t.Fatalf("replacement %q did not apply", tc.old)
			}
			_, err := Decode(strings.NewReader(doc))
			if err == nil {
				t.Fatalf("expected decode error")
			}
			want := fmt.Sprintf("line %d: %s", lineOf(t, doc, tc.at), tc.want)
			if !strings.Contains(err.Error(), want) {
				t.Fatalf("err=%q want %q", err.Error(), want)
			}
		})
	}
}

type stubValidator struct {
	calls int
	err   error
}

func (s *stubValidator) ValidateYAML(raw []byte) error {
	s.calls++
	return s.err
}

func TestLoad_ValidatesBeforeDecoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crypt.yaml")
	if err := os.WriteFile(path, []byte(sampleArea), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	v := &stubValidator{}
	a, err := Load(path, newFakeResources(), Config{Schema: v})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.calls != 1 || a.ID != "crypt" || len(a.Transitions) != 2 {
		t.Fatalf("calls=%d area=%s transitions=%d", v.calls, a.ID, len(a.Transitions))
	}

	rejected := errors.New("rejected")
	if _, err := Load(path, newFakeResources(), Config{Schema: &stubValidator{err: rejected}}); !errors.Is(err, rejected) {
		t.Fatalf("err=%v want rejected", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), newFakeResources(), Config{}); !os.IsNotExist(err) {
		t.Fatalf("err=%v want not-exist", err)
	}
}
