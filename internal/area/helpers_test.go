package area

import (
	"github.com/brunt/sulis/internal/area/encoding"
	"github.com/brunt/sulis/internal/catalogs"
)

type fakeResources struct {
	sprites    map[string]*catalogs.Sprite
	images     map[string]*catalogs.Image
	sounds     map[string]*catalogs.SoundSource
	encounters map[string]*catalogs.Encounter
	props      map[string]*catalogs.Prop
	sizes      map[string]*catalogs.ObjectSize
}

func newFakeResources() *fakeResources {
	return &fakeResources{
		sprites: map[string]*catalogs.Sprite{
			"gui/vis":      {ID: "gui/vis"},
			"gui/explored": {ID: "gui/explored"},
		},
		images: map[string]*catalogs.Image{
			"door": {ID: "door", Width: 1, Height: 1},
		},
		sounds: map[string]*catalogs.SoundSource{
			"wind":   {ID: "wind", File: "wind.ogg"},
			"battle": {ID: "battle", File: "battle.ogg", Loop: true},
		},
		encounters: map[string]*catalogs.Encounter{
			"goblins": {ID: "goblins", Actors: []string{"goblin", "goblin_archer"}},
		},
		props: map[string]*catalogs.Prop{
			"chest": {ID: "chest", Size: "1by1"},
		},
		sizes: map[string]*catalogs.ObjectSize{
			"1by1": {ID: "1by1", Width: 1, Height: 1},
			"2by2": {ID: "2by2", Width: 2, Height: 2},
			"3by3": {ID: "3by3", Width: 3, Height: 3},
			"4by4": {ID: "4by4", Width: 4, Height: 4},
		},
	}
}

func (f *fakeResources) Sprite(id string) (*catalogs.Sprite, bool) {
	s, ok := f.sprites[id]
	return s, ok
}

func (f *fakeResources) Image(id string) (*catalogs.Image, bool) {
	i, ok := f.images[id]
	return i, ok
}

func (f *fakeResources) Sound(id string) (*catalogs.SoundSource, bool) {
	s, ok := f.sounds[id]
	return s, ok
}

func (f *fakeResources) Encounter(id string) (*catalogs.Encounter, bool) {
	e, ok := f.encounters[id]
	return e, ok
}

func (f *fakeResources) Prop(id string) (*catalogs.Prop, bool) {
	p, ok := f.props[id]
	return p, ok
}

func (f *fakeResources) Size(id string) (*catalogs.ObjectSize, bool) {
	s, ok := f.sizes[id]
	return s, ok
}

type recordingSink struct {
	got []Diagnostic
}

func (r *recordingSink) WriteDiagnostic(d Diagnostic) error {
	r.got = append(r.got, d)
	return nil
}

// newTestBuilder returns a minimal valid w x h area.
func newTestBuilder(w, h int) *Builder {
	n := w * h
	terrain := make(Terrain, n)
	walls := make(Walls, n)
	for i := range terrain {
		terrain[i] = "grass"
		walls[i] = encoding.WallCell{}
	}
	return &Builder{
		ID:                  "test_area",
		Name:                "Test Area",
		Width:               w,
		Height:              h,
		VisibilityTile:      "gui/vis",
		ExploredTile:        "gui/explored",
		MaxVisDistance:      20,
		MaxVisUpOneDistance: 6,
		OnRest:              RestDisabled{Message: "Not here."},
		LocationKind:        Outdoors,
		Layers:              []string{"terrain"},
		Terrain:             terrain,
		Walls:               walls,
		LayerSet:            LayerSet{},
	}
}
