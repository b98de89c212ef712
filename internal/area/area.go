package area

import (
	"fmt"
	"log"

	"github.com/brunt/sulis/internal/area/encoding"
	"github.com/brunt/sulis/internal/catalogs"
)

// Resources resolves string ids against the shared registries. A miss
// returns false, never an error.
type Resources interface {
	Sprite(id string) (*catalogs.Sprite, bool)
	Image(id string) (*catalogs.Image, bool)
	Sound(id string) (*catalogs.SoundSource, bool)
	Encounter(id string) (*catalogs.Encounter, bool)
	Prop(id string) (*catalogs.Prop, bool)
	Size(id string) (*catalogs.ObjectSize, bool)
}

type Config struct {
	// MaxSize bounds width and height; zero means MaxAreaSize.
	MaxSize int
	Verbose bool

	// Optional (may be nil).
	Logger      *log.Logger
	Diagnostics DiagnosticSink
	Schema      DocumentValidator
}

type PropData struct {
	Prop      *catalogs.Prop
	Location  Point
	Items     []ItemEntry
	Enabled   bool
	HoverText string
}

// Area is the validated runtime form of a Builder. It is read-only once
// New returns; consumers share it by pointer.
type Area struct {
	ID     string
	Name   string
	Width  int
	Height int

	VisibilityTile *catalogs.Sprite
	ExploredTile   *catalogs.Sprite

	Actors      []ActorData
	Props       []PropData
	Transitions []Transition
	Encounters  []EncounterData
	Triggers    []Trigger

	VisDist             int
	VisDistSquared      int
	VisDistUpOneSquared int

	WorldMapLocation   string
	AmbientSound       *catalogs.SoundSource
	DefaultMusic       *catalogs.SoundSource
	DefaultCombatMusic *catalogs.SoundSource
	OnRest             OnRest
	LocationKind       LocationKind
	Generator          *GeneratorParams

	// Diagnostics lists what was dropped from the runtime view.
	Diagnostics []Diagnostic

	// Builder is the source document, kept for re-serialization.
	Builder *Builder

	elevation []byte
}

// New validates b and resolves its references. It fails only when a
// reference cannot be resolved, on_rest is unset or the grids do not fit
// the dimensions; failures go to cfg.Logger. Stray triggers and broken
// transitions are reported and skipped.
// The caller must not modify b afterwards.
func New(b *Builder, res Resources, cfg Config) (*Area, error) {
	a, err := build(b, res, cfg)
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Printf("%v", err)
		}
		return nil, err
	}
	a.report(cfg)
	return a, nil
}

func build(b *Builder, res Resources, cfg Config) (*Area, error) {
	elevation, err := checkShape(b, cfg.MaxSize)
	if err != nil {
		return nil, err
	}

	visibilityTile, ok := res.Sprite(b.VisibilityTile)
	if !ok {
		return nil, missing(b.ID, "sprite", b.VisibilityTile)
	}
	exploredTile, ok := res.Sprite(b.ExploredTile)
	if !ok {
		return nil, missing(b.ID, "sprite", b.ExploredTile)
	}

	ambient, err := optionalSound(b.ID, b.AmbientSound, res)
	if err != nil {
		return nil, err
	}
	music, err := optionalSound(b.ID, b.DefaultMusic, res)
	if err != nil {
		return nil, err
	}
	combatMusic, err := optionalSound(b.ID, b.DefaultCombatMusic, res)
	if err != nil {
		return nil, err
	}

	var generator *GeneratorParams
	if b.Generator != nil {
		generator, err = newGeneratorParams(b.ID, b.Generator, res)
		if err != nil {
			return nil, err
		}
	}

	props := make([]PropData, 0, len(b.Props))
	for _, pb := range b.Props {
		p, err := createProp(b.ID, pb, res)
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}

	triggers := readTriggers(b.Triggers)
	encounters, diags, err := LinkEncounters(b.ID, triggers, b.Encounters, res)
	if err != nil {
		return nil, err
	}

	transitions, tdiags := ReadTransitions(b.ID, b.Transitions, b.Width, b.Height, res)
	diags = append(diags, tdiags...)

	return &Area{
		ID:                  b.ID,
		Name:                b.Name,
		Width:               b.Width,
		Height:              b.Height,
		VisibilityTile:      visibilityTile,
		ExploredTile:        exploredTile,
		Actors:              b.Actors,
		Props:               props,
		Transitions:         transitions,
		Encounters:          encounters,
		Triggers:            triggers,
		VisDist:             b.MaxVisDistance,
		VisDistSquared:      b.MaxVisDistance * b.MaxVisDistance,
		VisDistUpOneSquared: b.MaxVisUpOneDistance * b.MaxVisUpOneDistance,
		WorldMapLocation:    b.WorldMapLocation,
		AmbientSound:        ambient,
		DefaultMusic:        music,
		DefaultCombatMusic:  combatMusic,
		OnRest:              b.OnRest,
		LocationKind:        b.LocationKind,
		Generator:           generator,
		Diagnostics:         diags,
		Builder:             b,
		elevation:           elevation,
	}, nil
}

func (a *Area) report(cfg Config) {
	for _, d := range a.Diagnostics {
		if cfg.Logger != nil {
			cfg.Logger.Printf("%s", d)
		}
		if cfg.Diagnostics != nil {
			if err := cfg.Diagnostics.WriteDiagnostic(d); err != nil && cfg.Logger != nil {
				cfg.Logger.Printf("area %s: write diagnostic: %v", a.ID, err)
			}
		}
	}
	if cfg.Verbose && cfg.Logger != nil {
		for _, t := range a.Transitions {
			cfg.Logger.Printf("area %s: created transition to %+v at %d,%d", a.ID, t.To, t.From.X, t.From.Y)
		}
	}
}

// checkShape returns the elevation grid, expanding an empty one to zeroes.
func checkShape(b *Builder, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = MaxAreaSize
	}
	if b.Width <= 0 || b.Height <= 0 || b.Width > maxSize || b.Height > maxSize {
		return nil, fmt.Errorf("area %s: %w: %dx%d (max %d)", b.ID, ErrBadDimensions, b.Width, b.Height, maxSize)
	}
	if b.OnRest == nil {
		return nil, fmt.Errorf("area %s: %w", b.ID, ErrNoOnRest)
	}
	n := b.Width * b.Height
	if len(b.Terrain) != n {
		return nil, fmt.Errorf("area %s: %w: terrain has %d tiles, want %d", b.ID, ErrGridSize, len(b.Terrain), n)
	}
	if len(b.Walls) != n {
		return nil, fmt.Errorf("area %s: %w: walls has %d tiles, want %d", b.ID, ErrGridSize, len(b.Walls), n)
	}
	switch len(b.Elevation) {
	case n:
		return b.Elevation, nil
	case 0:
		return make([]byte, n), nil
	default:
		return nil, fmt.Errorf("area %s: %w: elevation has %d tiles, want %d", b.ID, ErrGridSize, len(b.Elevation), n)
	}
}

func optionalSound(areaID, id string, res Resources) (*catalogs.SoundSource, error) {
	if id == "" {
		return nil, nil
	}
	s, ok := res.Sound(id)
	if !ok {
		return nil, missing(areaID, "sound", id)
	}
	return s, nil
}

func createProp(areaID string, pb PropDataBuilder, res Resources) (PropData, error) {
	prop, ok := res.Prop(pb.ID)
	if !ok {
		return PropData{}, missing(areaID, "prop", pb.ID)
	}
	enabled := true
	if pb.Enabled != nil {
		enabled = *pb.Enabled
	}
	return PropData{
		Prop:      prop,
		Location:  pb.Location,
		Items:     pb.Items,
		Enabled:   enabled,
		HoverText: pb.HoverText,
	}, nil
}

// Equal compares areas by id only.
func (a *Area) Equal(other *Area) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.ID == other.ID
}

func (a *Area) CoordsValid(x, y int) bool {
	return x >= 0 && y >= 0 && x < a.Width && y < a.Height
}

func (a *Area) index(x, y int) int { return x + y*a.Width }

// TerrainAt returns the terrain kind at (x, y), or "" for none.
func (a *Area) TerrainAt(x, y int) string {
	if !a.CoordsValid(x, y) {
		return ""
	}
	return a.Builder.Terrain[a.index(x, y)]
}

func (a *Area) WallAt(x, y int) (encoding.WallCell, bool) {
	if !a.CoordsValid(x, y) {
		return encoding.WallCell{}, false
	}
	return a.Builder.Walls[a.index(x, y)], true
}

func (a *Area) ElevationAt(x, y int) uint8 {
	if !a.CoordsValid(x, y) {
		return 0
	}
	return a.elevation[a.index(x, y)]
}

// Layer returns the tiles of a named layer; ok is false when the area has
// no such layer, which is distinct from an empty one.
func (a *Area) Layer(name string) ([]encoding.Coord, bool) {
	pts, ok := a.Builder.LayerSet[name]
	return pts, ok
}
