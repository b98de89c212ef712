package area

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DocumentValidator checks a raw authored document before it is decoded.
// Implemented in internal/schema.
type DocumentValidator interface {
	ValidateYAML(raw []byte) error
}

// ReadBuilder decodes an authored area file, validating it first when v is set.
func ReadBuilder(path string, v DocumentValidator) (*Builder, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if v != nil {
		if err := v.ValidateYAML(raw); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	b, err := Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return b, nil
}

// Load reads, decodes and builds the area stored at path.
func Load(path string, res Resources, cfg Config) (*Area, error) {
	b, err := ReadBuilder(path, cfg.Schema)
	if err != nil {
		return nil, err
	}
	return New(b, res, cfg)
}

// Summary is the flat description of an area used by indexes and tooling.
type Summary struct {
	ID                 string
	Name               string
	Width              int
	Height             int
	LocationKind       string
	TerrainKinds       []string
	WallKinds          []string
	Layers             map[string]int
	Actors             int
	Props              int
	Encounters         int
	Triggers           int
	Transitions        int
	TransitionsDropped int
	Diagnostics        []Diagnostic
	Digest             string
}

func (a *Area) Summary() (Summary, error) {
	var buf bytes.Buffer
	if err := a.Builder.Encode(&buf); err != nil {
		return Summary{}, err
	}
	sum := sha256.Sum256(buf.Bytes())

	layers := make(map[string]int, len(a.Builder.LayerSet))
	for name, pts := range a.Builder.LayerSet {
		layers[name] = len(pts)
	}

	return Summary{
		ID:                 a.ID,
		Name:               a.Name,
		Width:              a.Width,
		Height:             a.Height,
		LocationKind:       a.LocationKind.String(),
		TerrainKinds:       distinct(a.Builder.Terrain),
		WallKinds:          distinctWalls(a.Builder.Walls),
		Layers:             layers,
		Actors:             len(a.Actors),
		Props:              len(a.Props),
		Encounters:         len(a.Encounters),
		Triggers:           len(a.Triggers),
		Transitions:        len(a.Transitions),
		TransitionsDropped: len(a.Builder.Transitions) - len(a.Transitions),
		Diagnostics:        a.Diagnostics,
		Digest:             hex.EncodeToString(sum[:]),
	}, nil
}

// LayerNames returns the layer set's names in sorted order.
func (s Summary) LayerNames() []string {
	names := make([]string, 0, len(s.Layers))
	for name := range s.Layers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// distinct lists kinds in first-occurrence order, matching the persisted table.
func distinct(labels []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, l := range labels {
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

func distinctWalls(cells Walls) []string {
	labels := make([]string, len(cells))
	for i, c := range cells {
		labels[i] = c.Kind
	}
	return distinct(labels)
}
