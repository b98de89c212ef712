package encoding

import (
	"encoding/base64"
	"fmt"
)

// KindGrid is the persisted form of an interned grid.
type KindGrid struct {
	Kinds   []string `yaml:"kinds" json:"kinds"`
	Entries string   `yaml:"entries" json:"entries"`
}

func PackTerrain(labels []string) (KindGrid, error) {
	kinds, packed, err := EncodeKinds(labels)
	if err != nil {
		return KindGrid{}, err
	}
	return KindGrid{Kinds: nonNil(kinds), Entries: base64.StdEncoding.EncodeToString(packed)}, nil
}

func UnpackTerrain(g KindGrid) ([]string, error) {
	raw, err := base64.StdEncoding.DecodeString(g.Entries)
	if err != nil {
		return nil, fmt.Errorf("terrain entries: %w", err)
	}
	return DecodeKinds(g.Kinds, raw)
}

func PackWalls(cells []WallCell) (KindGrid, error) {
	kinds, packed, err := EncodeWalls(cells)
	if err != nil {
		return KindGrid{}, err
	}
	return KindGrid{Kinds: nonNil(kinds), Entries: base64.StdEncoding.EncodeToString(packed)}, nil
}

func UnpackWalls(g KindGrid) ([]WallCell, error) {
	raw, err := base64.StdEncoding.DecodeString(g.Entries)
	if err != nil {
		return nil, fmt.Errorf("wall entries: %w", err)
	}
	return DecodeWalls(g.Kinds, raw)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
