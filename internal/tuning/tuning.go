package tuning

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxCoord is the largest width or height the coordinate codec can carry.
const MaxCoord = 65535

type Tuning struct {
	MaxAreaSize      int  `yaml:"max_area_size"`
	Verbose          bool `yaml:"verbose"`
	SchemaValidation bool `yaml:"schema_validation"`

	Diagnostics Diagnostics `yaml:"diagnostics"`
	Index       Index       `yaml:"index"`
	Archive     Archive     `yaml:"archive"`
}

// Diagnostics configures the rotated diagnostics log. An empty Dir disables it.
type Diagnostics struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// Index selects the area index backend. An empty Driver disables indexing.
type Index struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type Archive struct {
	Level string `yaml:"level"`
}

func Defaults() Tuning {
	return Tuning{
		MaxAreaSize:      128,
		SchemaValidation: true,
		Diagnostics:      Diagnostics{Prefix: "diagnostics"},
		Index:            Index{Driver: "sqlite", DSN: "./data/areas.db"},
		Archive:          Archive{Level: "default"},
	}
}

// Load reads path over Defaults. An empty path returns the defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	if strings.TrimSpace(path) == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t *Tuning) Normalize() {
	t.Index.Driver = strings.ToLower(strings.TrimSpace(t.Index.Driver))
	t.Index.DSN = strings.TrimSpace(t.Index.DSN)
	t.Archive.Level = strings.ToLower(strings.TrimSpace(t.Archive.Level))
	if t.Archive.Level == "" {
		t.Archive.Level = "default"
	}
	if strings.TrimSpace(t.Diagnostics.Prefix) == "" {
		t.Diagnostics.Prefix = "diagnostics"
	}
}

func (t Tuning) Validate() error {
	if t.MaxAreaSize <= 0 {
		return fmt.Errorf("max_area_size must be > 0")
	}
	if t.MaxAreaSize > MaxCoord {
		return fmt.Errorf("max_area_size must be <= %d", MaxCoord)
	}
	switch t.Index.Driver {
	case "":
	case "sqlite", "postgres":
		if t.Index.DSN == "" {
			return fmt.Errorf("index.dsn must not be empty for driver %s", t.Index.Driver)
		}
	default:
		return fmt.Errorf("unknown index.driver %q", t.Index.Driver)
	}
	switch t.Archive.Level {
	case "fastest", "default", "better", "best":
	default:
		return fmt.Errorf("unknown archive.level %q", t.Archive.Level)
	}
	return nil
}
