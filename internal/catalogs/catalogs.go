package catalogs

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalogs is the read-only resource registry areas resolve against.
// Entries are shared by pointer and must not be mutated after Load.
type Catalogs struct {
	Sprites    SpriteCatalog
	Images     ImageCatalog
	Sounds     SoundCatalog
	Encounters EncounterCatalog
	Props      PropCatalog
	Sizes      SizeCatalog
}

type SpriteCatalog struct {
	ByID   map[string]*Sprite
	Digest string
}

type Sprite struct {
	ID     string `yaml:"id"`
	Sheet  string `yaml:"sheet"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Width  int    `yaml:"w"`
	Height int    `yaml:"h"`
}

type ImageCatalog struct {
	ByID   map[string]*Image
	Digest string
}

type Image struct {
	ID     string `yaml:"id"`
	Sprite string `yaml:"sprite,omitempty"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type SoundCatalog struct {
	ByID   map[string]*SoundSource
	Digest string
}

type SoundSource struct {
	ID     string  `yaml:"id"`
	File   string  `yaml:"file"`
	Volume float64 `yaml:"volume"`
	Loop   bool    `yaml:"loop"`
}

type EncounterCatalog struct {
	ByID   map[string]*Encounter
	Digest string
}

type Encounter struct {
	ID        string   `yaml:"id"`
	AutoSpawn bool     `yaml:"auto_spawn"`
	Actors    []string `yaml:"actors"`
}

type PropCatalog struct {
	ByID   map[string]*Prop
	Digest string
}

type Prop struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Size     string `yaml:"size"`
	Passable bool   `yaml:"passable"`
}

type SizeCatalog struct {
	ByID   map[string]*ObjectSize
	Digest string
}

type ObjectSize struct {
	ID     string `yaml:"id"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

func Load(resourceDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadFile(filepath.Join(resourceDir, "sizes.yaml"), &c.Sizes.Digest, &c.Sizes.ByID, sizeID); err != nil {
		return nil, err
	}
	if err := loadFile(filepath.Join(resourceDir, "sprites.yaml"), &c.Sprites.Digest, &c.Sprites.ByID, spriteID); err != nil {
		return nil, err
	}
	if err := loadFile(filepath.Join(resourceDir, "images.yaml"), &c.Images.Digest, &c.Images.ByID, imageID); err != nil {
		return nil, err
	}
	if err := loadOptionalFile(filepath.Join(resourceDir, "sounds.yaml"), &c.Sounds.Digest, &c.Sounds.ByID, soundID); err != nil {
		return nil, err
	}
	if err := loadDir(filepath.Join(resourceDir, "encounters"), &c.Encounters.Digest, &c.Encounters.ByID, encounterID); err != nil {
		return nil, err
	}
	if err := loadDir(filepath.Join(resourceDir, "props"), &c.Props.Digest, &c.Props.ByID, propID); err != nil {
		return nil, err
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return &c, nil
}

// check verifies references between catalogs.
func (c *Catalogs) check() error {
	for _, id := range sortedKeys(c.Images.ByID) {
		img := c.Images.ByID[id]
		if img.Sprite == "" {
			continue
		}
		if _, ok := c.Sprites.ByID[img.Sprite]; !ok {
			return fmt.Errorf("images.yaml: image %s: unknown sprite %s", id, img.Sprite)
		}
	}
	for _, id := range sortedKeys(c.Props.ByID) {
		p := c.Props.ByID[id]
		if _, ok := c.Sizes.ByID[p.Size]; !ok {
			return fmt.Errorf("prop %s: unknown size %s", id, p.Size)
		}
	}
	return nil
}

func (c *Catalogs) Sprite(id string) (*Sprite, bool) {
	s, ok := c.Sprites.ByID[id]
	return s, ok
}

func (c *Catalogs) Image(id string) (*Image, bool) {
	img, ok := c.Images.ByID[id]
	return img, ok
}

func (c *Catalogs) Sound(id string) (*SoundSource, bool) {
	s, ok := c.Sounds.ByID[id]
	return s, ok
}

func (c *Catalogs) Encounter(id string) (*Encounter, bool) {
	e, ok := c.Encounters.ByID[id]
	return e, ok
}

func (c *Catalogs) Prop(id string) (*Prop, bool) {
	p, ok := c.Props.ByID[id]
	return p, ok
}

func (c *Catalogs) Size(id string) (*ObjectSize, bool) {
	s, ok := c.Sizes.ByID[id]
	return s, ok
}

func spriteID(s *Sprite) string       { return s.ID }
func imageID(i *Image) string         { return i.ID }
func soundID(s *SoundSource) string   { return s.ID }
func encounterID(e *Encounter) string { return e.ID }
func propID(p *Prop) string           { return p.ID }
func sizeID(s *ObjectSize) string     { return s.ID }

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadFile[T any](path string, digest *string, out *map[string]*T, idOf func(*T) string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	*digest = sha256Hex(raw)

	var defs []*T
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	*out = make(map[string]*T, len(defs))
	for _, d := range defs {
		if err := add(*out, d, idOf); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

func loadOptionalFile[T any](path string, digest *string, out *map[string]*T, idOf func(*T) string) error {
	err := loadFile(path, digest, out, idOf)
	if err != nil && os.IsNotExist(err) {
		*digest = sha256Hex(nil)
		*out = map[string]*T{}
		return nil
	}
	return err
}

// loadDir reads one definition per .yaml file, walking subdirectories.
// A missing directory is an empty catalog.
func loadDir[T any](dir string, digest *string, out *map[string]*T, idOf func(*T) string) error {
	*out = map[string]*T{}

	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			*digest = sha256Hex(nil)
			return nil
		}
		return err
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".yaml") || strings.HasSuffix(d.Name(), ".yml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(files)

	var concat bytes.Buffer
	for _, p := range files {
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		concat.Write(b)
		concat.WriteByte('\n')

		def := new(T)
		if err := yaml.Unmarshal(b, def); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		if err := add(*out, def, idOf); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
	}
	*digest = sha256Hex(concat.Bytes())
	return nil
}

func add[T any](m map[string]*T, def *T, idOf func(*T) string) error {
	if def == nil {
		return fmt.Errorf("empty entry")
	}
	id := idOf(def)
	if id == "" {
		return fmt.Errorf("empty id")
	}
	if _, dup := m[id]; dup {
		return fmt.Errorf("duplicate id %s", id)
	}
	m[id] = def
	return nil
}

func sortedKeys[T any](m map[string]*T) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
