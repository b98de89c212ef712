package catalogs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Resources(t *testing.T) {
	c, err := Load("../../configs/resources")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := c.Sprite("gui/vis"); !ok {
		t.Fatalf("missing sprite gui/vis")
	}
	img, ok := c.Image("door")
	if !ok || img.Sprite != "doors/wood" {
		t.Fatalf("image door=%+v ok=%v", img, ok)
	}
	if s, ok := c.Sound("wind"); !ok || !s.Loop {
		t.Fatalf("sound wind=%+v ok=%v", s, ok)
	}
	if e, ok := c.Encounter("goblins"); !ok || len(e.Actors) != 3 || !e.AutoSpawn {
		t.Fatalf("encounter goblins=%+v ok=%v", e, ok)
	}
	if p, ok := c.Prop("chest"); !ok || p.Size != "1by1" {
		t.Fatalf("prop chest=%+v ok=%v", p, ok)
	}
	if s, ok := c.Size("4by4"); !ok || s.Width != 4 {
		t.Fatalf("size 4by4=%+v ok=%v", s, ok)
	}
	if _, ok := c.Prop("barrel"); ok {
		t.Fatalf("unexpected prop barrel")
	}
	for name, d := range map[string]string{
		"sprites": c.Sprites.Digest, "images": c.Images.Digest, "sounds": c.Sounds.Digest,
		"encounters": c.Encounters.Digest, "props": c.Props.Digest, "sizes": c.Sizes.Digest,
	} {
		if len(d) != 64 {
			t.Fatalf("%s digest=%q", name, d)
		}
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func minimalResources(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sizes.yaml"), "- {id: 1by1, width: 1, height: 1}\n")
	writeFile(t, filepath.Join(dir, "sprites.yaml"), "- {id: s, sheet: gui}\n")
	writeFile(t, filepath.Join(dir, "images.yaml"), "- {id: i, sprite: s, width: 1, height: 1}\n")
	return dir
}

func TestLoad_OptionalParts(t *testing.T) {
	c, err := Load(minimalResources(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Sounds.ByID) != 0 || len(c.Encounters.ByID) != 0 || len(c.Props.ByID) != 0 {
		t.Fatalf("optional catalogs should be empty")
	}
	if c.Sounds.Digest != c.Props.Digest {
		t.Fatalf("empty catalogs should share the empty digest")
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{"duplicate size", map[string]string{"sizes.yaml": "- {id: a, width: 1, height: 1}\n- {id: a, width: 2, height: 2}\n"}, "duplicate id a"},
		{"empty id", map[string]string{"sprites.yaml": "- {sheet: gui}\n"}, "empty id"},
		{"unknown sprite", map[string]string{"images.yaml": "- {id: i, sprite: nope}\n"}, "unknown sprite nope"},
		{"unknown size", map[string]string{"props/p.yaml": "id: p\nsize: 9by9\n"}, "unknown size 9by9"},
		{"duplicate prop", map[string]string{"props/p1.yaml": "id: s\nsize: 1by1\n", "props/sub/p2.yaml": "id: s\nsize: 1by1\n"}, "duplicate id s"},
		{"broken yaml", map[string]string{"encounters/e.yaml": "id: [\n"}, "e.yaml"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := minimalResources(t)
			for name, body := range tc.files {
				writeFile(t, filepath.Join(dir, name), body)
			}
			_, err := Load(dir)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err=%v want %q", err, tc.want)
			}
		})
	}
}

func TestLoad_MissingRequiredFile(t *testing.T) {
	dir := minimalResources(t)
	if err := os.Remove(filepath.Join(dir, "images.yaml")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := Load(dir); !os.IsNotExist(err) {
		t.Fatalf("err=%v want not-exist", err)
	}
}
