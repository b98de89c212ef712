package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/brunt/sulis/internal/area"
	"github.com/brunt/sulis/internal/persistence/indexdb"
	"github.com/brunt/sulis/internal/persistence/snapshot"
)

const archiveExt = ".area.zst"

// collect expands directories into the area files below them.
func collect(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && (strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}

// build loads an authored file or an archive and builds its area.
func build(path string, e *env) (*area.Area, error) {
	if strings.HasSuffix(path, archiveExt) {
		_, b, err := snapshot.ReadArea(path)
		if err != nil {
			return nil, err
		}
		return area.New(b, e.cats, e.cfg)
	}
	return area.Load(path, e.cats, e.cfg)
}

func runValidate(c *cli.Context, e *env) error {
	files, err := collect(c.Args().Slice())
	if err != nil {
		return err
	}
	out := c.App.Writer
	failed := 0
	for _, path := range files {
		a, err := build(path, e)
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s (%s, %d diagnostics)\n", path, a.ID, len(a.Diagnostics))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d areas failed", failed, len(files))
	}
	return nil
}

func runInspect(c *cli.Context, e *env) error {
	a, err := build(c.Args().First(), e)
	if err != nil {
		return err
	}
	s, err := a.Summary()
	if err != nil {
		return err
	}
	writeSummary(c.App.Writer, s)
	return nil
}

func writeSummary(w io.Writer, s area.Summary) {
	fmt.Fprintf(w, "id:            %s\n", s.ID)
	fmt.Fprintf(w, "name:          %s\n", s.Name)
	fmt.Fprintf(w, "size:          %dx%d\n", s.Width, s.Height)
	fmt.Fprintf(w, "location kind: %s\n", s.LocationKind)
	fmt.Fprintf(w, "terrain kinds: %s\n", strings.Join(s.TerrainKinds, ", "))
	fmt.Fprintf(w, "wall kinds:    %s\n", strings.Join(s.WallKinds, ", "))
	for _, name := range s.LayerNames() {
		fmt.Fprintf(w, "layer %-8s %d tiles\n", name+":", s.Layers[name])
	}
	fmt.Fprintf(w, "actors %d, props %d, encounters %d, triggers %d\n", s.Actors, s.Props, s.Encounters, s.Triggers)
	fmt.Fprintf(w, "transitions:   %d (%d dropped)\n", s.Transitions, s.TransitionsDropped)
	for _, d := range s.Diagnostics {
		fmt.Fprintf(w, "warn: %s\n", d)
	}
	fmt.Fprintf(w, "digest:        %s\n", s.Digest)
}

func runPack(c *cli.Context, e *env) error {
	src, dst := c.Args().Get(0), c.Args().Get(1)

	levelName := c.String("level")
	if levelName == "" {
		levelName = e.tune.Archive.Level
	}
	level, err := snapshot.ParseLevel(levelName)
	if err != nil {
		return err
	}

	a, err := build(src, e)
	if err != nil {
		return err
	}
	if err := snapshot.WriteArea(dst, a.Builder, level); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	e.logger.Printf("packed %s -> %s", a.ID, dst)

	if dir := c.String("archive"); dir != "" {
		archived, err := snapshot.ArchiveArea(dir, dst)
		if err != nil {
			return fmt.Errorf("archive %s: %w", dst, err)
		}
		e.logger.Printf("archived %s -> %s", a.ID, archived)
	}
	return nil
}

func runUnpack(c *cli.Context) error {
	_, b, err := snapshot.ReadArea(c.Args().Get(0))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := b.Encode(&buf); err != nil {
		return err
	}
	if c.NArg() == 1 {
		_, err := c.App.Writer.Write(buf.Bytes())
		return err
	}
	dst := c.Args().Get(1)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, buf.Bytes(), 0o644)
}

func runIndex(c *cli.Context, e *env) error {
	driver := strings.ToLower(strings.TrimSpace(c.String("driver")))
	if driver == "" {
		driver = e.tune.Index.Driver
	}
	dsn := strings.TrimSpace(c.String("dsn"))
	if dsn == "" {
		dsn = e.tune.Index.DSN
	}
	if driver == "" {
		return fmt.Errorf("indexing is disabled (index.driver is empty)")
	}

	ix, err := indexdb.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer ix.Close()

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	files, err := collect(c.Args().Slice())
	if err != nil {
		return err
	}
	for _, path := range files {
		a, err := build(path, e)
		if err != nil {
			return err
		}
		s, err := a.Summary()
		if err != nil {
			return err
		}
		if err := ix.RecordArea(ctx, s, path); err != nil {
			return err
		}
		e.logger.Printf("indexed %s (%s)", a.ID, path)
	}

	if !c.Bool("list") {
		return nil
	}
	rows, err := ix.ListAreas(ctx)
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Fprintf(c.App.Writer, "%s\t%dx%d\t%s\t%s\n", r.ID, r.Width, r.Height, r.LocationKind, r.Source)
	}
	return nil
}
