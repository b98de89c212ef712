package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/brunt/sulis/internal/area"
)

// Index is a read model of validated areas. It is a secondary store: the
// authored files stay the source of truth.
type Index struct {
	db     *sql.DB
	driver string
}

// AreaRow is one indexed area.
type AreaRow struct {
	ID                 string
	Name               string
	Width              int
	Height             int
	LocationKind       string
	Actors             int
	Props              int
	Encounters         int
	Triggers           int
	Transitions        int
	TransitionsDropped int
	Layers             map[string]int
	Digest             string
	Source             string
	IndexedAt          string
}

// Open connects to driver ("sqlite" or "postgres") and ensures the schema exists.
func Open(driver, dsn string) (*Index, error) {
	switch driver {
	case "sqlite":
		return OpenSQLite(dsn)
	case "postgres":
		return OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("unknown index driver %q", driver)
	}
}

func OpenSQLite(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return open(db, "sqlite")
}

func OpenPostgres(dsn string) (*Index, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres dsn")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return open(db, "postgres")
}

func open(db *sql.DB, driver string) (*Index, error) {
	ix := &Index{db: db, driver: driver}
	if err := ix.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return ix, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func (ix *Index) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS areas (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			location_kind TEXT NOT NULL,
			actors INTEGER NOT NULL,
			props INTEGER NOT NULL,
			encounters INTEGER NOT NULL,
			triggers INTEGER NOT NULL,
			transitions INTEGER NOT NULL,
			transitions_dropped INTEGER NOT NULL,
			layers_json TEXT NOT NULL,
			digest TEXT NOT NULL,
			source TEXT NOT NULL,
			indexed_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS area_kinds (
			area_id TEXT NOT NULL REFERENCES areas(id) ON DELETE CASCADE,
			grid TEXT NOT NULL,
			idx INTEGER NOT NULL,
			kind TEXT NOT NULL,
			PRIMARY KEY (area_id, grid, idx)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_area_kinds_kind ON area_kinds(kind);`,
		`CREATE TABLE IF NOT EXISTS area_diagnostics (
			area_id TEXT NOT NULL REFERENCES areas(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			idx INTEGER NOT NULL,
			x INTEGER,
			y INTEGER,
			message TEXT NOT NULL,
			PRIMARY KEY (area_id, seq)
		);`,
	}
	for _, s := range stmts {
		if _, err := ix.db.Exec(s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	_, err := ix.db.Exec(ix.rebind(`INSERT INTO meta(key,value) VALUES('schema_version','1')
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`))
	return err
}

func (ix *Index) Close() error { return ix.db.Close() }

// RecordArea replaces everything indexed for s.ID in one transaction.
func (ix *Index) RecordArea(ctx context.Context, s area.Summary, source string) error {
	layers, err := json.Marshal(s.Layers)
	if err != nil {
		return err
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, ix.rebind(`INSERT INTO areas(
			id,name,width,height,location_kind,actors,props,encounters,triggers,
			transitions,transitions_dropped,layers_json,digest,source,indexed_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, width=excluded.width, height=excluded.height,
			location_kind=excluded.location_kind, actors=excluded.actors, props=excluded.props,
			encounters=excluded.encounters, triggers=excluded.triggers,
			transitions=excluded.transitions, transitions_dropped=excluded.transitions_dropped,
			layers_json=excluded.layers_json, digest=excluded.digest, source=excluded.source,
			indexed_at=excluded.indexed_at`),
		s.ID, s.Name, s.Width, s.Height, s.LocationKind, s.Actors, s.Props, s.Encounters, s.Triggers,
		s.Transitions, s.TransitionsDropped, string(layers), s.Digest, source,
		time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("upsert area %s: %w", s.ID, err)
	}

	for _, table := range []string{"area_kinds", "area_diagnostics"} {
		if _, err := tx.ExecContext(ctx, ix.rebind(`DELETE FROM `+table+` WHERE area_id=?`), s.ID); err != nil {
			return fmt.Errorf("clear %s for %s: %w", table, s.ID, err)
		}
	}

	insertKind, err := tx.PrepareContext(ctx, ix.rebind(`INSERT INTO area_kinds(area_id,grid,idx,kind) VALUES(?,?,?,?)`))
	if err != nil {
		return err
	}
	defer insertKind.Close()
	for grid, kinds := range map[string][]string{"terrain": s.TerrainKinds, "walls": s.WallKinds} {
		for i, k := range kinds {
			if _, err := insertKind.ExecContext(ctx, s.ID, grid, i, k); err != nil {
				return fmt.Errorf("insert %s kind %q: %w", grid, k, err)
			}
		}
	}

	insertDiag, err := tx.PrepareContext(ctx, ix.rebind(`INSERT INTO area_diagnostics(area_id,seq,kind,idx,x,y,message) VALUES(?,?,?,?,?,?,?)`))
	if err != nil {
		return err
	}
	defer insertDiag.Close()
	for i, d := range s.Diagnostics {
		var x, y sql.NullInt64
		if d.Location != nil {
			x = sql.NullInt64{Int64: int64(d.Location.X), Valid: true}
			y = sql.NullInt64{Int64: int64(d.Location.Y), Valid: true}
		}
		if _, err := insertDiag.ExecContext(ctx, s.ID, i, string(d.Kind), d.Index, x, y, d.Message); err != nil {
			return fmt.Errorf("insert diagnostic %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// ListAreas returns every indexed area ordered by id.
func (ix *Index) ListAreas(ctx context.Context) ([]AreaRow, error) {
	rows, err := ix.db.QueryContext(ctx, `SELECT
		id,name,width,height,location_kind,actors,props,encounters,triggers,
		transitions,transitions_dropped,layers_json,digest,source,indexed_at
		FROM areas ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AreaRow
	for rows.Next() {
		var (
			r      AreaRow
			layers string
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Width, &r.Height, &r.LocationKind, &r.Actors, &r.Props,
			&r.Encounters, &r.Triggers, &r.Transitions, &r.TransitionsDropped, &layers, &r.Digest,
			&r.Source, &r.IndexedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(layers), &r.Layers); err != nil {
			return nil, fmt.Errorf("area %s layers: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Kinds returns the interned kind table of one grid ("terrain" or "walls") in index order.
func (ix *Index) Kinds(ctx context.Context, areaID, grid string) ([]string, error) {
	rows, err := ix.db.QueryContext(ctx, ix.rebind(`SELECT kind FROM area_kinds WHERE area_id=? AND grid=? ORDER BY idx`), areaID, grid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// Diagnostics returns the stored diagnostics of one area in recorded order.
func (ix *Index) Diagnostics(ctx context.Context, areaID string) ([]area.Diagnostic, error) {
	rows, err := ix.db.QueryContext(ctx, ix.rebind(`SELECT kind,idx,x,y,message FROM area_diagnostics WHERE area_id=? ORDER BY seq`), areaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []area.Diagnostic
	for rows.Next() {
		var (
			d    = area.Diagnostic{AreaID: areaID}
			kind string
			x, y sql.NullInt64
		)
		if err := rows.Scan(&kind, &d.Index, &x, &y, &d.Message); err != nil {
			return nil, err
		}
		d.Kind = area.DiagnosticKind(kind)
		if x.Valid && y.Valid {
			d.Location = &area.Point{X: int(x.Int64), Y: int(y.Int64)}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// rebind rewrites `?` placeholders as `$n` for postgres.
func (ix *Index) rebind(q string) string {
	if ix.driver != "postgres" {
		return q
	}
	return rebindDollar(q)
}

func rebindDollar(q string) string {
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}
