package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/brunt/sulis/internal/area"
	"github.com/brunt/sulis/internal/catalogs"
	persistlog "github.com/brunt/sulis/internal/persistence/log"
	"github.com/brunt/sulis/internal/schema"
	"github.com/brunt/sulis/internal/tuning"
)

// env is the shared state every area-building command needs.
type env struct {
	logger *log.Logger
	tune   tuning.Tuning
	cats   *catalogs.Catalogs
	cfg    area.Config
	diags  *persistlog.DiagnosticLogger
}

func loadEnv(c *cli.Context, logger *log.Logger) (*env, error) {
	tp := c.String("tuning")
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load tuning: %w", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	cats, err := catalogs.Load(c.String("resources"))
	if err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}

	e := &env{
		logger: logger,
		tune:   tune,
		cats:   cats,
		cfg: area.Config{
			MaxSize: tune.MaxAreaSize,
			Verbose: tune.Verbose || c.Bool("verbose"),
			Logger:  logger,
		},
	}
	if tune.SchemaValidation {
		v, err := schema.New()
		if err != nil {
			return nil, fmt.Errorf("compile area schema: %w", err)
		}
		e.cfg.Schema = v
	}
	if tune.Diagnostics.Dir != "" {
		e.diags = persistlog.NewDiagnosticLogger(tune.Diagnostics.Dir, tune.Diagnostics.Prefix)
		e.cfg.Diagnostics = e.diags
	}
	return e, nil
}

func (e *env) Close() {
	if e.diags == nil {
		return
	}
	if err := e.diags.Close(); err != nil {
		e.logger.Printf("close diagnostics log: %v", err)
	}
}
