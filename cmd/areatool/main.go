package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	logger := log.New(os.Stdout, "[areatool] ", log.LstdFlags|log.Lmicroseconds)
	app := newApp(os.Stdout, logger)
	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}

func newApp(out io.Writer, logger *log.Logger) *cli.App {
	app := cli.NewApp()
	app.Name = "areatool"
	app.Usage = "validate, inspect and package authored areas"
	app.Writer = out

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "resources",
			EnvVars: []string{"SULIS_RESOURCES"},
			Value:   "./configs/resources",
			Usage:   "resource directory (sprites, images, sounds, encounters, props, sizes)",
		},
		&cli.StringFlag{
			Name:    "tuning",
			EnvVars: []string{"SULIS_TUNING"},
			Value:   "./configs/tuning.yaml",
			Usage:   "path to tuning.yaml (missing file: defaults)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "log every created transition",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "validate",
			Usage:     "Build every area and report errors and diagnostics",
			ArgsUsage: "FILE|DIR...",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					return usage(c)
				}
				e, err := loadEnv(c, logger)
				if err != nil {
					return err
				}
				defer e.Close()
				return runValidate(c, e)
			},
		},
		{
			Name:      "inspect",
			Usage:     "Print a summary of an area file or archive",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() != 1 {
					return usage(c)
				}
				e, err := loadEnv(c, logger)
				if err != nil {
					return err
				}
				defer e.Close()
				return runInspect(c, e)
			},
		},
		{
			Name:      "pack",
			Usage:     "Validate an area and write it as a compressed archive",
			ArgsUsage: "FILE OUT",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "level", Usage: "zstd level: fastest, default, better, best (default: tuning archive.level)"},
				&cli.StringFlag{Name: "archive", Usage: "also copy the archive into this directory, under the area id"},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() != 2 {
					return usage(c)
				}
				e, err := loadEnv(c, logger)
				if err != nil {
					return err
				}
				defer e.Close()
				return runPack(c, e)
			},
		},
		{
			Name:      "unpack",
			Usage:     "Write the YAML document stored in an archive",
			ArgsUsage: "ARCHIVE [OUT]",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 || c.NArg() > 2 {
					return usage(c)
				}
				return runUnpack(c)
			},
		},
		{
			Name:      "index",
			Usage:     "Build areas and record them in the area index",
			ArgsUsage: "FILE|DIR...",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "driver", EnvVars: []string{"SULIS_INDEX_DRIVER"}, Usage: "sqlite or postgres (default: tuning index.driver)"},
				&cli.StringFlag{Name: "dsn", EnvVars: []string{"SULIS_INDEX_DSN"}, Usage: "index data source (default: tuning index.dsn)"},
				&cli.BoolFlag{Name: "list", Usage: "print the indexed areas afterwards"},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 && !c.Bool("list") {
					return usage(c)
				}
				e, err := loadEnv(c, logger)
				if err != nil {
					return err
				}
				defer e.Close()
				return runIndex(c, e)
			},
		},
	}
	return app
}

func usage(c *cli.Context) error {
	_ = cli.ShowCommandHelp(c, c.Command.Name)
	return fmt.Errorf("%s: wrong number of arguments", c.Command.Name)
}
