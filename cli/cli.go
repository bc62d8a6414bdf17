package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "reviewgo"

type App struct {
	logger zerolog.Logger
	cli    *cli.App
}

// runFlags are shared by every command that runs tools.
func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the configuration file (default: .reviewgo.yml in the working directory or repository root)",
		},
		&cli.StringSliceFlag{
			Name:  "tools",
			Usage: "Run this tool, even when disabled (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:    "tags",
			Aliases: []string{"t"},
			Usage:   "Only run tools with this tag (can be specified multiple times)",
		},
		&cli.IntFlag{
			Name:    "parallel",
			Aliases: []string{"p"},
			Usage:   "Number of tools to run at the same time (default: settings.parallel or 1)",
		},
		&cli.StringFlag{
			Name:  "strategy",
			Usage: "Initial verbosity strategy: quiet or verbose",
			Value: "quiet",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Kill any single command running longer than this (default: settings.timeout, 0 disables)",
		},
		&cli.StringFlag{
			Name:  "profile",
			Usage: "Write a pprof timing profile of the run to this path",
		},
		&cli.BoolFlag{
			Name:  "record",
			Usage: "Record the run in .reviewgo/history for later listing",
		},
	}
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		cli: &cli.App{
			Name:      AppName,
			Usage:     "Run the configured linters, formatters and analyzers",
			ArgsUsage: "[TOOL|TAG...]",
			Flags: append([]cli.Flag{
				&cli.BoolFlag{
					Name:  "debug",
					Usage: "Enable debug logging",
				},
			}, runFlags()...),
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("debug") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	// Running without a command reviews.
	app.cli.Action = app.review

	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "review",
		Aliases:   []string{"rvw"},
		Usage:     "Run the review command of the selected tools",
		ArgsUsage: "[TOOL|TAG...]",
		Action:    app.review,
		Flags:     runFlags(),
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "format",
		Aliases:   []string{"fmt"},
		Usage:     "Run the format command of the selected tools",
		ArgsUsage: "[TOOL|TAG...]",
		Action:    app.format,
		Flags:     runFlags(),
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Review again whenever files change",
		ArgsUsage: "[TOOL|TAG...]",
		Action:    app.watch,
		Flags: append(runFlags(),
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Wait this long after the last change before running",
				Value: 300 * time.Millisecond,
			},
			&cli.BoolFlag{
				Name:  "fresh",
				Usage: "Prepare every tool again on each run instead of reusing earlier preparation",
			},
		),
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "list",
		Usage:  "List recorded runs",
		Action: app.list,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "tool",
				Usage: "Only show runs that included this tool",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Limit number of results (default: 20)",
				Value:   20,
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "tools",
		Usage:  "Show the configured tools",
		Action: app.tools,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the configuration file",
			},
		},
	})
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && len(commit) >= 8 {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
}
