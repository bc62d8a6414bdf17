package cli

// This file contains the review and format commands: loading the
// configuration, assembling a batch and reporting its outcome.

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/reviewgo/reviewgo/config"
	"github.com/reviewgo/reviewgo/history"
	"github.com/reviewgo/reviewgo/journal"
	"github.com/reviewgo/reviewgo/output"
	"github.com/reviewgo/reviewgo/runner"
	"github.com/reviewgo/reviewgo/shell"
	"github.com/reviewgo/reviewgo/timing"
	"github.com/reviewgo/reviewgo/tool"
)

func (a *App) review(ctx *cli.Context) error {
	return a.runPhase(ctx, tool.Review)
}

func (a *App) format(ctx *cli.Context) error {
	return a.runPhase(ctx, tool.Format)
}

func (a *App) runPhase(ctx *cli.Context, phase tool.Phase) error {
	cfg, err := a.loadConfig(ctx.String("config"))
	if err != nil {
		return err
	}

	batch, err := a.newBatch(ctx, cfg, phase)
	if err != nil {
		return err
	}

	runCtx, stop := interruptible(ctx.Context)
	defer stop()

	report := batch.Run(runCtx)
	a.afterRun(ctx, report, nil)

	if report.ExitCode != 0 {
		return cli.Exit("", report.ExitCode)
	}
	return nil
}

// loadConfig loads the configuration at path, or finds one in the working
// directory or the repository root.
func (a *App) loadConfig(path string) (*config.Config, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dirs := []string{wd}
		if root, err := journal.RepoRoot(wd); err == nil && root != wd {
			dirs = append(dirs, root)
		}
		path, err = config.Find(dirs...)
		if err != nil {
			return nil, err
		}
	}

	a.logger.Debug().Str("path", path).Msg("Loading configuration")
	return config.Load(a.logger, path)
}

// batchSettings resolves run options from flags, falling back to the
// configuration file.
type batchSettings struct {
	strategy shell.Strategy
	parallel int
	timeout  time.Duration
}

func resolveSettings(ctx *cli.Context, cfg *config.Config) (batchSettings, error) {
	strategy, err := shell.ParseStrategy(ctx.String("strategy"))
	if err != nil {
		return batchSettings{}, err
	}

	s := batchSettings{
		strategy: strategy,
		parallel: cfg.Settings.Parallel,
		timeout:  cfg.Settings.Timeout,
	}
	if ctx.IsSet("parallel") {
		s.parallel = ctx.Int("parallel")
	}
	if ctx.IsSet("timeout") {
		s.timeout = ctx.Duration("timeout")
	}
	if s.parallel < 0 {
		return batchSettings{}, fmt.Errorf("parallel must not be negative, got %d", s.parallel)
	}
	return s, nil
}

func (a *App) newBatch(ctx *cli.Context, cfg *config.Config, phase tool.Phase) (*runner.Batch, error) {
	settings, err := resolveSettings(ctx, cfg)
	if err != nil {
		return nil, err
	}

	keywords := append(ctx.Args().Slice(), ctx.StringSlice("tools")...)
	selected, err := cfg.Select(keywords, ctx.StringSlice("tags"))
	if err != nil {
		return nil, err
	}
	tools := supporting(selected, phase)
	if len(tools) == 0 {
		return nil, fmt.Errorf("no enabled tools with a %s command", phase)
	}

	env, err := cfg.Env()
	if err != nil {
		return nil, err
	}

	// Streamed output shares the console lock with reporter events.
	console := output.New(os.Stdout)
	opts := []shell.Option{
		shell.WithEnv(env),
		shell.WithTimeout(settings.timeout),
		shell.WithOutput(console.Writer(os.Stdout), console.Writer(os.Stderr)),
	}
	if wd, err := os.Getwd(); err == nil {
		opts = append(opts, shell.WithDir(wd))
	}

	a.logger.Debug().
		Str("phase", phase.String()).
		Int("tools", len(tools)).
		Str("strategy", settings.strategy.String()).
		Msg("Preparing batch")

	return runner.NewBatch(tools, runner.BatchOptions{
		Phase:    phase,
		Strategy: settings.strategy,
		History:  history.New(history.WithTTL(cfg.Settings.HistoryTTL)),
		Shell:    shell.NewExecutor(a.logger, opts...),
		Reporter: console,
		Logger:   a.logger,
		Parallel: settings.parallel,
	})
}

// supporting keeps the tools that have a command for phase.
func supporting(tools []*tool.Tool, phase tool.Phase) []runner.Tool {
	var out []runner.Tool
	for _, t := range tools {
		if t.Supports(phase) {
			out = append(out, t)
		}
	}
	return out
}

// afterRun records the run and writes the timing profile when asked to.
// Reports are merged into prof when it is non-nil. Neither failure affects
// the exit code.
func (a *App) afterRun(ctx *cli.Context, report runner.Report, prof *timing.Builder) {
	var artifacts []string
	if path := ctx.String("profile"); path != "" {
		if prof == nil {
			prof = timing.New()
		}
		prof.Add(report)
		if err := saveProfile(path, prof); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to write timing profile")
		} else {
			a.logger.Info().Str("profile", path).Msgf("View profile with: go tool pprof -top %s", path)
			artifacts = append(artifacts, path)
		}
	}

	if ctx.Bool("record") {
		if err := a.recordRun(report, ctx.Args().Slice(), artifacts); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to record run")
		}
	}
}

func saveProfile(path string, b *timing.Builder) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create profile file: %w", err)
	}
	defer f.Close()

	if err := b.Write(f); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

// interruptible returns a context cancelled on SIGINT or SIGTERM.
func interruptible(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
