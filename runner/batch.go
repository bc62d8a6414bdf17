package runner

// This file contains the batch: one Runner per selected tool, run in order
// or with bounded parallelism, sharing a single preparation history.

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/reviewgo/reviewgo/history"
	"github.com/reviewgo/reviewgo/shell"
	"github.com/reviewgo/reviewgo/tool"
)

// BatchOptions configures a Batch. Parallel values below 2 run tools
// sequentially in configuration order.
type BatchOptions struct {
	Phase    tool.Phase
	Strategy shell.Strategy
	History  *history.Cache
	Shell    Shell
	Reporter Reporter
	Logger   zerolog.Logger
	Parallel int
}

// Batch runs a fixed set of tools. Its runners are kept between runs so
// escalated strategies carry over to the next run.
type Batch struct {
	phase    tool.Phase
	runners  []*Runner
	history  *history.Cache
	reporter Reporter
	logger   zerolog.Logger
	parallel int
}

// Report summarizes one batch run.
type Report struct {
	Phase    tool.Phase
	Started  time.Time
	Duration time.Duration
	// ExitCode is the first nonzero tool exit code in tool order, or 0.
	ExitCode int
	Tools    []ToolReport
}

// ToolReport is the outcome of a single tool within a batch run.
type ToolReport struct {
	Key      string
	Name     string
	ExitCode int
	Tier     Tier
	Prep     time.Duration
	Prepared bool
	Main     time.Duration
	Strategy shell.Strategy
}

func NewBatch(tools []Tool, opts BatchOptions) (*Batch, error) {
	b := &Batch{
		phase:    opts.Phase,
		history:  opts.History,
		reporter: opts.Reporter,
		logger:   opts.Logger,
		parallel: opts.Parallel,
	}
	if b.history == nil {
		b.history = history.New()
	}
	if b.reporter == nil {
		b.reporter = nopReporter{}
	}
	if opts.Shell == nil {
		opts.Shell = shell.NewExecutor(opts.Logger)
	}

	for _, t := range tools {
		r, err := New(t, Options{
			Phase:    opts.Phase,
			Strategy: opts.Strategy,
			History:  b.history,
			Shell:    opts.Shell,
			Reporter: b.reporter,
			Logger:   opts.Logger,
		})
		if err != nil {
			return nil, err
		}
		b.runners = append(b.runners, r)
	}
	return b, nil
}

// Run runs every tool once. A failing tool never stops the others.
func (b *Batch) Run(ctx context.Context) Report {
	report := Report{
		Phase:   b.phase,
		Started: time.Now(),
		Tools:   make([]ToolReport, len(b.runners)),
	}

	b.logger.Debug().
		Int("tools", len(b.runners)).
		Int("parallel", b.parallel).
		Str("phase", b.phase.String()).
		Msg("Starting batch")

	if b.parallel > 1 {
		var g errgroup.Group
		g.SetLimit(b.parallel)
		for i, r := range b.runners {
			i, r := i, r
			g.Go(func() error {
				report.Tools[i] = runTool(ctx, r)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, r := range b.runners {
			report.Tools[i] = runTool(ctx, r)
		}
	}

	for _, tr := range report.Tools {
		if tr.ExitCode != 0 {
			report.ExitCode = tr.ExitCode
			break
		}
	}
	report.Duration = time.Since(report.Started)

	b.reporter.BatchSummary(len(b.runners), report.Duration)
	b.logger.Debug().
		Int("exit_code", report.ExitCode).
		Dur("duration", report.Duration).
		Msg("Batch finished")

	return report
}

func runTool(ctx context.Context, r *Runner) ToolReport {
	code := r.Run(ctx)

	tr := ToolReport{
		Key:      r.tool.Key(),
		Name:     r.tool.Name(),
		ExitCode: code,
		Strategy: r.Strategy(),
	}
	if res := r.Result(); res != nil {
		tr.Tier = res.Tier()
		tr.Prep, tr.Prepared = res.Timer().Prep()
		tr.Main, _ = res.Timer().Main()
	}
	return tr
}

// Reset clears the shared preparation history so the next run prepares
// every tool again.
func (b *Batch) Reset() {
	b.history.Reset()
}

func (b *Batch) Runners() []*Runner {
	return b.runners
}

func (b *Batch) History() *history.Cache {
	return b.history
}
