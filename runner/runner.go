package runner

// This file contains the per-tool state machine: prepare when needed, run
// the main command, classify the outcome and, on a failure whose output was
// hidden, escalate to verbose and run the failed command again.

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/reviewgo/reviewgo/history"
	"github.com/reviewgo/reviewgo/shell"
	"github.com/reviewgo/reviewgo/tool"
)

// ErrNoCommand is returned when a tool has nothing to run for a phase.
var ErrNoCommand = errors.New("tool has no command for phase")

// Tool is what the runner needs to know about a configured tool.
type Tool interface {
	Key() string
	Name() string
	Description() string
	PrepareCommand() (string, bool)
	Command(phase tool.Phase, s shell.Strategy) (string, bool)
	InstallHint() string
}

// Shell executes a single command under a strategy.
type Shell interface {
	Run(ctx context.Context, command string, s shell.Strategy) shell.Outcome
}

// State is the position of a Runner in its run cycle.
type State uint8

const (
	StateIdle State = iota
	StatePreparing
	StateRunning
	StateClassifying
	StateRetrying
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateRunning:
		return "running"
	case StateClassifying:
		return "classifying"
	case StateRetrying:
		return "retrying"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Options configures a Runner. Zero values get usable defaults: a private
// history, an executor on the process environment and a reporter that
// discards events.
type Options struct {
	Phase    tool.Phase
	Strategy shell.Strategy
	History  *history.Cache
	Shell    Shell
	Reporter Reporter
	Logger   zerolog.Logger
}

// Runner orchestrates the runs of one tool. A Runner is not safe for
// concurrent use, but may be run repeatedly; a strategy escalated by a
// failure stays escalated for later runs.
type Runner struct {
	tool     Tool
	phase    tool.Phase
	strategy shell.Strategy
	history  *history.Cache
	shell    Shell
	reporter Reporter
	logger   zerolog.Logger

	state  State
	result *Result
}

func New(t Tool, opts Options) (*Runner, error) {
	if _, ok := t.Command(opts.Phase, opts.Strategy); !ok {
		return nil, fmt.Errorf("%s %s: %w", t.Key(), opts.Phase, ErrNoCommand)
	}

	r := &Runner{
		tool:     t,
		phase:    opts.Phase,
		strategy: opts.Strategy,
		history:  opts.History,
		shell:    opts.Shell,
		reporter: opts.Reporter,
		logger:   opts.Logger.With().Str("tool", t.Key()).Logger(),
	}
	if r.history == nil {
		r.history = history.New()
	}
	if r.shell == nil {
		r.shell = shell.NewExecutor(r.logger)
	}
	if r.reporter == nil {
		r.reporter = nopReporter{}
	}
	return r, nil
}

// Run performs one full run of the tool and returns its exit code: 0 on
// success, otherwise the exit code of the first failing command.
func (r *Runner) Run(ctx context.Context) int {
	timer := shell.NewTimer()
	key := r.tool.Key()

	r.reporter.ToolSummary(r.tool.Name(), r.tool.Description())

	if prepare, ok := r.tool.PrepareCommand(); ok && r.history.ShouldPrepare(key) {
		r.state = StatePreparing
		var outcome shell.Outcome
		timer.RecordPrep(func() {
			outcome = r.execute(ctx, prepare)
		})
		if outcome.ExitCode != shell.ExitSuccess {
			r.logger.Debug().Int("exit_code", outcome.ExitCode).Msg("Preparation failed")
			return r.settle(ctx, ClassifyPreparation(outcome, timer), func(shell.Strategy) string {
				return prepare
			})
		}
	} else if ok {
		r.logger.Debug().Msg("Skipping preparation, already prepared")
	}

	r.state = StateRunning
	command := r.command(r.strategy)
	var outcome shell.Outcome
	timer.RecordMain(func() {
		outcome = r.execute(ctx, command)
	})

	return r.settle(ctx, Classify(outcome, timer), r.command)
}

// settle records the result and acts on its tier. commandFor rebuilds the
// failed command for the strategy of a verbose re-run.
func (r *Runner) settle(ctx context.Context, result Result, commandFor func(shell.Strategy) string) int {
	r.state = StateClassifying
	r.result = &result

	r.logger.Debug().
		Int("exit_code", result.ExitCode()).
		Str("tier", result.Tier().String()).
		Str("strategy", r.strategy.String()).
		Msg("Classified result")

	switch {
	case result.Success():
		r.history.RecordSuccess(r.tool.Key())
		r.reporter.Success(result.Timer())

	case result.TotalFailure():
		// The command never ran, more output would not help.
		r.reporter.Failure(result, result.Command())
		if hint := r.tool.InstallHint(); hint != "" {
			r.reporter.Guidance("Try installing the tool:", hint)
		}

	// An interrupted run is not re-run.
	case r.strategy == shell.Quiet && ctx.Err() == nil:
		r.reporter.Failure(result, "")
		r.strategy = r.strategy.Escalate()
		r.state = StateRetrying
		r.reporter.Rerun(r.tool.Name())
		rerun := r.execute(ctx, commandFor(r.strategy))
		r.logger.Debug().
			Int("exit_code", rerun.ExitCode).
			Int("reported_exit_code", result.ExitCode()).
			Msg("Verbose re-run finished")

	default:
		r.reporter.Failure(result, "")
	}

	r.state = StateDone
	return result.ExitCode()
}

func (r *Runner) execute(ctx context.Context, command string) shell.Outcome {
	r.reporter.CurrentCommand(command, r.strategy)
	return r.shell.Run(ctx, command, r.strategy)
}

func (r *Runner) command(s shell.Strategy) string {
	command, _ := r.tool.Command(r.phase, s)
	return command
}

// Success reports whether the last run succeeded.
func (r *Runner) Success() bool {
	return r.result != nil && r.result.Success()
}

// Result returns the last classified result, or nil before the first run.
func (r *Runner) Result() *Result {
	return r.result
}

// Strategy returns the current, possibly escalated, strategy.
func (r *Runner) Strategy() shell.Strategy {
	return r.strategy
}

func (r *Runner) State() State {
	return r.state
}

func (r *Runner) Tool() Tool {
	return r.tool
}

func (r *Runner) Phase() tool.Phase {
	return r.phase
}
