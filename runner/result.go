package runner

import (
	"fmt"

	"github.com/reviewgo/reviewgo/shell"
)

// Tier is the severity of a completed run.
type Tier uint8

const (
	TierSuccess Tier = iota
	// TierStandardFailure means the tool ran and reported a problem.
	TierStandardFailure
	// TierTotalFailure means the command could not be executed at all.
	TierTotalFailure
)

func (t Tier) String() string {
	switch t {
	case TierSuccess:
		return "success"
	case TierStandardFailure:
		return "failure"
	case TierTotalFailure:
		return "total_failure"
	}
	return fmt.Sprintf("tier(%d)", uint8(t))
}

// TierOf maps an exit code onto its severity tier.
func TierOf(exitCode int) Tier {
	switch exitCode {
	case shell.ExitSuccess:
		return TierSuccess
	case shell.ExitCannotExecute, shell.ExitNotFound:
		return TierTotalFailure
	}
	return TierStandardFailure
}

// Result is a classified Outcome together with the timing of the run.
type Result struct {
	outcome shell.Outcome
	tier    Tier
	timer   *shell.Timer
}

// Classify derives a Result from an outcome. It depends only on the exit code.
func Classify(outcome shell.Outcome, timer *shell.Timer) Result {
	return Result{
		outcome: outcome,
		tier:    TierOf(outcome.ExitCode),
		timer:   timer,
	}
}

// ClassifyPreparation derives a Result from a preparation outcome. Any
// nonzero exit is a standard failure of the whole run, even when the
// preparation command could not be executed, so the run escalates and the
// preparation is repeated verbosely. The exit code is kept as observed.
func ClassifyPreparation(outcome shell.Outcome, timer *shell.Timer) Result {
	tier := TierSuccess
	if outcome.ExitCode != shell.ExitSuccess {
		tier = TierStandardFailure
	}
	return Result{
		outcome: outcome,
		tier:    tier,
		timer:   timer,
	}
}

func (r Result) Tier() Tier {
	return r.tier
}

func (r Result) Success() bool {
	return r.tier == TierSuccess
}

func (r Result) TotalFailure() bool {
	return r.tier == TierTotalFailure
}

func (r Result) ExitCode() int {
	return r.outcome.ExitCode
}

// Output is the combined stdout and stderr captured from the command.
func (r Result) Output() string {
	return r.outcome.Output
}

// Command is the literal command that produced the result.
func (r Result) Command() string {
	return r.outcome.Command
}

func (r Result) Timer() *shell.Timer {
	return r.timer
}

func (r Result) String() string {
	switch r.tier {
	case TierSuccess:
		return "success"
	case TierTotalFailure:
		return fmt.Sprintf("exit status %d (command could not be executed)", r.outcome.ExitCode)
	}
	return fmt.Sprintf("exit status %d", r.outcome.ExitCode)
}
