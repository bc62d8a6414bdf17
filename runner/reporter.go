package runner

import (
	"time"

	"github.com/reviewgo/reviewgo/shell"
)

// Reporter receives the events of tool runs. Implementations used with a
// parallel Batch must serialize their own writes.
type Reporter interface {
	// ToolSummary is sent before a tool runs.
	ToolSummary(name, description string)
	// CurrentCommand is sent right before a command is executed.
	CurrentCommand(command string, s shell.Strategy)
	Success(timer *shell.Timer)
	// Failure carries the failing command only when it should be shown to
	// the operator for diagnosis.
	Failure(result Result, command string)
	// Rerun announces that a failed command is about to run again verbosely.
	Rerun(name string)
	Guidance(summary, details string)
	BatchSummary(toolCount int, elapsed time.Duration)
}

type nopReporter struct{}

func (nopReporter) ToolSummary(string, string)            {}
func (nopReporter) CurrentCommand(string, shell.Strategy) {}
func (nopReporter) Success(*shell.Timer)                  {}
func (nopReporter) Failure(Result, string)                {}
func (nopReporter) Rerun(string)                          {}
func (nopReporter) Guidance(string, string)               {}
func (nopReporter) BatchSummary(int, time.Duration)       {}
