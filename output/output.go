// Package output renders runner events on a terminal.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/reviewgo/reviewgo/runner"
	"github.com/reviewgo/reviewgo/shell"
)

// Console writes human-friendly run output. Writes are serialized so a
// parallel batch never interleaves within a single event.
type Console struct {
	mu  sync.Mutex
	out io.Writer

	bold    *color.Color
	light   *color.Color
	gray    *color.Color
	success *color.Color
	green   *color.Color
	yellow  *color.Color
	failure *color.Color
}

// New creates a Console writing to out. Colors are only used when out is
// the process's stdout or stderr and NO_COLOR is not set.
func New(out io.Writer) *Console {
	useColor := isTerminal(out)
	paint := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}

	return &Console{
		out:     out,
		bold:    paint(color.Bold),
		light:   paint(color.Faint),
		gray:    paint(color.FgWhite),
		success: paint(color.FgGreen, color.Bold),
		green:   paint(color.FgGreen),
		yellow:  paint(color.FgYellow),
		failure: paint(color.FgRed, color.Bold),
	}
}

func isTerminal(w io.Writer) bool {
	if w != os.Stdout && w != os.Stderr {
		return false
	}
	return !color.NoColor
}

// Writer wraps w so that each write holds the console lock. Streamed tool
// output passed through it never lands inside another tool's event block.
func (c *Console) Writer(w io.Writer) io.Writer {
	return &guardedWriter{mu: &c.mu, w: w}
}

type guardedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (g *guardedWriter) Write(p []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.w.Write(p)
}

func (c *Console) ToolSummary(name, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.out)
	c.bold.Fprint(c.out, name)
	if description != "" {
		c.light.Fprint(c.out, " "+description)
	}
	fmt.Fprintln(c.out)
}

// CurrentCommand only shows commands that run verbosely; quiet runs stay
// silent until they finish.
func (c *Console) CurrentCommand(command string, s shell.Strategy) {
	if s != shell.Verbose {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.out)
	c.bold.Fprintln(c.out, "Now Running:")
	c.gray.Fprintln(c.out, command)
}

func (c *Console) Success(timer *shell.Timer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.success.Fprint(c.out, "Success")
	c.green.Fprintf(c.out, " %.2fs", timer.TotalSeconds())
	if percent, ok := timer.PrepPercent(); ok {
		c.yellow.Fprintf(c.out, " (%d%% prep ~%.2fs)", percent, timer.PrepSeconds())
	}
	fmt.Fprintln(c.out)
}

func (c *Console) Failure(result runner.Result, command string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failure.Fprint(c.out, "Failure")
	c.light.Fprint(c.out, " "+result.String())
	fmt.Fprintln(c.out)

	if command == "" {
		return
	}

	fmt.Fprintln(c.out)
	c.bold.Fprintln(c.out, "Failed Command:")
	c.gray.Fprintln(c.out, command)

	if output := strings.TrimSpace(result.Output()); output != "" {
		c.gray.Fprintln(c.out, output)
	}
}

func (c *Console) Rerun(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.out)
	c.bold.Fprintf(c.out, "Re-running %s verbosely:\n", name)
}

func (c *Console) Guidance(summary, details string) {
	if details == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.out)
	c.bold.Fprintln(c.out, summary)
	c.gray.Fprintln(c.out, details)
}

func (c *Console) BatchSummary(toolCount int, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.out)
	c.bold.Fprintf(c.out, "~%.1f seconds", elapsed.Seconds())
	if toolCount > 1 {
		c.light.Fprintf(c.out, " for %d tools", toolCount)
	}
	fmt.Fprintln(c.out)
}
