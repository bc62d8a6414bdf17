package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/reviewgo/reviewgo/tool"
)

func (a *App) tools(ctx *cli.Context) error {
	cfg, err := a.loadConfig(ctx.String("config"))
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Tools (%s) ===\n\n", cfg.Path)
	for _, t := range cfg.Tools() {
		printTool(os.Stdout, t)
	}
	return nil
}

func printTool(w io.Writer, t *tool.Tool) {
	var phases []string
	for _, phase := range []tool.Phase{tool.Review, tool.Format} {
		if t.Supports(phase) {
			phases = append(phases, phase.String())
		}
	}

	status := ""
	if !t.Enabled() {
		status = "  (disabled)"
	}

	fmt.Fprintf(w, "%s  [%s]%s\n", t.Key(), strings.Join(phases, ", "), status)
	if t.Name() != t.Key() || t.Description() != "" {
		fmt.Fprintf(w, "   %s", t.Name())
		if t.Description() != "" {
			fmt.Fprintf(w, ": %s", t.Description())
		}
		fmt.Fprintln(w)
	}
	if tags := t.Tags(); len(tags) > 0 {
		fmt.Fprintf(w, "   Tags: %s\n", strings.Join(tags, ", "))
	}
	if _, ok := t.PrepareCommand(); ok {
		fmt.Fprintln(w, "   Prepares before its first run")
	}
	fmt.Fprintln(w)
}
