package cli

// This file contains the list command for displaying recorded runs.

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/reviewgo/reviewgo/journal"
	"github.com/reviewgo/reviewgo/model"
)

func (a *App) list(ctx *cli.Context) error {
	filterTool := ctx.String("tool")
	limit := ctx.Int("limit")

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	repoRoot, err := journal.RepoRoot(wd)
	if err != nil {
		return err
	}
	root := journal.Root(repoRoot)

	entries, err := journal.LoadEntries(a.logger, root)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	filtered := filterEntries(entries, filterTool)
	if len(filtered) == 0 {
		if filterTool != "" {
			fmt.Printf("No recorded runs found for tool: %s\n", filterTool)
		} else {
			fmt.Println("No recorded runs found")
			fmt.Printf("Runs recorded with --record are saved to %s/<timestamp>-<commit>-<id>/\n", root)
		}
		return nil
	}

	display := filtered
	if limit > 0 && limit < len(display) {
		display = display[:limit]
	}

	fmt.Printf("\n=== History (%d total) ===\n\n", len(filtered))
	for _, entry := range display {
		printEntry(os.Stdout, entry)
	}
	return nil
}

// filterEntries keeps entries whose run included the tool key. An empty
// key keeps everything.
func filterEntries(entries []journal.Entry, key string) []journal.Entry {
	if key == "" {
		return entries
	}
	var out []journal.Entry
	for _, entry := range entries {
		for _, tr := range entry.Run.Tools {
			if tr.Key == key {
				out = append(out, entry)
				break
			}
		}
	}
	return out
}

func printEntry(w io.Writer, entry journal.Entry) {
	run := entry.Run

	status := "✓"
	if run.ExitCode != 0 {
		status = "✗"
	}

	fmt.Fprintf(w, "%s  %s  %s  [%s]  exit=%d  id=%s\n",
		status,
		run.Timestamp.Format("2006-01-02 15:04:05"),
		run.Phase,
		run.Duration.Round(time.Millisecond),
		run.ExitCode,
		shortID(run.ID),
	)
	if summary := toolSummary(run.Tools); summary != "" {
		fmt.Fprintf(w, "   Tools: %s\n", summary)
	}
	if run.WorkDir != "" {
		fmt.Fprintf(w, "   Path: %s\n", run.WorkDir)
	}
	if run.Git != nil && run.Git.Commit != "" {
		fmt.Fprintf(w, "   Commit: %s", shortID(run.Git.Commit))
		if run.Git.Branch != "" {
			fmt.Fprintf(w, " (%s)", run.Git.Branch)
		}
		fmt.Fprintln(w)
	}
	for _, artifact := range run.Artifacts {
		if artifact.Type == model.ArtifactTypeTimingProfile {
			fmt.Fprintf(w, "   profile: %s (%.1f KB)\n", artifact.File, float64(artifact.Size)/1024)
		}
	}
	fmt.Fprintf(w, "   %s\n\n", entry.FullPath)
}

// toolSummary renders tools as "key ✓, key ✗ (1, verbose)".
func toolSummary(tools []model.ToolRun) string {
	parts := make([]string, 0, len(tools))
	for _, tr := range tools {
		if !tr.Failed() {
			parts = append(parts, tr.Key+" ✓")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s ✗ (%d, %s)", tr.Key, tr.ExitCode, tr.Strategy))
	}
	return strings.Join(parts, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
