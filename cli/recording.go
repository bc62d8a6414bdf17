package cli

// This file contains run recording: turning a batch report into a
// model.Run and saving it to the history directory.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/reviewgo/reviewgo/journal"
	"github.com/reviewgo/reviewgo/model"
	"github.com/reviewgo/reviewgo/runner"
)

func (a *App) recordRun(report runner.Report, args []string, profiles []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	repoRoot, err := journal.RepoRoot(wd)
	if err != nil {
		return err
	}

	run := buildRun(report, append([]string{AppName, report.Phase.String()}, args...))
	run.WorkDir = "."
	if rel, err := filepath.Rel(repoRoot, wd); err == nil {
		run.WorkDir = rel
	}

	if commit, branch, err := a.getGitInfo(); err == nil {
		run.Git = &model.Git{
			Commit: commit,
			Branch: branch,
			Repo:   filepath.Base(repoRoot),
		}
	} else {
		a.logger.Debug().Err(err).Msg("Recording run without git information")
	}

	for _, path := range profiles {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		run.Artifacts = append(run.Artifacts, model.Artifact{
			Type: model.ArtifactTypeTimingProfile,
			Size: uint64(info.Size()),
			File: abs,
		})
	}

	dir, err := journal.Save(a.logger, journal.Root(repoRoot), run)
	if err != nil {
		return err
	}
	a.logger.Info().Str("id", run.ID).Str("dir", dir).Msg("Recorded run")
	return nil
}

// buildRun converts a batch report into its recorded form.
func buildRun(report runner.Report, args []string) *model.Run {
	run := &model.Run{
		ID:        uuid.NewString(),
		Phase:     report.Phase.String(),
		Timestamp: report.Started,
		Args:      args,
		ExitCode:  report.ExitCode,
		Duration:  report.Duration,
		Tools:     make([]model.ToolRun, 0, len(report.Tools)),
	}
	for _, tr := range report.Tools {
		toolRun := model.ToolRun{
			Key:      tr.Key,
			Name:     tr.Name,
			ExitCode: tr.ExitCode,
			Tier:     tr.Tier.String(),
			Strategy: tr.Strategy.String(),
			Main:     tr.Main,
		}
		if tr.Prepared {
			toolRun.Prep = tr.Prep
		}
		run.Tools = append(run.Tools, toolRun)
	}
	return run
}
