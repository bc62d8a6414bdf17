package journal

// This file contains the run journal: saving and loading recorded batch
// runs under <repo>/.reviewgo/history.

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/reviewgo/reviewgo/model"
)

const (
	dirName  = ".reviewgo"
	fileName = "run.json"
)

type Entry struct {
	Run      model.Run
	FullPath string
}

// RepoRoot returns the top level directory of the enclosing git repository.
func RepoRoot(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("not in a git repository: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// Root returns the journal directory for a repository root.
func Root(repoRoot string) string {
	return filepath.Join(repoRoot, dirName, "history")
}

// Save writes run into a new directory below root and returns that
// directory. Directories are named <timestamp>-<commit>-<id>.
func Save(logger zerolog.Logger, root string, run *model.Run) (string, error) {
	timestamp := run.Timestamp.Format("20060102-150405")
	shortCommit := "nogit"
	if run.Git != nil && run.Git.Commit != "" {
		shortCommit = short(run.Git.Commit)
	}

	runDir := filepath.Join(root, fmt.Sprintf("%s-%s-%s", timestamp, shortCommit, short(run.ID)))
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, fileName), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run metadata: %w", err)
	}

	logger.Debug().Str("dir", runDir).Str("id", run.ID).Msg("Recorded run")
	return runDir, nil
}

// LoadEntries loads every recorded run below root, newest first. Entries
// that cannot be parsed are skipped with a warning.
func LoadEntries(logger zerolog.Logger, root string) ([]Entry, error) {
	var entries []Entry

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		runPath := filepath.Join(path, fileName)
		if _, err := os.Stat(runPath); err != nil {
			return nil
		}
		run, err := parseRunJSON(runPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", runPath).Msg("Failed to parse run.json")
			return nil
		}
		entries = append(entries, Entry{Run: run, FullPath: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Run.Timestamp.After(entries[j].Run.Timestamp)
	})
	return entries, nil
}

func parseRunJSON(path string) (model.Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Run{}, err
	}

	var run model.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return model.Run{}, err
	}
	return run, nil
}

func short(s string) string {
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
