package cli

// This file contains the watch command: the review batch runs once, then
// again after every burst of file changes. The batch is kept between runs,
// so preparation is skipped and escalated tools stay verbose.

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"

	"github.com/reviewgo/reviewgo/timing"
	"github.com/reviewgo/reviewgo/tool"
)

var skippedDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
}

func (a *App) watch(ctx *cli.Context) error {
	cfg, err := a.loadConfig(ctx.String("config"))
	if err != nil {
		return err
	}
	batch, err := a.newBatch(ctx, cfg, tool.Review)
	if err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := a.watchTree(watcher, wd); err != nil {
		return err
	}

	runCtx, stop := interruptible(ctx.Context)
	defer stop()

	debounce := ctx.Duration("debounce")
	fresh := ctx.Bool("fresh")
	var prof *timing.Builder
	if ctx.String("profile") != "" {
		prof = timing.New()
	}

	run := func() {
		if fresh {
			batch.Reset()
		}
		report := batch.Run(runCtx)
		a.afterRun(ctx, report, prof)
		a.logger.Info().Int("exit_code", report.ExitCode).Msg("Waiting for changes")
	}
	run()

	// pending is nil until a change arrives, then fires once the tree has
	// been quiet for the debounce interval.
	var pending <-chan time.Time
	var timer *time.Timer

	for {
		select {
		case <-runCtx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := a.watchTree(watcher, event.Name); err != nil {
						a.logger.Warn().Err(err).Str("dir", event.Name).Msg("Failed to watch new directory")
					}
				}
			}
			a.logger.Debug().Str("op", event.Op.String()).Str("file", event.Name).Msg("Change detected")

			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Error().Err(err).Msg("fsnotify error")

		case <-pending:
			pending = nil
			run()
		}
	}
}

// watchTree adds root and every directory below it that is not skipped.
func (a *App) watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Directories can disappear while walking.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		a.logger.Debug().Str("dir", path).Msg("Watching")
		return nil
	})
}

// skipDir reports whether a directory and everything below it is ignored.
// Hidden directories cover .git and .reviewgo.
func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || skippedDirs[name]
}

// relevant filters out events that should not trigger a run, such as
// permission changes and editor swap files.
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	return !strings.HasPrefix(name, ".") && !strings.HasSuffix(name, "~")
}
