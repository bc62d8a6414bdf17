package cli

import (
	"bytes"
	"flag"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/reviewgo/reviewgo/config"
	"github.com/reviewgo/reviewgo/journal"
	"github.com/reviewgo/reviewgo/model"
	"github.com/reviewgo/reviewgo/runner"
	"github.com/reviewgo/reviewgo/shell"
	"github.com/reviewgo/reviewgo/tool"
)

func TestResolveSettings(t *testing.T) {
	cfg := &config.Config{Settings: config.Settings{Parallel: 2, Timeout: time.Minute}}

	tests := []struct {
		name    string
		args    []string
		want    batchSettings
		wantErr bool
	}{
		{
			name: "falls back to configuration",
			args: nil,
			want: batchSettings{strategy: shell.Quiet, parallel: 2, timeout: time.Minute},
		},
		{
			name: "flags override configuration",
			args: []string{"--parallel", "4", "--timeout", "5s", "--strategy", "verbose"},
			want: batchSettings{strategy: shell.Verbose, parallel: 4, timeout: 5 * time.Second},
		},
		{
			name: "zero parallel from flag",
			args: []string{"--parallel", "0"},
			want: batchSettings{strategy: shell.Quiet, parallel: 0, timeout: time.Minute},
		},
		{
			name:    "unknown strategy",
			args:    []string{"--strategy", "loud"},
			wantErr: true,
		},
		{
			name:    "negative parallel",
			args:    []string{"--parallel", "-1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := flag.NewFlagSet("test", flag.ContinueOnError)
			set.String("strategy", "quiet", "")
			set.Int("parallel", 0, "")
			set.Duration("timeout", 0, "")
			require.NoError(t, set.Parse(tt.args))

			got, err := resolveSettings(cli.NewContext(&cli.App{}, set, nil), cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSupporting(t *testing.T) {
	both := tool.New("rubocop", tool.Settings{Commands: tool.Commands{Review: "rubocop", Format: "rubocop -a"}})
	reviewOnly := tool.New("audit", tool.Settings{Commands: tool.Commands{Review: "bundle-audit"}})

	require.Len(t, supporting([]*tool.Tool{both, reviewOnly}, tool.Review), 2)

	formatters := supporting([]*tool.Tool{both, reviewOnly}, tool.Format)
	require.Len(t, formatters, 1)
	require.Equal(t, "rubocop", formatters[0].Key())
}

func TestBuildRun(t *testing.T) {
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	report := runner.Report{
		Phase:    tool.Review,
		Started:  started,
		Duration: 2 * time.Second,
		ExitCode: 1,
		Tools: []runner.ToolReport{
			{Key: "rubocop", Name: "RuboCop", ExitCode: 1, Tier: runner.TierStandardFailure, Strategy: shell.Verbose, Main: time.Second},
			{Key: "audit", Name: "Audit", Tier: runner.TierSuccess, Strategy: shell.Quiet, Prepared: true, Prep: 300 * time.Millisecond, Main: 700 * time.Millisecond},
		},
	}

	run := buildRun(report, []string{AppName, "review", "ruby"})

	require.NotEmpty(t, run.ID)
	require.Equal(t, "review", run.Phase)
	require.Equal(t, started, run.Timestamp)
	require.Equal(t, 1, run.ExitCode)
	require.Equal(t, []model.ToolRun{
		{Key: "rubocop", Name: "RuboCop", ExitCode: 1, Tier: "failure", Strategy: "verbose", Main: time.Second},
		{Key: "audit", Name: "Audit", Tier: "success", Strategy: "quiet", Prep: 300 * time.Millisecond, Main: 700 * time.Millisecond},
	}, run.Tools)
}

func TestFilterEntries(t *testing.T) {
	entries := []journal.Entry{
		{Run: model.Run{ID: "a", Tools: []model.ToolRun{{Key: "rubocop"}, {Key: "audit"}}}},
		{Run: model.Run{ID: "b", Tools: []model.ToolRun{{Key: "eslint"}}}},
	}

	tests := []struct {
		name string
		key  string
		want []string
	}{
		{name: "no filter", key: "", want: []string{"a", "b"}},
		{name: "matching tool", key: "eslint", want: []string{"b"}},
		{name: "no match", key: "stylelint", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, e := range filterEntries(entries, tt.key) {
				ids = append(ids, e.Run.ID)
			}
			require.Equal(t, tt.want, ids)
		})
	}
}

func TestToolSummary(t *testing.T) {
	got := toolSummary([]model.ToolRun{
		{Key: "audit"},
		{Key: "rubocop", ExitCode: 1, Strategy: "verbose"},
	})
	require.Equal(t, "audit ✓, rubocop ✗ (1, verbose)", got)
}

func TestPrintEntry(t *testing.T) {
	var buf bytes.Buffer
	printEntry(&buf, journal.Entry{
		FullPath: "/repo/.reviewgo/history/run",
		Run: model.Run{
			ID:        "0c7e0a52-4c2b-4a57-9d8f-2b7c1b2f6a11",
			Phase:     "review",
			Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			Duration:  1500 * time.Millisecond,
			ExitCode:  127,
			WorkDir:   ".",
			Git:       &model.Git{Commit: "3f2a9c0d1e2b3c4d", Branch: "main"},
			Tools:     []model.ToolRun{{Key: "eslint", ExitCode: 127, Strategy: "quiet"}},
		},
	})

	require.Equal(t, "✗  2024-05-01 10:00:00  review  [1.5s]  exit=127  id=0c7e0a52\n"+
		"   Tools: eslint ✗ (127, quiet)\n"+
		"   Path: .\n"+
		"   Commit: 3f2a9c0d (main)\n"+
		"   /repo/.reviewgo/history/run\n\n", buf.String())
}

func TestPrintTool(t *testing.T) {
	var buf bytes.Buffer
	printTool(&buf, tool.New("rubocop", tool.Settings{
		Name:        "RuboCop",
		Description: "Ruby style",
		Tags:        []string{"ruby", "style"},
		Disabled:    true,
		Commands:    tool.Commands{Review: "rubocop", Format: "rubocop -a", Prepare: "bundle install"},
	}))

	require.Equal(t, "rubocop  [review, format]  (disabled)\n"+
		"   RuboCop: Ruby style\n"+
		"   Tags: ruby, style\n"+
		"   Prepares before its first run\n\n", buf.String())
}

func TestSkipDir(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: ".git", want: true},
		{name: ".reviewgo", want: true},
		{name: "node_modules", want: true},
		{name: "vendor", want: true},
		{name: "lib", want: false},
		{name: "app", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, skipDir(tt.name))
		})
	}
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{name: "write", event: fsnotify.Event{Name: "lib/a.rb", Op: fsnotify.Write}, want: true},
		{name: "create", event: fsnotify.Event{Name: "lib/b.rb", Op: fsnotify.Create}, want: true},
		{name: "remove", event: fsnotify.Event{Name: "lib/c.rb", Op: fsnotify.Remove}, want: true},
		{name: "chmod only", event: fsnotify.Event{Name: "lib/a.rb", Op: fsnotify.Chmod}, want: false},
		{name: "hidden file", event: fsnotify.Event{Name: "lib/.a.rb.swp", Op: fsnotify.Write}, want: false},
		{name: "backup file", event: fsnotify.Event{Name: "lib/a.rb~", Op: fsnotify.Create}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, relevant(tt.event))
		})
	}
}
