package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/reviewgo/reviewgo/shell"
	"github.com/reviewgo/reviewgo/tool"
)

const yamlConfig = `
settings:
  env_file: .env.review
  parallel: 2
  timeout: 90s

rubocop:
  name: RuboCop
  description: Ruby style and lint checks
  tags: [ruby, lint]
  links:
    install: https://docs.rubocop.org/rubocop/installation.html
  commands:
    install: gem install rubocop
    prepare: bundle exec rubocop --version
    review: bundle exec rubocop --parallel
    format: bundle exec rubocop --auto-correct
    quiet_option: --format quiet
  env:
    RUBOCOP_OPTS: --display-cop-names
  flags:
    config: .rubocop.yml

gofmt:
  description: Go formatting
  tags: [go, format]
  commands:
    review: test -z "$(gofmt -l .)"
    format: gofmt -w .

eslint:
  disabled: true
  tags: [js, lint]
  commands:
    review: npx eslint .
`

const tomlConfig = `
[settings]
parallel = 3
history_ttl = "10m"

[golangci]
name = "golangci-lint"
tags = ["go", "lint"]

[golangci.commands]
prepare = "golangci-lint cache status"
review = "golangci-lint run"
quiet_option = "--out-format line-number"

[gofmt]
tags = ["go"]

[gofmt.commands]
review = "gofmt -l ."
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), ".reviewgo.yml", yamlConfig)

	cfg, err := Load(zerolog.Nop(), path)
	require.NoError(t, err)

	require.Equal(t, path, cfg.Path)
	require.Equal(t, 2, cfg.Settings.Parallel)
	require.Equal(t, 90*time.Second, cfg.Settings.Timeout)
	require.Equal(t, ".env.review", cfg.Settings.EnvFile)

	tools := cfg.Tools()
	require.Len(t, tools, 3)
	require.Equal(t, "rubocop", tools[0].Key())
	require.Equal(t, "gofmt", tools[1].Key())
	require.Equal(t, "eslint", tools[2].Key())

	rubocop := tools[0]
	require.Equal(t, "RuboCop", rubocop.Name())
	require.Equal(t, "gem install rubocop", rubocop.InstallHint())

	command, ok := rubocop.Command(tool.Review, shell.Quiet)
	require.True(t, ok)
	require.Equal(t, "RUBOCOP_OPTS=--display-cop-names bundle exec rubocop --parallel --config .rubocop.yml --format quiet", command)

	require.False(t, tools[2].Enabled())
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), ".reviewgo.toml", tomlConfig)

	cfg, err := Load(zerolog.Nop(), path)
	require.NoError(t, err)

	require.Equal(t, 3, cfg.Settings.Parallel)
	require.Equal(t, 10*time.Minute, cfg.Settings.HistoryTTL)

	tools := cfg.Tools()
	require.Len(t, tools, 2)
	require.Equal(t, "golangci", tools[0].Key())
	require.Equal(t, "golangci-lint", tools[0].Name())
	require.Equal(t, "gofmt", tools[1].Key())

	prepare, ok := tools[0].PrepareCommand()
	require.True(t, ok)
	require.Equal(t, "golangci-lint cache status", prepare)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "invalid yaml",
			file:    ".reviewgo.yml",
			content: "rubocop: [unclosed",
		},
		{
			name:    "not a mapping",
			file:    ".reviewgo.yml",
			content: "- rubocop\n- gofmt\n",
		},
		{
			name:    "tool without commands",
			file:    ".reviewgo.yml",
			content: "rubocop:\n  description: nothing to run\n",
		},
		{
			name:    "negative parallel",
			file:    ".reviewgo.toml",
			content: "[settings]\nparallel = -1\n",
		},
		{
			name:    "unsupported extension",
			file:    "reviewgo.json",
			content: "{}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			_, err := Load(zerolog.Nop(), path)
			require.Error(t, err)
		})
	}
}

func TestFind(t *testing.T) {
	empty := t.TempDir()
	withConfig := t.TempDir()
	want := writeFile(t, withConfig, ".reviewgo.toml", tomlConfig)

	got, err := Find(empty, withConfig)
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = Find(empty)
	require.ErrorIs(t, err, ErrNoConfig)
}

func TestSelect(t *testing.T) {
	path := writeFile(t, t.TempDir(), ".reviewgo.yml", yamlConfig)
	cfg, err := Load(zerolog.Nop(), path)
	require.NoError(t, err)

	keys := func(tools []*tool.Tool) []string {
		var out []string
		for _, t := range tools {
			out = append(out, t.Key())
		}
		return out
	}

	tests := []struct {
		name     string
		keywords []string
		tags     []string
		want     []string
		wantErr  error
	}{
		{
			name: "all enabled by default",
			want: []string{"rubocop", "gofmt"},
		},
		{
			name:     "by key keeps file order",
			keywords: []string{"gofmt", "rubocop"},
			want:     []string{"rubocop", "gofmt"},
		},
		{
			name:     "disabled tool named explicitly",
			keywords: []string{"eslint"},
			want:     []string{"eslint"},
		},
		{
			name:     "keyword matching a tag skips disabled tools",
			keywords: []string{"lint"},
			want:     []string{"rubocop"},
		},
		{
			name: "tags flag",
			tags: []string{"go", "ruby"},
			want: []string{"rubocop", "gofmt"},
		},
		{
			name:     "unknown keyword",
			keywords: []string{"pylint"},
			wantErr:  ErrUnknownTool,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tools, err := cfg.Select(tt.keywords, tt.tags)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, keys(tools))
		})
	}
}

func TestEnvFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env.review", "RAILS_ENV=test\nQUOTED=\"a b\"\n")
	path := writeFile(t, dir, ".reviewgo.yml", yamlConfig)

	cfg, err := Load(zerolog.Nop(), path)
	require.NoError(t, err)

	env, err := cfg.Env()
	require.NoError(t, err)
	require.Equal(t, map[string]string{"RAILS_ENV": "test", "QUOTED": "a b"}, env)

	cfg.Settings.EnvFile = "missing.env"
	_, err = cfg.Env()
	require.Error(t, err)

	cfg.Settings.EnvFile = ""
	env, err = cfg.Env()
	require.NoError(t, err)
	require.Nil(t, env)
}
