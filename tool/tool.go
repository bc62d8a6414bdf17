package tool

import (
	"fmt"
	"slices"
)

// Phase selects which of a tool's commands runs.
type Phase uint8

const (
	// Review runs the tool's read-only check.
	Review Phase = iota
	// Format runs the tool's auto-fix command.
	Format
)

func (p Phase) String() string {
	switch p {
	case Review:
		return "review"
	case Format:
		return "format"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Settings is the configuration block of a single tool.
type Settings struct {
	Name        string            `yaml:"name" toml:"name"`
	Description string            `yaml:"description" toml:"description"`
	Tags        []string          `yaml:"tags" toml:"tags"`
	Disabled    bool              `yaml:"disabled" toml:"disabled"`
	Links       Links             `yaml:"links" toml:"links"`
	Commands    Commands          `yaml:"commands" toml:"commands"`
	Env         map[string]string `yaml:"env" toml:"env"`
	Flags       map[string]string `yaml:"flags" toml:"flags"`
}

type Links struct {
	Home    string `yaml:"home" toml:"home"`
	Install string `yaml:"install" toml:"install"`
}

// Commands are shell command lines. Review, Format and Prepare may be
// compound (`a && b`); tool env is then exported for the whole line, while
// flags and the quiet option still only reach the last command.
type Commands struct {
	Install     string `yaml:"install" toml:"install"`
	Prepare     string `yaml:"prepare" toml:"prepare"`
	Review      string `yaml:"review" toml:"review"`
	Format      string `yaml:"format" toml:"format"`
	QuietOption string `yaml:"quiet_option" toml:"quiet_option"`
}

// Tool is one configured quality check. It is immutable once created.
type Tool struct {
	key      string
	settings Settings
}

func New(key string, settings Settings) *Tool {
	return &Tool{key: key, settings: settings}
}

// Key is the identifier the tool is configured under.
func (t *Tool) Key() string {
	return t.key
}

// Name falls back to the key when no display name is configured.
func (t *Tool) Name() string {
	if t.settings.Name != "" {
		return t.settings.Name
	}
	return t.key
}

func (t *Tool) Description() string {
	return t.settings.Description
}

func (t *Tool) Tags() []string {
	return slices.Clone(t.settings.Tags)
}

func (t *Tool) HasTag(tag string) bool {
	return slices.Contains(t.settings.Tags, tag)
}

func (t *Tool) Enabled() bool {
	return !t.settings.Disabled
}

// Settings returns a copy of the tool's configuration.
func (t *Tool) Settings() Settings {
	return t.settings
}

// Supports reports whether the tool has a command for the phase.
func (t *Tool) Supports(phase Phase) bool {
	return t.settings.Commands.forPhase(phase) != ""
}

// InstallHint suggests how to install a missing tool: the install command
// when configured, otherwise the install link.
func (t *Tool) InstallHint() string {
	if t.settings.Commands.Install != "" {
		return t.settings.Commands.Install
	}
	return t.settings.Links.Install
}

func (c Commands) forPhase(phase Phase) string {
	switch phase {
	case Review:
		return c.Review
	case Format:
		return c.Format
	}
	return ""
}
