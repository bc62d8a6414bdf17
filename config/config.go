package config

// This file contains configuration discovery and loading. Tools are read
// from a YAML or TOML file whose top-level keys are tool keys, plus an
// optional "settings" block with batch-wide options.

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/reviewgo/reviewgo/tool"
)

var (
	ErrNoConfig    = errors.New("no configuration file found")
	ErrUnknownTool = errors.New("unknown tool or tag")
)

// FileNames are the configuration files looked for, in order.
var FileNames = []string{".reviewgo.yml", ".reviewgo.yaml", ".reviewgo.toml"}

const settingsKey = "settings"

// Settings holds options that apply to the whole batch.
type Settings struct {
	// EnvFile is a dotenv file whose variables are injected into every
	// command. Relative paths resolve against the config file.
	EnvFile    string        `yaml:"env_file" toml:"env_file"`
	Parallel   int           `yaml:"parallel" toml:"parallel"`
	Timeout    time.Duration `yaml:"timeout" toml:"timeout"`
	HistoryTTL time.Duration `yaml:"history_ttl" toml:"history_ttl"`
}

// Config is a loaded configuration file.
type Config struct {
	Path     string
	Settings Settings
	tools    []*tool.Tool
}

// Find returns the first configuration file found in dirs.
func Find(dirs ...string) (string, error) {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("%w (looked for %s in %s)", ErrNoConfig, strings.Join(FileNames, ", "), strings.Join(dirs, ", "))
}

// Load reads the configuration file at path. The format follows the file
// extension.
func Load(logger zerolog.Logger, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		cfg, err = parseTOML(data)
	case ".yml", ".yaml":
		cfg, err = parseYAML(data)
	default:
		return nil, fmt.Errorf("load config %s: unsupported format %q", path, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.Path = path

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	logger.Debug().
		Str("path", path).
		Int("tools", len(cfg.tools)).
		Msg("Loaded configuration")

	return cfg, nil
}

// parseYAML walks the document node so tools keep their file order.
func parseYAML(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if len(doc.Content) == 0 {
		return cfg, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of tools", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		value := root.Content[i+1]

		if key == settingsKey {
			if err := value.Decode(&cfg.Settings); err != nil {
				return nil, fmt.Errorf("settings: %w", err)
			}
			continue
		}

		var settings tool.Settings
		if err := value.Decode(&settings); err != nil {
			return nil, fmt.Errorf("tool %q: %w", key, err)
		}
		cfg.tools = append(cfg.tools, tool.New(key, settings))
	}
	return cfg, nil
}

func parseTOML(data []byte) (*Config, error) {
	var raw map[string]toml.Primitive
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if meta.IsDefined(settingsKey) {
		if err := meta.PrimitiveDecode(raw[settingsKey], &cfg.Settings); err != nil {
			return nil, fmt.Errorf("settings: %w", err)
		}
	}

	// Keys come back in document order; only top-level tables are tools.
	for _, k := range meta.Keys() {
		if len(k) != 1 || k[0] == settingsKey {
			continue
		}
		var settings tool.Settings
		if err := meta.PrimitiveDecode(raw[k[0]], &settings); err != nil {
			return nil, fmt.Errorf("tool %q: %w", k[0], err)
		}
		cfg.tools = append(cfg.tools, tool.New(k[0], settings))
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Settings.Parallel < 0 {
		return fmt.Errorf("settings.parallel must not be negative, got %d", c.Settings.Parallel)
	}
	for _, t := range c.tools {
		if !t.Supports(tool.Review) && !t.Supports(tool.Format) {
			return fmt.Errorf("tool %q: needs a review or format command", t.Key())
		}
	}
	return nil
}

// Tools returns every configured tool in file order.
func (c *Config) Tools() []*tool.Tool {
	return slices.Clone(c.tools)
}

// Tool returns the tool configured under key.
func (c *Config) Tool(key string) (*tool.Tool, error) {
	for _, t := range c.tools {
		if t.Key() == key {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTool, key)
}

// Select picks the tools to run, in file order. Keywords name a tool key or
// a tag; tags only match tags. A tool named by key runs even when disabled,
// tools matched by tag only when enabled. With no keywords and no tags every
// enabled tool is selected.
func (c *Config) Select(keywords, tags []string) ([]*tool.Tool, error) {
	if len(keywords) == 0 && len(tags) == 0 {
		var enabled []*tool.Tool
		for _, t := range c.tools {
			if t.Enabled() {
				enabled = append(enabled, t)
			}
		}
		return enabled, nil
	}

	selected := make(map[string]bool)
	byTag := func(tag string) bool {
		found := false
		for _, t := range c.tools {
			if t.HasTag(tag) {
				found = true
				if t.Enabled() {
					selected[t.Key()] = true
				}
			}
		}
		return found
	}

	for _, kw := range keywords {
		if t, err := c.Tool(kw); err == nil {
			selected[t.Key()] = true
			continue
		}
		if !byTag(kw) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTool, kw)
		}
	}
	for _, tag := range tags {
		byTag(tag)
	}

	var tools []*tool.Tool
	for _, t := range c.tools {
		if selected[t.Key()] {
			tools = append(tools, t)
		}
	}
	return tools, nil
}

// Env reads the configured env file. It returns nil when none is set.
func (c *Config) Env() (map[string]string, error) {
	if c.Settings.EnvFile == "" {
		return nil, nil
	}

	path := c.Settings.EnvFile
	if !filepath.IsAbs(path) && c.Path != "" {
		path = filepath.Join(filepath.Dir(c.Path), path)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return env, nil
}
