package tool

// command.go assembles a tool's settings into the literal command string
// handed to the shell.

import (
	"sort"
	"strings"

	"al.essio.dev/pkg/shellescape"

	"github.com/reviewgo/reviewgo/shell"
)

// Command builds the command for phase under strategy. The quiet option is
// only appended under shell.Quiet. ok is false when the tool has no command
// for the phase.
func (t *Tool) Command(phase Phase, s shell.Strategy) (command string, ok bool) {
	base := t.settings.Commands.forPhase(phase)
	if base == "" {
		return "", false
	}

	parts := append([]string{base}, flagParts(t.settings.Flags)...)
	if s == shell.Quiet && t.settings.Commands.QuietOption != "" {
		parts = append(parts, t.settings.Commands.QuietOption)
	}

	return withEnv(t.settings.Env, base, strings.Join(parts, " ")), true
}

// PrepareCommand builds the preparation command. Flags and the quiet option
// belong to the main command only; the environment applies to both.
func (t *Tool) PrepareCommand() (command string, ok bool) {
	if t.settings.Commands.Prepare == "" {
		return "", false
	}

	prepare := t.settings.Commands.Prepare
	return withEnv(t.settings.Env, prepare, prepare), true
}

// withEnv puts the environment in front of command. A plain command gets
// `A=1 cmd` assignments. A compound base such as `a && b` would only pass
// them to its first part, so it gets `export A=1; a && b` instead.
func withEnv(env map[string]string, base, command string) string {
	parts := envParts(env)
	if len(parts) == 0 {
		return command
	}
	if compound(base) {
		return "export " + strings.Join(parts, " ") + "; " + command
	}
	return strings.Join(append(parts, command), " ")
}

// compound reports whether base holds more than one shell command.
func compound(base string) bool {
	return strings.ContainsAny(base, ";&|\n")
}

func envParts(env map[string]string) []string {
	keys := sortedKeys(env)
	parts := make([]string, 0, len(keys)+2)
	for _, k := range keys {
		parts = append(parts, k+"="+shellescape.Quote(env[k]))
	}
	return parts
}

func flagParts(flags map[string]string) []string {
	keys := sortedKeys(flags)
	parts := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		name := strings.TrimLeft(k, "-")
		if len(name) == 1 {
			parts = append(parts, "-"+name)
		} else {
			parts = append(parts, "--"+name)
		}
		if v := flags[k]; v != "" {
			parts = append(parts, shellescape.Quote(v))
		}
	}
	return parts
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
