package shell

// shell.go runs assembled command strings as subprocesses and turns every
// result, including spawn failures, into an Outcome.

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Exit codes used when the process itself could not report one.
const (
	ExitSuccess       = 0
	ExitTimedOut      = 124
	ExitCannotExecute = 126
	ExitNotFound      = 127
	ExitInterrupted   = 130
)

// Outcome is the raw result of one subprocess invocation.
type Outcome struct {
	Command  string
	ExitCode int
	Output   string
}

// Executor runs commands through a shell.
type Executor struct {
	logger  zerolog.Logger
	shell   string
	dir     string
	env     []string
	timeout time.Duration
	stdout  io.Writer
	stderr  io.Writer
}

// Option configures an Executor.
type Option func(*Executor)

// WithDir sets the working directory commands run in.
func WithDir(dir string) Option {
	return func(e *Executor) {
		e.dir = dir
	}
}

// WithEnv injects environment variables on top of the process environment.
func WithEnv(env map[string]string) Option {
	return func(e *Executor) {
		keys := make([]string, 0, len(env))
		for k := range env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			e.env = append(e.env, k+"="+env[k])
		}
	}
}

// WithTimeout bounds every command. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

// WithOutput sets where Verbose commands stream their output.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(e *Executor) {
		e.stdout = stdout
		e.stderr = stderr
	}
}

// WithShell overrides the shell binary, "sh" by default.
func WithShell(shell string) Option {
	return func(e *Executor) {
		e.shell = shell
	}
}

func NewExecutor(logger zerolog.Logger, opts ...Option) *Executor {
	e := &Executor{
		logger: logger,
		shell:  "sh",
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes command under the given strategy and blocks until it exits.
// Failures are reported through the Outcome's exit code, never as errors.
func (e *Executor) Run(ctx context.Context, command string, s Strategy) Outcome {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.shell, "-c", command)
	cmd.Dir = e.dir
	if len(e.env) > 0 {
		cmd.Env = append(os.Environ(), e.env...)
	}
	setupProcessGroup(cmd)
	cmd.WaitDelay = time.Second

	// Both streams land in one buffer, so writes must be serialized.
	var combined lockedBuffer
	if s == Verbose && e.stdout != nil {
		cmd.Stdout = io.MultiWriter(&combined, e.stdout)
	} else {
		cmd.Stdout = &combined
	}
	if s == Verbose && e.stderr != nil {
		cmd.Stderr = io.MultiWriter(&combined, e.stderr)
	} else {
		cmd.Stderr = &combined
	}

	e.logger.Debug().
		Str("command", command).
		Str("strategy", s.String()).
		Str("dir", e.dir).
		Msg("Executing command")

	start := time.Now()
	err := cmd.Run()

	outcome := Outcome{
		Command:  command,
		ExitCode: exitCode(ctx, err),
		Output:   combined.String(),
	}
	if err != nil && outcome.Output == "" {
		if _, ok := err.(*exec.ExitError); !ok {
			outcome.Output = err.Error()
		}
	}

	e.logger.Debug().
		Str("command", command).
		Int("exit_code", outcome.ExitCode).
		Dur("duration", time.Since(start)).
		Msg("Command finished")

	return outcome
}

func exitCode(ctx context.Context, err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ExitTimedOut
	case context.Canceled:
		return ExitInterrupted
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
		if code, ok := signalExitCode(exitErr); ok {
			return code
		}
		return ExitInterrupted
	}

	if errors.Is(err, fs.ErrPermission) {
		return ExitCannotExecute
	}
	return ExitNotFound
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
