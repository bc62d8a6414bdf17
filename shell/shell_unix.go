//go:build !windows

package shell

import (
	"os/exec"
	"syscall"
)

// setupProcessGroup starts the command in its own process group so that
// cancellation kills the tool together with anything it spawned.
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}

// signalExitCode maps a death by signal onto the shell convention of
// 128 plus the signal number.
func signalExitCode(exitErr *exec.ExitError) (int, bool) {
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok || !status.Signaled() {
		return 0, false
	}
	return 128 + int(status.Signal()), true
}
