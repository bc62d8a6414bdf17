//go:build windows

package shell

import "os/exec"

func setupProcessGroup(cmd *exec.Cmd) {}

func signalExitCode(*exec.ExitError) (int, bool) {
	return 0, false
}
