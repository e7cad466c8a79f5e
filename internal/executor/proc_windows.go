//go:build windows

package executor

import "os/exec"

// setProcessGroup is a no-op on Windows; process-group signalling is not
// available through syscall.SysProcAttr the way it is on unix.
func setProcessGroup(_ *exec.Cmd) {}

// killProcessGroup kills the command process. Grandchildren spawned by the
// shell may survive; unix hosts get full process-group kill semantics.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}
