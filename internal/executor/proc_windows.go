//go:build windows

package executor

import (
	"os/exec"
	"strconv"
	"syscall"
)

// setProcessGroup creates the child in its own process group so
// console control events do not propagate to the gateway.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// killProcessTree terminates the child and all of its descendants with
// taskkill /T, falling back to killing the direct child when taskkill
// is unavailable or fails.
func killProcessTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	kill := exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(cmd.Process.Pid))
	if err := kill.Run(); err == nil {
		return nil
	}
	return cmd.Process.Kill()
}
