//go:build windows

package launcher

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// detachedCommand opens the client in its own console window, which is how a
// background session stays usable on Windows.
func detachedCommand(argv []string) *exec.Cmd {
	args := append([]string{"/c", "start", "", "cmd", "/k"}, argv...)
	cmd := exec.Command("cmd", args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP | windows.DETACHED_PROCESS,
	}
	return cmd
}

func sendInterrupt(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	// console processes cannot be signalled individually
	return cmd.Process.Kill()
}

// interruptedExit is always false: Ctrl+C ends a console client with an
// ordinary exit code.
func interruptedExit(err error) bool {
	return false
}
