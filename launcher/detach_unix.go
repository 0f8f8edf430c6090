//go:build !windows

package launcher

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
)

// detachedCommand runs argv in a new session so it outlives the terminal.
// With no streams set, exec connects stdio to the null device.
func detachedCommand(argv []string) *exec.Cmd {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	return cmd
}

func sendInterrupt(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Signal(os.Interrupt)
}

// interruptedExit reports whether err is the exit of a process killed by SIGINT.
func interruptedExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	return ok && status.Signaled() && status.Signal() == syscall.SIGINT
}
