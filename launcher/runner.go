package launcher

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/hightouchio/portmanager/log"
	"github.com/pkg/errors"
)

// ErrInterrupted is returned by Runner.Run when the caller interrupted the
// client. Launcher treats it as a normal closure.
var ErrInterrupted = errors.New("connection interrupted")

// Runner executes the client. Run blocks attached to the caller's terminal;
// Start detaches and returns as soon as the process exists.
type Runner interface {
	Run(ctx context.Context, argv []string) error
	Start(argv []string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func NewExecRunner() ExecRunner {
	return ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run starts argv attached to the runner's streams and waits for it. When ctx
// is cancelled the interrupt is passed on to the child, and once the child has
// exited ErrInterrupted is returned regardless of its exit status.
func (r ExecRunner) Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "could not start %s", argv[0])
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		// a terminal interrupt can end the child before ctx is cancelled
		if err != nil && (ctx.Err() != nil || interruptedExit(err)) {
			return ErrInterrupted
		}
		if err != nil {
			return errors.Wrapf(err, "%s exited", argv[0])
		}
		return nil

	case <-ctx.Done():
		// a terminal interrupt reaches the child directly; this covers a
		// signal sent to this process alone
		if err := sendInterrupt(cmd); err != nil {
			log.GetLogger(ctx).WithError(err).Debug("could not interrupt client")
		}
		<-done
		return ErrInterrupted
	}
}

// Start launches argv detached from the controlling terminal with its output
// discarded. The process is released immediately; nothing keeps track of it.
func (r ExecRunner) Start(argv []string) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}

	cmd := detachedCommand(argv)
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "could not start %s", argv[0])
	}
	return cmd.Process.Release()
}
