package launcher

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/hightouchio/portmanager/profile"
	"github.com/hightouchio/portmanager/stats"
	"github.com/hightouchio/portmanager/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	modeForeground = "foreground"
	modeBackground = "background"
)

// NotFoundError is returned when connecting to a profile that does not exist.
// Known lists the stored profile names, sorted.
type NotFoundError struct {
	Name  string
	Known []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("profile '%s' not found", e.Name)
}

// Launcher connects to stored profiles by running the ssh client.
type Launcher struct {
	Profiles *store.ProfileStore
	Active   *store.ActiveStore
	Runner   Runner

	// Program replaces the client token of built commands when set.
	Program string
	Out     io.Writer
	Stats   stats.Stats
	Logger  logrus.FieldLogger
	Now     func() time.Time
}

// Connect runs the client for the named profile. A foreground connection
// blocks until the client exits; an interrupt counts as a clean close. A
// background connection returns once the client has been started and is
// recorded as active without checking that it stays up.
func (l Launcher) Connect(ctx context.Context, name string, background bool) error {
	mode := modeForeground
	if background {
		mode = modeBackground
	}
	logger := l.Logger.WithFields(logrus.Fields{"profile": name, "mode": mode})

	if _, ok := l.Profiles.Get(name); !ok {
		return &NotFoundError{Name: name, Known: l.Profiles.Names()}
	}

	// last_used is stamped before the client is started, even if it fails
	record, ok, err := l.Profiles.Touch(name, l.now())
	if err != nil {
		return errors.Wrap(err, "could not update last used time")
	} else if !ok {
		return &NotFoundError{Name: name, Known: l.Profiles.Names()}
	}

	argv := l.Command(record)
	l.printSummary(name, record, argv)
	logger.WithField("command", argv).Debug("launching client")

	st := l.Stats.WithTags(stats.Tags{"mode": mode})

	if background {
		if err := l.Runner.Start(argv); err != nil {
			st.Incr("connections.failed", nil, 1)
			return err
		}
		fmt.Fprintln(l.Out, "Connection started in background")

		if err := l.Active.Record(name, record, l.now()); err != nil {
			return errors.Wrap(err, "could not record active connection")
		}
		st.Incr("connections.started", nil, 1)
		return nil
	}

	st.Incr("connections.started", nil, 1)
	switch err := l.Runner.Run(ctx, argv); {
	case err == nil:
		return nil
	case errors.Is(err, ErrInterrupted):
		fmt.Fprintln(l.Out, "\nConnection closed")
		return nil
	case remoteExit(err):
		// the session ran; its last command's status is not ours to report
		logger.WithError(err).Debug("session ended with non-zero status")
		return nil
	default:
		st.Incr("connections.failed", nil, 1)
		logger.WithError(err).Debug("client failed")
		return err
	}
}

// Command returns the argv that Connect would run for p.
func (l Launcher) Command(p profile.Profile) []string {
	argv := profile.BuildCommand(p)
	if l.Program != "" {
		argv[0] = l.Program
	}
	return argv
}

func (l Launcher) printSummary(name string, p profile.Profile, argv []string) {
	fmt.Fprintf(l.Out, "\nConnecting to '%s'...\n", name)
	fmt.Fprintf(l.Out, "   %s\n", p.Address())

	if len(p.Forwards) > 0 {
		fmt.Fprintln(l.Out, "\nPort forwards:")
		for _, fwd := range p.Forwards {
			fmt.Fprintf(l.Out, "   %s\n", fwd)
		}
	}

	fmt.Fprintf(l.Out, "\nCommand: %s\n\n", strings.Join(argv, " "))
}

// clientErrorExit is the status ssh exits with when it fails itself, as
// opposed to passing on the status of the remote command.
const clientErrorExit = 255

// remoteExit reports whether err is an ordinary exit of the client other than
// its own error status.
func remoteExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	code := exitErr.ExitCode()
	return code > 0 && code != clientErrorExit
}

func (l Launcher) now() time.Time {
	if l.Now == nil {
		return time.Now()
	}
	return l.Now()
}
