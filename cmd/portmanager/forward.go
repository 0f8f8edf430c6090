package main

import (
	"fmt"
	"strconv"

	"github.com/hightouchio/portmanager/profile"
	"github.com/hightouchio/portmanager/stats"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newForwardCommand() *cobra.Command {
	var (
		remoteHost string
		remote     bool
	)

	cmd := &cobra.Command{
		Use:   "forward <profile> <local_port> <remote_port>",
		Short: "Add a port forward to a profile",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			localPort, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Wrapf(err, "invalid local port %q", args[1])
			}
			remotePort, err := strconv.Atoi(args[2])
			if err != nil {
				return errors.Wrapf(err, "invalid remote port %q", args[2])
			}

			direction := profile.Local
			if remote {
				direction = profile.Remote
			}
			fwd := profile.NewForward(direction, localPort, remotePort, remoteHost)

			app, err := newApplication(cmd)
			if err != nil {
				return err
			}

			added, err := app.Profiles.AppendForward(args[0], fwd)
			if err != nil {
				return err
			} else if !added {
				return errProfileNotFound(args[0])
			}
			app.Stats.Incr("forwards.added", stats.Tags{"type": direction}, 1)

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s forward to '%s': %s\n", direction, args[0], fwd)
			return nil
		},
	}

	cmd.Flags().StringVar(&remoteHost, "host", profile.DefaultRemoteHost, "Remote host")
	cmd.Flags().BoolVar(&remote, "remote", false, "Remote forward (default: local)")

	return cmd
}
