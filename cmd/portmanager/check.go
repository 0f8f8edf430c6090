package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hightouchio/portmanager/conncheck"
	"github.com/hightouchio/portmanager/stats"
	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check <name>",
		Short: "Check that a profile's SSH server is reachable",
		Long: `check dials the profile's server and completes the SSH key exchange without
authenticating. It prints the server's host key fingerprint.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd)
			if err != nil {
				return err
			}

			record, ok := app.Profiles.Get(args[0])
			if !ok {
				return errProfileNotFound(args[0])
			}

			ctx, cancel := context.WithTimeout(app.Context(cmd.Context()), timeout)
			defer cancel()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Checking '%s' (%s)...\n", args[0], record.Address())

			result, err := conncheck.Check(ctx, record.Host, record.Port, record.User)
			st := stats.GetStats(ctx)
			if err != nil {
				st.Incr("check", stats.Tags{"success": false}, 1)
				return err
			}
			st.Incr("check", stats.Tags{"success": true}, 1)

			fmt.Fprintf(out, "  Reachable: %s\n", result.Address)
			fmt.Fprintf(out, "  Host key: %s %s\n", result.HostKeyType, result.Fingerprint)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "How long to wait for the server")

	return cmd
}
