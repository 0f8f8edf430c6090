package main

import (
	"fmt"

	"github.com/hightouchio/portmanager/profile"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newAddCommand() *cobra.Command {
	var (
		port int
		key  string
	)

	cmd := &cobra.Command{
		Use:   "add <name> <user@host>",
		Short: "Add or update an SSH profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, destination := args[0], args[1]

			// validate before touching the store
			user, host, err := profile.ParseDestination(destination)
			if err != nil {
				return err
			}
			if port < 1 || port > 65535 {
				return errors.Wrapf(profile.ErrInvalidPort, "got %d", port)
			}

			app, err := newApplication(cmd)
			if err != nil {
				return err
			}

			record, err := app.Profiles.Upsert(name, host, user, port, key, nil)
			if err != nil {
				return errors.Wrap(err, "could not save profile")
			}
			app.Stats.Incr("profiles.saved", nil, 1)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Profile '%s' saved!\n", name)
			fmt.Fprintf(out, "  %s\n", record.Address())
			if record.Key != "" {
				fmt.Fprintf(out, "  Key: %s\n", record.Key)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", profile.DefaultPort, "SSH port")
	cmd.Flags().StringVar(&key, "key", "", "Path to SSH private key")

	return cmd
}
