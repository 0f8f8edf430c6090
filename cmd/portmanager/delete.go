package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd)
			if err != nil {
				return err
			}

			removed, err := app.Profiles.Remove(args[0])
			if err != nil {
				return errors.Wrap(err, "could not delete profile")
			} else if !removed {
				return errProfileNotFound(args[0])
			}
			app.Stats.Incr("profiles.deleted", nil, 1)

			fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' deleted.\n", args[0])
			return nil
		},
	}
}

func errProfileNotFound(name string) error {
	return errors.Errorf("profile '%s' not found", name)
}
