package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all saved profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			profiles := app.Profiles.Load()
			if len(profiles) == 0 {
				fmt.Fprintln(out, "No profiles saved yet.")
				fmt.Fprintln(out, "\nCreate one with:")
				fmt.Fprintf(out, "  %s add myserver user@host.com\n", name)
				return nil
			}

			fmt.Fprintf(out, "\nSaved profiles (%d):\n\n", len(profiles))
			for _, profileName := range app.Profiles.Names() {
				printProfile(out, profileName, profiles[profileName])
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
