package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newActiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "Show connections started in the background",
		Long: `active lists the connections started with connect --background. The list is
advisory: processes are never tracked, so entries remain after the client exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			active := app.Active.List()
			if len(active) == 0 {
				fmt.Fprintln(out, "No active background connections.")
				return nil
			}

			fmt.Fprintf(out, "\nActive connections (%d):\n\n", len(active))
			for _, conn := range active {
				printActive(out, conn)
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
