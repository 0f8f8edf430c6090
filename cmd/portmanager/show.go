package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a single profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd)
			if err != nil {
				return err
			}

			record, ok := app.Profiles.Get(args[0])
			if !ok {
				return errProfileNotFound(args[0])
			}

			out := cmd.OutOrStdout()
			printProfile(out, args[0], record)
			fmt.Fprintf(out, "    Created: %s\n", record.Created.Display())
			fmt.Fprintf(out, "    Command: %s\n", strings.Join(newLauncher(app, cmd).Command(record), " "))
			return nil
		},
	}
}
