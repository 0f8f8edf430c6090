package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCommandCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "command <name>",
		Short: "Print the ssh command that connect would run",
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

			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(newLauncher(app, cmd).Command(record), " "))
			return nil
		},
	}
}
