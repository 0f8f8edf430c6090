package main

import (
	"fmt"

	"github.com/hightouchio/portmanager/launcher"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newConnectCommand() *cobra.Command {
	var background bool

	cmd := &cobra.Command{
		Use:   "connect <name>",
		Short: "Connect using a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			l := newLauncher(app, cmd)

			err = l.Connect(app.Context(cmd.Context()), args[0], background)
			var notFound *launcher.NotFoundError
			if errors.As(err, &notFound) {
				fmt.Fprintln(out, "\nAvailable profiles:")
				for _, known := range notFound.Known {
					fmt.Fprintf(out, "  - %s\n", known)
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&background, "background", "b", false, "Run in background")

	return cmd
}

func newLauncher(app *application, cmd *cobra.Command) launcher.Launcher {
	runner := launcher.NewExecRunner()
	runner.Stdin = cmd.InOrStdin()
	runner.Stdout = cmd.OutOrStdout()
	runner.Stderr = cmd.ErrOrStderr()

	return launcher.Launcher{
		Profiles: app.Profiles,
		Active:   app.Active,
		Runner:   runner,
		Program:  app.Config.GetString(ConfigSSHProgram),
		Out:      cmd.OutOrStdout(),
		Stats:    app.Stats,
		Logger:   app.Logger.WithField("component", "launcher"),
	}
}
