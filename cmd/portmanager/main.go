package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var version = "dev"
var name = "portmanager"

const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and maps the outcome to an exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case ctx.Err() != nil:
		fmt.Fprintln(stderr, "\n\nInterrupted by user")
		return exitInterrupted
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           name,
		Short:         "portmanager saves SSH connection profiles with port forwards and connects to them.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Example: `  portmanager add myserver user@example.com
  portmanager add myserver user@example.com --port 2222 --key ~/.ssh/id_rsa
  portmanager forward myserver 8080 80
  portmanager forward myserver 3000 3000 --remote
  portmanager connect myserver
  portmanager connect myserver --background
  portmanager list
  portmanager active
  portmanager delete myserver`,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config-dir", "", "Directory holding the profile and active connection stores (default ~/.portmanager)")
	flags.String("log-level", "", "Log level (default warn)")
	flags.String("log-format", "", "Log format, text or json")

	rootCmd.AddCommand(
		newAddCommand(),
		newListCommand(),
		newDeleteCommand(),
		newForwardCommand(),
		newConnectCommand(),
		newActiveCommand(),
		newShowCommand(),
		newCommandCommand(),
		newCheckCommand(),
		newBackupCommand(),
		newServerCommand(),
	)

	return rootCmd
}
