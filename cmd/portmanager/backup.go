package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/hightouchio/portmanager/backup"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newBackupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Copy profiles to and from the configured keystore",
		Long: `backup stores snapshots of the profile store in the keystore selected by
keystore.type: in-memory, sqlite3, postgres, s3 or gcs.`,
	}

	cmd.AddCommand(
		newBackupPushCommand(),
		newBackupPullCommand(),
		newBackupDeleteCommand(),
	)

	return cmd
}

func newBackupPushCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Upload a snapshot of all profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackupService(cmd, func(ctx context.Context, service backup.Service) error {
				snapshot, err := service.Push(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Backed up %d profiles as %s\n", len(snapshot.Profiles), snapshot.ID)
				return nil
			})
		},
	}
}

func newBackupPullCommand() *cobra.Command {
	var merge bool

	cmd := &cobra.Command{
		Use:   "pull <id>",
		Short: "Restore profiles from a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return errors.Wrapf(err, "invalid backup id %q", args[0])
			}

			return withBackupService(cmd, func(ctx context.Context, service backup.Service) error {
				count, err := service.Pull(ctx, id, merge)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored %d profiles from %s\n", count, id)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&merge, "merge", false, "Keep local profiles that are not in the snapshot")

	return cmd
}

func newBackupDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return errors.Wrapf(err, "invalid backup id %q", args[0])
			}

			return withBackupService(cmd, func(ctx context.Context, service backup.Service) error {
				if err := service.Delete(ctx, id); err != nil {
					return errors.Wrapf(err, "could not delete backup %s", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted backup %s\n", id)
				return nil
			})
		},
	}
}

// withBackupService opens the keystore for the duration of fn.
func withBackupService(cmd *cobra.Command, fn func(context.Context, backup.Service) error) error {
	app, err := newApplication(cmd)
	if err != nil {
		return err
	}

	ctx := app.Context(cmd.Context())
	ks, err := newKeystore(ctx, app.Config)
	if err != nil {
		return err
	}
	if closer, ok := ks.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				app.Logger.WithError(err).Warn("could not close keystore")
			}
		}()
	}

	return fn(ctx, backup.Service{
		Keystore: ks,
		Profiles: app.Profiles,
		Stats:    app.Stats,
	})
}
