package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"isizulu-corpus/backend/internal/bootstrapdata"
	"isizulu-corpus/backend/internal/service/activity"
	"isizulu-corpus/backend/internal/service/transfer"

	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	var onlyEmpty bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import the built-in initial entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, s *session) error {
				var (
					count int
					err   error
				)
				if onlyEmpty {
					count, err = bootstrapdata.SeedIfEmpty(ctx, s.services.Entries, s.services.Transfer)
				} else {
					count, err = bootstrapdata.Seed(ctx, s.services.Transfer)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Successfully seeded %d entries\n", count)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&onlyEmpty, "if-empty", false, "only seed when the corpus has no entries")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.json]",
		Short: "Import entries from a JSON array file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			records, err := transfer.DecodeRecords(raw)
			if err != nil {
				return err
			}

			return withSession(func(ctx context.Context, s *session) error {
				result, err := s.services.Transfer.Import(ctx, activity.Actor{}, records)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Successfully imported %d entries (%d skipped)\n", result.Imported, result.Skipped)
				return nil
			})
		},
	}
}

func exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all active entries as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, s *session) error {
				details, err := s.services.Transfer.Export(ctx, activity.Actor{})
				if err != nil {
					return err
				}
				payload, err := json.MarshalIndent(details, "", "  ")
				if err != nil {
					return fmt.Errorf("encode export: %w", err)
				}
				payload = append(payload, '\n')

				if output == "" || output == "-" {
					_, err = cmd.OutOrStdout().Write(payload)
					return err
				}
				if err := os.WriteFile(output, payload, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				s.logger.Infow("corpus exported", "entries", len(details), "output", output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, stdout when empty")
	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage editor accounts",
	}

	var (
		username string
		password string
		admin    bool
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an editor account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, s *session) error {
				u, err := s.services.Auth.CreateUser(ctx, username, password, admin)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id=%d, admin=%t)\n", u.Username, u.ID, u.IsAdmin)
				return nil
			})
		},
	}
	create.Flags().StringVar(&username, "username", "", "login name")
	create.Flags().StringVar(&password, "password", "", "password, at least 8 characters")
	create.Flags().BoolVar(&admin, "admin", false, "grant admin permission")
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}

func purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-inactive",
		Short: "Permanently delete soft-deleted entries and their children",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, s *session) error {
				removed, err := s.services.Entries.PurgeInactive(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %d inactive entries\n", removed)
				return nil
			})
		},
	}
}
