package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"newsdesk-engine/internal/secrets"
)

func newSecretCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage the cleanup bearer secret in the OS keychain",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <secret>",
		Short: "Store the cleanup secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := loadConfig(o)
			if err != nil {
				return err
			}
			if err := secrets.SetCleanupSecret(cfg.Cleanup.KeyringAccount, args[0]); err != nil {
				return fmt.Errorf("failed to store secret: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored in keychain as %s/%s\n", secrets.KeyringService, cfg.Cleanup.KeyringAccount)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the cleanup secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, _, err := loadConfig(o)
			if err != nil {
				return err
			}
			return secrets.DeleteCleanupSecret(cfg.Cleanup.KeyringAccount)
		},
	})

	return cmd
}
