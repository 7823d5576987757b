package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedRolesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-roles",
		Short: "Install the missing system roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfigAndLogger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			app, err := newApplication(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer app.close()

			seeded, err := app.roles.SeedSystemRoles(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d system roles into %s store\n", seeded, app.storage)
			return nil
		},
	}
}
