package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/faculty-realloc-api/pkg/database"
)

func migrateCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewPostgres(app.cfg.Database)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer db.Close()

			if err := database.RunMigrations(db.DB, app.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
