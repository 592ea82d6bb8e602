package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KOMKZ/yogan-property/application"
)

func newMigrateCmd(flags *application.AppFlags) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the properties table, optionally seeding sample data",
		Long: `Create or update the properties table.

With --seed an empty table receives the sample listing and the cached
listing is dropped so the next read sees the new rows. A table that
already has rows is left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := application.NewCLI(flags.Options(cmd.Flags(), nil))
			if err != nil {
				return err
			}
			return cli.Execute(cmd.Context(), func(ctx context.Context, app *application.CLIApplication) error {
				res, err := app.Migrate(ctx, seed)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "migrated; seeded %d rows\n", res.Seeded)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "insert sample properties into an empty table")
	return cmd
}
