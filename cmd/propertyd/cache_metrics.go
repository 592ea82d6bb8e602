package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/KOMKZ/yogan-property/application"
)

func newCacheMetricsCmd(flags *application.AppFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cache-metrics",
		Short: "Print the cache hit/miss snapshot as JSON",
		Long: `Print the cache counters as JSON. The numbers come from the
configured cache store: with the redis driver they are the server-wide
keyspace counters; with the in-memory driver a fresh process reports
zeros.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := application.NewCLI(flags.Options(cmd.Flags(), nil))
			if err != nil {
				return err
			}
			return cli.Execute(cmd.Context(), func(ctx context.Context, app *application.CLIApplication) error {
				m, err := app.CacheMetrics(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(m)
			})
		},
	}
}
