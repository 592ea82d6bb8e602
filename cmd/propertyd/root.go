package main

import (
	"github.com/spf13/cobra"

	"github.com/KOMKZ/yogan-property/application"
)

const defaultConfigDir = "configs/propertyd"

func newRootCmd() *cobra.Command {
	var flags application.AppFlags

	root := &cobra.Command{
		Use:   "propertyd",
		Short: "Property listing API with a read-through cache",
		Long: `propertyd serves GET /properties/ from a cache in front of the
properties table, and reports how well that cache is doing.

Examples:
  # Run the API
  propertyd serve --port 8080

  # Create the table and load the sample listing
  propertyd migrate --seed

  # Print the cache hit ratio
  propertyd cache-metrics`,
		SilenceUsage: true,
		Version:      version,
	}
	flags.Register(root.PersistentFlags(), defaultConfigDir)

	root.AddCommand(
		newServeCmd(&flags),
		newMigrateCmd(&flags),
		newCacheMetricsCmd(&flags),
	)
	return root
}
