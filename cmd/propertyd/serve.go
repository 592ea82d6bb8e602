package main

import (
	"github.com/spf13/cobra"

	"github.com/KOMKZ/yogan-property/application"
)

func newServeCmd(flags *application.AppFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
	}
	bindings := application.RegisterServeFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		app, err := application.New(flags.Options(cmd.Flags(), bindings))
		if err != nil {
			return err
		}
		app.WithVersion(version)
		return app.Run()
	}
	return cmd
}
