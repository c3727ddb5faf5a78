package main

import (
	"github.com/spf13/cobra"
)

func newGetCommand(global *globalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "get FLAG",
		Short: "Fetch a flag definition, bypassing the cache",
		Long: `Fetch the raw definition of a flag and print it as JSON.
Unlike "enabled", errors from the flag service are reported and fail the command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fl, ctx, cleanup, err := global.setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			def, err := fl.Fetch(ctx, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, def)
		},
	}
}
