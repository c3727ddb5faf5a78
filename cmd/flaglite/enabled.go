package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/flaglite"
	"github.com/dmitrymomot/flaglite/pkg/async"
)

type enabledArgs struct {
	user         string
	defaultValue bool
	json         bool
}

func newEnabledCommand(global *globalArgs) *cobra.Command {
	var arguments enabledArgs
	cmd := &cobra.Command{
		Use:   "enabled FLAG...",
		Short: "Report whether flags are enabled",
		Long: `Evaluate one or more flags concurrently and print one line per flag.
Service failures never fail the command: the --default value is reported instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fl, ctx, cleanup, err := global.setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			opts := []flaglite.EvalOption{
				flaglite.ForUser(arguments.user),
				flaglite.WithDefault(arguments.defaultValue),
			}
			futures := make([]*async.Future[bool], 0, len(args))
			for _, key := range args {
				futures = append(futures, fl.EnabledAsync(ctx, key, opts...))
			}
			results, err := async.WaitAll(futures...)
			if err != nil {
				return err
			}

			if arguments.json {
				out := make(map[string]bool, len(args))
				for i, key := range args {
					out[key] = results[i]
				}
				return writeJSON(cmd, out)
			}
			for i, key := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%t\n", key, results[i])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&arguments.user, "user", "u", "", "User identifier for percentage rollouts (anonymous when empty)")
	cmd.Flags().BoolVar(&arguments.defaultValue, "default", false, "Value to report when a flag cannot be evaluated")
	cmd.Flags().BoolVar(&arguments.json, "json", false, "Print results as a JSON object")
	return cmd
}
