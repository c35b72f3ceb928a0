package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fabriclab-net/fabriclab/pkg/scenario"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml>",
	Short: "Run a YAML scenario against the device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := scenario.ParseScenario(args[0])
		if err != nil {
			return err
		}

		return withRunner(func(ctx context.Context, r *scenario.Runner) error {
			result := r.RunScenario(ctx, sc)
			if result.Status != scenario.StatusPassed {
				return fmt.Errorf("scenario %s failed", result.Name)
			}
			return nil
		})
	},
}
