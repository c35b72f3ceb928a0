package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fabriclab-net/fabriclab/pkg/scenario"
)

func init() {
	applyCmd.AddCommand(applyFRRCmd)
	applyCmd.AddCommand(applySetupCmd)
	rootCmd.AddCommand(applyCmd)
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Push configuration to the device",
}

var applyFRRCmd = &cobra.Command{
	Use:   "frr",
	Short: "Apply the FRR BGP/EVPN configuration via vtysh and save it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(func(ctx context.Context, r *scenario.Runner) error {
			n, err := r.ApplyFRR(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("applied %d FRR commands to %s and saved\n", n, fabric.Device.Host)
			return nil
		})
	},
}

var applySetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write the CONFIG_DB underlay entries (BGP, interfaces, VLAN, VTEP)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(func(ctx context.Context, r *scenario.Runner) error {
			n, err := r.ApplySetup(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("wrote %d CONFIG_DB entries to %s\n", n, fabric.Device.Host)
			return nil
		})
	},
}
