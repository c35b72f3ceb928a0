package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fabriclab-net/fabriclab/pkg/cli"
	"github.com/fabriclab-net/fabriclab/pkg/scenario"
	"github.com/fabriclab-net/fabriclab/pkg/vty"
)

var (
	verifyNeighbor string
	verifyState    string
	verifyMinCount int
)

func init() {
	verifyBGPCmd.Flags().StringVar(&verifyNeighbor, "neighbor", "", "check one neighbor (default: all configured)")
	verifyBGPCmd.Flags().StringVar(&verifyState, "state", "", "expected session state (default: from config)")

	for _, c := range []*cobra.Command{verifyReceivedCmd, verifyAdvertisedCmd} {
		c.Flags().StringVar(&verifyNeighbor, "neighbor", "", "BGP neighbor address (required)")
		c.Flags().IntVar(&verifyMinCount, "min", 0, "minimum expected prefix count")
		c.MarkFlagRequired("neighbor")
	}

	verifyCmd.AddCommand(verifyBGPCmd)
	verifyCmd.AddCommand(verifyReceivedCmd)
	verifyCmd.AddCommand(verifyAdvertisedCmd)
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Fetch device status and assert on it",
}

var verifyBGPCmd = &cobra.Command{
	Use:   "bgp",
	Short: "Assert BGP neighbor session states",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(func(ctx context.Context, r *scenario.Runner) error {
			neighbors := []string{verifyNeighbor}
			if verifyNeighbor == "" {
				neighbors = neighbors[:0]
				for _, n := range fabric.BGP.Neighbors {
					neighbors = append(neighbors, n.Address)
				}
				if len(neighbors) == 0 {
					return fmt.Errorf("no neighbors configured and none given with --neighbor")
				}
			}

			table := cli.NewTable("NEIGHBOR", "STATE", "EXPECTED", "RESULT")
			failed := 0
			for _, neighbor := range neighbors {
				expected := fabric.ExpectedState(neighbor)
				if verifyState != "" {
					expected = vty.NormalizeState(verifyState)
				}
				status, found, err := r.PeerState(ctx, neighbor)
				if err != nil {
					return err
				}
				switch {
				case !found:
					table.Row(neighbor, "-", string(expected), cli.Red("FAIL"))
					failed++
				case status.State != expected:
					table.Row(neighbor, string(status.State), string(expected), cli.Red("FAIL"))
					failed++
				default:
					table.Row(neighbor, string(status.State), string(expected), cli.Green("PASS"))
				}
			}
			table.Flush()
			if failed > 0 {
				return fmt.Errorf("%d of %d neighbors failed verification", failed, len(neighbors))
			}
			return nil
		})
	},
}

var verifyReceivedCmd = &cobra.Command{
	Use:   "received",
	Short: "Count EVPN prefixes received from a neighbor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(func(ctx context.Context, r *scenario.Runner) error {
			count, err := r.ReceivedCount(ctx, verifyNeighbor)
			if err != nil {
				return err
			}
			fmt.Printf("neighbor %s: %d prefixes received\n", verifyNeighbor, count)
			if count < verifyMinCount {
				return fmt.Errorf("expected at least %d prefixes, got %d", verifyMinCount, count)
			}
			return nil
		})
	},
}

var verifyAdvertisedCmd = &cobra.Command{
	Use:   "advertised",
	Short: "Count EVPN prefixes advertised to a neighbor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(func(ctx context.Context, r *scenario.Runner) error {
			count, err := r.AdvertisedCount(ctx, verifyNeighbor)
			if err != nil {
				return err
			}
			fmt.Printf("neighbor %s: %d prefixes advertised\n", verifyNeighbor, count)
			if count < verifyMinCount {
				return fmt.Errorf("expected at least %d prefixes, got %d", verifyMinCount, count)
			}
			return nil
		})
	},
}
