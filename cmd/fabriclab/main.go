// Fabriclab - SONiC EVPN underlay configuration and validation
//
// A CLI tool that configures BGP/EVPN/VXLAN on a SONiC device over SSH
// and validates the resulting routing state:
//
//	fabriclab apply frr          # push FRR config via vtysh and save
//	fabriclab apply setup        # write CONFIG_DB underlay entries
//	fabriclab verify bgp         # assert BGP neighbor session states
//	fabriclab verify received   --neighbor 10.0.2.1
//	fabriclab verify advertised --neighbor 10.0.2.1
//	fabriclab run scenario.yaml  # run a YAML workflow
//
// The device, credentials, and domain values (ASN, prefixes, VLAN/VNI)
// come from a YAML config file (--config), not from flags.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fabriclab-net/fabriclab/pkg/config"
	"github.com/fabriclab-net/fabriclab/pkg/remote"
	"github.com/fabriclab-net/fabriclab/pkg/scenario"
	"github.com/fabriclab-net/fabriclab/pkg/util"
)

var (
	configPath string
	verbose    bool
	logJSON    bool

	fabric *config.Fabric
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "fabriclab",
	Short:             "SONiC EVPN underlay configuration and validation",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}
		if logJSON {
			util.SetJSONFormat()
		}

		var err error
		fabric, err = config.Load(configPath)
		if err != nil {
			return err
		}

		return promptPasswordIfNeeded()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "fabric.yaml", "fabric configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log in JSON format")
}

// promptPasswordIfNeeded asks for a password on the terminal when the
// config names a user but carries neither password nor key file.
func promptPasswordIfNeeded() error {
	if fabric.Device.Password != "" || fabric.Device.KeyFile != "" {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("no credential configured and stdin is not a terminal")
	}

	fmt.Fprintf(os.Stderr, "Password for %s@%s: ", fabric.Device.User, fabric.Device.Host)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	fabric = fabric.WithPassword(string(secret))
	return nil
}

// withRunner connects to the device, hands a scenario.Runner to fn, and
// releases the session on every exit path.
func withRunner(fn func(ctx context.Context, r *scenario.Runner) error) error {
	session, err := remote.Connect(fabric.Target())
	if err != nil {
		return err
	}
	defer session.Close()

	r := scenario.NewRunner(fabric, session)
	r.Progress = scenario.NewConsoleProgress(verbose)
	return fn(context.Background(), r)
}
