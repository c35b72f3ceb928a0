// Package vty builds FRR vtysh command lines and parses their output.
//
// The command vocabulary is fixed by FRR: configuration goes through
// "vtysh -c 'configure terminal' -c ..." chains, status through
// "show bgp ..." commands that render either JSON or a text table.
package vty

import (
	"fmt"

	"github.com/fabriclab-net/fabriclab/pkg/remote"
)

const vtyshShell = "sudo vtysh"

// ConfigBatch wraps ordered FRR configuration commands into a single vtysh
// invocation that enters configure terminal once.
func ConfigBatch(commands []string) remote.Batch {
	return remote.Batch{
		Shell:    vtyshShell,
		Enter:    "configure terminal",
		Commands: commands,
	}
}

// showCommand renders a single vtysh show invocation.
func showCommand(cmd string) string {
	return remote.Batch{Shell: vtyshShell, Commands: []string{cmd}}.Render()
}

// ShowBGPSummary returns the command for the JSON BGP summary
// (all address families, peer states).
func ShowBGPSummary() string {
	return showCommand("show bgp summary json")
}

// ShowEVPNRoutes returns the command for the JSON report of EVPN routes
// received from a neighbor.
func ShowEVPNRoutes(neighbor string) string {
	return showCommand(fmt.Sprintf("show bgp l2vpn evpn neighbor %s routes json", neighbor))
}

// ShowEVPNAdvertised returns the command for the text table of EVPN routes
// advertised to a neighbor. FRR has no JSON form for this report.
func ShowEVPNAdvertised(neighbor string) string {
	return showCommand(fmt.Sprintf("show bgp l2vpn evpn neighbor %s advertised-routes", neighbor))
}

// SaveConfig returns the command that persists the running FRR config.
func SaveConfig() string {
	return showCommand("write memory")
}
