package vty

import "fmt"

// FRRNeighbor describes one BGP neighbor in the generated FRR config.
type FRRNeighbor struct {
	Address      string
	RemoteAS     int
	LocalAS      int    // 0 = no local-as override
	UpdateSource string // IP or interface; empty = none
	RouteMapIn   string // applied in ipv4 unicast AF
	RouteMapOut  string
	ActivateEVPN bool // also activate in l2vpn evpn AF
}

// FRRParams carries the values the generated FRR configuration is built
// from. All other structure (prefix-lists, route-maps, defaults) is fixed
// by the underlay design.
type FRRParams struct {
	Hostname   string
	ASN        int
	RouterID   string
	LoopbackIP string // host prefix announced and permitted, e.g. "10.0.1.1/32"
	Neighbors  []FRRNeighbor
	VNI        int
	RD         string // e.g. "10.0.1.1:100"
	ImportRT   string // e.g. "65000:100"
	ExportRT   string
}

// FRRCommands generates the ordered configure-terminal command list for the
// EVPN underlay: cleanup of SONiC's stock route-map hooks, prefix-lists and
// route-maps, FRR/zebra defaults, the BGP instance with its neighbors, the
// ipv4-unicast and l2vpn-evpn address families, and next-hop tracking.
//
// The order is load-bearing: address-family sub-commands only parse inside
// their enclosing router bgp context.
func FRRCommands(p FRRParams) []string {
	cmds := []string{
		// Drop SONiC's default RM_SET_SRC hooks, which override the
		// route source and fight the loopback announcement.
		"no ip protocol bgp route-map RM_SET_SRC",
		"no ip prefix-list PL_LoopbackV4",
		"no route-map RM_SET_SRC",

		"ip prefix-list all_routes seq 5 permit 0.0.0.0/0 le 32",
		fmt.Sprintf("ip prefix-list allow-lo0 seq 5 permit %s", p.LoopbackIP),

		"route-map send-lo0 permit 10",
		"match ip address prefix-list allow-lo0",
		"exit",

		"route-map import-all permit 10",
		"match ip address prefix-list all_routes",
		"exit",

		"frr defaults traditional",
		fmt.Sprintf("hostname %s", p.Hostname),
		"log syslog informational",
		"log facility local4",
		"no zebra nexthop kernel enable",
		"fpm address 127.0.0.1",
		"no fpm use-next-hop-groups",
		"agentx",
		"no service integrated-vtysh-config",
		"password zebra",
		"enable password zebra",

		fmt.Sprintf("ip router-id %s", p.RouterID),

		fmt.Sprintf("router bgp %d", p.ASN),
		fmt.Sprintf("bgp router-id %s", p.RouterID),
		"bgp suppress-fib-pending",
		"bgp log-neighbor-changes",
		"bgp bestpath as-path multipath-relax",
		"bgp ebgp-requires-policy",
		"bgp default ipv4-unicast",
	}

	for _, n := range p.Neighbors {
		cmds = append(cmds, fmt.Sprintf("neighbor %s remote-as %d", n.Address, n.RemoteAS))
		if n.LocalAS != 0 {
			cmds = append(cmds, fmt.Sprintf("neighbor %s local-as %d", n.Address, n.LocalAS))
		}
		if n.UpdateSource != "" {
			cmds = append(cmds, fmt.Sprintf("neighbor %s update-source %s", n.Address, n.UpdateSource))
		}
	}

	cmds = append(cmds, "address-family ipv4 unicast",
		fmt.Sprintf("network %s", p.LoopbackIP))
	for _, n := range p.Neighbors {
		if n.RouteMapIn == "" && n.RouteMapOut == "" {
			cmds = append(cmds, fmt.Sprintf("neighbor %s activate", n.Address))
			continue
		}
		if n.RouteMapIn != "" {
			cmds = append(cmds, fmt.Sprintf("neighbor %s route-map %s in", n.Address, n.RouteMapIn))
		}
		if n.RouteMapOut != "" {
			cmds = append(cmds, fmt.Sprintf("neighbor %s route-map %s out", n.Address, n.RouteMapOut))
		}
	}
	cmds = append(cmds, "exit-address-family")

	cmds = append(cmds, "address-family l2vpn evpn")
	for _, n := range p.Neighbors {
		if n.ActivateEVPN {
			cmds = append(cmds, fmt.Sprintf("neighbor %s activate", n.Address))
		}
	}
	cmds = append(cmds,
		"advertise-all-vni",
		fmt.Sprintf("vni %d", p.VNI),
		fmt.Sprintf("rd %s", p.RD),
		fmt.Sprintf("route-target import %s", p.ImportRT),
		fmt.Sprintf("route-target export %s", p.ExportRT),
		"exit-vni",
		"advertise-svi-ip",
		"exit-address-family",
		"exit",

		"ip nht resolve-via-default",
		"ipv6 nht resolve-via-default",
	)

	return cmds
}
