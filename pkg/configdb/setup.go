package configdb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fabriclab-net/fabriclab/pkg/config"
	"github.com/fabriclab-net/fabriclab/pkg/util"
)

// Entry is one CONFIG_DB write: table + key + fields.
type Entry struct {
	Table  string
	Key    string
	Fields map[string]string
}

// SetupEntries builds the ordered CONFIG_DB entry list for the EVPN
// underlay: BGP identity, loopback and underlay interface addressing, the
// access VLAN with its member port, and the VTEP with its VLAN↔VNI map.
//
// Order matters: member and map entries reference the VLAN and tunnel
// entries created before them.
func SetupEntries(f *config.Fabric) []Entry {
	vlanName := fmt.Sprintf("Vlan%d", f.VLAN.ID)

	entries := []Entry{
		{"DEVICE_METADATA", "localhost", map[string]string{
			"bgp_asn":   strconv.Itoa(f.BGP.ASN),
			"router_id": f.BGP.RouterID,
		}},
		{"BGP_GLOBALS", "default", map[string]string{
			"local_asn": strconv.Itoa(f.BGP.ASN),
		}},
		{"LOOPBACK_INTERFACE", "Loopback0", nil},
		{"LOOPBACK_INTERFACE", "Loopback0|" + f.LoopbackIP, nil},
		{"INTERFACE", "Ethernet0", nil},
		{"INTERFACE", "Ethernet0|" + f.EthernetIP, nil},
		{"VLAN", vlanName, map[string]string{
			"vlanid": strconv.Itoa(f.VLAN.ID),
		}},
	}

	if f.VLAN.Member != "" {
		entries = append(entries, Entry{
			"VLAN_MEMBER", vlanName + "|" + f.VLAN.Member, map[string]string{
				"tagging_mode": f.VLAN.Tagging,
			}})
	}

	entries = append(entries,
		Entry{"VXLAN_TUNNEL", f.VXLAN.Tunnel, map[string]string{
			"src_ip": f.VXLAN.SourceIP,
		}},
		Entry{"VXLAN_TUNNEL_MAP", fmt.Sprintf("%s|map_%d", f.VXLAN.Tunnel, f.VXLAN.VNI), map[string]string{
			"vlan": vlanName,
			"vni":  strconv.Itoa(f.VXLAN.VNI),
		}},
	)

	return entries
}

// ApplySetup writes the setup entries in order. The first failed write
// aborts; entries already written stay applied (no rollback).
func ApplySetup(ctx context.Context, c *Client, f *config.Fabric) error {
	log := util.WithDevice(f.Device.Host)
	for _, e := range SetupEntries(f) {
		if err := c.Set(ctx, e.Table, e.Key, e.Fields); err != nil {
			return fmt.Errorf("config_db set %s|%s: %w", e.Table, e.Key, err)
		}
		log.Debugf("config_db set %s|%s", e.Table, e.Key)
	}
	return nil
}
