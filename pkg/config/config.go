// Package config loads the static fabric configuration: the target device,
// its credentials and timeouts, and the BGP/VLAN/VXLAN values the apply and
// verify workflows are built from.
//
// Configuration is read once into an immutable Fabric value and passed down
// explicitly; there is no process-wide mutable state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fabriclab-net/fabriclab/pkg/remote"
	"github.com/fabriclab-net/fabriclab/pkg/util"
	"github.com/fabriclab-net/fabriclab/pkg/vty"
)

// Device is the SSH endpoint and its timeouts.
type Device struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port,omitempty"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password,omitempty"`
	KeyFile        string        `yaml:"key_file,omitempty"`
	ConnectTimeout time.Duration `yaml:"connect_timeout,omitempty"`
	CommandTimeout time.Duration `yaml:"command_timeout,omitempty"`
}

// Neighbor is one BGP peer: its session parameters and the state the
// verify workflow expects it in.
type Neighbor struct {
	Address       string `yaml:"address"`
	RemoteAS      int    `yaml:"remote_as"`
	LocalAS       int    `yaml:"local_as,omitempty"`
	UpdateSource  string `yaml:"update_source,omitempty"`
	RouteMapIn    string `yaml:"route_map_in,omitempty"`
	RouteMapOut   string `yaml:"route_map_out,omitempty"`
	ActivateEVPN  bool   `yaml:"activate_evpn,omitempty"`
	ExpectedState string `yaml:"expected_state,omitempty"`
}

// BGP groups the routing-instance values.
type BGP struct {
	ASN       int        `yaml:"asn"`
	RouterID  string     `yaml:"router_id"`
	Neighbors []Neighbor `yaml:"neighbors,omitempty"`
}

// VLAN describes the access VLAN created by the setup workflow.
type VLAN struct {
	ID      int    `yaml:"id"`
	Member  string `yaml:"member,omitempty"`
	Tagging string `yaml:"tagging,omitempty"` // "tagged" or "untagged"
}

// VXLAN describes the VTEP and the VLAN↔VNI mapping.
type VXLAN struct {
	Tunnel   string `yaml:"tunnel,omitempty"`
	SourceIP string `yaml:"source_ip"`
	VNI      int    `yaml:"vni"`
	RD       string `yaml:"rd,omitempty"`
	ImportRT string `yaml:"import_rt,omitempty"`
	ExportRT string `yaml:"export_rt,omitempty"`
}

// Fabric is the full run configuration.
type Fabric struct {
	Device     Device `yaml:"device"`
	Hostname   string `yaml:"hostname,omitempty"`
	BGP        BGP    `yaml:"bgp"`
	LoopbackIP string `yaml:"loopback_ip"` // e.g. "10.0.1.1/32"
	EthernetIP string `yaml:"ethernet_ip"` // e.g. "192.168.11.0/31"
	VLAN       VLAN   `yaml:"vlan"`
	VXLAN      VXLAN  `yaml:"vxlan"`
}

// Load reads and validates a fabric configuration file.
func Load(path string) (*Fabric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var f Fabric
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	f.applyDefaults()
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &f, nil
}

func (f *Fabric) applyDefaults() {
	if f.Device.Port == 0 {
		f.Device.Port = 22
	}
	if f.Device.ConnectTimeout == 0 {
		f.Device.ConnectTimeout = 10 * time.Second
	}
	if f.Device.CommandTimeout == 0 {
		f.Device.CommandTimeout = 60 * time.Second
	}
	if f.Hostname == "" {
		f.Hostname = "sonic"
	}
	if f.VLAN.Tagging == "" {
		f.VLAN.Tagging = "untagged"
	}
	if f.VXLAN.Tunnel == "" {
		f.VXLAN.Tunnel = "vtep"
	}
	for i := range f.BGP.Neighbors {
		if f.BGP.Neighbors[i].ExpectedState == "" {
			f.BGP.Neighbors[i].ExpectedState = string(vty.StateEstablished)
		}
	}
}

// Validate checks the configuration for internal consistency.
func (f *Fabric) Validate() error {
	var errs []string

	if f.Device.Host == "" {
		errs = append(errs, "device.host is required")
	}
	if f.Device.User == "" {
		errs = append(errs, "device.user is required")
	}
	if f.Device.Password != "" && f.Device.KeyFile != "" {
		errs = append(errs, "device.password and device.key_file are mutually exclusive")
	}
	if f.BGP.ASN <= 0 {
		errs = append(errs, "bgp.asn must be positive")
	}
	if f.BGP.RouterID == "" {
		errs = append(errs, "bgp.router_id is required")
	}
	for _, n := range f.BGP.Neighbors {
		if n.Address == "" {
			errs = append(errs, "bgp.neighbors: address is required")
		}
		if n.RemoteAS <= 0 {
			errs = append(errs, fmt.Sprintf("bgp.neighbors %s: remote_as must be positive", n.Address))
		}
	}
	if f.VLAN.ID < 1 || f.VLAN.ID > 4094 {
		errs = append(errs, "vlan.id must be 1-4094")
	}
	if f.VLAN.Tagging != "tagged" && f.VLAN.Tagging != "untagged" {
		errs = append(errs, "vlan.tagging must be tagged or untagged")
	}
	if f.VXLAN.VNI < 1 || f.VXLAN.VNI > 16777215 {
		errs = append(errs, "vxlan.vni must be 1-16777215")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", util.ErrInvalidConfig, strings.Join(errs, "\n  - "))
	}
	return nil
}

// Target builds the remote target from the device section. The credential
// is password or key file, enforced exclusive by Validate.
func (f *Fabric) Target() remote.Target {
	var cred remote.Credential
	switch {
	case f.Device.KeyFile != "":
		cred = remote.KeyFileAuth(expandHome(f.Device.KeyFile))
	case f.Device.Password != "":
		cred = remote.PasswordAuth(f.Device.Password)
	}
	return remote.Target{
		Host:           f.Device.Host,
		Port:           f.Device.Port,
		User:           f.Device.User,
		Credential:     cred,
		ConnectTimeout: f.Device.ConnectTimeout,
		CommandTimeout: f.Device.CommandTimeout,
	}
}

// WithPassword returns a copy of the fabric config with the device password
// replaced. Used when the credential is prompted interactively.
func (f *Fabric) WithPassword(password string) *Fabric {
	cp := *f
	cp.Device.Password = password
	cp.Device.KeyFile = ""
	return &cp
}

// FRRParams builds the FRR config-generation parameters.
func (f *Fabric) FRRParams() vty.FRRParams {
	neighbors := make([]vty.FRRNeighbor, 0, len(f.BGP.Neighbors))
	for _, n := range f.BGP.Neighbors {
		neighbors = append(neighbors, vty.FRRNeighbor{
			Address:      n.Address,
			RemoteAS:     n.RemoteAS,
			LocalAS:      n.LocalAS,
			UpdateSource: n.UpdateSource,
			RouteMapIn:   n.RouteMapIn,
			RouteMapOut:  n.RouteMapOut,
			ActivateEVPN: n.ActivateEVPN,
		})
	}

	rd := f.VXLAN.RD
	if rd == "" {
		rd = fmt.Sprintf("%s:%d", f.BGP.RouterID, f.VXLAN.VNI)
	}

	return vty.FRRParams{
		Hostname:   f.Hostname,
		ASN:        f.BGP.ASN,
		RouterID:   f.BGP.RouterID,
		LoopbackIP: f.LoopbackIP,
		Neighbors:  neighbors,
		VNI:        f.VXLAN.VNI,
		RD:         rd,
		ImportRT:   f.VXLAN.ImportRT,
		ExportRT:   f.VXLAN.ExportRT,
	}
}

// ExpectedState returns the configured expected session state for a
// neighbor address, defaulting to Established.
func (f *Fabric) ExpectedState(address string) vty.PeerState {
	for _, n := range f.BGP.Neighbors {
		if n.Address == address {
			return vty.NormalizeState(n.ExpectedState)
		}
	}
	return vty.StateEstablished
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
