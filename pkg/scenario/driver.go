package scenario

import (
	"context"
	"fmt"

	"github.com/fabriclab-net/fabriclab/pkg/config"
	"github.com/fabriclab-net/fabriclab/pkg/configdb"
	"github.com/fabriclab-net/fabriclab/pkg/remote"
	"github.com/fabriclab-net/fabriclab/pkg/util"
	"github.com/fabriclab-net/fabriclab/pkg/vty"
)

// Runner composes the remote runner and the vtysh parsers against one
// fabric device. Each Runner owns exactly one session for its lifetime;
// it holds no other state.
type Runner struct {
	Fabric   *config.Fabric
	Exec     remote.CommandRunner
	Progress ProgressReporter

	// SetupClient opens a CONFIG_DB client and returns it with a release
	// function. Defaulted by NewRunner to an SSH tunnel into the device's
	// Redis; replaced in tests.
	SetupClient func(ctx context.Context) (*configdb.Client, func(), error)
}

// NewRunner builds a Runner operating over an established session.
func NewRunner(fab *config.Fabric, session *remote.Session) *Runner {
	r := &Runner{
		Fabric:   fab,
		Exec:     session,
		Progress: NewConsoleProgress(false),
	}
	r.SetupClient = func(ctx context.Context) (*configdb.Client, func(), error) {
		tunnel, err := session.Forward(configdb.RedisAddr)
		if err != nil {
			return nil, nil, &InfraError{Op: "tunnel", Device: fab.Device.Host, Err: err}
		}
		client := configdb.NewClient(tunnel.LocalAddr())
		release := func() {
			client.Close()
			tunnel.Close()
		}
		if err := client.Ping(ctx); err != nil {
			release()
			return nil, nil, &InfraError{Op: "tunnel", Device: fab.Device.Host, Err: err}
		}
		return client, release, nil
	}
	return r
}

// ApplyFRR pushes the generated FRR configuration as one vtysh batch and
// persists it with write memory. Returns the number of config commands
// applied. A failed batch may still have applied a prefix of its commands;
// no rollback is attempted.
func (r *Runner) ApplyFRR(ctx context.Context) (int, error) {
	cmds := vty.FRRCommands(r.Fabric.FRRParams())
	log := util.WithDevice(r.Fabric.Device.Host)

	log.Infof("applying %d FRR configuration commands", len(cmds))
	if _, err := r.Exec.RunBatch(ctx, vty.ConfigBatch(cmds), r.Fabric.Device.CommandTimeout); err != nil {
		return 0, err
	}

	log.Infof("saving FRR configuration")
	if _, err := r.Exec.Run(ctx, vty.SaveConfig(), r.Fabric.Device.CommandTimeout); err != nil {
		return 0, err
	}
	return len(cmds), nil
}

// ApplySetup writes the CONFIG_DB underlay entries (BGP identity,
// interface addressing, VLAN, VTEP). Returns the number of entries
// written.
func (r *Runner) ApplySetup(ctx context.Context) (int, error) {
	client, release, err := r.SetupClient(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	if err := configdb.ApplySetup(ctx, client, r.Fabric); err != nil {
		return 0, err
	}
	return len(configdb.SetupEntries(r.Fabric)), nil
}

// Save persists the running FRR configuration.
func (r *Runner) Save(ctx context.Context) error {
	_, err := r.Exec.Run(ctx, vty.SaveConfig(), r.Fabric.Device.CommandTimeout)
	return err
}

// PeerState fetches the BGP summary and looks up one neighbor across all
// address families. found=false means the neighbor appears in no peer
// table — a distinct outcome, not an error and not StateUnknown.
func (r *Runner) PeerState(ctx context.Context, neighbor string) (vty.PeerStatus, bool, error) {
	res, err := r.Exec.Run(ctx, vty.ShowBGPSummary(), r.Fabric.Device.CommandTimeout)
	if err != nil {
		return vty.PeerStatus{}, false, err
	}
	summary, err := vty.ParseSummary(res.Stdout)
	if err != nil {
		return vty.PeerStatus{}, false, err
	}
	status, found := summary.FindPeerState(neighbor)
	return status, found, nil
}

// ReceivedCount fetches and counts the EVPN prefixes received from a
// neighbor (JSON report; direct count field or summed RD collections).
func (r *Runner) ReceivedCount(ctx context.Context, neighbor string) (int, error) {
	res, err := r.Exec.Run(ctx, vty.ShowEVPNRoutes(neighbor), r.Fabric.Device.CommandTimeout)
	if err != nil {
		return 0, err
	}
	return vty.ParsePrefixCount(res.Stdout)
}

// AdvertisedCount fetches and counts the EVPN prefixes advertised to a
// neighbor (text table; status-flag route lines).
func (r *Runner) AdvertisedCount(ctx context.Context, neighbor string) (int, error) {
	res, err := r.Exec.Run(ctx, vty.ShowEVPNAdvertised(neighbor), r.Fabric.Device.CommandTimeout)
	if err != nil {
		return 0, err
	}
	return vty.CountRouteLines(res.Stdout), nil
}

// AssertNeighborState checks one neighbor against an expected session
// state. A nil return means the assertion passed; otherwise the error
// describes the mismatch, including the not-found case.
func (r *Runner) AssertNeighborState(ctx context.Context, neighbor string, expected vty.PeerState) error {
	status, found, err := r.PeerState(ctx, neighbor)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("neighbor %s not found in any address-family peer table", neighbor)
	}
	if status.State != expected {
		state := string(status.State)
		if status.State == vty.StateUnknown && status.Raw != "" {
			state = fmt.Sprintf("%s (%q)", status.State, status.Raw)
		}
		return fmt.Errorf("neighbor %s is %s, expected %s", neighbor, state, expected)
	}
	return nil
}
