package scenario

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/fabriclab-net/fabriclab/pkg/config"
	"github.com/fabriclab-net/fabriclab/pkg/configdb"
	"github.com/fabriclab-net/fabriclab/pkg/remote"
	"github.com/fabriclab-net/fabriclab/pkg/vty"
)

// fakeExec is a canned CommandRunner. Responses are keyed by the full
// rendered command string; unmatched commands fail the test.
type fakeExec struct {
	t         *testing.T
	responses map[string]fakeResponse
	calls     []string
}

type fakeResponse struct {
	result remote.Result
	err    error
}

func newFakeExec(t *testing.T) *fakeExec {
	return &fakeExec{t: t, responses: make(map[string]fakeResponse)}
}

func (f *fakeExec) stdout(command, out string) {
	f.responses[command] = fakeResponse{result: remote.Result{Stdout: out}}
}

func (f *fakeExec) fails(command string, err error) {
	f.responses[command] = fakeResponse{result: remote.Result{ExitCode: 1}, err: err}
}

func (f *fakeExec) Run(ctx context.Context, command string, timeout time.Duration) (remote.Result, error) {
	f.calls = append(f.calls, command)
	resp, ok := f.responses[command]
	if !ok {
		f.t.Fatalf("unexpected command: %s", command)
	}
	return resp.result, resp.err
}

func (f *fakeExec) RunBatch(ctx context.Context, batch remote.Batch, timeout time.Duration) (remote.Result, error) {
	return f.Run(ctx, batch.Render(), timeout)
}

func testFabric() *config.Fabric {
	f := &config.Fabric{}
	f.Device.Host = "172.80.80.11"
	f.Device.User = "admin"
	f.Device.Password = "x"
	f.Device.CommandTimeout = 30 * time.Second
	f.BGP.ASN = 101
	f.BGP.RouterID = "10.0.1.1"
	f.BGP.Neighbors = []config.Neighbor{
		{Address: "10.0.2.1", RemoteAS: 100, ActivateEVPN: true, ExpectedState: "Established"},
		{Address: "192.168.11.1", RemoteAS: 201, ExpectedState: "Established"},
	}
	f.LoopbackIP = "10.0.1.1/32"
	f.EthernetIP = "192.168.11.0/31"
	f.VLAN.ID = 10
	f.VLAN.Tagging = "untagged"
	f.VXLAN.Tunnel = "vtep"
	f.VXLAN.SourceIP = "10.0.1.1"
	f.VXLAN.VNI = 100
	return f
}

func testRunner(t *testing.T, exec *fakeExec) *Runner {
	return &Runner{
		Fabric:   testFabric(),
		Exec:     exec,
		Progress: &ConsoleProgress{W: io.Discard},
	}
}

const establishedSummary = `{
  "ipv4Unicast": {
    "peers": {
      "10.0.2.1": {"state": "Established"},
      "192.168.11.1": {"state": "Established"}
    }
  }
}`

func TestAssertNeighborState(t *testing.T) {
	exec := newFakeExec(t)
	exec.stdout(vty.ShowBGPSummary(), establishedSummary)
	r := testRunner(t, exec)

	if err := r.AssertNeighborState(context.Background(), "10.0.2.1", vty.StateEstablished); err != nil {
		t.Errorf("AssertNeighborState() error = %v", err)
	}
}

func TestAssertNeighborStateMismatch(t *testing.T) {
	exec := newFakeExec(t)
	exec.stdout(vty.ShowBGPSummary(), `{"ipv4Unicast": {"peers": {"10.0.2.1": {"state": "Active"}}}}`)
	r := testRunner(t, exec)

	err := r.AssertNeighborState(context.Background(), "10.0.2.1", vty.StateEstablished)
	if err == nil {
		t.Fatal("mismatch must fail the assertion")
	}
	for _, want := range []string{"10.0.2.1", "Active", "Established"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err.Error(), want)
		}
	}
}

func TestAssertNeighborStateNotFound(t *testing.T) {
	exec := newFakeExec(t)
	exec.stdout(vty.ShowBGPSummary(), `{"ipv4Unicast": {"peers": {}}}`)
	r := testRunner(t, exec)

	err := r.AssertNeighborState(context.Background(), "10.0.2.1", vty.StateEstablished)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want a not-found message", err)
	}
}

func TestReceivedCount(t *testing.T) {
	exec := newFakeExec(t)
	exec.stdout(vty.ShowEVPNRoutes("10.0.2.1"), `{"numPrefix": 4}`)
	r := testRunner(t, exec)

	count, err := r.ReceivedCount(context.Background(), "10.0.2.1")
	if err != nil {
		t.Fatalf("ReceivedCount() error = %v", err)
	}
	if count != 4 {
		t.Errorf("ReceivedCount() = %d, want 4", count)
	}
}

func TestAdvertisedCount(t *testing.T) {
	exec := newFakeExec(t)
	exec.stdout(vty.ShowEVPNAdvertised("10.0.2.1"),
		"*> [2]:[0]:[48]:[aa:bb]\n*> [3]:[0]:[32]:[10.0.1.1]\n")
	r := testRunner(t, exec)

	count, err := r.AdvertisedCount(context.Background(), "10.0.2.1")
	if err != nil {
		t.Fatalf("AdvertisedCount() error = %v", err)
	}
	if count != 2 {
		t.Errorf("AdvertisedCount() = %d, want 2", count)
	}
}

func TestApplyFRR(t *testing.T) {
	exec := newFakeExec(t)
	r := testRunner(t, exec)

	cmds := vty.FRRCommands(r.Fabric.FRRParams())
	exec.stdout(vty.ConfigBatch(cmds).Render(), "")
	exec.stdout(vty.SaveConfig(), "Configuration saved to /etc/frr/frr.conf")

	n, err := r.ApplyFRR(context.Background())
	if err != nil {
		t.Fatalf("ApplyFRR() error = %v", err)
	}
	if n != len(cmds) {
		t.Errorf("ApplyFRR() = %d, want %d", n, len(cmds))
	}
	if len(exec.calls) != 2 {
		t.Fatalf("len(calls) = %d, want batch then save", len(exec.calls))
	}
	if exec.calls[1] != vty.SaveConfig() {
		t.Errorf("second call = %q, want save", exec.calls[1])
	}
}

func TestApplyFRRBatchFailureSkipsSave(t *testing.T) {
	exec := newFakeExec(t)
	r := testRunner(t, exec)

	cmds := vty.FRRCommands(r.Fabric.FRRParams())
	batchErr := errors.New("% Unknown command")
	exec.fails(vty.ConfigBatch(cmds).Render(), batchErr)

	_, err := r.ApplyFRR(context.Background())
	if !errors.Is(err, batchErr) {
		t.Fatalf("ApplyFRR() error = %v, want the batch error", err)
	}
	if len(exec.calls) != 1 {
		t.Errorf("len(calls) = %d, save must not run after a failed batch", len(exec.calls))
	}
}

func TestApplySetupClientFailure(t *testing.T) {
	r := testRunner(t, newFakeExec(t))
	infraErr := &InfraError{Op: "tunnel", Device: "172.80.80.11", Err: errors.New("dial refused")}
	r.SetupClient = func(ctx context.Context) (*configdb.Client, func(), error) {
		return nil, nil, infraErr
	}

	_, err := r.ApplySetup(context.Background())
	var ie *InfraError
	if !errors.As(err, &ie) {
		t.Fatalf("ApplySetup() error = %T, want *InfraError", err)
	}
}

func TestRunScenarioAllPass(t *testing.T) {
	exec := newFakeExec(t)
	exec.stdout(vty.ShowBGPSummary(), establishedSummary)
	exec.stdout(vty.ShowEVPNRoutes("10.0.2.1"), `{"numPrefix": 2}`)
	r := testRunner(t, exec)

	one := 1
	sc := &Scenario{
		Name: "verify",
		Steps: []Step{
			{Name: "sessions up", Action: ActionVerifyBGP},
			{Name: "routes in", Action: ActionVerifyReceived, Neighbor: "10.0.2.1",
				Expect: &ExpectBlock{MinCount: &one}},
		},
	}

	result := r.RunScenario(context.Background(), sc)
	if result.Status != StatusPassed {
		t.Fatalf("Status = %s, want passed", result.Status)
	}
	for _, s := range result.Steps {
		if s.Status != StatusPassed {
			t.Errorf("step %s = %s: %s", s.Name, s.Status, s.Message)
		}
	}
}

func TestRunScenarioStopsOnFailure(t *testing.T) {
	exec := newFakeExec(t)
	exec.stdout(vty.ShowBGPSummary(), `{"ipv4Unicast": {"peers": {"10.0.2.1": {"state": "Idle"}}}}`)
	r := testRunner(t, exec)

	sc := &Scenario{
		Name: "verify",
		Steps: []Step{
			{Name: "spine up", Action: ActionVerifyBGP, Neighbor: "10.0.2.1"},
			{Name: "routes in", Action: ActionVerifyReceived, Neighbor: "10.0.2.1"},
			{Name: "persist", Action: ActionSaveConfig},
		},
	}

	result := r.RunScenario(context.Background(), sc)
	if result.Status != StatusFailed {
		t.Fatalf("Status = %s, want failed", result.Status)
	}
	if result.Steps[0].Status != StatusFailed {
		t.Errorf("first step = %s, want failed", result.Steps[0].Status)
	}
	for _, s := range result.Steps[1:] {
		if s.Status != StatusSkipped {
			t.Errorf("step %s = %s, want skipped", s.Name, s.Status)
		}
	}
	// Only the summary fetch ran; later steps never touched the device.
	if len(exec.calls) != 1 {
		t.Errorf("len(calls) = %d, want 1", len(exec.calls))
	}
}

func TestRunScenarioStepErrorWrapping(t *testing.T) {
	exec := newFakeExec(t)
	exec.stdout(vty.ShowBGPSummary(), `{"ipv4Unicast": {"peers": {}}}`)
	r := testRunner(t, exec)

	sc := &Scenario{
		Name:  "verify",
		Steps: []Step{{Name: "spine up", Action: ActionVerifyBGP, Neighbor: "10.0.2.1"}},
	}

	result := r.RunScenario(context.Background(), sc)
	var stepErr *StepError
	if !errors.As(result.Steps[0].Err, &stepErr) {
		t.Fatalf("step error = %T, want *StepError", result.Steps[0].Err)
	}
	if stepErr.Step != "spine up" || stepErr.Action != ActionVerifyBGP {
		t.Errorf("StepError = %+v", stepErr)
	}
}

func TestVerifyBGPExpectOverride(t *testing.T) {
	exec := newFakeExec(t)
	exec.stdout(vty.ShowBGPSummary(), `{"ipv4Unicast": {"peers": {"10.0.2.1": {"state": "Active"}}}}`)
	r := testRunner(t, exec)

	sc := &Scenario{
		Name: "verify",
		Steps: []Step{{
			Name: "spine converging", Action: ActionVerifyBGP, Neighbor: "10.0.2.1",
			Expect: &ExpectBlock{State: "Active"},
		}},
	}

	if result := r.RunScenario(context.Background(), sc); result.Status != StatusPassed {
		t.Errorf("Status = %s: %s", result.Status, result.Steps[0].Message)
	}
}

func TestVerifyBGPAllNeighbors(t *testing.T) {
	exec := newFakeExec(t)
	exec.stdout(vty.ShowBGPSummary(), establishedSummary)
	r := testRunner(t, exec)

	sc := &Scenario{
		Name:  "verify",
		Steps: []Step{{Name: "all sessions", Action: ActionVerifyBGP}},
	}

	result := r.RunScenario(context.Background(), sc)
	if result.Status != StatusPassed {
		t.Fatalf("Status = %s: %s", result.Status, result.Steps[0].Message)
	}
	// Both configured neighbors appear in the pass message.
	for _, want := range []string{"10.0.2.1", "192.168.11.1"} {
		if !strings.Contains(result.Steps[0].Message, want) {
			t.Errorf("message %q missing %q", result.Steps[0].Message, want)
		}
	}
}

func TestSSHCommandContains(t *testing.T) {
	exec := newFakeExec(t)
	exec.stdout("docker ps", "CONTAINER ID\nabc123  docker-fpm-frr  bgp\n")
	r := testRunner(t, exec)

	sc := &Scenario{
		Name: "verify",
		Steps: []Step{{
			Name: "bgp container", Action: ActionSSHCommand, Command: "docker ps",
			Expect: &ExpectBlock{Contains: "bgp"},
		}},
	}
	if result := r.RunScenario(context.Background(), sc); result.Status != StatusPassed {
		t.Errorf("Status = %s: %s", result.Status, result.Steps[0].Message)
	}

	sc.Steps[0].Expect.Contains = "teamd"
	if result := r.RunScenario(context.Background(), sc); result.Status != StatusFailed {
		t.Error("missing substring must fail the step")
	}
}

func TestWaitStep(t *testing.T) {
	r := testRunner(t, newFakeExec(t))
	sc := &Scenario{
		Name:  "settle",
		Steps: []Step{{Name: "settle", Action: ActionWait, Duration: time.Millisecond}},
	}

	if result := r.RunScenario(context.Background(), sc); result.Status != StatusPassed {
		t.Errorf("Status = %s", result.Status)
	}
}

func TestWaitStepCancelled(t *testing.T) {
	r := testRunner(t, newFakeExec(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sc := &Scenario{
		Name:  "settle",
		Steps: []Step{{Name: "settle", Action: ActionWait, Duration: time.Minute}},
	}
	if result := r.RunScenario(ctx, sc); result.Status != StatusFailed {
		t.Error("cancelled context must fail the wait step")
	}
}
