// Package scenario composes the remote runner and the vtysh parsers into
// named workflows: push a configuration set, or fetch a status report and
// assert on it. Scenarios are YAML files in the style of:
//
//	name: evpn-underlay
//	steps:
//	  - name: push frr config
//	    action: apply-frr
//	  - name: spine session up
//	    action: verify-bgp
//	    neighbor: 10.0.2.1
//	    expect:
//	      state: Established
package scenario

import "time"

// Scenario is a parsed workflow from a YAML file.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Steps       []Step `yaml:"steps"`
}

// Step is a single action within a scenario. Fields are action-specific;
// the parser validates that the relevant ones are set.
type Step struct {
	Name   string     `yaml:"name"`
	Action StepAction `yaml:"action"`

	// verify-bgp (optional: empty = all configured neighbors),
	// verify-received, verify-advertised
	Neighbor string `yaml:"neighbor,omitempty"`

	// ssh-command
	Command string `yaml:"command,omitempty"`

	// wait
	Duration time.Duration `yaml:"duration,omitempty"`

	Expect *ExpectBlock `yaml:"expect,omitempty"`
}

// StepAction identifies the type of step to execute.
type StepAction string

const (
	ActionApplyFRR         StepAction = "apply-frr"
	ActionApplySetup       StepAction = "apply-setup"
	ActionSaveConfig       StepAction = "save-config"
	ActionVerifyBGP        StepAction = "verify-bgp"
	ActionVerifyReceived   StepAction = "verify-received"
	ActionVerifyAdvertised StepAction = "verify-advertised"
	ActionSSHCommand       StepAction = "ssh-command"
	ActionWait             StepAction = "wait"
)

// ExpectBlock is a union of action-specific expectation fields.
type ExpectBlock struct {
	// verify-bgp: expected session state (default: from fabric config)
	State string `yaml:"state,omitempty"`

	// verify-received, verify-advertised: minimum prefix count
	MinCount *int `yaml:"min_count,omitempty"`

	// ssh-command: stdout must contain this substring
	Contains string `yaml:"contains,omitempty"`
}

// StepStatus is the outcome of a step or scenario.
type StepStatus string

const (
	StatusPassed  StepStatus = "passed"
	StatusFailed  StepStatus = "failed"
	StatusSkipped StepStatus = "skipped"
)

// StepResult records one executed step.
type StepResult struct {
	Name     string
	Action   StepAction
	Status   StepStatus
	Message  string
	Duration time.Duration
	Err      error
}

// ScenarioResult records a full scenario run.
type ScenarioResult struct {
	Name     string
	Status   StepStatus
	Steps    []*StepResult
	Duration time.Duration
}
