package scenario

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fabriclab-net/fabriclab/pkg/vty"
)

// stepExecutor executes a single step against the runner.
type stepExecutor interface {
	Execute(ctx context.Context, r *Runner, step *Step) *StepResult
}

// executors maps each StepAction to its executor implementation.
var executors = map[StepAction]stepExecutor{
	ActionApplyFRR:         &applyFRRExecutor{},
	ActionApplySetup:       &applySetupExecutor{},
	ActionSaveConfig:       &saveConfigExecutor{},
	ActionVerifyBGP:        &verifyBGPExecutor{},
	ActionVerifyReceived:   &verifyReceivedExecutor{},
	ActionVerifyAdvertised: &verifyAdvertisedExecutor{},
	ActionSSHCommand:       &sshCommandExecutor{},
	ActionWait:             &waitExecutor{},
}

func pass(step *Step, message string) *StepResult {
	return &StepResult{Name: step.Name, Action: step.Action, Status: StatusPassed, Message: message}
}

func fail(step *Step, err error) *StepResult {
	return &StepResult{
		Name:    step.Name,
		Action:  step.Action,
		Status:  StatusFailed,
		Message: err.Error(),
		Err:     &StepError{Step: step.Name, Action: step.Action, Err: err},
	}
}

type applyFRRExecutor struct{}

func (e *applyFRRExecutor) Execute(ctx context.Context, r *Runner, step *Step) *StepResult {
	n, err := r.ApplyFRR(ctx)
	if err != nil {
		return fail(step, err)
	}
	return pass(step, fmt.Sprintf("applied %d FRR commands and saved", n))
}

type applySetupExecutor struct{}

func (e *applySetupExecutor) Execute(ctx context.Context, r *Runner, step *Step) *StepResult {
	n, err := r.ApplySetup(ctx)
	if err != nil {
		return fail(step, err)
	}
	return pass(step, fmt.Sprintf("wrote %d CONFIG_DB entries", n))
}

type saveConfigExecutor struct{}

func (e *saveConfigExecutor) Execute(ctx context.Context, r *Runner, step *Step) *StepResult {
	if err := r.Save(ctx); err != nil {
		return fail(step, err)
	}
	return pass(step, "configuration saved")
}

type verifyBGPExecutor struct{}

func (e *verifyBGPExecutor) Execute(ctx context.Context, r *Runner, step *Step) *StepResult {
	neighbors := []string{step.Neighbor}
	if step.Neighbor == "" {
		neighbors = neighbors[:0]
		for _, n := range r.Fabric.BGP.Neighbors {
			neighbors = append(neighbors, n.Address)
		}
		if len(neighbors) == 0 {
			return fail(step, fmt.Errorf("no neighbor in step and none configured"))
		}
	}

	var checked []string
	for _, neighbor := range neighbors {
		expected := r.Fabric.ExpectedState(neighbor)
		if step.Expect != nil && step.Expect.State != "" {
			expected = vty.NormalizeState(step.Expect.State)
		}
		if err := r.AssertNeighborState(ctx, neighbor, expected); err != nil {
			return fail(step, err)
		}
		checked = append(checked, fmt.Sprintf("%s=%s", neighbor, expected))
	}
	return pass(step, strings.Join(checked, ", "))
}

type verifyReceivedExecutor struct{}

func (e *verifyReceivedExecutor) Execute(ctx context.Context, r *Runner, step *Step) *StepResult {
	count, err := r.ReceivedCount(ctx, step.Neighbor)
	if err != nil {
		return fail(step, err)
	}
	if min := minCount(step); count < min {
		return fail(step, fmt.Errorf("neighbor %s: %d prefixes received, expected at least %d",
			step.Neighbor, count, min))
	}
	return pass(step, fmt.Sprintf("neighbor %s: %d prefixes received", step.Neighbor, count))
}

type verifyAdvertisedExecutor struct{}

func (e *verifyAdvertisedExecutor) Execute(ctx context.Context, r *Runner, step *Step) *StepResult {
	count, err := r.AdvertisedCount(ctx, step.Neighbor)
	if err != nil {
		return fail(step, err)
	}
	if min := minCount(step); count < min {
		return fail(step, fmt.Errorf("neighbor %s: %d prefixes advertised, expected at least %d",
			step.Neighbor, count, min))
	}
	return pass(step, fmt.Sprintf("neighbor %s: %d prefixes advertised", step.Neighbor, count))
}

func minCount(step *Step) int {
	if step.Expect != nil && step.Expect.MinCount != nil {
		return *step.Expect.MinCount
	}
	return 0
}

type sshCommandExecutor struct{}

func (e *sshCommandExecutor) Execute(ctx context.Context, r *Runner, step *Step) *StepResult {
	res, err := r.Exec.Run(ctx, step.Command, r.Fabric.Device.CommandTimeout)
	if err != nil {
		return fail(step, err)
	}
	if step.Expect != nil && step.Expect.Contains != "" {
		if !strings.Contains(res.Stdout, step.Expect.Contains) {
			return fail(step, fmt.Errorf("output does not contain %q", step.Expect.Contains))
		}
	}
	return pass(step, fmt.Sprintf("command exited %d", res.ExitCode))
}

type waitExecutor struct{}

func (e *waitExecutor) Execute(ctx context.Context, r *Runner, step *Step) *StepResult {
	select {
	case <-ctx.Done():
		return fail(step, ctx.Err())
	case <-time.After(step.Duration):
		return pass(step, fmt.Sprintf("waited %s", step.Duration))
	}
}
