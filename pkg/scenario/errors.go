package scenario

import "fmt"

// InfraError represents an infrastructure-level failure (connect, tunnel)
// that prevents steps from running at all.
type InfraError struct {
	Op     string // "connect", "tunnel"
	Device string
	Err    error
}

func (e *InfraError) Error() string {
	if e.Device != "" {
		return fmt.Sprintf("scenario: %s %s: %v", e.Op, e.Device, e.Err)
	}
	return fmt.Sprintf("scenario: %s: %v", e.Op, e.Err)
}

func (e *InfraError) Unwrap() error {
	return e.Err
}

// StepError represents a step execution failure.
type StepError struct {
	Step   string
	Action StepAction
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("scenario: step %s (%s): %v", e.Step, e.Action, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
