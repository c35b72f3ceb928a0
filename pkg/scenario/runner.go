package scenario

import (
	"context"
	"time"
)

// RunScenario executes the scenario's steps in order over the runner's
// session. Execution stops at the first failed step; the remaining steps
// are recorded as skipped. The session itself is owned by the caller and
// released there, so every exit path here leaves it intact for cleanup.
func (r *Runner) RunScenario(ctx context.Context, sc *Scenario) *ScenarioResult {
	result := &ScenarioResult{Name: sc.Name, Status: StatusPassed}
	start := time.Now()

	r.Progress.ScenarioStart(sc)

	failed := false
	for i := range sc.Steps {
		step := &sc.Steps[i]

		if failed {
			skipped := &StepResult{
				Name:    step.Name,
				Action:  step.Action,
				Status:  StatusSkipped,
				Message: "previous step failed",
			}
			result.Steps = append(result.Steps, skipped)
			r.Progress.StepEnd(skipped, i, len(sc.Steps))
			continue
		}

		r.Progress.StepStart(step, i, len(sc.Steps))
		stepStart := time.Now()
		stepResult := executors[step.Action].Execute(ctx, r, step)
		stepResult.Duration = time.Since(stepStart)

		result.Steps = append(result.Steps, stepResult)
		r.Progress.StepEnd(stepResult, i, len(sc.Steps))

		if stepResult.Status == StatusFailed {
			failed = true
			result.Status = StatusFailed
		}
	}

	result.Duration = time.Since(start)
	r.Progress.ScenarioEnd(result)
	return result
}
