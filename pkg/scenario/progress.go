package scenario

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fabriclab-net/fabriclab/pkg/cli"
)

// ProgressReporter receives lifecycle callbacks during scenario execution.
type ProgressReporter interface {
	ScenarioStart(sc *Scenario)
	StepStart(step *Step, index, total int)
	StepEnd(result *StepResult, index, total int)
	ScenarioEnd(result *ScenarioResult)
}

// ConsoleProgress is an append-only terminal progress reporter. It never
// uses ANSI cursor rewriting, so output is safe for pipes, CI, and
// scrollback buffers.
type ConsoleProgress struct {
	W       io.Writer
	Verbose bool

	dotWidth int
}

// NewConsoleProgress creates a ConsoleProgress writing to stdout.
func NewConsoleProgress(verbose bool) *ConsoleProgress {
	return &ConsoleProgress{
		W:       os.Stdout,
		Verbose: verbose,
	}
}

func (p *ConsoleProgress) ScenarioStart(sc *Scenario) {
	maxName := 0
	for _, s := range sc.Steps {
		if len(s.Name) > maxName {
			maxName = len(s.Name)
		}
	}
	p.dotWidth = maxName + 6

	fmt.Fprintf(p.W, "\n%s: %d steps\n", sc.Name, len(sc.Steps))
	if sc.Description != "" {
		fmt.Fprintf(p.W, "%s\n", cli.Dim(sc.Description))
	}
	fmt.Fprintln(p.W)
}

func (p *ConsoleProgress) StepStart(step *Step, index, total int) {
	if p.Verbose {
		fmt.Fprintf(p.W, "  [%d/%d]  %s (%s)\n", index+1, total, step.Name, step.Action)
	}
}

func (p *ConsoleProgress) StepEnd(result *StepResult, index, total int) {
	tag := fmt.Sprintf("[%d/%d]", index+1, total)
	padded := cli.DotPad(result.Name, p.dotWidth)

	switch result.Status {
	case StatusPassed:
		fmt.Fprintf(p.W, "  %-7s %s %s  (%s)\n", tag, padded, cli.Green("PASS"), formatDuration(result.Duration))
	case StatusFailed:
		fmt.Fprintf(p.W, "  %-7s %s %s  (%s)\n", tag, padded, cli.Red("FAIL"), formatDuration(result.Duration))
		fmt.Fprintf(p.W, "          %s\n", cli.Dim(result.Message))
	case StatusSkipped:
		fmt.Fprintf(p.W, "  %-7s %s %s\n", tag, padded, cli.Yellow("SKIP"))
	}

	if p.Verbose && result.Status == StatusPassed && result.Message != "" {
		fmt.Fprintf(p.W, "          %s\n", cli.Dim(result.Message))
	}
}

func (p *ConsoleProgress) ScenarioEnd(result *ScenarioResult) {
	fmt.Fprintln(p.W)
	if result.Status == StatusPassed {
		fmt.Fprintf(p.W, "%s  %s  (%s)\n", result.Name, cli.Green("PASS"), formatDuration(result.Duration))
	} else {
		fmt.Fprintf(p.W, "%s  %s  (%s)\n", result.Name, cli.Red("FAIL"), formatDuration(result.Duration))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
