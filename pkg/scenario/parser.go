package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseScenario reads a YAML scenario file and returns a validated Scenario.
func ParseScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}

	if err := validate(&s); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

// stepValidation declares what fields each action requires.
type stepValidation struct {
	fields []string // required step-level fields: "neighbor", "command", "duration"
	custom func(prefix string, step *Step) error
}

// stepValidations is the declarative validation table for all step actions.
// Actions not listed here have no field requirements.
var stepValidations = map[StepAction]stepValidation{
	ActionWait: {fields: []string{"duration"}},
	ActionVerifyReceived: {fields: []string{"neighbor"}},
	ActionVerifyAdvertised: {fields: []string{"neighbor"}},
	ActionSSHCommand: {fields: []string{"command"}},
	ActionVerifyBGP: {custom: func(prefix string, step *Step) error {
		if step.Expect != nil && step.Expect.MinCount != nil {
			return fmt.Errorf("%s: expect.min_count is not valid for verify-bgp", prefix)
		}
		return nil
	}},
}

func validate(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}

	for i := range s.Steps {
		step := &s.Steps[i]
		prefix := fmt.Sprintf("step %d (%s)", i+1, step.Name)

		if step.Name == "" {
			return fmt.Errorf("step %d: name is required", i+1)
		}
		if _, ok := executors[step.Action]; !ok {
			return fmt.Errorf("%s: unknown action %q", prefix, step.Action)
		}

		v := stepValidations[step.Action]
		for _, field := range v.fields {
			switch field {
			case "neighbor":
				if step.Neighbor == "" {
					return fmt.Errorf("%s: neighbor is required", prefix)
				}
			case "command":
				if step.Command == "" {
					return fmt.Errorf("%s: command is required", prefix)
				}
			case "duration":
				if step.Duration == 0 {
					return fmt.Errorf("%s: duration is required", prefix)
				}
			}
		}
		if v.custom != nil {
			if err := v.custom(prefix, step); err != nil {
				return err
			}
		}
	}
	return nil
}
