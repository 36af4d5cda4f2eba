// Package wizard implements the batch-composition wizard: a linear step machine that
// owns the batch draft and drives eligibility, compatibility and QC decisions.
package wizard

import (
	"fmt"
	"strconv"
)

// Step is a wizard step. Steps are strictly ordered.
type Step int

const (
	StepDetails Step = iota
	StepEligibleSamples
	StepQC
	StepReview
)

var stepNames = map[Step]string{
	StepDetails:         "details",
	StepEligibleSamples: "eligible_samples",
	StepQC:              "qc",
	StepReview:          "review",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Valid reports whether s is one of the four wizard steps.
func (s Step) Valid() bool {
	return s >= StepDetails && s <= StepReview
}

// ParseStep accepts a step name or its index.
func ParseStep(value string) (Step, error) {
	for step, name := range stepNames {
		if name == value {
			return step, nil
		}
	}
	if idx, err := strconv.Atoi(value); err == nil && Step(idx).Valid() {
		return Step(idx), nil
	}
	return 0, fmt.Errorf("unknown step '%s'", value)
}
