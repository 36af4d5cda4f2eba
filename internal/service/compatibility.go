package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/anmicius0/lims-batch-composer/internal/client"
	"github.com/anmicius0/lims-batch-composer/internal/utils"
	"go.uber.org/zap"
)

// MinContainersForCompatibility is the selection size below which validation is skipped.
const MinContainersForCompatibility = 2

// CompatibilityFailedMessage is shown when the validation call itself fails.
const CompatibilityFailedMessage = "Failed to validate compatibility"

// ErrTooFewContainers is returned when validation is requested for fewer than two containers.
var ErrTooFewContainers = errors.New("compatibility is only checked for two or more containers")

// CompatibilityOrchestrator runs the compatibility round trip and interprets its result.
type CompatibilityOrchestrator struct {
	lims    client.LIMSClient
	metrics *utils.Metrics
}

// NewCompatibilityOrchestrator creates an orchestrator. metrics may be nil.
func NewCompatibilityOrchestrator(lims client.LIMSClient, metrics *utils.Metrics) *CompatibilityOrchestrator {
	return &CompatibilityOrchestrator{lims: lims, metrics: metrics}
}

// ShouldValidate reports whether a selection is large enough to be checked.
func (o *CompatibilityOrchestrator) ShouldValidate(containerIDs []string) bool {
	return len(containerIDs) >= MinContainersForCompatibility
}

// Validate asks the backend about containerIDs. A failed call returns an error and
// no result; callers must not read that as compatible.
func (o *CompatibilityOrchestrator) Validate(ctx context.Context, containerIDs []string) (*client.CompatibilityResult, error) {
	if !o.ShouldValidate(containerIDs) {
		return nil, ErrTooFewContainers
	}
	result, err := o.lims.ValidateBatchCompatibility(ctx, containerIDs)
	if err != nil {
		o.metrics.Compatibility("error")
		utils.WithComponent("compatibility").Warn("Compatibility validation failed",
			zap.Int("container_count", len(containerIDs)),
			zap.Error(err))
		return nil, fmt.Errorf("%s: %w", CompatibilityFailedMessage, err)
	}
	if result == nil {
		o.metrics.Compatibility("error")
		return nil, fmt.Errorf("%s: empty response", CompatibilityFailedMessage)
	}
	if result.Compatible {
		o.metrics.Compatibility("compatible")
	} else {
		o.metrics.Compatibility("incompatible")
	}
	return result, nil
}

// Explanation is the structured account of an incompatibility.
type Explanation struct {
	Error      string   `json:"error,omitempty"`
	Projects   []string `json:"projects,omitempty"`
	Analyses   []string `json:"analyses,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// WarningView is a compatibility warning ready for display.
type WarningView struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	SampleNames []string `json:"sample_names"`
}

// CompatibilityReport is the interpreted form of a CompatibilityResult.
type CompatibilityReport struct {
	Compatible bool `json:"compatible"`
	// Explanation is set only when the containers are incompatible.
	Explanation *Explanation  `json:"explanation,omitempty"`
	Warnings    []WarningView `json:"warnings"`
	// CanProceed is always true: incompatibility informs, it does not block.
	CanProceed bool `json:"can_proceed"`
}

// Interpret converts a backend result into a report. Warnings are rendered
// regardless of the compatible flag.
func Interpret(result *client.CompatibilityResult) *CompatibilityReport {
	if result == nil {
		return nil
	}
	report := &CompatibilityReport{
		Compatible: result.Compatible,
		Warnings:   make([]WarningView, 0, len(result.Warnings)),
		CanProceed: true,
	}
	if !result.Compatible {
		explanation := &Explanation{Error: result.Error}
		if result.Details != nil {
			explanation.Projects = result.Details.Projects
			explanation.Analyses = result.Details.Analyses
			explanation.Suggestion = result.Details.Suggestion
		}
		report.Explanation = explanation
	}
	for _, w := range result.Warnings {
		view := WarningView{
			Type:        w.Type,
			Severity:    SeverityWarning,
			Message:     w.Message,
			SampleNames: make([]string, 0, len(w.Samples)),
		}
		if w.Type == client.WarningExpiredSamples {
			view.Severity = SeverityError
		}
		for _, s := range w.Samples {
			name := s.SampleName
			if name == "" {
				name = s.SampleID
			}
			view.SampleNames = append(view.SampleNames, name)
		}
		report.Warnings = append(report.Warnings, view)
	}
	return report
}
