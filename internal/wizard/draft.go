package wizard

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/anmicius0/lims-batch-composer/internal/client"
	"github.com/anmicius0/lims-batch-composer/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// "required" accepts whitespace-only strings
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// BatchFormData is the batch draft. It is only mutated through Controller actions.
type BatchFormData struct {
	Name              string `validate:"required,notblank"`
	Description       string
	Type              string
	Status            string `validate:"required,notblank"`
	StartDate         *time.Time
	EndDate           *time.Time
	ContainerIDs      []string
	DivergentAnalyses []string
	QCAdditions       []service.QCAddition

	// derived from ContainerIDs, see recomputeCrossProject
	crossProject bool
}

// Details are the Details-step fields of the draft.
type Details struct {
	Name        string
	Description string
	Type        string
	Status      string
	StartDate   *time.Time
	EndDate     *time.Time
}

func newDraft() BatchFormData {
	return BatchFormData{
		ContainerIDs:      []string{},
		DivergentAnalyses: []string{},
		QCAdditions:       []service.QCAddition{},
	}
}

// CrossProject reports whether the selected containers span more than one project.
func (d *BatchFormData) CrossProject() bool { return d.crossProject }

func (d *BatchFormData) applyDetails(in Details) {
	d.Name = strings.TrimSpace(in.Name)
	d.Description = strings.TrimSpace(in.Description)
	d.Type = strings.TrimSpace(in.Type)
	d.Status = strings.TrimSpace(in.Status)
	d.StartDate = in.StartDate
	d.EndDate = in.EndDate
}

// trimQC strips surrounding whitespace from a QC addition as entered.
func trimQC(qc service.QCAddition) service.QCAddition {
	return service.QCAddition{
		QCType:          strings.TrimSpace(qc.QCType),
		ContainerTypeID: strings.TrimSpace(qc.ContainerTypeID),
		MatrixID:        strings.TrimSpace(qc.MatrixID),
		Notes:           strings.TrimSpace(qc.Notes),
	}
}

// recomputeCrossProject derives cross_project from the container catalogue. Containers
// without a sample, and ids missing from the catalogue, contribute no project.
func (d *BatchFormData) recomputeCrossProject(catalogue map[string]client.Container) {
	projects := make(map[string]struct{})
	for _, id := range d.ContainerIDs {
		c, ok := catalogue[id]
		if !ok || c.Sample == nil || c.Sample.ProjectID == "" {
			continue
		}
		projects[c.Sample.ProjectID] = struct{}{}
	}
	d.crossProject = len(projects) > 1
}

func (d BatchFormData) clone() BatchFormData {
	out := d
	out.ContainerIDs = slices.Clone(d.ContainerIDs)
	out.DivergentAnalyses = slices.Clone(d.DivergentAnalyses)
	out.QCAdditions = slices.Clone(d.QCAdditions)
	return out
}

// validateDetails checks the fields gating Details -> EligibleSamples.
func (d *BatchFormData) validateDetails() []string {
	return fieldMessages(validate.StructPartial(d, "Name", "Status"), func(field string) string {
		switch field {
		case "Name":
			return MessageNameRequired
		case "Status":
			return MessageStatusRequired
		}
		return fmt.Sprintf("%s is invalid", field)
	})
}

// validateSubmission checks every client-side rule that must hold before createBatch.
func (d *BatchFormData) validateSubmission(qcRequiredTypes []string) []string {
	messages := d.validateDetails()
	if d.Type != "" && slices.Contains(qcRequiredTypes, d.Type) && len(d.QCAdditions) == 0 {
		messages = append(messages, fmt.Sprintf(MessageQCRequiredFmt, d.Type))
	}
	for i, qc := range d.QCAdditions {
		messages = append(messages, fieldMessages(validate.Struct(qc), func(field string) string {
			return fmt.Sprintf(MessageQCFieldMissingFmt, i+1, qcFieldLabels[field])
		})...)
	}
	return messages
}

var qcFieldLabels = map[string]string{
	"QCType":          "QC type",
	"ContainerTypeID": "container type",
	"MatrixID":        "matrix",
}

func fieldMessages(err error, message func(field string) string) []string {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, message(fe.Field()))
	}
	return out
}

// Payload assembles the create-batch request. Dates are ISO-8601; empty optional
// arrays and strings are left out.
func (d *BatchFormData) Payload() *client.BatchPayload {
	payload := &client.BatchPayload{
		Name:         d.Name,
		Description:  d.Description,
		Type:         d.Type,
		Status:       d.Status,
		StartDate:    formatDate(d.StartDate),
		EndDate:      formatDate(d.EndDate),
		CrossProject: d.crossProject,
	}
	if len(d.ContainerIDs) > 0 {
		payload.ContainerIDs = slices.Clone(d.ContainerIDs)
	}
	if len(d.DivergentAnalyses) > 0 {
		payload.DivergentAnalyses = slices.Clone(d.DivergentAnalyses)
	}
	if len(d.QCAdditions) > 0 {
		payload.QCAdditions = make([]client.QCAdditionPayload, 0, len(d.QCAdditions))
		for _, qc := range d.QCAdditions {
			payload.QCAdditions = append(payload.QCAdditions, client.QCAdditionPayload{
				QCType:          qc.QCType,
				ContainerTypeID: qc.ContainerTypeID,
				MatrixID:        qc.MatrixID,
				Notes:           qc.Notes,
			})
		}
	}
	return payload
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
