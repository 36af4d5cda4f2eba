package server

import (
	"time"

	"github.com/anmicius0/lims-batch-composer/internal/service"
	"github.com/anmicius0/lims-batch-composer/internal/wizard"
)

// openWizardRequest optionally scopes a new wizard to projects.
type openWizardRequest struct {
	ProjectIDs []string
}

type detailsRequest struct {
	Name        string
	Description string
	Type        string
	Status      string
	StartDate   *time.Time
	EndDate     *time.Time
}

func (r detailsRequest) toDetails() wizard.Details {
	return wizard.Details{
		Name:        r.Name,
		Description: r.Description,
		Type:        r.Type,
		Status:      r.Status,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
	}
}

type gotoRequest struct {
	// Step is a step name ("details", "eligible_samples", "qc", "review") or index
	Step string `binding:"required"`
}

type analysesRequest struct {
	AnalysisIDs []string
}

type projectsRequest struct {
	ProjectIDs []string
}

type containersRequest struct {
	ContainerIDs []string
}

type includeExpiredRequest struct {
	IncludeExpired *bool `binding:"required"`
}

// sortRequest selects a grid column; an empty Column restores the default order.
type sortRequest struct {
	Column     string
	Descending bool
}

func (r sortRequest) toSpec() service.SortSpec {
	return service.SortSpec{Column: service.SortColumn(r.Column), Descending: r.Descending}
}

// qcRequest is a QC addition as edited in the UI; completeness is only enforced at submission.
type qcRequest struct {
	QCType          string
	ContainerTypeID string
	MatrixID        string
	Notes           string
}

func (r qcRequest) toAddition() service.QCAddition {
	return service.QCAddition{
		QCType:          r.QCType,
		ContainerTypeID: r.ContainerTypeID,
		MatrixID:        r.MatrixID,
		Notes:           r.Notes,
	}
}

type toggleRequest struct {
	AnalysisID string `binding:"required"`
}
