package client

import (
	"net/url"
	"strconv"
)

// EligibleSample is one sample/test pairing the backend considers eligible for a batch.
// Expiration and due-date fields are computed upstream and must not be recomputed here.
type EligibleSample struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	ProjectID           string  `json:"project_id"`
	ProjectName         string  `json:"project_name"`
	AnalysisID          string  `json:"analysis_id"`
	AnalysisName        string  `json:"analysis_name"`
	ShelfLife           *int    `json:"shelf_life"`
	DateSampled         *string `json:"date_sampled"`
	ReceivedDate        *string `json:"received_date"`
	DueDate             *string `json:"due_date"`
	EffectiveDueDate    *string `json:"effective_due_date"`
	DaysUntilExpiration *int    `json:"days_until_expiration"`
	DaysUntilDue        *int    `json:"days_until_due"`
	IsExpired           bool    `json:"is_expired"`
	IsOverdue           bool    `json:"is_overdue"`
	ExpirationWarning   *string `json:"expiration_warning"`
}

// EligibleSamplesPage is the paginated response of the eligible-samples endpoint.
type EligibleSamplesPage struct {
	Samples  []EligibleSample `json:"samples"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	Size     int              `json:"size"`
	Pages    int              `json:"pages"`
	Warnings []string         `json:"warnings"`
}

// EligibleSamplesQuery holds the query parameters of the eligible-samples endpoint.
// Empty TestIDs and ProjectID are omitted from the request.
type EligibleSamplesQuery struct {
	TestIDs        string
	ProjectID      string
	IncludeExpired bool
	Size           int
}

// Values encodes the query for the HTTP request.
func (q EligibleSamplesQuery) Values() url.Values {
	values := url.Values{}
	if q.TestIDs != "" {
		values.Set("test_ids", q.TestIDs)
	}
	if q.ProjectID != "" {
		values.Set("project_id", q.ProjectID)
	}
	values.Set("include_expired", strconv.FormatBool(q.IncludeExpired))
	if q.Size > 0 {
		values.Set("size", strconv.Itoa(q.Size))
	}
	return values
}

// ContainerSample is the sample held by a container, as embedded in container listings.
type ContainerSample struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	ProjectID string       `json:"project_id"`
	Project   *ProjectName `json:"project,omitempty"`
}

// ProjectName is the minimal project reference embedded in a container's sample.
type ProjectName struct {
	Name string `json:"name"`
}

// Container is a physical vessel; a container without a sample is inert for compatibility.
type Container struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	ContainerTypeID string           `json:"container_type_id,omitempty"`
	Sample          *ContainerSample `json:"sample,omitempty"`
}

// Project is a LIMS project.
type Project struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	DueDate *string `json:"due_date,omitempty"`
}

// Analysis is a test that samples can be batched for.
type Analysis struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ListEntry is a value of a configurable list (batch status, batch types, QC types, matrix types).
type ListEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ContainerType is a kind of physical vessel.
type ContainerType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Configurable list names understood by GetListEntries.
const (
	ListBatchStatus = "batch_status"
	ListBatchTypes  = "batch_types"
	ListQCTypes     = "qc_types"
	ListMatrixTypes = "matrix_types"
)

// Compatibility warning types the backend emits.
const (
	WarningExpiredSamples = "expired_samples"
	WarningExpiringSoon   = "expiring_soon"
)

// WarningSample is one sample affected by a compatibility warning.
type WarningSample struct {
	SampleID            string  `json:"sample_id"`
	SampleName          string  `json:"sample_name"`
	DaysExpired         *int    `json:"days_expired,omitempty"`
	DaysUntilExpiration *int    `json:"days_until_expiration,omitempty"`
	ExpirationDate      *string `json:"expiration_date,omitempty"`
}

// CompatibilityWarning is a non-blocking observation about the selected containers.
type CompatibilityWarning struct {
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Samples []WarningSample `json:"samples"`
}

// CompatibilityDetails explains why containers are incompatible.
type CompatibilityDetails struct {
	Projects   []string `json:"projects,omitempty"`
	Analyses   []string `json:"analyses,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// CompatibilityResult is the backend's verdict on a set of containers.
type CompatibilityResult struct {
	Compatible bool                   `json:"compatible"`
	Error      string                 `json:"error,omitempty"`
	Details    *CompatibilityDetails  `json:"details,omitempty"`
	Warnings   []CompatibilityWarning `json:"warnings,omitempty"`
}

// QCAdditionPayload is one QC sample requested in a create-batch request.
type QCAdditionPayload struct {
	QCType          string `json:"qc_type"`
	ContainerTypeID string `json:"container_type_id"`
	MatrixID        string `json:"matrix_id"`
	Notes           string `json:"notes,omitempty"`
}

// BatchPayload is the create-batch request body. Optional arrays are omitted when empty.
type BatchPayload struct {
	Name              string              `json:"name"`
	Description       string              `json:"description,omitempty"`
	Type              string              `json:"type,omitempty"`
	Status            string              `json:"status"`
	StartDate         string              `json:"start_date,omitempty"`
	EndDate           string              `json:"end_date,omitempty"`
	ContainerIDs      []string            `json:"container_ids,omitempty"`
	CrossProject      bool                `json:"cross_project"`
	DivergentAnalyses []string            `json:"divergent_analyses,omitempty"`
	QCAdditions       []QCAdditionPayload `json:"qc_additions,omitempty"`
}

// CreatedBatch is the backend's response to a successful create-batch request.
type CreatedBatch struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"-"`
}
