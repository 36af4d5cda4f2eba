package wizard

import (
	"maps"
	"slices"

	"github.com/anmicius0/lims-batch-composer/internal/client"
	"github.com/anmicius0/lims-batch-composer/internal/service"
)

// View is a point-in-time snapshot of a session for rendering.
type View struct {
	SessionID     string
	Step          string
	StepIndex     int
	Draft         BatchFormData
	CrossProject  bool
	Filters       FilterView
	Eligible      EligibleView
	Compatibility CompatibilityView
	SubBatch      SubBatchView
	Reference     ReferenceView
	// Errors holds scoped messages keyed by slot (details, eligible, compatibility,
	// containers, submit, reference.<section>).
	Errors     map[string]string
	Validation []string
	Submitting bool
	CanGoBack  bool
	CanGoNext  bool
	CanSubmit  bool
}

// FilterView is the eligible-samples filter state.
type FilterView struct {
	AnalysisIDs    []string
	ProjectIDs     []string
	IncludeExpired bool
	SortColumn     string
	SortDescending bool
}

// EligibleView is the sorted, classified sample grid.
type EligibleView struct {
	Loading  bool
	Rows     []SampleRow
	Total    int
	Page     int
	Size     int
	Pages    int
	Warnings []string
	// Message explains an intentionally empty grid.
	Message string
}

// SampleRow pairs a sample with its classification.
type SampleRow struct {
	Sample         client.EligibleSample
	Classification service.Classification
}

// CompatibilityView is the current compatibility check. Report is nil until a check
// succeeds.
type CompatibilityView struct {
	Loading bool
	Report  *service.CompatibilityReport
}

type SubBatchView struct {
	Open      bool
	Selection []string
}

type ReferenceView struct {
	Projects       []client.Project
	Analyses       []client.Analysis
	Containers     []client.Container
	ContainerTypes []client.ContainerType
	BatchStatuses  []client.ListEntry
	BatchTypes     []client.ListEntry
	QCTypes        []client.ListEntry
	MatrixTypes    []client.ListEntry
}

// View returns a snapshot of the session.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	samples := c.eligible.page.Samples
	if sorted, err := service.Sort(samples, c.sort); err == nil {
		samples = sorted
	} else {
		samples = service.SortDefault(samples)
	}
	rows := make([]SampleRow, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, SampleRow{Sample: s, Classification: service.Classify(s)})
	}

	var validation []string
	if c.validation != nil {
		validation = slices.Clone(c.validation.Messages)
	}
	canSubmit := c.step == StepReview && !c.submitting && !c.closed && len(c.submissionMessagesLocked()) == 0

	return View{
		SessionID:    c.opts.SessionID,
		Step:         c.step.String(),
		StepIndex:    int(c.step),
		Draft:        c.draft.clone(),
		CrossProject: c.draft.CrossProject(),
		Filters: FilterView{
			AnalysisIDs:    slices.Clone(c.analysisIDs),
			ProjectIDs:     slices.Clone(c.projectIDs),
			IncludeExpired: c.includeExpired,
			SortColumn:     string(c.sort.Column),
			SortDescending: c.sort.Descending,
		},
		Eligible: EligibleView{
			Loading:  c.eligible.loading,
			Rows:     rows,
			Total:    c.eligible.page.Total,
			Page:     c.eligible.page.Page,
			Size:     c.eligible.page.Size,
			Pages:    c.eligible.page.Pages,
			Warnings: slices.Clone(c.eligible.page.Warnings),
			Message:  c.eligible.message,
		},
		Compatibility: CompatibilityView{
			Loading: c.compatibility.loading,
			Report:  service.Interpret(c.compatibility.result),
		},
		SubBatch: SubBatchView{
			Open:      c.subBatch.IsOpen(),
			Selection: c.subBatch.Selection(),
		},
		Reference: ReferenceView{
			Projects:       c.reference.Projects,
			Analyses:       c.reference.Analyses,
			Containers:     c.reference.Containers,
			ContainerTypes: c.reference.ContainerTypes,
			BatchStatuses:  c.reference.BatchStatuses,
			BatchTypes:     c.reference.BatchTypes,
			QCTypes:        c.reference.QCTypes,
			MatrixTypes:    c.reference.MatrixTypes,
		},
		Errors:     maps.Clone(c.errs),
		Validation: validation,
		Submitting: c.submitting,
		CanGoBack:  c.step > StepDetails,
		CanGoNext:  c.step < StepReview && (c.step != StepDetails || len(c.draft.validateDetails()) == 0),
		CanSubmit:  canSubmit,
	}
}
