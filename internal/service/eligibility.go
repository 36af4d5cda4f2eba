package service

import (
	"strings"

	"github.com/anmicius0/lims-batch-composer/internal/client"
)

// NoAnalysisMessage explains the empty grid shown while no analysis is selected.
const NoAnalysisMessage = "Select at least one analysis to see eligible samples"

// EligibilityQueryBuilder turns wizard filter state into an eligible-samples query.
type EligibilityQueryBuilder struct {
	pageSize int
}

// NewEligibilityQueryBuilder creates a builder requesting pages of pageSize (0 leaves it to the server).
func NewEligibilityQueryBuilder(pageSize int) *EligibilityQueryBuilder {
	return &EligibilityQueryBuilder{pageSize: pageSize}
}

// Build returns the query and true, or false when no analysis is selected: an
// unfiltered query would return every sample, so the caller must not issue one.
// project_id is only sent for a single-project scope; a multi-project scope is
// left unfiltered so cross-project ambiguity stays visible.
func (b *EligibilityQueryBuilder) Build(analysisIDs, projectIDs []string, includeExpired bool) (client.EligibleSamplesQuery, bool) {
	analyses := compact(analysisIDs)
	if len(analyses) == 0 {
		return client.EligibleSamplesQuery{}, false
	}
	query := client.EligibleSamplesQuery{
		TestIDs:        strings.Join(analyses, ","),
		IncludeExpired: includeExpired,
		Size:           b.pageSize,
	}
	if projects := compact(projectIDs); len(projects) == 1 {
		query.ProjectID = projects[0]
	}
	return query, true
}

// Normalize fills the gaps a backend may leave in a page so callers never see nil slices.
func Normalize(page *client.EligibleSamplesPage) client.EligibleSamplesPage {
	if page == nil {
		return client.EligibleSamplesPage{Samples: []client.EligibleSample{}, Warnings: []string{}}
	}
	out := *page
	if out.Samples == nil {
		out.Samples = []client.EligibleSample{}
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	if out.Total < len(out.Samples) {
		out.Total = len(out.Samples)
	}
	if out.Page < 1 {
		out.Page = 1
	}
	if out.Size < 1 {
		out.Size = len(out.Samples)
	}
	if out.Pages < 1 && out.Total > 0 {
		out.Pages = 1
	}
	return out
}

// compact drops blank ids and duplicates, keeping first-seen order.
func compact(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
