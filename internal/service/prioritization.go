// internal/service/prioritization.go
// Package service holds the batch wizard's decision components: sample prioritization,
// QC suggestion, eligibility queries, compatibility interpretation and sub-batch planning.
package service

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/anmicius0/lims-batch-composer/internal/client"
)

// Urgency is the expiration classification of an eligible sample.
type Urgency string

const (
	UrgencyNormal  Urgency = "normal"
	UrgencyUrgent  Urgency = "urgent"
	UrgencyExpired Urgency = "expired"
)

// Severity is the render style attached to a classification or a message.
type Severity string

const (
	SeverityNone    Severity = ""
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// UrgentWindowDays is the inclusive upper bound of days-until-expiration that counts as urgent.
const UrgentWindowDays = 3

// EmptyDays is rendered in place of an unknown day count.
const EmptyDays = "—"

// Classification is the render/sort classification of a sample.
type Classification struct {
	Urgency  Urgency
	Severity Severity
	// Icon is empty for normal rows.
	Icon    string
	Overdue bool
	// ExpirationLabel and DueLabel are the display strings for the day counts.
	ExpirationLabel string
	DueLabel        string
}

// Classify classifies a sample from its upstream-computed expiration fields.
func Classify(s client.EligibleSample) Classification {
	return ClassifyFields(s.DaysUntilExpiration, s.DaysUntilDue, s.IsExpired, s.IsOverdue)
}

// ClassifyFields classifies from the raw fields. is_expired wins over everything,
// including the due date.
func ClassifyFields(daysUntilExpiration, daysUntilDue *int, isExpired, isOverdue bool) Classification {
	c := Classification{
		Urgency:         UrgencyNormal,
		Severity:        SeverityNone,
		Overdue:         isOverdue,
		ExpirationLabel: FormatDays(daysUntilExpiration),
		DueLabel:        FormatDays(daysUntilDue),
	}
	switch {
	case isExpired:
		c.Urgency = UrgencyExpired
		c.Severity = SeverityError
		c.Icon = "error"
	case daysUntilExpiration != nil && *daysUntilExpiration >= 0 && *daysUntilExpiration <= UrgentWindowDays:
		c.Urgency = UrgencyUrgent
		c.Severity = SeverityWarning
		c.Icon = "warning"
	}
	return c
}

// FormatDays renders a signed day count, or EmptyDays for nil. Zero stays "0".
func FormatDays(days *int) string {
	if days == nil {
		return EmptyDays
	}
	return strconv.Itoa(*days)
}

// SortColumn names a sortable column of the eligible-samples grid.
type SortColumn string

const (
	SortByName                SortColumn = "name"
	SortByProject             SortColumn = "project"
	SortByAnalysis            SortColumn = "analysis"
	SortByDaysUntilExpiration SortColumn = "days_until_expiration"
	SortByDaysUntilDue        SortColumn = "days_until_due"
	SortByDueDate             SortColumn = "due_date"
)

// SortSpec is a user-chosen column sort. The zero value means "default order".
type SortSpec struct {
	Column     SortColumn `json:"column"`
	Descending bool       `json:"descending"`
}

// IsDefault reports whether no explicit column sort is set.
func (s SortSpec) IsDefault() bool { return s.Column == "" }

// ErrUnknownSortColumn is returned for a sort on a column the grid does not have.
var ErrUnknownSortColumn = errors.New("unknown sort column")

// Validate rejects unknown columns.
func (s SortSpec) Validate() error {
	switch s.Column {
	case "", SortByName, SortByProject, SortByAnalysis, SortByDaysUntilExpiration, SortByDaysUntilDue, SortByDueDate:
		return nil
	}
	return fmt.Errorf("%w '%s'", ErrUnknownSortColumn, s.Column)
}

// SortDefault returns a copy ordered by days until expiration, then days until due,
// nils last on both keys. Ties keep fetch order.
func SortDefault(samples []client.EligibleSample) []client.EligibleSample {
	out := slices.Clone(samples)
	slices.SortStableFunc(out, func(a, b client.EligibleSample) int {
		if c := compareNullable(a.DaysUntilExpiration, b.DaysUntilExpiration, false); c != 0 {
			return c
		}
		return compareNullable(a.DaysUntilDue, b.DaysUntilDue, false)
	})
	return out
}

// Sort applies spec, falling back to SortDefault for the zero spec. Nils sort last
// in both directions.
func Sort(samples []client.EligibleSample, spec SortSpec) ([]client.EligibleSample, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.IsDefault() {
		return SortDefault(samples), nil
	}
	out := slices.Clone(samples)
	desc := spec.Descending
	slices.SortStableFunc(out, func(a, b client.EligibleSample) int {
		switch spec.Column {
		case SortByName:
			return compareText(a.Name, b.Name, desc)
		case SortByProject:
			return compareText(a.ProjectName, b.ProjectName, desc)
		case SortByAnalysis:
			return compareText(a.AnalysisName, b.AnalysisName, desc)
		case SortByDaysUntilExpiration:
			return compareNullable(a.DaysUntilExpiration, b.DaysUntilExpiration, desc)
		case SortByDaysUntilDue:
			return compareNullable(a.DaysUntilDue, b.DaysUntilDue, desc)
		case SortByDueDate:
			// ISO dates compare lexically
			return compareNullable(a.EffectiveDueDate, b.EffectiveDueDate, desc)
		}
		return 0
	})
	return out, nil
}

func compareNullable[T cmp.Ordered](a, b *T, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if desc {
		return cmp.Compare(*b, *a)
	}
	return cmp.Compare(*a, *b)
}

func compareText(a, b string, desc bool) int {
	c := strings.Compare(strings.ToLower(a), strings.ToLower(b))
	if desc {
		return -c
	}
	return c
}
