package service

import (
	"fmt"
	"strings"

	"github.com/anmicius0/lims-batch-composer/internal/client"
)

// QCAddition is one QC sample requested on the batch draft. All of QCType,
// ContainerTypeID and MatrixID must be set (not just whitespace) before submission;
// Notes is optional.
type QCAddition struct {
	QCType          string `json:"qc_type" validate:"required,notblank"`
	ContainerTypeID string `json:"container_type_id" validate:"required,notblank"`
	MatrixID        string `json:"matrix_id" validate:"required,notblank"`
	Notes           string `json:"notes,omitempty"`
}

// QCSuggester proposes QC additions for a batch of a given size.
type QCSuggester interface {
	Suggest(containerCount int, qcTypes []client.ListEntry) []QCAddition
}

// qcKind is one of the QC sample kinds the suggester knows how to look up.
type qcKind int

const (
	qcBlank qcKind = iota
	qcBlankSpike
	qcMatrixSpike
)

type qcTier struct {
	minContainers int
	size          string
	kinds         []qcKind
}

// Tiers are checked in order; the first whose minimum is met wins.
var qcTiers = []qcTier{
	{minContainers: 10, size: "large", kinds: []qcKind{qcBlank, qcBlankSpike, qcMatrixSpike}},
	{minContainers: 5, size: "medium", kinds: []qcKind{qcBlank, qcMatrixSpike}},
	{minContainers: 2, size: "small", kinds: []qcKind{qcBlank}},
}

// NameMatchSuggester finds QC types by case-insensitive substrings of their names.
// It never guesses container types or matrices.
type NameMatchSuggester struct{}

// NewQCSuggester returns the default name-matching suggester.
func NewQCSuggester() QCSuggester { return NameMatchSuggester{} }

// Suggest returns the QC additions for containerCount, skipping kinds with no matching QC type.
func (NameMatchSuggester) Suggest(containerCount int, qcTypes []client.ListEntry) []QCAddition {
	for _, tier := range qcTiers {
		if containerCount < tier.minContainers {
			continue
		}
		suggestions := make([]QCAddition, 0, len(tier.kinds))
		for _, kind := range tier.kinds {
			entry, ok := findQCType(kind, qcTypes)
			if !ok {
				continue
			}
			suggestions = append(suggestions, QCAddition{
				QCType: entry.ID,
				Notes:  fmt.Sprintf("Auto-suggested for %s batch", tier.size),
			})
		}
		return suggestions
	}
	return []QCAddition{}
}

func findQCType(kind qcKind, qcTypes []client.ListEntry) (client.ListEntry, bool) {
	for _, entry := range qcTypes {
		name := strings.ToLower(entry.Name)
		var match bool
		switch kind {
		case qcBlank:
			match = strings.Contains(name, "blank") && !strings.Contains(name, "spike")
		case qcBlankSpike:
			match = strings.Contains(name, "blank spike")
		case qcMatrixSpike:
			match = strings.Contains(name, "matrix spike")
		}
		if match {
			return entry, true
		}
	}
	return client.ListEntry{}, false
}
