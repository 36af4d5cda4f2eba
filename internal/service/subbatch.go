package service

import "slices"

// SubBatchPlanner backs the dialog in which the operator marks analyses as
// divergent, i.e. needing their own sub-batch. It performs no validation.
type SubBatchPlanner struct {
	open      bool
	selection []string
}

// Open starts the dialog with the draft's current divergent analyses preselected.
func (p *SubBatchPlanner) Open(current []string) {
	p.open = true
	p.selection = slices.Clone(current)
	if p.selection == nil {
		p.selection = []string{}
	}
}

// IsOpen reports whether the dialog is showing.
func (p *SubBatchPlanner) IsOpen() bool { return p.open }

// Selection returns a copy of the dialog's current selection.
func (p *SubBatchPlanner) Selection() []string { return slices.Clone(p.selection) }

// Toggle adds or removes an analysis from the dialog selection.
func (p *SubBatchPlanner) Toggle(analysisID string) {
	if i := slices.Index(p.selection, analysisID); i >= 0 {
		p.selection = slices.Delete(p.selection, i, i+1)
		return
	}
	p.selection = append(p.selection, analysisID)
}

// Confirm closes the dialog and returns the selection to copy into the draft.
// An empty selection clears divergence.
func (p *SubBatchPlanner) Confirm() []string {
	selection := slices.Clone(p.selection)
	if selection == nil {
		selection = []string{}
	}
	p.open = false
	p.selection = nil
	return selection
}

// Dismiss closes the dialog without touching the draft.
func (p *SubBatchPlanner) Dismiss() {
	p.open = false
	p.selection = nil
}
