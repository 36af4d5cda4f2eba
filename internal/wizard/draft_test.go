package wizard

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/anmicius0/lims-batch-composer/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayload_OmitsEmptyOptionals(t *testing.T) {
	draft := newDraft()
	draft.applyDetails(Details{Name: "Batch 7", Status: "open"})

	body, err := json.Marshal(draft.Payload())
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"Batch 7","status":"open","cross_project":false}`, string(body))
}

func TestPayload_FullDraft(t *testing.T) {
	start := time.Date(2026, 5, 4, 9, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
	end := start.Add(48 * time.Hour)
	draft := newDraft()
	draft.applyDetails(Details{Name: "Batch 8", Description: "metals", Type: "env", Status: "open", StartDate: &start, EndDate: &end})
	draft.ContainerIDs = []string{"c1"}
	draft.DivergentAnalyses = []string{"A2"}
	draft.QCAdditions = []service.QCAddition{{QCType: "qc-b", ContainerTypeID: "t1", MatrixID: "water"}}

	payload := draft.Payload()

	assert.Equal(t, "2026-05-04T09:30:00+02:00", payload.StartDate)
	assert.Equal(t, "2026-05-06T09:30:00+02:00", payload.EndDate)
	assert.Equal(t, []string{"A2"}, payload.DivergentAnalyses)
	require.Len(t, payload.QCAdditions, 1)
	assert.Equal(t, "water", payload.QCAdditions[0].MatrixID)

	// payload slices are copies
	payload.ContainerIDs[0] = "changed"
	assert.Equal(t, "c1", draft.ContainerIDs[0])
}

func TestValidateSubmission_QCRequiredIgnoresUnknownType(t *testing.T) {
	draft := newDraft()
	draft.applyDetails(Details{Name: "Batch", Status: "open", Type: "wastewater"})

	assert.Empty(t, draft.validateSubmission([]string{"env", "drinking_water"}))
}

func TestValidateSubmission_BlankQCFields(t *testing.T) {
	draft := newDraft()
	draft.applyDetails(Details{Name: "Batch", Status: "open"})
	draft.QCAdditions = []service.QCAddition{{QCType: " ", ContainerTypeID: "\t", MatrixID: " "}}

	assert.Equal(t, []string{
		fmt.Sprintf(MessageQCFieldMissingFmt, 1, "QC type"),
		fmt.Sprintf(MessageQCFieldMissingFmt, 1, "container type"),
		fmt.Sprintf(MessageQCFieldMissingFmt, 1, "matrix"),
	}, draft.validateSubmission(nil))
}

func TestValidateDetails_BlankName(t *testing.T) {
	draft := newDraft()
	draft.Name = "   "
	draft.Status = "open"

	assert.Equal(t, []string{MessageNameRequired}, draft.validateDetails())
}

func TestParseStep(t *testing.T) {
	tests := []struct {
		in      string
		want    Step
		wantErr bool
	}{
		{in: "details", want: StepDetails},
		{in: "review", want: StepReview},
		{in: "2", want: StepQC},
		{in: "4", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "summary", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStep(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
