package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anmicius0/lims-batch-composer/internal/client"
)

var (
	ErrClosed           = errors.New("wizard session is closed")
	ErrFirstStep        = errors.New("already on the first step")
	ErrLastStep         = errors.New("already on the last step; submit instead")
	ErrForwardJump      = errors.New("only backward jumps are allowed")
	ErrInvalidStep      = errors.New("invalid step")
	ErrNotOnReview      = errors.New("batches can only be submitted from the review step")
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	ErrQCIndex          = errors.New("no QC addition at that position")
	ErrDialogClosed     = errors.New("sub-batch dialog is not open")
)

// User-facing messages for client-side rules and scoped failures.
const (
	MessageNameRequired      = "Batch name is required"
	MessageStatusRequired    = "Batch status is required"
	MessageQCRequiredFmt     = "Batch type '%s' requires at least one QC sample"
	MessageQCFieldMissingFmt = "QC sample %d: %s is required"
	MessagePermissionDenied  = "You do not have permission to create batches"
	MessageEligibleFailed    = "Failed to load eligible samples"
	MessageContainersFailed  = "Failed to load containers"
	MessageSubmitFailed      = "Failed to create batch"
)

// ValidationError carries client-side rule violations. Nothing is sent to the
// backend when one is returned.
type ValidationError struct {
	Step     Step
	Messages []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Step, strings.Join(e.Messages, "; "))
}

// errorMessage picks the best human message for a failed backend call.
func errorMessage(err error, fallback string) string {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		if msg := httpErr.Message(); msg != client.GenericErrorMessage {
			return msg
		}
	}
	return fallback
}
