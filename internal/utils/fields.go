package utils

// Structured log field names shared across packages.
const (
	FieldComponent   = "component"
	FieldSessionID   = "session_id"
	FieldStep        = "step"
	FieldAction      = "action"
	FieldToken       = "request_token"
	FieldRequestKind = "request_kind"
	FieldBatchID     = "batch_id"
	FieldPath        = "path"
	FieldHost        = "host"
	FieldPort        = "port"
	FieldSignal      = "signal"
	FieldMethod      = "method"
	FieldEndpoint    = "endpoint"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration"
)
