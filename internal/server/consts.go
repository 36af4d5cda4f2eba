package server

const (
	HealthEndpoint  = "/health"
	MetricsEndpoint = "/metrics"
	WizardsPath     = "/wizards"
)

// Responses are generated via structs and use lowerCamelCase JSON fields.

const (
	StatusHealthy = "healthy"
)

const (
	MessageInvalidRequestBody = "Invalid request body"
	MessageInvalidToken       = "Invalid token"
	MessageValidationFailed   = "Validation failed"
	MessageInvalidTransition  = "Action not allowed in the current wizard state"
	MessageBatchCreated       = "Batch created"
	MessageWizardClosed       = "Wizard closed"
)

const (
	ErrorCodeInvalidRequestBody = "invalid_request_body"
	ErrorCodeValidationFailed   = "validation_failed"
	ErrorCodeInvalidTransition  = "invalid_transition"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeBackendError       = "backend_error"
)

const (
	SessionNotFoundMessageFmt = "Wizard session %s not found"
)

// Roles granted by the bearer token. Only RoleFull may create batches.
const (
	RoleFull     = "full"
	RoleReadOnly = "readonly"

	contextKeyRole = "role"
)
