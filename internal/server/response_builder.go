// internal/server/response_builder.go
package server

import (
	"reflect"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/anmicius0/lims-batch-composer/internal/client"
	"github.com/anmicius0/lims-batch-composer/internal/wizard"
)

// ResponseBuilder provides utilities for constructing consistent API responses.
type ResponseBuilder struct{}

// newResponseBuilder creates a new response builder instance.
func newResponseBuilder() *ResponseBuilder { return &ResponseBuilder{} }

// SessionResponse is a wizard session and its current view.
type SessionResponse struct {
	Success            bool
	SessionID          string
	Role               string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	LastCreatedBatchID string
	View               wizard.View
}

// SubmitResponse is returned when a batch was created.
type SubmitResponse struct {
	Success bool
	Message string
	BatchID string
	Batch   map[string]any
	View    wizard.View
}

// ErrorResponse standardizes error responses.
type ErrorResponse struct {
	Success bool
	Error   string
	Message string
	Details any
}

// ValidationFailedResponse is returned when client-side rules reject an action.
type ValidationFailedResponse struct {
	Success  bool
	Message  string
	Error    string
	Step     string
	Messages []string
}

// BuildSessionResponse constructs the session view response, converting keys to camelCase.
func (rb *ResponseBuilder) BuildSessionResponse(session Session, view wizard.View) any {
	response := SessionResponse{
		Success:   true,
		SessionID: session.ID,
		Role:      session.Role,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		View:      view,
	}
	if session.LastCreated != nil {
		response.LastCreatedBatchID = session.LastCreated.ID
	}
	return toCamelCaseMap(response)
}

// BuildSubmitResponse constructs the created-batch response, converting keys to camelCase.
// The backend's raw batch object is passed through untouched.
func (rb *ResponseBuilder) BuildSubmitResponse(created *client.CreatedBatch, view wizard.View) any {
	batch := created.Fields
	if batch == nil {
		batch = map[string]any{"id": created.ID}
	}
	return toCamelCaseMap(SubmitResponse{
		Success: true,
		Message: MessageBatchCreated,
		BatchID: created.ID,
		Batch:   batch,
		View:    view,
	})
}

// BuildErrorResponse constructs a standardized error response, converting keys to camelCase.
func (rb *ResponseBuilder) BuildErrorResponse(errorCode, errorMessage string, details any) any {
	response := ErrorResponse{
		Success: false,
		Error:   errorCode,
		Message: errorMessage,
		Details: details,
	}
	return toCamelCaseMap(response)
}

// BuildValidationFailedResponse constructs a response for rejected actions, converting keys to camelCase.
func (rb *ResponseBuilder) BuildValidationFailedResponse(verr *wizard.ValidationError) any {
	return toCamelCaseMap(ValidationFailedResponse{
		Success:  false,
		Message:  MessageValidationFailed,
		Error:    ErrorCodeValidationFailed,
		Step:     verr.Step.String(),
		Messages: verr.Messages,
	})
}

var timeType = reflect.TypeOf(time.Time{})

func toCamelCaseMap(data any) any {
	val := reflect.ValueOf(data)

	// Handle Pointers
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	// Times render as RFC 3339 strings rather than walking their unexported fields
	if val.IsValid() && val.Type() == timeType {
		t := val.Interface().(time.Time)
		if t.IsZero() {
			return nil
		}
		return t.Format(time.RFC3339)
	}

	// Handle Slices/Arrays
	if val.Kind() == reflect.Slice || val.Kind() == reflect.Array {
		out := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			out[i] = toCamelCaseMap(val.Index(i).Interface())
		}
		return out
	}

	// Handle Structs
	if val.Kind() == reflect.Struct {
		out := make(map[string]any)
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			// Skip unexported fields
			if field.PkgPath != "" {
				continue
			}

			// Recursively convert the field value
			fieldVal := toCamelCaseMap(val.Field(i).Interface())
			out[camelKey(field.Name)] = fieldVal
		}
		return out
	}

	// Return primitives as-is
	return data
}

// camelKey lowers a Go field name, handling the ID/IDs/URL/QC acronyms.
func camelKey(key string) string {
	switch {
	case key == "ID":
		return "id"
	case key == "IDs":
		return "ids"
	case strings.HasSuffix(key, "IDs"):
		// "ContainerIDs" -> "containerIds"
		return camelKey(key[:len(key)-3]) + "Ids"
	case strings.HasSuffix(key, "ID"):
		// "SessionID" -> "sessionId"
		return camelKey(key[:len(key)-2]) + "Id"
	case key == "URL":
		return "url"
	case strings.HasSuffix(key, "URL"):
		return camelKey(key[:len(key)-3]) + "Url"
	case strings.HasPrefix(key, "QC"):
		// "QCAdditions" -> "qcAdditions", "QCType" -> "qcType"
		return "qc" + key[2:]
	}
	return lowerFirst(key)
}

// lowerFirst lowers the first rune of a string
func lowerFirst(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
