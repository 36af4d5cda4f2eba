package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/anmicius0/lims-batch-composer/internal/utils"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"resty.dev/v3"
)

// GenericErrorMessage is shown when an error body carries nothing human-readable.
const GenericErrorMessage = "The server could not process the request"

// maxLoggedBody caps error bodies in logs and error strings. HTTPError.Body keeps the full text.
const maxLoggedBody = 1000

// HTTPClient is a base HTTP client using resty for API requests.
type HTTPClient struct {
	client *resty.Client
}

// HTTPError represents an HTTP error response from the remote API.
// It exposes the status code so callers can detect specific cases (e.g., 404)
// without parsing text messages.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, truncateBody(e.Body))
}

func truncateBody(body string) string {
	if len(body) > maxLoggedBody {
		return body[:maxLoggedBody] + "…"
	}
	return body
}

// Message extracts the most useful human message from a structured error body:
// `detail` (string, or a list of `{msg}` objects), then `message`, then `error`.
// Anything else falls back to GenericErrorMessage.
func (e *HTTPError) Message() string {
	if !gjson.Valid(e.Body) {
		return GenericErrorMessage
	}
	body := gjson.Parse(e.Body)

	detail := body.Get("detail")
	switch {
	case detail.Type == gjson.String && detail.String() != "":
		return detail.String()
	case detail.IsArray():
		msgs := make([]string, 0, len(detail.Array()))
		for _, item := range detail.Array() {
			if msg := item.Get("msg").String(); msg != "" {
				msgs = append(msgs, msg)
			} else if item.Type == gjson.String {
				msgs = append(msgs, item.String())
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	case detail.IsObject():
		if msg := detail.Get("message").String(); msg != "" {
			return msg
		}
	}

	for _, key := range []string{"message", "error"} {
		if r := body.Get(key); r.Type == gjson.String && r.String() != "" {
			return r.String()
		}
	}
	return GenericErrorMessage
}

// NewHTTPClient creates a new HTTPClient with bearer auth and JSON headers.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	baseURL = strings.TrimSuffix(baseURL, "/")
	return &HTTPClient{
		client: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json").
			SetHeader("Content-Type", "application/json").
			SetAuthToken(token).
			SetTimeout(timeout),
	}
}

// Close releases the underlying transport resources.
func (c *HTTPClient) Close() error {
	return c.client.Close()
}

// DoReq performs an HTTP request with the given method, endpoint, body, and query params.
// Logs errors for 4xx/5xx responses and truncates long bodies.
func (c *HTTPClient) DoReq(ctx context.Context, method, endpoint string, body any, params url.Values) (*resty.Response, error) {
	request := c.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params)
	if body != nil {
		request.SetBody(body)
	}

	logger := utils.WithComponent("lims_http")
	logger.Debug("HTTP request start",
		zap.String(utils.FieldMethod, method),
		zap.String(utils.FieldEndpoint, endpoint))

	start := time.Now()
	response, err := request.Execute(method, endpoint)
	duration := time.Since(start)
	if err != nil {
		logger.Error("HTTP request failed",
			zap.String(utils.FieldMethod, method),
			zap.String(utils.FieldEndpoint, endpoint),
			zap.Error(err))
		return nil, err
	}

	if response.StatusCode() >= 400 {
		responseBody := strings.TrimSpace(response.String())
		fields := []zap.Field{
			zap.String(utils.FieldMethod, method),
			zap.String(utils.FieldEndpoint, endpoint),
			zap.Int(utils.FieldStatusCode, response.StatusCode()),
			zap.String("body", truncateBody(responseBody)),
			zap.Duration(utils.FieldDuration, duration),
		}
		if response.StatusCode() >= 500 {
			logger.Error("API error response (server)", fields...)
		} else {
			// 4xx here is usually a validation answer from the backend, not an outage
			logger.Warn("API error response (client)", fields...)
		}
		return nil, &HTTPError{StatusCode: response.StatusCode(), Body: responseBody}
	}

	logger.Debug("HTTP request completed",
		zap.String(utils.FieldMethod, method),
		zap.String(utils.FieldEndpoint, endpoint),
		zap.Int(utils.FieldStatusCode, response.StatusCode()),
		zap.Duration(utils.FieldDuration, duration))

	return response, nil
}
