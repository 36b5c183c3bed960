package faults

import (
	"errors"
	"fmt"
	"strings"
)

// APIError is a remote API failure surfaced verbatim: the HTTP status code,
// the status reason phrase, and the (possibly truncated) response body. It is
// never retried by callers; the category classifies the status for exit-code
// and tolerance decisions.
type APIError struct {
	Category   ErrorCategory
	StatusCode int
	Reason     string
	Body       string
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}

	message := fmt.Sprintf("api request failed with status %d %s", e.StatusCode, strings.TrimSpace(e.Reason))
	if body := strings.TrimSpace(e.Body); body != "" {
		message = message + ": " + body
	}
	return message
}

func NewAPIError(category ErrorCategory, statusCode int, reason string, body string) *APIError {
	return &APIError{
		Category:   category,
		StatusCode: statusCode,
		Reason:     reason,
		Body:       body,
	}
}

// AsAPIError unwraps err to the first APIError in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
