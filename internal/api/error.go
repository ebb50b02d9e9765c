package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a structured non-2xx backend response.
type Error struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("api: %d: %s", e.Status, e.Detail)
}

// IsPaymentRequired reports whether err denotes HTTP 402 (insufficient
// tokens), which callers translate into the buy-tokens prompt.
func IsPaymentRequired(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusPaymentRequired
}

// Detail returns the server-supplied detail for err, or fallback when err is
// not an api.Error or carries no detail.
func Detail(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// newError builds an Error from a non-2xx response body. JSON bodies supply
// their "detail" field; anything else is truncated to 100 bytes and wrapped
// as a generic server error.
func newError(status int, contentType string, body []byte) *Error {
	if strings.Contains(contentType, "application/json") {
		var payload struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
			return &Error{Status: status, Detail: payload.Detail}
		}
	}

	text := string(body)
	if len(text) > 100 {
		text = text[:100]
	}
	return &Error{Status: status, Detail: fmt.Sprintf("Server error: %s", text)}
}
