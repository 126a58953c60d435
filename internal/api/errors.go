package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies a failed call.
type Kind string

const (
	// KindTransport means no usable response: network failure, open breaker,
	// caller cancellation or an unreadable body.
	KindTransport Kind = "transport"
	// KindBackend is a structured 4xx/5xx reported by the backend.
	KindBackend Kind = "backend"
	// KindAuth is a missing, expired or rejected bearer token.
	KindAuth Kind = "auth"
)

// Error is the normalized failure payload stored in slice state.
type Error struct {
	Kind       Kind           `json:"kind"`
	StatusCode int            `json:"status_code,omitempty"`
	Code       string         `json:"code,omitempty"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`

	cause error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (%d %s): %s", e.Kind, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Normalize converts any error into an *Error. Errors that already carry the
// normalized shape are returned as they are.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTransport, Code: "canceled", Message: err.Error(), cause: err}
	}
	return &Error{Kind: KindTransport, Code: "request_failed", Message: err.Error(), cause: err}
}

func transportError(code string, err error) *Error {
	return &Error{Kind: KindTransport, Code: code, Message: err.Error(), cause: err}
}

func invalidResponse(err error) *Error {
	return &Error{Kind: KindBackend, Code: "invalid_response", Message: err.Error(), cause: err}
}

// fromResponse builds an error from a non-2xx response. Bodies like
// {"detail": "..."}, {"error": "...", "code": "..."} and field maps such as
// {"quantity": ["Insufficient stock"]} are understood.
func fromResponse(status int, body []byte) *Error {
	e := &Error{Kind: KindBackend, StatusCode: status}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		e.Kind = KindAuth
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err == nil && len(fields) > 0 {
		e.Details = fields
		e.Message = firstString(fields, "detail", "error", "message")
		if code, ok := fields["code"].(string); ok {
			e.Code = code
		}
		if e.Message == "" {
			e.Message = firstFieldError(fields)
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 512 {
		e.Message = text
	}

	if e.Message == "" {
		e.Message = strings.ToLower(http.StatusText(status))
	}
	if e.Code == "" {
		e.Code = codeForStatus(status)
	}
	return e
}

func firstString(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := fields[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// firstFieldError picks a deterministic "field: message" out of a validation map.
func firstFieldError(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := fields[k].(type) {
		case string:
			return k + ": " + v
		case []any:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok {
					return k + ": " + s
				}
			}
		}
	}
	return ""
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return "bad_request"
	case status == http.StatusUnauthorized:
		return "unauthorized"
	case status == http.StatusForbidden:
		return "forbidden"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusConflict:
		return "conflict"
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	case status >= 500:
		return "server_error"
	default:
		return "request_failed"
	}
}
