package upload

import (
	"errors"
	"fmt"
	"net/url"
)

// Defaults used when a failure carries no message or detail of its own.
const (
	DefaultMessage     = "Network error"
	DefaultDetailError = "Failed to connect to server"
)

// ErrNoContent is returned when a Request has no content reader.
var ErrNoContent = errors.New("request has no content")

// StatusError is a non-2xx response under the Strict policy.
type StatusError struct {
	Status     int
	StatusText string
	// Detail is the body's "detail" property, or the whole parsed body.
	Detail any
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upload rejected: %d %s", e.Status, e.StatusText)
}

// Error is the normalized failure returned by Upload under the Strict policy.
type Error struct {
	Message string
	Detail  any
	// Status is the HTTP status of the response, 0 if none was received.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// DefaultDetail is the detail attached to failures that carry none.
func DefaultDetail() map[string]string {
	return map[string]string{"error": DefaultDetailError}
}

// responseError is a failure that happened after a status line was received.
type responseError struct {
	status int
	err    error
}

func (e *responseError) Error() string { return e.err.Error() }

func (e *responseError) Unwrap() error { return e.err }

// normalize converts any upload failure into an *Error.
func normalize(err error) *Error {
	var ne *Error
	if errors.As(err, &ne) {
		return ne
	}

	out := &Error{Message: err.Error(), Err: err}

	// Transport failures carry the method and URL in their message; keep
	// only the cause.
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		out.Message = ue.Err.Error()
	}

	var se *StatusError
	if errors.As(err, &se) {
		out.Message = se.StatusText
		out.Detail = se.Detail
		out.Status = se.Status
	}

	var re *responseError
	if errors.As(err, &re) {
		out.Status = re.status
	}

	if out.Message == "" {
		out.Message = DefaultMessage
	}
	if !truthy(out.Detail) {
		out.Detail = DefaultDetail()
	}
	return out
}

// detailOf returns body["detail"] when present and truthy, else body.
func detailOf(body any) any {
	if m, ok := body.(map[string]any); ok {
		if d, ok := m["detail"]; ok && truthy(d) {
			return d
		}
	}
	return body
}

// truthy mirrors JSON-level truthiness: null, false, 0 and "" are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
