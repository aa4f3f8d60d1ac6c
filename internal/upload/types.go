package upload

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Request is a single file to upload. Content is read once, to the end.
type Request struct {
	Name    string
	Content io.Reader
}

// Envelope is the JSON body POSTed to the backend.
type Envelope struct {
	Name string `json:"name"`
	Data string `json:"data"` // base64 data URL of the full content
}

// Response is the backend's parsed reply.
type Response struct {
	Status int
	// RequestID is the identifier appended to the upload URL.
	RequestID string
	Body      json.RawMessage
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// OK reports whether the backend answered with a 2xx status.
func (r *Response) OK() bool {
	return isSuccess(r.Status)
}

// Policy decides whether non-2xx responses are errors.
type Policy int

const (
	// Strict turns non-2xx responses into errors and normalizes every failure to *Error.
	Strict Policy = iota
	// Permissive returns any parseable body regardless of status.
	Permissive
)

func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Permissive:
		return "permissive"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts "strict" or "permissive" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return Strict, nil
	case "permissive":
		return Permissive, nil
	default:
		return Strict, fmt.Errorf("unknown policy %q (must be strict or permissive)", s)
	}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
