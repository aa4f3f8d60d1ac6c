// Package response provides the JSON reply helpers used by the upload receiver.
package response

import (
	"encoding/json"
	"net/http"
)

// Stored is the body returned after an upload has been kept.
type Stored struct {
	URL string `json:"url"`
}

// Failure is the error body shape: {"detail": ...}.
type Failure struct {
	Detail any `json:"detail"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Raw writes body verbatim with the given status and content type.
func Raw(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// OK writes a 200 response pointing at the stored object.
func OK(w http.ResponseWriter, url string) {
	JSON(w, http.StatusOK, Stored{URL: url})
}

// Error writes a {"detail": ...} response with the given status.
func Error(w http.ResponseWriter, status int, detail any) {
	JSON(w, status, Failure{Detail: detail})
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, detail any) {
	Error(w, http.StatusBadRequest, detail)
}

// UnprocessableEntity writes a 422 response.
func UnprocessableEntity(w http.ResponseWriter, detail any) {
	Error(w, http.StatusUnprocessableEntity, detail)
}

// InternalError writes a 500 response with a generic detail.
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "internal server error")
}
