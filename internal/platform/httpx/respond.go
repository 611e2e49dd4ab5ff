// Package httpx provides JSON response helpers following RFC7807 problem
// details.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ProblemDetail represents an RFC7807 problem document. Fields carries
// per-field validation messages so form layers can attach errors inline.
type ProblemDetail struct {
	Type   string            `json:"type,omitempty"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem sends an RFC7807 problem details response with the title taken
// from the standard status text.
func Problem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	JSON(w, status, ProblemDetail{Title: http.StatusText(status), Status: status, Detail: detail})
}

// ProblemFields sends a validation problem with per-field messages.
func ProblemFields(w http.ResponseWriter, r *http.Request, status int, detail string, fields map[string]string) {
	JSON(w, status, ProblemDetail{Title: http.StatusText(status), Status: status, Detail: detail, Fields: fields})
}

// DecodeJSON decodes the request body into the target struct, rejecting
// unknown fields so typos surface instead of silently dropping input.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}
