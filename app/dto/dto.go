// Package dto defines the request and response payloads of the HTTP API.
package dto

// APIResponse is the envelope every endpoint returns. Success responses carry
// Data, failures carry Error; the two never appear together.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
}

// ErrorDetail identifies a failure with a stable machine-readable code plus
// optional endpoint-specific details
type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}
