// Package api defines the JSON response types shared by the HTTP handlers.
package api

// ErrorResponse is the uniform error payload for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}
