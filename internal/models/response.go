package models

import (
	"time"
)

// Error code constants
const (
	ErrorCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrorCodeNotFound         = "NOT_FOUND"
	ErrorCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrorCodeInternalError    = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON body written for router and middleware failures.
// The plain-text demo endpoints never produce one.
type ErrorResponse struct {
	Error     string    `json:"error"`          // Error type (always "error")
	Message   string    `json:"message"`        // Human-readable error description
	Code      string    `json:"code,omitempty"` // Machine-readable error code
	Timestamp time.Time `json:"timestamp"`      // Error occurrence time
}

// NewErrorResponse creates an ErrorResponse stamped with the current UTC time.
func NewErrorResponse(message, code string) *ErrorResponse {
	return &ErrorResponse{
		Error:     "error",
		Message:   message,
		Code:      code,
		Timestamp: time.Now().UTC(),
	}
}

// InfoResponse is served by /actuator/info.
type InfoResponse struct {
	Build    BuildInfo    `json:"build"`
	Instance InstanceInfo `json:"instance"`
}

type BuildInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
}

type InstanceInfo struct {
	ID       string    `json:"id"`
	Hostname string    `json:"hostname"`
	Started  time.Time `json:"started"`
}
