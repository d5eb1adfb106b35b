package models

import "time"

// Response status constants
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrorResponse is the body returned for every rejected or failed request
type ErrorResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
}

// HealthResponse represents the health endpoint payload
type HealthResponse struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Uptime    string                 `json:"uptime"`
	Providers map[string]interface{} `json:"providers"`
	Storage   string                 `json:"storage"`
	Timestamp time.Time              `json:"timestamp"`
}
