package apiclient

import "fmt"

// HealthResponse from /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// CreatedResponse is the optional acknowledgement body of a POST.
type CreatedResponse struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}

// StatusError is returned for any response other than 200 or 201.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error %d on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Body)
}
