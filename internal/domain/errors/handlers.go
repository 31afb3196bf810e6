package errors

// ErrorInfo contains detailed error information
type ErrorInfo struct {
	Code    string `json:"code"`    // Business error code, e.g., "REQUEST_NOT_FOUND"
	Details string `json:"details"` // Detailed error description
}

// Response is the envelope the error middleware writes when a handler
// returns an error outside the happy path.
type Response struct {
	Success bool       `json:"success"`
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Error   *ErrorInfo `json:"error,omitempty"`
}
