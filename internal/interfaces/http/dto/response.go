package dto

import "time"

// Response represents a standard admin API response
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string             `json:"code" example:"ERR_VALIDATION"`
	Message   string             `json:"message" example:"Invalid request"`
	RequestID string             `json:"request_id,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponseWithRequestID creates an error response tagged with the request id
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      NormalizeErrorCode(code),
			Message:   message,
			RequestID: requestID,
			Timestamp: time.Now().UTC(),
		},
	}
}

// NewValidationErrorResponse creates a 400 body listing the rejected fields
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}

// IDRequest represents a request with an ID path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// WebhookError is the body of a rejected webhook delivery
type WebhookError struct {
	Error   int    `json:"error" example:"1"`
	Message string `json:"message" example:"Unauthorized"`
	// Debug-only diagnostics
	IP     string `json:"ip,omitempty" example:"203.0.113.7"`
	Reason string `json:"reason,omitempty" example:"signature_mismatch"`
}

// NewWebhookError creates {"error":1,"message":...}
func NewWebhookError(message string) WebhookError {
	return WebhookError{Error: 1, Message: message}
}

// WebhookResponse is the body of an accepted delivery. Per-item failures are
// reported inside Results; Error stays 0.
type WebhookResponse struct {
	Error   int         `json:"error" example:"0"`
	Success *bool       `json:"success,omitempty" example:"true"`
	Results interface{} `json:"results" swaggertype:"array,object"`
}
