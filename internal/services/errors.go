package services

import "fmt"

type WorkflowErrorCode string

const (
	ErrBadRequest           WorkflowErrorCode = "BAD_REQUEST"
	ErrNotFound             WorkflowErrorCode = "NOT_FOUND"
	ErrInsufficientCapacity WorkflowErrorCode = "INSUFFICIENT_CAPACITY"
	ErrCapacityExceeded     WorkflowErrorCode = "CAPACITY_EXCEEDED"
	ErrNothingToUndo        WorkflowErrorCode = "NOTHING_TO_UNDO"
	ErrNoAPIKey             WorkflowErrorCode = "NO_API_KEY"
	ErrUpstream             WorkflowErrorCode = "UPSTREAM_ERROR"
	ErrUnknown              WorkflowErrorCode = "UNKNOWN"
)

// WorkflowError is the structured error returned by every workflow service.
// Handlers map codes onto HTTP statuses.
type WorkflowError struct {
	Message string            `json:"message"`
	Code    WorkflowErrorCode `json:"code"`
	Details error             `json:"details,omitempty"`
}

func (e *WorkflowError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s [%s]: %v", e.Message, e.Code, e.Details)
	}
	return fmt.Sprintf("%s [%s]", e.Message, e.Code)
}

func (e *WorkflowError) Unwrap() error {
	return e.Details
}

func NewWorkflowError(message string, code WorkflowErrorCode, details error) *WorkflowError {
	return &WorkflowError{
		Message: message,
		Code:    code,
		Details: details,
	}
}

func IsWorkflowError(err error) bool {
	_, ok := err.(*WorkflowError)
	return ok
}

func GetWorkflowErrorCode(err error) WorkflowErrorCode {
	if werr, ok := err.(*WorkflowError); ok {
		return werr.Code
	}
	return ""
}
