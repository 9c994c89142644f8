package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for relay errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// Pipeline error codes
const (
	PIPELINE_DUPLICATE_NODE     ErrorCode = "PIPELINE_DUPLICATE_NODE"
	PIPELINE_UNRESOLVED_NODE    ErrorCode = "PIPELINE_UNRESOLVED_NODE"
	PIPELINE_DUPLICATE_TOOL     ErrorCode = "PIPELINE_DUPLICATE_TOOL"
	PIPELINE_MISSING_ENTRY      ErrorCode = "PIPELINE_MISSING_ENTRY"
	PIPELINE_VALIDATION_FAILED  ErrorCode = "PIPELINE_VALIDATION_FAILED"
)

// Tool error codes
const (
	TOOL_NOT_FOUND        ErrorCode = "TOOL_NOT_FOUND"
	TOOL_ALREADY_EXISTS   ErrorCode = "TOOL_ALREADY_EXISTS"
	TOOL_INVALID_INPUT    ErrorCode = "TOOL_INVALID_INPUT"
	TOOL_EXECUTION_FAILED ErrorCode = "TOOL_EXECUTION_FAILED"
)

// Provider error codes
const (
	PROVIDER_CALL_FAILED      ErrorCode = "PROVIDER_CALL_FAILED"
	PROVIDER_INVALID_DECISION ErrorCode = "PROVIDER_INVALID_DECISION"
	PROVIDER_SCRIPT_EXHAUSTED ErrorCode = "PROVIDER_SCRIPT_EXHAUSTED"
)

// Scenario error codes
const (
	SCENARIO_NOT_FOUND      ErrorCode = "SCENARIO_NOT_FOUND"
	SCENARIO_ALREADY_EXISTS ErrorCode = "SCENARIO_ALREADY_EXISTS"
	SCENARIO_INVALID        ErrorCode = "SCENARIO_INVALID"
)

// RelayError represents a structured error with error code, message, and
// optional cause. It supports error wrapping and retryability hints.
type RelayError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *RelayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *RelayError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
func (e *RelayError) Is(target error) bool {
	var relayErr *RelayError
	if errors.As(target, &relayErr) {
		return e.Code == relayErr.Code
	}
	return false
}

// NewError creates a new non-retryable RelayError with the given code and message.
func NewError(code ErrorCode, message string) *RelayError {
	return &RelayError{
		Code:    code,
		Message: message,
	}
}

// NewRetryableError creates a new retryable RelayError with the given code and
// message. Use this for transient errors that may succeed on retry.
func NewRetryableError(code ErrorCode, message string) *RelayError {
	return &RelayError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// WrapError creates a new non-retryable RelayError that wraps an existing error.
func WrapError(code ErrorCode, message string, cause error) *RelayError {
	return &RelayError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
