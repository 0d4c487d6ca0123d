package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a DomainError
type ErrorCode string

// Domain error codes
const (
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeFileNotFound      ErrorCode = "FILE_NOT_FOUND"
	ErrCodeFunctionNotFound  ErrorCode = "FUNCTION_NOT_FOUND"
	ErrCodeParseError        ErrorCode = "PARSE_ERROR"
	ErrCodeAnalysisError     ErrorCode = "ANALYSIS_ERROR"
	ErrCodeConfigError       ErrorCode = "CONFIG_ERROR"
	ErrCodeOutputError       ErrorCode = "OUTPUT_ERROR"
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
)

// DomainError represents errors in the domain layer
type DomainError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e DomainError) Unwrap() error {
	return e.Cause
}

// HasCode reports whether any DomainError in err's chain carries code
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var de DomainError
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Cause
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string, cause error) error {
	return DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string, cause error) error {
	return NewDomainError(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path), cause)
}

// NewFunctionNotFoundError is returned when a named function has no body in a file
func NewFunctionNotFoundError(name, file string) error {
	return NewDomainError(ErrCodeFunctionNotFound, fmt.Sprintf("function %q not found in %s", name, file), nil)
}

// NewParseError creates a parse error
func NewParseError(file string, cause error) error {
	return NewDomainError(ErrCodeParseError, fmt.Sprintf("failed to parse file: %s", file), cause)
}

// NewAnalysisError creates an analysis error
func NewAnalysisError(message string, cause error) error {
	return NewDomainError(ErrCodeAnalysisError, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

// NewOutputError creates an output error
func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

// NewUnsupportedFormatError creates an unsupported format error
func NewUnsupportedFormatError(format string) error {
	return NewDomainError(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported format: %s", format), nil)
}
