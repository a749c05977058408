package domain

import (
	"errors"
	"fmt"
)

// Error codes carried by DomainError
const (
	ErrCodeToolNotFound           = "TOOL_NOT_FOUND"
	ErrCodeNoPathsProvided        = "NO_PATHS_PROVIDED"
	ErrCodeStagedUnstagedConflict = "STAGED_UNSTAGED_CONFLICT"
	ErrCodeUnparsableOutput       = "UNPARSABLE_OUTPUT"
	ErrCodeToolReportedFindings   = "TOOL_REPORTED_FINDINGS"
	ErrCodeToolExecutionFailed    = "TOOL_EXECUTION_FAILED"
	ErrCodeConfigError            = "CONFIG_ERROR"
	ErrCodeConfigNotFound         = "CONFIG_NOT_FOUND"
	ErrCodeVCSError               = "VCS_ERROR"
	ErrCodeInvalidInput           = "INVALID_INPUT"
	ErrCodeOutputError            = "OUTPUT_ERROR"
)

// DomainError represents a terminal failure of a hook command
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) error {
	return DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewToolNotFoundError reports a tool executable that is missing or not executable.
// The path is kept verbatim so the user sees exactly what was looked up.
func NewToolNotFoundError(tool, path string, cause error) error {
	return NewDomainError(ErrCodeToolNotFound, fmt.Sprintf("Could not locate %s: %s", tool, path), cause)
}

// NewNoPathsProvidedError creates an error for an empty explicit path list
func NewNoPathsProvidedError() error {
	return NewDomainError(ErrCodeNoPathsProvided, "No paths were provided.", nil)
}

// NewStagedUnstagedConflictError creates an error naming the conflicting files
func NewStagedUnstagedConflictError(files []string) error {
	return NewDomainError(ErrCodeStagedUnstagedConflict,
		fmt.Sprintf("%d staged file(s) have unstaged changes", len(files)), nil)
}

// NewUnparsableOutputError creates an error for tool output that could not be decoded
func NewUnparsableOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeUnparsableOutput, message, cause)
}

// NewToolReportedFindingsError creates an error for a tool run that produced diagnostics
func NewToolReportedFindingsError(message string) error {
	return NewDomainError(ErrCodeToolReportedFindings, message, nil)
}

// NewToolExecutionError creates an error for a tool that could not be run
func NewToolExecutionError(message string, cause error) error {
	return NewDomainError(ErrCodeToolExecutionFailed, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

// NewConfigNotFoundError creates an error for a required tool configuration that is absent
func NewConfigNotFoundError(message string) error {
	return NewDomainError(ErrCodeConfigNotFound, message, nil)
}

// NewVCSError creates a version control error
func NewVCSError(message string, cause error) error {
	return NewDomainError(ErrCodeVCSError, message, cause)
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

// NewOutputError creates an output error
func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

// ErrorCode extracts the DomainError code from err, or "" when err carries none
func ErrorCode(err error) string {
	var de DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// HasCode reports whether err is a DomainError with the given code
func HasCode(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}
