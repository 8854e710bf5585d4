package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// IndexMissing indicates the SCIP index for a project was not found
	IndexMissing ErrorCode = "INDEX_MISSING"
	// IndexCorrupt indicates the SCIP index could not be decoded
	IndexCorrupt ErrorCode = "INDEX_CORRUPT"
	// ProjectNotFound indicates the project is not part of the workspace
	ProjectNotFound ErrorCode = "PROJECT_NOT_FOUND"
	// DocumentNotFound indicates the document could not be read
	DocumentNotFound ErrorCode = "DOCUMENT_NOT_FOUND"
	// WorkspaceInvalid indicates the workspace manifest failed validation
	WorkspaceInvalid ErrorCode = "WORKSPACE_INVALID"
	// RedirectCycle indicates a circular redirect chain
	RedirectCycle ErrorCode = "REDIRECT_CYCLE"
	// RedirectChainTooDeep indicates a redirect chain exceeds the max depth
	RedirectChainTooDeep ErrorCode = "REDIRECT_CHAIN_TOO_DEEP"
	// InvalidPosition indicates a caret position that cannot be mapped
	InvalidPosition ErrorCode = "INVALID_POSITION"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// CallrootError represents an error with code, message, and suggestions
type CallrootError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a CallrootError with the default fixes for its code
func New(code ErrorCode, message string, cause error) *CallrootError {
	return &CallrootError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf is New with a formatted message and no cause
func Newf(code ErrorCode, format string, args ...interface{}) *CallrootError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *CallrootError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CallrootError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *CallrootError) WithDetails(details interface{}) *CallrootError {
	e.Details = details
	return e
}

// Is reports whether any error in err's chain is a CallrootError with the given code.
func Is(err error, code ErrorCode) bool {
	var ce *CallrootError
	if stderrors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// CodeOf returns the code of the first CallrootError in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var ce *CallrootError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return InternalError
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	IndexMissing: {
		{
			Type:        RunCommand,
			Command:     "callroot workspace list",
			Safe:        true,
			Description: "Check which index each project points at",
		},
	},
	IndexCorrupt: {
		{
			Type:        RunCommand,
			Command:     "scip print --index=${index_path}",
			Safe:        true,
			Description: "Verify the SCIP index is valid, then regenerate it",
		},
	},
	ProjectNotFound: {
		{
			Type:        RunCommand,
			Command:     "callroot workspace add <name> <root>",
			Safe:        true,
			Description: "Register the project in the workspace manifest",
		},
	},
	WorkspaceInvalid: {
		{
			Type:        RunCommand,
			Command:     "callroot workspace init",
			Safe:        true,
			Description: "Create a fresh workspace manifest",
		},
	},
	RedirectCycle: {
		{
			Type:        RunCommand,
			Command:     "callroot redirect list",
			Safe:        true,
			Description: "Inspect stored redirects for a loop",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
