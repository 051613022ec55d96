package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// BlameUnavailable indicates blame data could not be produced for a file
	BlameUnavailable ErrorCode = "BLAME_UNAVAILABLE"
	// RevisionFetchFailed indicates historical file content could not be read
	RevisionFetchFailed ErrorCode = "REVISION_FETCH_FAILED"
	// SymbolsUnavailable indicates no symbol provider could serve the file
	SymbolsUnavailable ErrorCode = "SYMBOLS_UNAVAILABLE"
	// NotARepository indicates the target path is not inside a git repository
	NotARepository ErrorCode = "NOT_A_REPOSITORY"
	// Timeout indicates an external command timed out
	Timeout ErrorCode = "TIMEOUT"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// CacheError indicates a snapshot cache read or write failed
	CacheError ErrorCode = "CACHE_ERROR"
	// Unauthorized indicates a missing or invalid API token
	Unauthorized ErrorCode = "UNAUTHORIZED"
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

// LensError represents a Lens error with a stable code, message, and suggestions
type LensError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new LensError
func New(code ErrorCode, message string, cause error) *LensError {
	return &LensError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *LensError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *LensError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *LensError) WithDetails(details interface{}) *LensError {
	e.Details = details
	return e
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	NotARepository: {
		{
			Type:        RunCommand,
			Command:     "git status",
			Safe:        true,
			Description: "Verify you're in a git repository",
		},
	},
	BlameUnavailable: {
		{
			Type:        RunCommand,
			Command:     "git ls-files --error-unmatch <file>",
			Safe:        true,
			Description: "Check whether the file is tracked",
		},
	},
	Timeout: {
		{
			Type:        RunCommand,
			Command:     "lens config show",
			Safe:        true,
			Description: "Inspect the configured git timeout",
		},
	},
	Unauthorized: {
		{
			Type:        RunCommand,
			Command:     "lens token generate",
			Safe:        true,
			Description: "Generate a new API token",
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
