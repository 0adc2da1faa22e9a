package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InputUnreadable indicates an input log could not be opened or read
	InputUnreadable ErrorCode = "INPUT_UNREADABLE"
	// InputInvalid indicates an input log is not valid SARIF JSON
	InputInvalid ErrorCode = "INPUT_INVALID"
	// UnsupportedVersion indicates a log that is not SARIF 2.1.0
	UnsupportedVersion ErrorCode = "UNSUPPORTED_VERSION"
	// BaselineNotFound indicates no stored baseline has the requested name
	BaselineNotFound ErrorCode = "BASELINE_NOT_FOUND"
	// ConfigInvalid indicates the configuration or suppressions file is invalid
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// OutputFailed indicates the result could not be written
	OutputFailed ErrorCode = "OUTPUT_FAILED"
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

// SortError represents a sarifsort error with code, message, and suggestions
type SortError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a SortError with the suggested fixes registered for code.
func New(code ErrorCode, message string, cause error) *SortError {
	return &SortError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *SortError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *SortError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *SortError) WithDetails(details interface{}) *SortError {
	e.Details = details
	return e
}

// Is matches another SortError with the same code, so callers can test
// errors.Is(err, &SortError{Code: BaselineNotFound}).
func (e *SortError) Is(target error) bool {
	t, ok := target.(*SortError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	UnsupportedVersion: {
		{
			Type:        OpenDocs,
			URL:         "https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html",
			Description: "Convert the log to SARIF 2.1.0",
		},
	},
	BaselineNotFound: {
		{
			Type:        RunCommand,
			Command:     "sarifsort baseline list",
			Safe:        true,
			Description: "List stored baselines",
		},
		{
			Type:        RunCommand,
			Command:     "sarifsort baseline save ${log} --name ${name}",
			Description: "Store a baseline under this name",
		},
	},
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "sarifsort config show",
			Safe:        true,
			Description: "Show the effective configuration",
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

// CodeOf returns the code of the first SortError in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	for err != nil {
		if se, ok := err.(*SortError); ok {
			return se.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return InternalError
}
