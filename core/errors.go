package core

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotBusy is returned when a tool already has a queued or running job
	// in the session.
	ErrSlotBusy = errors.New("tool slot busy")
	// ErrTimedOut marks a job whose deadline expired before the backend
	// finished.
	ErrTimedOut = errors.New("job timed out")
	// ErrCancelled marks a job cancelled by the user.
	ErrCancelled = errors.New("job cancelled")
	// ErrInvalidTransition is returned when a status change is not allowed by
	// the job state machine, including any change of a terminal job.
	ErrInvalidTransition = errors.New("invalid job transition")
	// ErrJobNotFound is returned for unknown job ids.
	ErrJobNotFound = errors.New("job not found")
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionClosed is returned once a session has ended or its log failed.
	ErrSessionClosed = errors.New("session closed")
	// ErrLogFull is returned by a conversation log that reached its capacity.
	// It is fatal to the owning session.
	ErrLogFull = errors.New("conversation log full")
	// ErrUnknownTool is returned when an input selects a tool that is not
	// registered.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrUnsupportedConversion is returned by converters that cannot produce
	// the requested target format.
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	// ErrUnknownModel is returned when a session selects a responder model
	// outside the supported set.
	ErrUnknownModel = errors.New("unknown model")
)

// Validation error codes.
const (
	CodeMissingInput        = "MISSING_INPUT"
	CodeEmptyPrompt         = "EMPTY_PROMPT"
	CodeUnsupportedFormat   = "UNSUPPORTED_FORMAT"
	CodeUnsupportedLanguage = "UNSUPPORTED_LANGUAGE"
	CodeNotAnImage          = "NOT_AN_IMAGE"
)

// ValidationError reports bad or missing tool input. It is resolved
// synchronously by the dispatcher and never creates a job.
type ValidationError struct {
	Tool    ToolID `json:"tool"`
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s [%s]: %s", e.Tool, e.Field, e.Code, e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(tool ToolID, field, code, message string) *ValidationError {
	return &ValidationError{Tool: tool, Field: field, Code: code, Message: message}
}

// SlotBusyError reports the job currently holding a tool slot.
type SlotBusyError struct {
	Tool  ToolID `json:"tool"`
	JobID string `json:"job_id"`
}

func (e *SlotBusyError) Error() string {
	return fmt.Sprintf("%s is already working on job %s; wait for it to finish or cancel it", e.Tool, e.JobID)
}

// Unwrap allows errors.Is(err, ErrSlotBusy).
func (e *SlotBusyError) Unwrap() error { return ErrSlotBusy }

// BackendKind classifies a backend failure.
type BackendKind string

const (
	KindGeneration            BackendKind = "generation"
	KindConversion            BackendKind = "conversion"
	KindUnsupportedConversion BackendKind = "unsupported_conversion"
	KindExtraction            BackendKind = "extraction"
)

// BackendError wraps a failure reported by a tool backend. It terminates the
// job in StatusFailed.
type BackendError struct {
	Tool ToolID      `json:"tool"`
	Kind BackendKind `json:"kind"`
	Err  error       `json:"-"`
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s error in %s: %v", e.Kind, e.Tool, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// NewBackendError wraps err reported by the backend of tool. Errors that are
// already a *BackendError are returned unchanged.
func NewBackendError(tool ToolID, err error) *BackendError {
	var be *BackendError
	if errors.As(err, &be) {
		return be
	}
	return &BackendError{Tool: tool, Kind: kindFor(tool, err), Err: err}
}

func kindFor(tool ToolID, err error) BackendKind {
	switch tool {
	case ToolCode:
		return KindGeneration
	case ToolConvert:
		if errors.Is(err, ErrUnsupportedConversion) {
			return KindUnsupportedConversion
		}
		return KindConversion
	default:
		return KindExtraction
	}
}

// GenerationError wraps a code generation failure.
func GenerationError(err error) error {
	return &BackendError{Tool: ToolCode, Kind: KindGeneration, Err: err}
}

// ConversionError wraps a file conversion failure.
func ConversionError(err error) error {
	return &BackendError{Tool: ToolConvert, Kind: KindConversion, Err: err}
}

// UnsupportedConversionError reports a from/to pair the converter cannot handle.
func UnsupportedConversionError(from, to string) error {
	return &BackendError{
		Tool: ToolConvert,
		Kind: KindUnsupportedConversion,
		Err:  fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, from, to),
	}
}

// ExtractionError wraps a text extraction failure.
func ExtractionError(err error) error {
	return &BackendError{Tool: ToolOCR, Kind: KindExtraction, Err: err}
}
