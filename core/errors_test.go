package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotBusyError_IsSentinel(t *testing.T) {
	err := fmt.Errorf("dispatch: %w", &SlotBusyError{Tool: ToolConvert, JobID: "j1"})
	assert.ErrorIs(t, err, ErrSlotBusy)

	var busy *SlotBusyError
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, "j1", busy.JobID)
}

func TestNewBackendError_Classification(t *testing.T) {
	boom := errors.New("boom")

	assert.Equal(t, KindGeneration, NewBackendError(ToolCode, boom).Kind)
	assert.Equal(t, KindConversion, NewBackendError(ToolConvert, boom).Kind)
	assert.Equal(t, KindExtraction, NewBackendError(ToolOCR, boom).Kind)

	unsupported := fmt.Errorf("wrapped: %w", ErrUnsupportedConversion)
	assert.Equal(t, KindUnsupportedConversion, NewBackendError(ToolConvert, unsupported).Kind)

	// already classified errors pass through unchanged
	orig := UnsupportedConversionError("pdf", "docx")
	be := NewBackendError(ToolConvert, orig)
	assert.Equal(t, KindUnsupportedConversion, be.Kind)
	assert.ErrorIs(t, be, ErrUnsupportedConversion)
}

func TestBackendError_Unwrap(t *testing.T) {
	boom := errors.New("engine offline")
	err := GenerationError(boom)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "generation error in code")
}

func TestValidationError_Message(t *testing.T) {
	err := NewValidationError(ToolConvert, "target_format", CodeUnsupportedFormat, "mp3 is not accepted for document files")
	assert.Equal(t, "convert: invalid target_format [UNSUPPORTED_FORMAT]: mp3 is not accepted for document files", err.Error())
}
