package core

import "slices"

// ToolID identifies one of the pluggable tools. The set is closed.
type ToolID string

const (
	// ToolCode generates source code from a prompt.
	ToolCode ToolID = "code"
	// ToolConvert converts a file between formats of the same category.
	ToolConvert ToolID = "convert"
	// ToolOCR extracts text from an image.
	ToolOCR ToolID = "ocr"
)

// ToolIDs lists every known tool in menu order.
var ToolIDs = []ToolID{ToolConvert, ToolOCR, ToolCode}

// Valid reports whether t names a known tool.
func (t ToolID) Valid() bool { return slices.Contains(ToolIDs, t) }

func (t ToolID) String() string { return string(t) }

// Category groups file formats that can be converted into each other.
type Category string

const (
	CategoryDocument    Category = "document"
	CategorySpreadsheet Category = "spreadsheet"
	CategoryImage       Category = "image"
	CategoryVideo       Category = "video"
	CategoryAudio       Category = "audio"
	CategoryUnknown     Category = "unknown"
)

// File is a user supplied attachment.
type File struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type,omitempty"`
	Data     []byte `json:"-"`
}

// Clone returns a copy that does not share the data buffer.
func (f File) Clone() File {
	f.Data = slices.Clone(f.Data)
	return f
}

// Input is the raw user input handed to the dispatcher. ToolID acts as an
// explicit selector (a choice from the tool menu); when empty the dispatcher
// classifies Text.
type Input struct {
	Text         string
	ToolID       ToolID
	Language     string
	File         *File
	TargetFormat string
}

// ValidatedInput is the tool specific, validated form of an Input. Backends
// only ever receive copies of it.
type ValidatedInput struct {
	Tool         ToolID   `json:"tool"`
	Prompt       string   `json:"prompt,omitempty"`
	Language     string   `json:"language,omitempty"`
	File         File     `json:"file"`
	Category     Category `json:"category,omitempty"`
	SourceFormat string   `json:"source_format,omitempty"`
	TargetFormat string   `json:"target_format,omitempty"`
}

// Clone returns a deep copy of v.
func (v ValidatedInput) Clone() ValidatedInput {
	v.File = v.File.Clone()
	return v
}

// Artifact is the payload produced by a successful job.
type Artifact struct {
	Name       string  `json:"name"`
	Format     string  `json:"format,omitempty"`
	Text       string  `json:"text,omitempty"`
	Data       []byte  `json:"-"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Clone returns a deep copy of a (nil safe).
func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Data = slices.Clone(a.Data)
	return &cp
}
