package tool

import (
	"strings"

	"github.com/hupe1980/toolmesh/core"
)

// OCRTool validates text extraction requests. Only image attachments are
// accepted.
type OCRTool struct{}

// NewOCRTool creates the text extraction tool.
func NewOCRTool() *OCRTool { return &OCRTool{} }

func (*OCRTool) ID() core.ToolID { return core.ToolOCR }

func (*OCRTool) Description() string {
	return "Extract text from screenshots, photos and scans"
}

func (*OCRTool) Triggers() []string {
	return []string{"ocr", "text from image", "extract text", "scan"}
}

// TriggersFor adds the plain words "text" and "image" when an image is
// attached.
func (o *OCRTool) TriggersFor(in core.Input) []string {
	if in.File != nil && isImage(in.File) {
		return append(o.Triggers(), "text", "image")
	}
	return o.Triggers()
}

func (*OCRTool) Ready(in core.Input) bool { return in.File != nil }

func (*OCRTool) AcceptedFormats() map[core.Category][]string {
	return map[core.Category][]string{core.CategoryImage: {"txt"}}
}

func (*OCRTool) Validate(in core.Input) (core.ValidatedInput, error) {
	if in.File == nil || strings.TrimSpace(in.File.Name) == "" {
		return core.ValidatedInput{}, core.NewValidationError(core.ToolOCR, "file", core.CodeMissingInput, "no image selected")
	}
	if !isImage(in.File) {
		return core.ValidatedInput{}, core.NewValidationError(core.ToolOCR, "file", core.CodeNotAnImage, "please select a valid image file")
	}
	return core.ValidatedInput{
		Tool:         core.ToolOCR,
		File:         in.File.Clone(),
		Category:     core.CategoryImage,
		SourceFormat: Extension(in.File.Name),
		TargetFormat: "txt",
	}, nil
}
