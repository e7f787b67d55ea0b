package tool

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/toolmesh/core"
)

// ConvertTool validates file conversion requests. The input category is
// derived from the declared file extension; the target format must be one of
// the formats accepted for that category.
type ConvertTool struct{}

// NewConvertTool creates the file conversion tool.
func NewConvertTool() *ConvertTool { return &ConvertTool{} }

func (*ConvertTool) ID() core.ToolID { return core.ToolConvert }

func (*ConvertTool) Description() string {
	return "Convert documents, spreadsheets, images, video and audio between formats"
}

func (*ConvertTool) Triggers() []string { return []string{"convert", "file"} }

// TriggersFor drops the generic "file" trigger for an image attachment when no
// target format is named, so questions about an image go to text extraction.
func (c *ConvertTool) TriggersFor(in core.Input) []string {
	if in.File != nil && isImage(in.File) && !namesTarget(in) {
		return []string{"convert"}
	}
	return c.Triggers()
}

func namesTarget(in core.Input) bool {
	if in.TargetFormat != "" {
		return true
	}
	return targetFromText(in.Text, AcceptedOutputs(core.CategoryImage)) != ""
}

func (*ConvertTool) Ready(in core.Input) bool { return in.File != nil }

func (*ConvertTool) AcceptedFormats() map[core.Category][]string { return conversionFormats() }

// Validate checks that a file is selected, that its extension maps to a
// known category and that the requested target is offered for it. When
// TargetFormat is empty the target is taken from phrases like "to docx" in
// the input text.
func (*ConvertTool) Validate(in core.Input) (core.ValidatedInput, error) {
	if in.File == nil || strings.TrimSpace(in.File.Name) == "" {
		return core.ValidatedInput{}, core.NewValidationError(core.ToolConvert, "file", core.CodeMissingInput, "no file selected")
	}
	source := Extension(in.File.Name)
	category := CategoryOf(source)
	if category == core.CategoryUnknown {
		return core.ValidatedInput{}, core.NewValidationError(core.ToolConvert, "file", core.CodeUnsupportedFormat,
			fmt.Sprintf("%q has an unsupported file type", in.File.Name))
	}
	accepted := AcceptedOutputs(category)

	target := NormalizeFormat(in.TargetFormat)
	if target == "" {
		target = targetFromText(in.Text, accepted)
	}
	if target == "" {
		return core.ValidatedInput{}, core.NewValidationError(core.ToolConvert, "target_format", core.CodeMissingInput,
			fmt.Sprintf("choose a target format for %s files: %s", category, strings.Join(accepted, ", ")))
	}
	if !slices.Contains(accepted, target) {
		return core.ValidatedInput{}, core.NewValidationError(core.ToolConvert, "target_format", core.CodeUnsupportedFormat,
			fmt.Sprintf("%s is not accepted for %s files; choose one of %s", target, category, strings.Join(accepted, ", ")))
	}

	return core.ValidatedInput{
		Tool:         core.ToolConvert,
		File:         in.File.Clone(),
		Category:     category,
		SourceFormat: source,
		TargetFormat: target,
	}, nil
}

// targetFromText finds "to <format>", "into <format>" or "as <format>" in
// text where format is one of accepted.
func targetFromText(text string, accepted []string) string {
	words := strings.Fields(strings.ToLower(text))
	for i := 0; i < len(words)-1; i++ {
		switch words[i] {
		case "to", "into", "as":
		default:
			continue
		}
		candidate := NormalizeFormat(strings.Trim(words[i+1], ".,;:!?\"'"))
		if slices.Contains(accepted, candidate) {
			return candidate
		}
	}
	return ""
}
