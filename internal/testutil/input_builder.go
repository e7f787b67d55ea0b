package testutil

import (
	"github.com/hupe1980/toolmesh/core"
)

// InputBuilder helps construct dispatcher input with fluent chaining.
// Example:
//
//	in := NewInputBuilder().Tool(core.ToolConvert).File("report.pdf", []byte("%PDF")).Target("docx").Build()
type InputBuilder struct {
	in core.Input
}

// NewInputBuilder creates an empty builder.
func NewInputBuilder() *InputBuilder { return &InputBuilder{} }

// Text sets the free text (chainable).
func (b *InputBuilder) Text(t string) *InputBuilder { b.in.Text = t; return b }

// Tool sets the explicit tool selector (chainable).
func (b *InputBuilder) Tool(id core.ToolID) *InputBuilder { b.in.ToolID = id; return b }

// Language sets the code language (chainable).
func (b *InputBuilder) Language(l string) *InputBuilder { b.in.Language = l; return b }

// File attaches a file; the mime type is left empty (chainable).
func (b *InputBuilder) File(name string, data []byte) *InputBuilder {
	b.in.File = &core.File{Name: name, Data: data}
	return b
}

// Image attaches a small PNG file (chainable).
func (b *InputBuilder) Image(name string) *InputBuilder {
	b.in.File = &core.File{Name: name, MimeType: "image/png", Data: PNG()}
	return b
}

// Target sets the conversion target format (chainable).
func (b *InputBuilder) Target(f string) *InputBuilder { b.in.TargetFormat = f; return b }

// Build returns the input.
func (b *InputBuilder) Build() core.Input { return b.in }

// CodeInput selects the code tool.
func CodeInput(language, prompt string) core.Input {
	return NewInputBuilder().Tool(core.ToolCode).Language(language).Text(prompt).Build()
}

// ConvertInput selects the convert tool for a file.
func ConvertInput(name string, data []byte, target string) core.Input {
	return NewInputBuilder().Tool(core.ToolConvert).File(name, data).Target(target).Build()
}

// OCRInput selects the OCR tool for an image.
func OCRInput(name string) core.Input {
	return NewInputBuilder().Tool(core.ToolOCR).Image(name).Build()
}

// PNG returns the 8 byte PNG signature, enough for extractors that only
// check for non-empty input.
func PNG() []byte { return []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'} }
