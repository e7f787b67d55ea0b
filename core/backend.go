package core

import "context"

// ConversationContext is the read-only view of a session handed to the
// default responder.
type ConversationContext struct {
	SessionID string
	// Model is the responder model selected for the session.
	Model    string
	Messages []Message
}

// LastUserMessage returns the content of the most recent user message.
func (c ConversationContext) LastUserMessage() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return c.Messages[i].Content
		}
	}
	return ""
}

// Responder produces the assistant reply for input that targets no tool. It
// must not have side effects on jobs.
type Responder interface {
	Respond(ctx context.Context, conv ConversationContext) (string, error)
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(ctx context.Context, conv ConversationContext) (string, error)

// Respond calls f.
func (f ResponderFunc) Respond(ctx context.Context, conv ConversationContext) (string, error) {
	return f(ctx, conv)
}

// GeneratedCode is the output of a CodeGenerator.
type GeneratedCode struct {
	Source string
}

// CodeGenerator turns a prompt into source code for a language. Failures
// should be reported with GenerationError.
//
// Like every tool backend it receives a context carrying the cancellation
// signal and the job deadline, and is expected (not guaranteed) to return
// promptly once the context is done.
type CodeGenerator interface {
	Generate(ctx context.Context, prompt, language string) (GeneratedCode, error)
}

// CodeGeneratorFunc adapts a function to the CodeGenerator interface.
type CodeGeneratorFunc func(ctx context.Context, prompt, language string) (GeneratedCode, error)

// Generate calls f.
func (f CodeGeneratorFunc) Generate(ctx context.Context, prompt, language string) (GeneratedCode, error) {
	return f(ctx, prompt, language)
}

// Converter converts file bytes between formats. Failures should be reported
// with UnsupportedConversionError or ConversionError.
type Converter interface {
	Convert(ctx context.Context, data []byte, from, to string) ([]byte, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(ctx context.Context, data []byte, from, to string) ([]byte, error)

// Convert calls f.
func (f ConverterFunc) Convert(ctx context.Context, data []byte, from, to string) ([]byte, error) {
	return f(ctx, data, from, to)
}

// Extraction is the output of a TextExtractor. Confidence is in [0, 1].
type Extraction struct {
	Text       string
	Confidence float64
}

// TextExtractor recognises text in an image. Failures should be reported
// with ExtractionError.
type TextExtractor interface {
	Extract(ctx context.Context, image []byte) (Extraction, error)
}

// TextExtractorFunc adapts a function to the TextExtractor interface.
type TextExtractorFunc func(ctx context.Context, image []byte) (Extraction, error)

// Extract calls f.
func (f TextExtractorFunc) Extract(ctx context.Context, image []byte) (Extraction, error) {
	return f(ctx, image)
}
