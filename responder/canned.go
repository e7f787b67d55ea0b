// Package responder provides core.Responder implementations for free text
// that targets no tool: a seeded canned responder, a language model backed
// responder and a router choosing between them by the session's model.
package responder

import (
	"context"
	"math/rand"
	"strings"
	"sync"

	"github.com/hupe1980/toolmesh/core"
)

// Hint texts describing each tool, returned when free text mentions a tool
// without carrying the material needed to start it.
const (
	ConvertHint = "I can help you convert files between various formats! I support:\n\n" +
		"- Documents: PDF, DOCX, TXT, HTML, RTF\n" +
		"- Spreadsheets: XLSX, CSV, JSON, ODS\n" +
		"- Images: PNG, JPG, WEBP, BMP, GIF\n" +
		"- Audio/Video: MP4, AVI, MOV, MKV, MP3, WAV, FLAC, AAC\n\n" +
		"Attach a file with /convert <file> <format> and I'll convert it."
	OCRHint = "OCR ready! I can extract text from screenshots and photos, scanned documents, " +
		"handwritten notes and any image with text.\n\nAttach an image with /ocr <file>."
	CodeHint = "Code generation activated! Supported languages: JavaScript, Python, React, HTML, " +
		"CSS, Node.js, C++ and Java.\n\nUse /code <language> <what to build>."
)

// Replies are the generic answers of the canned responder.
var Replies = []string{
	"I understand you're asking about that. Let me provide you with a comprehensive analysis and solution.",
	"That's an excellent question! Here's how I would approach this problem from multiple perspectives.",
	"I can help you with that. Here's what I recommend for your specific use case.",
	"Great point! Let me break this down step by step and provide you with actionable insights.",
}

var hints = []struct {
	keywords []string
	text     string
}{
	{[]string{"convert", "file"}, ConvertHint},
	{[]string{"ocr", "text from image"}, OCRHint},
	{[]string{"code", "program"}, CodeHint},
}

// CannedOptions configure a Canned responder.
type CannedOptions struct {
	// Seed makes reply selection reproducible.
	Seed int64
}

// Canned answers tool keywords with the matching hint and everything else with
// a pseudo randomly chosen reply.
type Canned struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewCanned creates a canned responder.
func NewCanned(optFns ...func(o *CannedOptions)) *Canned {
	opts := CannedOptions{Seed: 1}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Canned{rnd: rand.New(rand.NewSource(opts.Seed))}
}

// Hint returns the tool hint for text, if any keyword matches.
func Hint(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, h := range hints {
		for _, kw := range h.keywords {
			if strings.Contains(lower, kw) {
				return h.text, true
			}
		}
	}
	return "", false
}

// Respond implements core.Responder.
func (c *Canned) Respond(_ context.Context, conv core.ConversationContext) (string, error) {
	if hint, ok := Hint(conv.LastUserMessage()); ok {
		return hint, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Replies[c.rnd.Intn(len(Replies))], nil
}
