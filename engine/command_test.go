package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/toolmesh/core"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		want Command
		ok   bool
	}{
		{"/code python sort a list", Command{Tool: core.ToolCode, Language: "python", Prompt: "sort a list"}, true},
		{"/code sort a list", Command{Tool: core.ToolCode, Prompt: "sort a list"}, true},
		{"  /CODE Java hello", Command{Tool: core.ToolCode, Language: "java", Prompt: "hello"}, true},
		{"/convert report.pdf docx", Command{Tool: core.ToolConvert, FileName: "report.pdf", TargetFormat: "docx"}, true},
		{"/convert report.pdf to .DOCX", Command{Tool: core.ToolConvert, FileName: "report.pdf", TargetFormat: "docx"}, true},
		{"/convert", Command{Tool: core.ToolConvert}, true},
		{"/ocr scan.png", Command{Tool: core.ToolOCR, FileName: "scan.png"}, true},
		{"/cancel OCR", Command{Cancel: true, Tool: core.ToolOCR}, true},
		{"/paint a cat", Command{}, false},
		{"convert report.pdf", Command{}, false},
		{"", Command{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseCommand(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandApply(t *testing.T) {
	cmd, _ := ParseCommand("/convert notes.txt html")

	in := cmd.apply(core.Input{Text: "/convert notes.txt html"})
	assert.Equal(t, core.ToolConvert, in.ToolID)
	assert.Equal(t, "html", in.TargetFormat)
	assert.Equal(t, &core.File{Name: "notes.txt"}, in.File)

	attached := &core.File{Name: "other.txt", Data: []byte("x")}
	in = cmd.apply(core.Input{File: attached})
	assert.Same(t, attached, in.File)

	cmd, _ = ParseCommand("/code cpp fizzbuzz")
	in = cmd.apply(core.Input{Text: "/code cpp fizzbuzz"})
	assert.Equal(t, "fizzbuzz", in.Text)
	assert.Equal(t, "cpp", in.Language)
}

func TestDescribeInput(t *testing.T) {
	assert.Equal(t, "hello", describeInput(core.Input{Text: "hello"}))
	assert.Equal(t, "[convert] a.pdf to docx", describeInput(core.Input{
		ToolID:       core.ToolConvert,
		File:         &core.File{Name: "a.pdf"},
		TargetFormat: "docx",
	}))
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "code.py", artifactName(core.ValidatedInput{Tool: core.ToolCode, Language: "python"}))
	assert.Equal(t, "report.docx", artifactName(core.ValidatedInput{
		Tool:         core.ToolConvert,
		File:         core.File{Name: "report.pdf"},
		TargetFormat: "docx",
	}))
	assert.Equal(t, "scan.txt", artifactName(core.ValidatedInput{
		Tool:         core.ToolOCR,
		File:         core.File{Name: "scan.png"},
		TargetFormat: "txt",
	}))
}
