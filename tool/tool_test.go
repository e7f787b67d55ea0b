package tool

import (
	"testing"

	"github.com/hupe1980/toolmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertions)
var (
	_ Tool = (*CodeTool)(nil)
	_ Tool = (*ConvertTool)(nil)
	_ Tool = (*OCRTool)(nil)
)

func requireValidationCode(t *testing.T, err error, code string) *core.ValidationError {
	t.Helper()
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, code, verr.Code)
	return verr
}

func TestCategoryOf(t *testing.T) {
	tests := map[string]core.Category{
		"pdf":  core.CategoryDocument,
		"PDF":  core.CategoryDocument,
		".csv": core.CategorySpreadsheet,
		"jpeg": core.CategoryImage,
		"mkv":  core.CategoryVideo,
		"flac": core.CategoryAudio,
		"svg":  core.CategoryUnknown,
		"":     core.CategoryUnknown,
	}
	for ext, want := range tests {
		assert.Equalf(t, want, CategoryOf(ext), "extension %q", ext)
	}
}

func TestFormatsFor_IsIdempotent(t *testing.T) {
	for _, name := range []string{"report.pdf", "sheet.XLSX", "clip.mov", "song.wav", "photo.jpg", "notes"} {
		c1, f1 := FormatsFor(name)
		c2, f2 := FormatsFor(name)
		assert.Equal(t, c1, c2)
		assert.Equal(t, f1, f2)

		// callers may mutate the returned slice without affecting later lookups
		if len(f1) > 0 {
			f1[0] = "mutated"
			_, f3 := FormatsFor(name)
			assert.Equal(t, f2, f3)
		}
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "pdf", Extension("report.final.PDF"))
	assert.Equal(t, "", Extension("README"))
	assert.Equal(t, "", Extension("trailing."))
}

func TestConvertTool_Validate(t *testing.T) {
	conv := NewConvertTool()

	t.Run("document to docx", func(t *testing.T) {
		v, err := conv.Validate(core.Input{File: &core.File{Name: "report.pdf"}, TargetFormat: "docx"})
		require.NoError(t, err)
		assert.Equal(t, core.CategoryDocument, v.Category)
		assert.Equal(t, "pdf", v.SourceFormat)
		assert.Equal(t, "docx", v.TargetFormat)
	})

	t.Run("document to mp3 rejected", func(t *testing.T) {
		_, err := conv.Validate(core.Input{File: &core.File{Name: "report.pdf"}, TargetFormat: "mp3"})
		verr := requireValidationCode(t, err, core.CodeUnsupportedFormat)
		assert.Equal(t, "target_format", verr.Field)
	})

	t.Run("no file selected", func(t *testing.T) {
		_, err := conv.Validate(core.Input{TargetFormat: "docx"})
		requireValidationCode(t, err, core.CodeMissingInput)
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, err := conv.Validate(core.Input{File: &core.File{Name: "vector.svg"}, TargetFormat: "png"})
		requireValidationCode(t, err, core.CodeUnsupportedFormat)
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := conv.Validate(core.Input{File: &core.File{Name: "data.csv"}})
		verr := requireValidationCode(t, err, core.CodeMissingInput)
		assert.Contains(t, verr.Message, "xlsx, csv, json, ods")
	})

	t.Run("target from text", func(t *testing.T) {
		v, err := conv.Validate(core.Input{Text: "please convert this into JSON.", File: &core.File{Name: "data.csv"}})
		require.NoError(t, err)
		assert.Equal(t, "json", v.TargetFormat)
	})

	t.Run("input data copied", func(t *testing.T) {
		f := &core.File{Name: "a.txt", Data: []byte("abc")}
		v, err := conv.Validate(core.Input{File: f, TargetFormat: ".HTML"})
		require.NoError(t, err)
		f.Data[0] = 'X'
		assert.Equal(t, "abc", string(v.File.Data))
		assert.Equal(t, "html", v.TargetFormat)
	})
}

func TestOCRTool_Validate(t *testing.T) {
	ocr := NewOCRTool()

	v, err := ocr.Validate(core.Input{File: &core.File{Name: "scan.png"}})
	require.NoError(t, err)
	assert.Equal(t, core.CategoryImage, v.Category)

	_, err = ocr.Validate(core.Input{File: &core.File{Name: "upload.bin", MimeType: "image/heic"}})
	require.NoError(t, err)

	_, err = ocr.Validate(core.Input{File: &core.File{Name: "report.pdf"}})
	requireValidationCode(t, err, core.CodeNotAnImage)

	_, err = ocr.Validate(core.Input{})
	requireValidationCode(t, err, core.CodeMissingInput)
}

func TestCodeTool_Validate(t *testing.T) {
	code := NewCodeTool()

	v, err := code.Validate(core.Input{Text: "  sum two numbers ", Language: "Python"})
	require.NoError(t, err)
	assert.Equal(t, "sum two numbers", v.Prompt)
	assert.Equal(t, "python", v.Language)

	v, err = code.Validate(core.Input{Text: "hello world"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLanguage, v.Language)

	_, err = code.Validate(core.Input{Text: "   ", Language: "python"})
	requireValidationCode(t, err, core.CodeEmptyPrompt)

	_, err = code.Validate(core.Input{Text: "x", Language: "cobol"})
	requireValidationCode(t, err, core.CodeUnsupportedLanguage)
}

func TestLanguageExtension(t *testing.T) {
	assert.Equal(t, "js", LanguageExtension("javascript"))
	assert.Equal(t, "py", LanguageExtension("python"))
	assert.Equal(t, "cpp", LanguageExtension("cpp"))
	assert.Equal(t, "rust", LanguageExtension("Rust"))
}

func TestRegistry_ValidateUnknownTool(t *testing.T) {
	r := DefaultRegistry()
	_, err := r.Validate(core.Input{ToolID: "translate"})
	assert.ErrorIs(t, err, core.ErrUnknownTool)
}

var (
	_ InputTriggers = (*ConvertTool)(nil)
	_ InputTriggers = (*OCRTool)(nil)
)

func TestRegistry_Match(t *testing.T) {
	r := DefaultRegistry()
	img := &core.File{Name: "shot.png"}

	tests := []struct {
		name string
		in   core.Input
		want core.ToolID
		ok   bool
	}{
		{"ocr beats generic file", core.Input{Text: "get the text from image file", File: img}, core.ToolOCR, true},
		{"convert with file", core.Input{Text: "convert to jpg", File: img}, core.ToolConvert, true},
		{"code needs language", core.Input{Text: "write a program"}, "", false},
		{"code with language", core.Input{Text: "write a program", Language: "java"}, core.ToolCode, true},
		{"convert without file", core.Input{Text: "convert my file"}, "", false},
		{"no trigger", core.Input{Text: "hello there", File: img}, "", false},
		{"question about image file", core.Input{Text: "what text is in this image file?", File: img}, core.ToolOCR, true},
		{"image file with target", core.Input{Text: "turn this file into webp", File: img}, core.ToolConvert, true},
		{"convert image without target", core.Input{Text: "convert this image file", File: img}, core.ToolConvert, true},
		{"text file stays with convert", core.Input{Text: "this text file please", File: &core.File{Name: "notes.txt"}}, core.ToolConvert, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Match(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_ToolsOrderAndReplace(t *testing.T) {
	r := NewRegistry(NewCodeTool(), NewOCRTool())
	r.Register(NewCodeTool())
	tools := r.Tools()
	require.Len(t, tools, 2)
	assert.Equal(t, core.ToolCode, tools[0].ID())
	assert.Equal(t, core.ToolOCR, tools[1].ID())
}
