package tool

import (
	"slices"
	"strings"

	"github.com/hupe1980/toolmesh/core"
)

// conversionTable lists, per category, the formats that are recognised as
// input and offered as output. Both sets are identical.
var conversionTable = []struct {
	category core.Category
	formats  []string
}{
	{core.CategoryDocument, []string{"pdf", "docx", "txt", "html", "rtf"}},
	{core.CategorySpreadsheet, []string{"xlsx", "csv", "json", "ods"}},
	{core.CategoryImage, []string{"png", "jpg", "jpeg", "webp", "bmp", "gif"}},
	{core.CategoryVideo, []string{"mp4", "avi", "mov", "mkv"}},
	{core.CategoryAudio, []string{"mp3", "wav", "flac", "aac"}},
}

var extensionIndex = func() map[string]core.Category {
	idx := map[string]core.Category{}
	for _, row := range conversionTable {
		for _, f := range row.formats {
			idx[f] = row.category
		}
	}
	return idx
}()

// Extension returns the lowercased text after the last dot of a file name,
// or "" when there is none.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// NormalizeFormat lowercases f and strips a leading dot.
func NormalizeFormat(f string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(f)), ".")
}

// CategoryOf maps a file extension to its category. Unmapped extensions
// yield core.CategoryUnknown.
func CategoryOf(ext string) core.Category {
	if c, ok := extensionIndex[NormalizeFormat(ext)]; ok {
		return c
	}
	return core.CategoryUnknown
}

// AcceptedOutputs returns the output formats offered for a category. The
// returned slice is a fresh copy; unknown categories yield nil.
func AcceptedOutputs(c core.Category) []string {
	for _, row := range conversionTable {
		if row.category == c {
			return slices.Clone(row.formats)
		}
	}
	return nil
}

// FormatsFor resolves a file name to its category and candidate output
// formats.
func FormatsFor(fileName string) (core.Category, []string) {
	c := CategoryOf(Extension(fileName))
	return c, AcceptedOutputs(c)
}

// Categories lists the known categories in table order.
func Categories() []core.Category {
	out := make([]core.Category, 0, len(conversionTable))
	for _, row := range conversionTable {
		out = append(out, row.category)
	}
	return out
}

func conversionFormats() map[core.Category][]string {
	out := make(map[core.Category][]string, len(conversionTable))
	for _, row := range conversionTable {
		out[row.category] = slices.Clone(row.formats)
	}
	return out
}

func isImage(f *core.File) bool {
	if strings.HasPrefix(strings.ToLower(f.MimeType), "image/") {
		return true
	}
	return CategoryOf(Extension(f.Name)) == core.CategoryImage
}
