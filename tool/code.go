package tool

import (
	"fmt"
	"strings"

	"github.com/hupe1980/toolmesh/core"
)

// Language is an entry of the code generator's language menu.
type Language struct {
	ID        string
	Label     string
	Extension string
}

// Languages lists the supported languages in menu order.
var Languages = []Language{
	{ID: "javascript", Label: "JavaScript", Extension: "js"},
	{ID: "python", Label: "Python", Extension: "py"},
	{ID: "react", Label: "React", Extension: "react"},
	{ID: "html", Label: "HTML", Extension: "html"},
	{ID: "css", Label: "CSS", Extension: "css"},
	{ID: "nodejs", Label: "Node.js", Extension: "nodejs"},
	{ID: "cpp", Label: "C++", Extension: "cpp"},
	{ID: "java", Label: "Java", Extension: "java"},
}

// DefaultLanguage is used when a code request names no language.
const DefaultLanguage = "javascript"

// LookupLanguage returns the language with the given id (case-insensitive).
func LookupLanguage(id string) (Language, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, l := range Languages {
		if l.ID == id {
			return l, true
		}
	}
	return Language{}, false
}

// LanguageExtension returns the file extension used when saving generated
// code, falling back to the language id itself.
func LanguageExtension(id string) string {
	if l, ok := LookupLanguage(id); ok {
		return l.Extension
	}
	return strings.ToLower(id)
}

func languageIDs() []string {
	ids := make([]string, len(Languages))
	for i, l := range Languages {
		ids[i] = l.ID
	}
	return ids
}

// CodeTool validates code generation requests: a non-empty prompt and a
// supported language.
type CodeTool struct{}

// NewCodeTool creates the code generation tool.
func NewCodeTool() *CodeTool { return &CodeTool{} }

func (*CodeTool) ID() core.ToolID { return core.ToolCode }

func (*CodeTool) Description() string {
	return "Write code in JavaScript, Python, React, C++, Java and more"
}

func (*CodeTool) Triggers() []string { return []string{"code", "program"} }

func (*CodeTool) Ready(in core.Input) bool { return in.Language != "" }

func (*CodeTool) AcceptedFormats() map[core.Category][]string { return nil }

func (*CodeTool) Validate(in core.Input) (core.ValidatedInput, error) {
	prompt := strings.TrimSpace(in.Text)
	if prompt == "" {
		return core.ValidatedInput{}, core.NewValidationError(core.ToolCode, "prompt", core.CodeEmptyPrompt, "describe what the code should do")
	}
	lang := in.Language
	if strings.TrimSpace(lang) == "" {
		lang = DefaultLanguage
	}
	l, ok := LookupLanguage(lang)
	if !ok {
		return core.ValidatedInput{}, core.NewValidationError(core.ToolCode, "language", core.CodeUnsupportedLanguage,
			fmt.Sprintf("%q is not supported; choose one of %s", lang, strings.Join(languageIDs(), ", ")))
	}
	return core.ValidatedInput{
		Tool:     core.ToolCode,
		Prompt:   prompt,
		Language: l.ID,
	}, nil
}
