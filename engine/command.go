package engine

import (
	"strings"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/tool"
)

// Command is a parsed slash command. Slash commands are explicit tool
// selectors typed into the chat:
//
//	/code [language] <prompt>
//	/convert <file> [format]
//	/ocr <file>
//	/cancel <tool>
type Command struct {
	Tool core.ToolID
	// Cancel marks /cancel; Tool names the slot to cancel.
	Cancel bool

	Language     string
	Prompt       string
	FileName     string
	TargetFormat string
}

// ParseCommand parses text starting with a known slash command. Anything
// else, including unknown commands, reports false.
func ParseCommand(text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}
	name, rest, _ := strings.Cut(text[1:], " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch strings.ToLower(name) {
	case "code":
		cmd := Command{Tool: core.ToolCode, Prompt: rest}
		if len(args) > 0 {
			if l, ok := tool.LookupLanguage(strings.ToLower(args[0])); ok {
				cmd.Language = l.ID
				cmd.Prompt = strings.TrimSpace(strings.TrimPrefix(rest, args[0]))
			}
		}
		return cmd, true
	case "convert":
		cmd := Command{Tool: core.ToolConvert}
		if len(args) > 0 {
			cmd.FileName = args[0]
		}
		if len(args) > 1 {
			cmd.TargetFormat = tool.NormalizeFormat(args[len(args)-1])
		}
		return cmd, true
	case "ocr":
		cmd := Command{Tool: core.ToolOCR}
		if len(args) > 0 {
			cmd.FileName = args[0]
		}
		return cmd, true
	case "cancel":
		cmd := Command{Cancel: true}
		if len(args) > 0 {
			cmd.Tool = core.ToolID(strings.ToLower(args[0]))
		}
		return cmd, true
	default:
		return Command{}, false
	}
}

// apply turns the command into tool input. An attachment already present on
// in is kept; otherwise the named file is referenced without content.
func (c Command) apply(in core.Input) core.Input {
	in.ToolID = c.Tool
	switch c.Tool {
	case core.ToolCode:
		in.Text = c.Prompt
		if c.Language != "" {
			in.Language = c.Language
		}
	case core.ToolConvert, core.ToolOCR:
		if in.File == nil && c.FileName != "" {
			in.File = &core.File{Name: c.FileName}
		}
		if c.TargetFormat != "" {
			in.TargetFormat = c.TargetFormat
		}
	}
	return in
}
