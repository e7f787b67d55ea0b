// Package tool implements the static tool registry: the catalogue of tool
// identifiers, their input validation rules, free-text trigger heuristics and
// accepted-format tables. Validation is pure; it never touches jobs or the
// conversation log.
package tool

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/toolmesh/core"
)

// Tool describes one pluggable tool of the assistant.
//
// Implementations must be safe for concurrent use; the built-in tools hold
// no mutable state after construction.
type Tool interface {
	// ID returns the unique tool identifier.
	ID() core.ToolID

	// Description returns a short human-readable summary for menus.
	Description() string

	// Triggers returns lowercase phrases that route free text to this tool.
	Triggers() []string

	// Ready reports whether the input carries the material the tool needs
	// (an attachment, a language) so a trigger match can start a job
	// instead of only producing a hint reply.
	Ready(in core.Input) bool

	// Validate turns raw input into ValidatedInput or returns a
	// *core.ValidationError.
	Validate(in core.Input) (core.ValidatedInput, error)

	// AcceptedFormats maps input categories to the output formats the tool
	// can produce for them.
	AcceptedFormats() map[core.Category][]string
}

// Registry is the catalogue of tools available to the dispatcher.
type Registry struct {
	mu    sync.RWMutex
	tools map[core.ToolID]Tool
	order []core.ToolID
}

// NewRegistry creates a registry holding the given tools in order.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[core.ToolID]Tool, len(tools))}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// DefaultRegistry returns a registry with the file converter, the text
// extractor and the code generator.
func DefaultRegistry() *Registry {
	return NewRegistry(NewConvertTool(), NewOCRTool(), NewCodeTool())
}

// Register adds t, replacing a tool with the same id.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.ID()]; !exists {
		r.order = append(r.order, t.ID())
	}
	r.tools[t.ID()] = t
}

// Get returns the tool registered under id.
func (r *Registry) Get(id core.ToolID) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[id]
	return t, ok
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tools[id])
	}
	return out
}

// Validate runs the validation of the tool selected by in.ToolID.
func (r *Registry) Validate(in core.Input) (core.ValidatedInput, error) {
	t, ok := r.Get(in.ToolID)
	if !ok {
		return core.ValidatedInput{}, fmt.Errorf("%w: %q", core.ErrUnknownTool, in.ToolID)
	}
	return t.Validate(in)
}

// InputTriggers is implemented by tools whose trigger phrases depend on the
// attachment of an input. Registry.Match prefers TriggersFor over Triggers.
type InputTriggers interface {
	TriggersFor(in core.Input) []string
}

// Match applies the trigger heuristics to free text. The tool with the
// longest matching trigger wins (ties go to the earlier registered tool), and
// only tools that are Ready for the input are considered.
func (r *Registry) Match(in core.Input) (core.ToolID, bool) {
	text := strings.ToLower(in.Text)
	var (
		best    core.ToolID
		bestLen int
	)
	for _, t := range r.Tools() {
		if !t.Ready(in) {
			continue
		}
		triggers := t.Triggers()
		if it, ok := t.(InputTriggers); ok {
			triggers = it.TriggersFor(in)
		}
		for _, trig := range triggers {
			if len(trig) > bestLen && strings.Contains(text, trig) {
				best, bestLen = t.ID(), len(trig)
			}
		}
	}
	return best, bestLen > 0
}
