package codegen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/internal/util"
	"github.com/hupe1980/toolmesh/model"
)

const defaultInstructions = `You are a code generator. Reply with a single {{.Language}} program ` +
	`that fulfils the request. Output only code, no explanations.`

// ModelOptions configure a ModelGenerator.
type ModelOptions struct {
	// Instructions is the system prompt template; {{.Language}} is replaced
	// by the requested language.
	Instructions string
}

// ModelGenerator generates code with a language model.
type ModelGenerator struct {
	model model.Model
	opts  ModelOptions
}

// NewModelGenerator creates a generator backed by m.
func NewModelGenerator(m model.Model, optFns ...func(o *ModelOptions)) *ModelGenerator {
	opts := ModelOptions{Instructions: defaultInstructions}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelGenerator{model: m, opts: opts}
}

// Generate implements core.CodeGenerator.
func (g *ModelGenerator) Generate(ctx context.Context, prompt, language string) (core.GeneratedCode, error) {
	instructions, err := util.RenderTemplate(g.opts.Instructions, map[string]any{"Language": language})
	if err != nil {
		return core.GeneratedCode{}, core.GenerationError(err)
	}
	resp, err := g.model.Generate(ctx, model.Request{
		Instructions: instructions,
		Messages:     []model.Message{{Role: model.RoleUser, Text: prompt}},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return core.GeneratedCode{}, err
		}
		return core.GeneratedCode{}, core.GenerationError(fmt.Errorf("%s: %w", g.model.Info().Provider, err))
	}
	src := StripFences(resp.Text)
	if src == "" {
		return core.GeneratedCode{}, core.GenerationError(errors.New("model returned no code"))
	}
	return core.GeneratedCode{Source: src + "\n"}, nil
}

// StripFences removes a surrounding markdown code fence from s.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
