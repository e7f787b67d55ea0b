package codegen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/model"
	"github.com/hupe1980/toolmesh/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ core.CodeGenerator = (*Template)(nil)
	_ core.CodeGenerator = (*ModelGenerator)(nil)
)

func TestTemplate_CoversAllLanguages(t *testing.T) {
	g := NewTemplate()
	for _, lang := range tool.Languages {
		out, err := g.Generate(context.Background(), "add two numbers", lang.ID)
		require.NoError(t, err, lang.ID)
		assert.Contains(t, out.Source, "add two numbers", lang.ID)
	}
}

func TestTemplate_PythonCommentStyle(t *testing.T) {
	out, err := NewTemplate().Generate(context.Background(), "sum\nof two", "python")
	require.NoError(t, err)
	assert.Contains(t, out.Source, "# sum\n# of two\ndef calculate_result")
}

func TestTemplate_UnknownLanguage(t *testing.T) {
	_, err := NewTemplate().Generate(context.Background(), "x", "cobol")
	var be *core.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, core.KindGeneration, be.Kind)
}

func TestTemplate_DelayHonoursContext(t *testing.T) {
	g := NewTemplate(func(o *TemplateOptions) { o.Delay = time.Hour })
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := g.Generate(ctx, "x", "python")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestModelGenerator(t *testing.T) {
	m := model.NewMockModel("mock", "test")
	m.AddResponse("reverse a string", "```python\nprint('abc'[::-1])\n```")
	g := NewModelGenerator(m)

	out, err := g.Generate(context.Background(), "reverse a string", "python")
	require.NoError(t, err)
	assert.Equal(t, "print('abc'[::-1])\n", out.Source)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].Instructions, "python program")
}

func TestModelGenerator_Failure(t *testing.T) {
	m := model.NewMockModel("mock", "test")
	m.FailWith(errors.New("rate limited"))
	_, err := NewModelGenerator(m).Generate(context.Background(), "x", "java")
	var be *core.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, core.ToolCode, be.Tool)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "x", StripFences("x"))
	assert.Equal(t, "a\nb", StripFences("```go\na\nb\n```"))
	assert.Equal(t, "", StripFences("```"))
}
