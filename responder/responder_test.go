package responder

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ core.Responder = (*Canned)(nil)
	_ core.Responder = (*ModelResponder)(nil)
	_ core.Responder = (*Router)(nil)
)

func conv(text string) core.ConversationContext {
	return core.ConversationContext{Messages: []core.Message{core.NewUserMessage(text)}}
}

func TestCanned_Hints(t *testing.T) {
	c := NewCanned()
	tests := map[string]string{
		"Can you convert this?":        ConvertHint,
		"upload a FILE":                ConvertHint,
		"I need OCR":                   OCRHint,
		"get the text from image":      OCRHint,
		"write a program":              CodeHint,
		"please code something for me": CodeHint,
	}
	for in, want := range tests {
		got, err := c.Respond(context.Background(), conv(in))
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestCanned_SeededRepliesAreReproducible(t *testing.T) {
	a := NewCanned(func(o *CannedOptions) { o.Seed = 42 })
	b := NewCanned(func(o *CannedOptions) { o.Seed = 42 })
	for i := 0; i < 10; i++ {
		ra, err := a.Respond(context.Background(), conv("hello"))
		require.NoError(t, err)
		rb, err := b.Respond(context.Background(), conv("hello"))
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
		assert.Contains(t, Replies, ra)
	}
}

func TestModelResponder_BuildsHistory(t *testing.T) {
	m := model.NewMockModel("gpt", "openai")
	m.AddResponse("and now?", "now this")
	r := NewModelResponder(m, func(o *ModelOptions) { o.HistoryLimit = 3 })

	msgs := []core.Message{
		core.NewUserMessage("dropped by limit"),
		core.NewAssistantMessage("hello"),
		core.NewNoticeMessage(errors.New("skipped")),
		core.NewUserMessage("and now?"),
	}
	reply, err := r.Respond(context.Background(), core.ConversationContext{Messages: msgs})
	require.NoError(t, err)
	assert.Equal(t, "now this", reply)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, []model.Message{
		{Role: model.RoleAssistant, Text: "hello"},
		{Role: model.RoleUser, Text: "and now?"},
	}, reqs[0].Messages)
}

func TestRouter(t *testing.T) {
	fallback := core.ResponderFunc(func(context.Context, core.ConversationContext) (string, error) {
		return "fallback", nil
	})
	claude := model.NewMockModel("claude", "anthropic")
	claude.AddResponse("hi", "from claude")
	broken := model.NewMockModel("gpt", "openai")
	broken.FailWith(errors.New("unauthorized"))

	rt := NewRouter(fallback)
	rt.Route("claude", NewModelResponder(claude))
	rt.Route("gpt-4", NewModelResponder(broken))

	c := conv("hi")
	c.Model = "claude"
	got, err := rt.Respond(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "from claude", got)

	c.Model = "gpt-4"
	got, err = rt.Respond(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)

	c.Model = "qwen"
	got, err = rt.Respond(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
}
