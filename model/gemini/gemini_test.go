package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/toolmesh/model"
)

var _ model.Model = (*Model)(nil)

func TestModel_Generate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent"), r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"responseId": "resp-1",
			"candidates": [{"content": {"role": "model", "parts": [{"text": "Hello back"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 3, "candidatesTokenCount": 2, "totalTokenCount": 5}
		}`)
	}))
	defer srv.Close()

	m, err := NewModel(context.Background(), func(o *Options) {
		o.Model = "gemini-test"
		o.APIKey = "test"
		o.BaseURL = srv.URL + "/"
	})
	require.NoError(t, err)

	resp, err := m.Generate(context.Background(), model.Request{
		Instructions: "be brief",
		Messages: []model.Message{
			{Role: model.RoleUser, Text: "Hello"},
			{Role: model.RoleAssistant, Text: "Hi"},
			{Role: model.RoleUser, Text: "How are you?"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello back", resp.Text)
	assert.Equal(t, "STOP", resp.FinishReason)
	assert.Equal(t, "resp-1", resp.ID)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 5, resp.Usage.TotalTokens)

	contents, ok := body["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 3)
	assert.Equal(t, "model", contents[1].(map[string]any)["role"])
	assert.Contains(t, body, "systemInstruction")
}

func TestModel_GenerateRequiresMessages(t *testing.T) {
	m, err := NewModel(context.Background(), func(o *Options) { o.APIKey = "test" })
	require.NoError(t, err)
	_, err = m.Generate(context.Background(), model.Request{})
	assert.ErrorIs(t, err, model.ErrNoMessages)
	assert.Equal(t, "gemini", m.Info().Provider)
}
