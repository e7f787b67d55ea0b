package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Model = (*MockModel)(nil)

func TestMockModel_Generate(t *testing.T) {
	m := NewMockModel("mock", "test")
	m.AddResponse("hello", "hi there")

	resp, err := m.Generate(context.Background(), Request{Messages: []Message{
		{Role: RoleUser, Text: "hello"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Text)

	resp, err = m.Generate(context.Background(), Request{Messages: []Message{
		{Role: RoleUser, Text: "other"},
		{Role: RoleAssistant, Text: "ignored"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: other", resp.Text)
	assert.Len(t, m.Requests(), 2)
}

func TestMockModel_Errors(t *testing.T) {
	m := NewMockModel("mock", "test")

	_, err := m.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoMessages)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Generate(ctx, Request{Messages: []Message{{Role: RoleUser, Text: "x"}}})
	assert.ErrorIs(t, err, context.Canceled)

	boom := errors.New("boom")
	m.FailWith(boom)
	_, err = m.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Text: "x"}}})
	assert.ErrorIs(t, err, boom)
}
