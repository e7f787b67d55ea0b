package ocr

import (
	"context"
	"testing"

	"github.com/hupe1980/toolmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ core.TextExtractor = (*Static)(nil)

func TestStatic_Extract(t *testing.T) {
	s := NewStatic(func(o *Options) { o.Text = "hello"; o.Confidence = 0.5 })
	out, err := s.Extract(context.Background(), []byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	assert.Equal(t, "hello", out.Text)
	assert.InDelta(t, 0.5, out.Confidence, 1e-9)
}

func TestStatic_EmptyImage(t *testing.T) {
	_, err := NewStatic().Extract(context.Background(), nil)
	var be *core.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, core.KindExtraction, be.Kind)
}
