package convert

import (
	"context"
	"testing"
	"time"

	"github.com/hupe1980/toolmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ core.Converter = (*Local)(nil)

func TestLocal_SameFormatCopies(t *testing.T) {
	in := []byte("%PDF-1.4")
	out, err := NewLocal().Convert(context.Background(), in, "pdf", "pdf")
	require.NoError(t, err)
	assert.Equal(t, in, out)
	out[0] = 'X'
	assert.Equal(t, byte('%'), in[0])
}

func TestLocal_TxtHTMLRoundTrip(t *testing.T) {
	l := NewLocal()
	out, err := l.Convert(context.Background(), []byte("Hello <world>\nline two\n\nSecond"), "txt", "html")
	require.NoError(t, err)
	assert.Contains(t, string(out), "<p>Hello &lt;world&gt;<br>line two</p>")
	assert.Contains(t, string(out), "<p>Second</p>")

	back, err := l.Convert(context.Background(), out, "html", "txt")
	require.NoError(t, err)
	assert.Equal(t, "Hello <world>\nline two\n\nSecond\n", string(back))
}

func TestLocal_HTMLToTxtDropsScripts(t *testing.T) {
	out, err := NewLocal().Convert(context.Background(),
		[]byte(`<html><head><title>t</title></head><body><script>x()</script><h1>Title</h1><p>a &amp; b</p></body></html>`),
		"html", "txt")
	require.NoError(t, err)
	assert.Equal(t, "Title\na & b\n", string(out))
}

func TestLocal_CSVToJSON(t *testing.T) {
	out, err := NewLocal().Convert(context.Background(), []byte("name,age\nada,36\nalan,41\n"), "csv", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"ada","age":"36"},{"name":"alan","age":"41"}]`, string(out))
}

func TestLocal_JSONToCSV(t *testing.T) {
	out, err := NewLocal().Convert(context.Background(),
		[]byte(`[{"name":"ada","age":36},{"name":"alan","tags":["x"]}]`), "json", "csv")
	require.NoError(t, err)
	assert.Equal(t, "name,age,tags\nada,36,\nalan,,\"[\"\"x\"\"]\"\n", string(out))
}

func TestLocal_JSONToCSVRejectsScalars(t *testing.T) {
	_, err := NewLocal().Convert(context.Background(), []byte(`[1,2]`), "json", "csv")
	var be *core.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, core.KindConversion, be.Kind)
}

func TestLocal_PassesThroughWithinCategory(t *testing.T) {
	l := NewLocal()
	tests := []struct {
		from, to string
	}{
		{"pdf", "docx"},
		{"png", "jpg"},
		{"wav", "mp3"},
		{"xlsx", "ods"},
		{"mp4", "mkv"},
	}
	for _, tt := range tests {
		t.Run(tt.from+"_"+tt.to, func(t *testing.T) {
			in := []byte("payload")
			assert.True(t, l.Supports(tt.from, tt.to))
			out, err := l.Convert(context.Background(), in, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestLocal_Unsupported(t *testing.T) {
	l := NewLocal()
	assert.False(t, l.Supports("pdf", "mp3"))
	assert.False(t, l.Supports("exe", "bin"))
	_, err := l.Convert(context.Background(), []byte("x"), "pdf", "mp3")
	assert.ErrorIs(t, err, core.ErrUnsupportedConversion)
	var be *core.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, core.KindUnsupportedConversion, be.Kind)
}

func TestLocal_DelayHonoursContext(t *testing.T) {
	l := NewLocal(func(o *Options) { o.Delay = time.Hour })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Convert(ctx, nil, "txt", "txt")
	assert.ErrorIs(t, err, context.Canceled)
}
