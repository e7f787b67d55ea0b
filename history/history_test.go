package history

import (
	"testing"
	"time"

	"github.com/hupe1980/toolmesh/core"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertions)
var (
	_ core.HistoryStore = (*InMemoryStore)(nil)
	_ core.HistoryStore = (*FileStore)(nil)
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func conversation(id, title, transcript string, ended int) core.Conversation {
	return core.Conversation{
		SessionID:    id,
		Title:        title,
		MessageCount: 3,
		StartedAt:    base,
		EndedAt:      base.Add(time.Duration(ended) * time.Minute),
		Transcript:   transcript,
	}
}

func TestInMemoryStore_ListNewestFirst(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.Archive(conversation("a", "File Conversion Help", "convert report.pdf", 1)))
	require.NoError(t, s.Archive(conversation("b", "Python Code Review", "code python", 3)))
	require.NoError(t, s.Archive(conversation("c", "OCR Text Extraction", "scan receipt", 2)))

	all, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{all[0].SessionID, all[1].SessionID, all[2].SessionID})

	two, err := s.List(2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestInMemoryStore_Search(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.Archive(conversation("a", "File Conversion Help", "convert report.pdf", 1)))
	require.NoError(t, s.Archive(conversation("b", "Python Code Review", "code python", 3)))

	got, err := s.Search("PYTHON", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].SessionID)

	got, err = s.Search("report.pdf", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].SessionID)
}

func TestInMemoryStore_GetDelete(t *testing.T) {
	s := NewInMemoryStore()
	require.Error(t, s.Archive(core.Conversation{}))
	require.NoError(t, s.Archive(conversation("a", "t", "", 1)))

	c, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "t", c.Title)

	require.NoError(t, s.Delete("a"))
	_, err = s.Get("a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete("a"), ErrNotFound)
}

func TestFileStore_PersistsAcrossOpens(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s, err := OpenFileStore(fsys, "/home/u/.config/toolmesh/history.toml")
	require.NoError(t, err)
	require.NoError(t, s.Archive(conversation("a", "first", "line one\nline two", 1)))
	require.NoError(t, s.Archive(conversation("b", "second", "", 2)))
	require.NoError(t, s.Delete("b"))

	reopened, err := OpenFileStore(fsys, s.Path())
	require.NoError(t, err)
	all, err := reopened.List(0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "first", all[0].Title)
	assert.Equal(t, "line one\nline two", all[0].Transcript)
	assert.True(t, all[0].EndedAt.Equal(base.Add(time.Minute)))
}

func TestFileStore_RejectsUnknownVersion(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/h.toml", []byte("version = 9\n"), 0o600))
	_, err := OpenFileStore(fsys, "/h.toml")
	assert.ErrorContains(t, err, "unsupported history file version")
}
