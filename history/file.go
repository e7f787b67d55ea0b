package history

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/hupe1980/toolmesh/core"
)

const (
	fileSchemaVersion = 1
	fileMode          = 0o600
	dirMode           = 0o700
)

type fileSchema struct {
	Version       int                  `toml:"version"`
	Conversations []conversationRecord `toml:"conversations"`
}

type conversationRecord struct {
	SessionID    string    `toml:"session_id"`
	Title        string    `toml:"title"`
	Model        string    `toml:"model,omitempty"`
	MessageCount int       `toml:"message_count"`
	JobCount     int       `toml:"job_count"`
	StartedAt    time.Time `toml:"started_at"`
	EndedAt      time.Time `toml:"ended_at"`
	Transcript   string    `toml:"transcript,multiline"`
}

func (f fileSchema) validateVersion() error {
	if f.Version != 0 && f.Version != fileSchemaVersion {
		return fmt.Errorf("unsupported history file version %d", f.Version)
	}
	return nil
}

// FileStore is a HistoryStore persisted to a TOML file. Every mutation
// rewrites the file through a temporary file and a rename.
type FileStore struct {
	fs   afero.Fs
	path string

	mu  sync.Mutex
	mem *InMemoryStore
}

// OpenFileStore loads the history file at path on fsys. A missing file yields
// an empty store.
func OpenFileStore(fsys afero.Fs, path string) (*FileStore, error) {
	s := &FileStore{fs: fsys, path: path, mem: NewInMemoryStore()}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read history file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode history file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return nil, err
	}
	for _, r := range file.Conversations {
		if err := s.mem.Archive(fromRecord(r)); err != nil {
			return nil, fmt.Errorf("decode history file: %w", err)
		}
	}
	return s, nil
}

// Path returns the location of the history file.
func (s *FileStore) Path() string { return s.path }

// Archive implements core.HistoryStore.
func (s *FileStore) Archive(c core.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mem.Archive(c); err != nil {
		return err
	}
	return s.write()
}

// Get implements core.HistoryStore.
func (s *FileStore) Get(sessionID string) (core.Conversation, error) {
	return s.mem.Get(sessionID)
}

// List implements core.HistoryStore.
func (s *FileStore) List(limit int) ([]core.Conversation, error) {
	return s.mem.List(limit)
}

// Search implements core.HistoryStore.
func (s *FileStore) Search(query string, limit int) ([]core.Conversation, error) {
	return s.mem.Search(query, limit)
}

// Delete implements core.HistoryStore.
func (s *FileStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mem.Delete(sessionID); err != nil {
		return err
	}
	return s.write()
}

func (s *FileStore) write() error {
	file := fileSchema{Version: fileSchemaVersion}
	for _, c := range s.mem.all() {
		file.Conversations = append(file.Conversations, toRecord(c))
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode history file: %w", err)
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, fileMode); err != nil {
		return fmt.Errorf("write temp history file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace history file: %w", err)
	}
	return nil
}

func toRecord(c core.Conversation) conversationRecord {
	return conversationRecord{
		SessionID:    c.SessionID,
		Title:        c.Title,
		Model:        c.Model,
		MessageCount: c.MessageCount,
		JobCount:     c.JobCount,
		StartedAt:    c.StartedAt.UTC(),
		EndedAt:      c.EndedAt.UTC(),
		Transcript:   c.Transcript,
	}
}

func fromRecord(r conversationRecord) core.Conversation {
	return core.Conversation{
		SessionID:    r.SessionID,
		Title:        r.Title,
		Model:        r.Model,
		MessageCount: r.MessageCount,
		JobCount:     r.JobCount,
		StartedAt:    r.StartedAt,
		EndedAt:      r.EndedAt,
		Transcript:   r.Transcript,
	}
}
