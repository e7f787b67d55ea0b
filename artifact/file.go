package artifact

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// FileOptions configure a FileStore.
type FileOptions struct {
	// Root is the directory holding one sub directory per session.
	Root string
	// Names maps an artifact id to the file name it is written under. The
	// default uses the id itself.
	Names func(sessionID, artifactID string) string
}

// FileStore persists artifacts as files below Root/<sessionID>/. Writes go
// through a temporary file and a rename.
type FileStore struct {
	fs   afero.Fs
	opts FileOptions

	mu    sync.RWMutex
	names map[string]map[string]string // sessionID -> artifactID -> file name
}

// NewFileStore creates a store on fsys.
func NewFileStore(fsys afero.Fs, optFns ...func(o *FileOptions)) *FileStore {
	opts := FileOptions{Root: "artifacts"}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &FileStore{fs: fsys, opts: opts, names: make(map[string]map[string]string)}
}

// NewOSFileStore creates a store on the local file system below root.
func NewOSFileStore(root string) *FileStore {
	return NewFileStore(afero.NewOsFs(), func(o *FileOptions) { o.Root = root })
}

func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

func (s *FileStore) fileName(sessionID, artifactID string) string {
	s.mu.RLock()
	name, ok := s.names[sessionID][artifactID]
	s.mu.RUnlock()
	if ok {
		return name
	}
	if s.opts.Names != nil {
		if n := path.Base(s.opts.Names(sessionID, artifactID)); validID(n) {
			return n
		}
	}
	return artifactID
}

// Path returns the file path an artifact is (or would be) stored at.
func (s *FileStore) Path(sessionID, artifactID string) string {
	return path.Join(s.opts.Root, sessionID, s.fileName(sessionID, artifactID))
}

// Save implements core.ArtifactStore.
func (s *FileStore) Save(sessionID, artifactID string, data []byte) error {
	if !validID(sessionID) || !validID(artifactID) {
		return ErrInvalidID
	}
	dir := path.Join(s.opts.Root, sessionID)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := s.fileName(sessionID, artifactID)
	target := path.Join(dir, name)
	tmp := target + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return err
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.names[sessionID] == nil {
		s.names[sessionID] = make(map[string]string)
	}
	s.names[sessionID][artifactID] = name
	return nil
}

// Get implements core.ArtifactStore.
func (s *FileStore) Get(sessionID, artifactID string) ([]byte, error) {
	if !validID(sessionID) || !validID(artifactID) {
		return nil, ErrNotFound
	}
	data, err := afero.ReadFile(s.fs, s.Path(sessionID, artifactID))
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// List implements core.ArtifactStore. Only artifacts saved through this store
// instance are listed.
func (s *FileStore) List(sessionID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.names[sessionID]))
	for id := range s.names[sessionID] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Delete implements core.ArtifactStore.
func (s *FileStore) Delete(sessionID, artifactID string) error {
	if !validID(sessionID) || !validID(artifactID) {
		return ErrNotFound
	}
	err := s.fs.Remove(s.Path(sessionID, artifactID))
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.names[sessionID], artifactID)
	if len(s.names[sessionID]) == 0 {
		delete(s.names, sessionID)
	}
	return nil
}
