// Package draft keeps the client-local snapshot of an in-progress case and
// merges it with authoritative server state. A draft only exists to survive
// a reload between fetches; it never decides payment state.
package draft

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	casedomain "github.com/vdmx/riskintel/internal/casework/domain"
)

// Draft is the locally persisted snapshot, keyed by case id.
type Draft struct {
	Status      casedomain.Status `json:"status"`
	FormData    map[string]any    `json:"formData,omitempty"`
	LastUpdated int64             `json:"lastUpdated"`
}

// Store is the keyed draft persistence. Get returns (nil, nil) when no
// draft exists for the id.
type Store interface {
	Get(caseID string) (*Draft, error)
	Put(caseID string, d Draft) error
	Clear(caseID string) error
}

// MemoryStore holds drafts in memory; the default for tests and for
// embedding processes that do their own persistence.
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[string]Draft
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]Draft)}
}

func (s *MemoryStore) Get(caseID string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[caseID]
	if !ok {
		return nil, nil
	}
	copied := d
	return &copied, nil
}

func (s *MemoryStore) Put(caseID string, d Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[caseID] = d
	return nil
}

func (s *MemoryStore) Clear(caseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, caseID)
	return nil
}

// FileStore persists drafts to one JSON file per installation, mirroring
// what the browser client does with local storage.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) load() (map[string]Draft, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Draft{}, nil
		}
		return nil, err
	}
	drafts := map[string]Draft{}
	if err := json.Unmarshal(raw, &drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}

func (s *FileStore) save(drafts map[string]Draft) error {
	raw, err := json.MarshalIndent(drafts, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Get(caseID string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	drafts, err := s.load()
	if err != nil {
		return nil, err
	}
	d, ok := drafts[caseID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (s *FileStore) Put(caseID string, d Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	drafts, err := s.load()
	if err != nil {
		return err
	}
	drafts[caseID] = d
	return s.save(drafts)
}

func (s *FileStore) Clear(caseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	drafts, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := drafts[caseID]; !ok {
		return nil
	}
	delete(drafts, caseID)
	return s.save(drafts)
}
