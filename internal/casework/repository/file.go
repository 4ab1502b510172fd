package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	casedomain "github.com/vdmx/riskintel/internal/casework/domain"
	"github.com/vdmx/riskintel/internal/clock"
)

// fileStore keeps every case in a single JSON file. It exists for
// deployments without a database; reads and writes go through the whole
// file under one lock, which is fine at this scale.
type fileStore struct {
	mu   sync.Mutex
	path string
	clk  clock.Clock
}

type fileData struct {
	Cases []casedomain.Case `json:"cases"`
}

func NewFileStore(path string, clk clock.Clock) (casedomain.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	s := &fileStore{path: path, clk: clk}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.save(fileData{Cases: []casedomain.Case{}}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *fileStore) load() (fileData, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileData{}, nil
		}
		return fileData{}, err
	}
	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fileData{}, err
	}
	return data, nil
}

func (s *fileStore) save(data fileData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *fileStore) Create(_ context.Context, c *casedomain.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	for _, existing := range data.Cases {
		if existing.ID == c.ID {
			return casedomain.ErrCaseExists
		}
	}
	now := s.clk.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.LastUpdated == 0 {
		c.LastUpdated = now.UnixMilli()
	}
	data.Cases = append(data.Cases, *c)
	return s.save(data)
}

func (s *fileStore) Get(_ context.Context, id string) (*casedomain.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range data.Cases {
		if data.Cases[i].ID == id {
			c := data.Cases[i]
			return &c, nil
		}
	}
	return nil, casedomain.ErrCaseNotFound
}

func (s *fileStore) List(_ context.Context) ([]casedomain.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	cases := append([]casedomain.Case(nil), data.Cases...)
	sort.Slice(cases, func(i, j int) bool {
		return cases[i].CreatedAt.After(cases[j].CreatedAt)
	})
	return cases, nil
}

func (s *fileStore) Update(_ context.Context, id string, patch casedomain.Patch) (*casedomain.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range data.Cases {
		if data.Cases[i].ID != id {
			continue
		}
		data.Cases[i].Apply(patch, s.clk.Now().UnixMilli())
		updated := data.Cases[i]
		if err := s.save(data); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	return nil, casedomain.ErrCaseNotFound
}

func (s *fileStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return false, err
	}
	for i := range data.Cases {
		if data.Cases[i].ID != id {
			continue
		}
		data.Cases = append(data.Cases[:i], data.Cases[i+1:]...)
		if err := s.save(data); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (s *fileStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return 0, err
	}
	return int64(len(data.Cases)), nil
}
