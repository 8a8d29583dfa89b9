// Package state implements a file-backed store of module fingerprints.
package state

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StateStore = (*Store)(nil)

// Store implements ports.StateStore using a flat JSON file.
type Store struct {
	path   string
	mu     sync.RWMutex
	states map[string]domain.ModuleState
}

// NewStore creates a Store backed by the file at path. A missing file is an empty store.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:   filepath.Clean(path),
		states: make(map[string]domain.ModuleState),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to read state store"), "path", s.path)
	}
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.states); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to unmarshal state store"), "path", s.path)
	}
	return nil
}

// save writes the store to disk. The caller holds the write lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.states, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal state store")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create state directory"), "path", s.path)
	}

	// Write next to the target and rename so readers never see a torn file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, domain.PrivateFilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write state store"), "path", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to replace state store"), "path", s.path)
	}
	return nil
}

// Get retrieves the state recorded for a module.
func (s *Store) Get(module string) (*domain.ModuleState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[module]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// Put records states and saves the store.
func (s *Store) Put(states ...domain.ModuleState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range states {
		s.states[st.Module] = st
	}
	return s.save()
}
