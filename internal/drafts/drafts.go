// Package drafts is the ephemeral key-value store for in-progress form
// state. Drafts live outside the catalog database entirely: they are held
// in memory behind a mutex and snapshotted to a single JSON file so a
// restart does not lose them. A draft is discarded only by an explicit
// Clear after a successful submit; there is no TTL.
package drafts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// MaxDraftSize caps one draft's serialized payload. Drafts routinely carry
// base64-encoded images, so the cap stops a single form from growing the
// snapshot file without bound.
const MaxDraftSize = 1 << 20 // 1 MiB

// ErrTooLarge is returned by Save when the payload exceeds MaxDraftSize.
var ErrTooLarge = errors.New("draft payload too large")

// Store is the draft store. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	path    string
	entries map[string]json.RawMessage
}

// Open loads the snapshot at path if one exists and returns the store.
// An empty path keeps the store memory-only.
func Open(path string) (*Store, error) {
	s := &Store{path: path, entries: make(map[string]json.RawMessage)}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read draft snapshot: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.entries); err != nil {
			return nil, fmt.Errorf("parse draft snapshot: %w", err)
		}
	}
	return s, nil
}

// Key composes the store key for a draft: "<kind>Draft" for a new entity,
// "<kind>Draft_<id>" for an edit in progress.
func Key(kind string, id int64) string {
	if id == 0 {
		return kind + "Draft"
	}
	return fmt.Sprintf("%sDraft_%d", kind, id)
}

// Save writes the serialized form fields under key and snapshots to disk.
func (s *Store) Save(key string, payload json.RawMessage) error {
	if len(payload) > MaxDraftSize {
		return ErrTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// copy: the caller may reuse the backing slice
	buf := make(json.RawMessage, len(payload))
	copy(buf, payload)
	s.entries[key] = buf

	return s.snapshot()
}

// Load returns the draft stored under key, if any.
func (s *Store) Load(key string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.entries[key]
	return payload, ok
}

// Clear removes the draft under key. Clearing an absent key is a no-op.
func (s *Store) Clear(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)
	return s.snapshot()
}

// snapshot writes the whole map to the snapshot file atomically (tmp file
// plus rename). Caller must hold the write lock.
func (s *Store) snapshot() error {
	if s.path == "" {
		return nil
	}

	data, err := json.Marshal(s.entries)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
