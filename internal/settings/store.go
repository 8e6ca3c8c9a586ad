package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when a project has no stored settings.
var ErrNotFound = errors.New("settings not found")

// Store persists one settings document per project id.
type Store interface {
	Save(ctx context.Context, projectID string, doc Document) error
	Load(ctx context.Context, projectID string) (Document, error)
	Delete(ctx context.Context, projectID string) error
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

// Save stores a copy of doc.
func (s *MemoryStore) Save(_ context.Context, projectID string, doc Document) error {
	if projectID == "" {
		return fmt.Errorf("project id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[projectID] = doc.Clone()
	return nil
}

// Load returns a copy of the stored document.
func (s *MemoryStore) Load(_ context.Context, projectID string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[projectID]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, projectID)
	}
	return doc.Clone(), nil
}

// Delete removes the document. Deleting a missing document is not an error.
func (s *MemoryStore) Delete(_ context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, projectID)
	return nil
}
