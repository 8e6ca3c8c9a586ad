package project

import (
	"context"
	"fmt"
	"sync"
)

// PointerStore persists the current project id.
type PointerStore interface {
	// Get returns the stored id, or "" when unset.
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// MemoryPointer is an in-memory PointerStore.
type MemoryPointer struct {
	mu sync.RWMutex
	id string
}

// NewMemoryPointer returns an unset pointer.
func NewMemoryPointer() *MemoryPointer { return &MemoryPointer{} }

func (m *MemoryPointer) Get(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.id, nil
}

func (m *MemoryPointer) Set(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = id
	return nil
}

func (m *MemoryPointer) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = ""
	return nil
}

// DataService owns the current-project pointer.
type DataService struct {
	repo    Repository
	pointer PointerStore
}

// NewDataService returns a DataService over repo and pointer.
func NewDataService(repo Repository, pointer PointerStore) *DataService {
	return &DataService{repo: repo, pointer: pointer}
}

// CurrentID returns the current project id, if any.
func (s *DataService) CurrentID(ctx context.Context) (string, bool) {
	id, err := s.pointer.Get(ctx)
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}

// Current returns the current project.
// A pointer to a project that no longer exists reads as ErrNoCurrentProject.
func (s *DataService) Current(ctx context.Context) (*Project, error) {
	id, ok := s.CurrentID(ctx)
	if !ok {
		return nil, ErrNoCurrentProject
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCurrentProject, err)
	}
	return p, nil
}

// SetCurrent points at id. The project must exist.
func (s *DataService) SetCurrent(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if err := s.pointer.Set(ctx, id); err != nil {
		return fmt.Errorf("failed to set current project: %w", err)
	}
	return nil
}

// Clear unsets the pointer.
func (s *DataService) Clear(ctx context.Context) error {
	if err := s.pointer.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear current project: %w", err)
	}
	return nil
}

// IsCurrent reports whether id is the current project.
func (s *DataService) IsCurrent(ctx context.Context, id string) bool {
	cur, ok := s.CurrentID(ctx)
	return ok && cur == id
}
