package project

import (
	"context"
	"fmt"
	"sync"
)

// Repository stores projects.
type Repository interface {
	// Save inserts or replaces a project.
	Save(ctx context.Context, p *Project) error

	// Get retrieves a project by ID.
	Get(ctx context.Context, id string) (*Project, error)

	// GetAll returns all projects in registry order.
	GetAll(ctx context.Context) ([]*Project, error)

	// Delete removes a project by ID.
	Delete(ctx context.Context, id string) error
}

// memoryRepository implements Repository with in-memory storage.
type memoryRepository struct {
	mu       sync.RWMutex
	projects map[string]*Project
}

// NewMemoryRepository creates an empty in-memory Repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{projects: make(map[string]*Project)}
}

func (r *memoryRepository) Save(_ context.Context, p *Project) error {
	if p == nil {
		return fmt.Errorf("%w: nil project", ErrInvalidProjectID)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.projects[p.ID] = &cp
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (*Project, error) {
	if id == "" {
		return nil, ErrInvalidProjectID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (r *memoryRepository) GetAll(_ context.Context) ([]*Project, error) {
	r.mu.RLock()
	out := make([]*Project, 0, len(r.projects))
	for _, p := range r.projects {
		cp := *p
		out = append(out, &cp)
	}
	r.mu.RUnlock()
	SortByRegistryOrder(out)
	return out, nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	if id == "" {
		return ErrInvalidProjectID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	delete(r.projects, id)
	return nil
}
