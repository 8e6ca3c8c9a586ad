package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/fyrsmithlabs/projectd/internal/project"
)

const currentProjectKey = "current_project"

type pointerRecord struct {
	Key       string `badgerhold:"key"`
	ProjectID string
}

// PointerStore implements project.PointerStore on badger.
type PointerStore struct {
	db *DB
}

// NewPointerStore returns a badger-backed current-project pointer.
func NewPointerStore(db *DB) *PointerStore {
	return &PointerStore{db: db}
}

var _ project.PointerStore = (*PointerStore)(nil)

func (p *PointerStore) Get(context.Context) (string, error) {
	var rec pointerRecord
	err := p.db.Store().Get(currentProjectKey, &rec)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read current project: %w", err)
	}
	return rec.ProjectID, nil
}

func (p *PointerStore) Set(_ context.Context, id string) error {
	rec := pointerRecord{Key: currentProjectKey, ProjectID: id}
	if err := p.db.Store().Upsert(currentProjectKey, &rec); err != nil {
		return fmt.Errorf("failed to write current project: %w", err)
	}
	return nil
}

func (p *PointerStore) Clear(context.Context) error {
	err := p.db.Store().Delete(currentProjectKey, &pointerRecord{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to clear current project: %w", err)
	}
	return nil
}
