package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/fyrsmithlabs/projectd/internal/settings"
)

// settingsRecord holds one project's settings document as JSON.
type settingsRecord struct {
	ProjectID string `badgerhold:"key"`
	Document  []byte
	UpdatedAt time.Time
}

// SettingsStore implements settings.Store on badger.
type SettingsStore struct {
	db *DB
}

// NewSettingsStore returns a badger-backed settings store.
func NewSettingsStore(db *DB) *SettingsStore {
	return &SettingsStore{db: db}
}

var _ settings.Store = (*SettingsStore)(nil)

func (s *SettingsStore) Save(_ context.Context, projectID string, doc settings.Document) error {
	if projectID == "" {
		return fmt.Errorf("project id is required")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	rec := settingsRecord{ProjectID: projectID, Document: data, UpdatedAt: time.Now().UTC()}
	if err := s.db.Store().Upsert(projectID, &rec); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (s *SettingsStore) Load(_ context.Context, projectID string) (settings.Document, error) {
	var rec settingsRecord
	err := s.db.Store().Get(projectID, &rec)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return settings.Document{}, fmt.Errorf("%w: %s", settings.ErrNotFound, projectID)
	}
	if err != nil {
		return settings.Document{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings.Parse(rec.Document)
}

// Delete removes the document. Deleting a missing document is not an error.
func (s *SettingsStore) Delete(_ context.Context, projectID string) error {
	err := s.db.Store().Delete(projectID, &settingsRecord{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete settings: %w", err)
	}
	return nil
}
