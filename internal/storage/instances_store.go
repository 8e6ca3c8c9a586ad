package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/fyrsmithlabs/projectd/internal/instances"
)

type formRecord struct {
	Key        string `badgerhold:"key"`
	ProjectID  string `badgerhold:"index"`
	FormID     string
	Version    string
	AutoDelete string
	Revision   int64
}

// FormStore implements instances.FormStore on badger.
type FormStore struct {
	db *DB
}

// NewFormStore returns a badger-backed form store.
func NewFormStore(db *DB) *FormStore {
	return &FormStore{db: db}
}

var _ instances.FormStore = (*FormStore)(nil)

// Save stores a form revision. Saving the same revision again replaces it.
func (s *FormStore) Save(_ context.Context, f instances.Form) error {
	if f.FormID == "" {
		return fmt.Errorf("form id is required")
	}
	key := fmt.Sprintf("%s/%s/%s/%d", f.ProjectID, f.FormID, f.Version, f.Revision)
	rec := formRecord{
		Key:        key,
		ProjectID:  f.ProjectID,
		FormID:     f.FormID,
		Version:    f.Version,
		AutoDelete: f.AutoDelete,
		Revision:   f.Revision,
	}
	if err := s.db.Store().Upsert(key, &rec); err != nil {
		return fmt.Errorf("failed to save form: %w", err)
	}
	return nil
}

func (s *FormStore) GetLatestByFormIDAndVersion(_ context.Context, formID, version string) (*instances.Form, bool) {
	var recs []formRecord
	err := s.db.Store().Find(&recs, badgerhold.Where("FormID").Eq(formID).And("Version").Eq(version))
	if err != nil || len(recs) == 0 {
		return nil, false
	}
	latest := recs[0]
	for _, rec := range recs[1:] {
		if rec.Revision > latest.Revision {
			latest = rec
		}
	}
	return &instances.Form{
		ProjectID:  latest.ProjectID,
		FormID:     latest.FormID,
		Version:    latest.Version,
		AutoDelete: latest.AutoDelete,
		Revision:   latest.Revision,
	}, true
}

func (s *FormStore) DeleteByProject(_ context.Context, projectID string) error {
	if err := s.db.Store().DeleteMatching(&formRecord{}, badgerhold.Where("ProjectID").Eq(projectID)); err != nil {
		return fmt.Errorf("failed to delete forms: %w", err)
	}
	return nil
}

type instanceRecord struct {
	ID          string `badgerhold:"key"`
	ProjectID   string `badgerhold:"index"`
	FormID      string
	FormVersion string
	Status      string
}

// InstanceStore implements instances.InstancesRepository on badger, so the
// unsent-instance guard survives restarts.
type InstanceStore struct {
	db *DB
}

// NewInstanceStore returns a badger-backed instance store.
func NewInstanceStore(db *DB) *InstanceStore {
	return &InstanceStore{db: db}
}

var _ instances.InstancesRepository = (*InstanceStore)(nil)

func (s *InstanceStore) Save(_ context.Context, inst instances.Instance) error {
	if inst.ID == "" || inst.ProjectID == "" {
		return fmt.Errorf("instance id and project id are required")
	}
	rec := instanceRecord{
		ID:          inst.ID,
		ProjectID:   inst.ProjectID,
		FormID:      inst.FormID,
		FormVersion: inst.FormVersion,
		Status:      inst.Status,
	}
	if err := s.db.Store().Upsert(inst.ID, &rec); err != nil {
		return fmt.Errorf("failed to save instance: %w", err)
	}
	return nil
}

func (s *InstanceStore) Get(_ context.Context, id string) (instances.Instance, error) {
	var rec instanceRecord
	err := s.db.Store().Get(id, &rec)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return instances.Instance{}, fmt.Errorf("%w: %s", instances.ErrNotFound, id)
	}
	if err != nil {
		return instances.Instance{}, fmt.Errorf("failed to get instance: %w", err)
	}
	return rec.toInstance(), nil
}

func (s *InstanceStore) ListByProject(_ context.Context, projectID string) ([]instances.Instance, error) {
	var recs []instanceRecord
	if err := s.db.Store().Find(&recs, badgerhold.Where("ProjectID").Eq(projectID).SortBy("ID")); err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	out := make([]instances.Instance, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toInstance())
	}
	return out, nil
}

func (s *InstanceStore) DeleteByProject(_ context.Context, projectID string) error {
	if err := s.db.Store().DeleteMatching(&instanceRecord{}, badgerhold.Where("ProjectID").Eq(projectID)); err != nil {
		return fmt.Errorf("failed to delete instances: %w", err)
	}
	return nil
}

func (rec instanceRecord) toInstance() instances.Instance {
	return instances.Instance{
		ID:          rec.ID,
		ProjectID:   rec.ProjectID,
		FormID:      rec.FormID,
		FormVersion: rec.FormVersion,
		Status:      rec.Status,
	}
}
