// Package instances tracks filled-in form instances per project and decides
// when they may be removed.
package instances

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/fyrsmithlabs/projectd/internal/settings"
)

// Instance statuses.
const (
	StatusIncomplete       = "incomplete"
	StatusComplete         = "complete"
	StatusSubmitted        = "submitted"
	StatusSubmissionFailed = "submission_failed"
)

// ErrNotFound is returned for unknown instances.
var ErrNotFound = errors.New("instance not found")

// Form is the subset of form metadata the auto-delete rule reads.
type Form struct {
	ProjectID string `json:"project_id" validate:"required"`
	FormID    string `json:"form_id" validate:"required"`
	Version   string `json:"version"`
	// AutoDelete is "true", "false" or "" (use the project setting).
	AutoDelete string `json:"auto_delete"`
	// Revision orders forms sharing (FormID, Version); the highest is latest.
	Revision int64 `json:"revision"`
}

// Instance is a filled-in form.
type Instance struct {
	ID          string `json:"id" validate:"required"`
	ProjectID   string `json:"project_id" validate:"required"`
	FormID      string `json:"form_id" validate:"required"`
	FormVersion string `json:"form_version"`
	Status      string `json:"status" validate:"required,oneof=incomplete complete submitted submission_failed"`
}

// IsUnsent reports whether the instance still holds data not on the server.
func (i Instance) IsUnsent() bool {
	return i.Status == StatusComplete || i.Status == StatusSubmissionFailed
}

// FormsRepository looks up form definitions.
type FormsRepository interface {
	GetLatestByFormIDAndVersion(ctx context.Context, formID, version string) (*Form, bool)
}

// FormStore stores form revisions and answers the auto-delete lookup.
type FormStore interface {
	FormsRepository
	Save(ctx context.Context, f Form) error
	DeleteByProject(ctx context.Context, projectID string) error
}

// InstancesRepository stores instances.
type InstancesRepository interface {
	Save(ctx context.Context, inst Instance) error
	Get(ctx context.Context, id string) (Instance, error)
	ListByProject(ctx context.Context, projectID string) ([]Instance, error)
	DeleteByProject(ctx context.Context, projectID string) error
}

// ShouldInstanceBeDeleted reports whether inst should be removed after a
// successful submission. A form that sets auto_delete overrides the project
// setting; an unknown form is never auto-deleted.
func ShouldInstanceBeDeleted(ctx context.Context, forms FormsRepository, autoDeleteEnabled bool, inst Instance) bool {
	form, ok := forms.GetLatestByFormIDAndVersion(ctx, inst.FormID, inst.FormVersion)
	if !ok {
		return false
	}
	if autoDeleteEnabled {
		return form.AutoDelete != "false"
	}
	return strings.EqualFold(form.AutoDelete, "true")
}

// AutoDeleteEnabled reads the project's delete_send setting. Missing means off.
func AutoDeleteEnabled(doc settings.Document) bool {
	v, ok := doc.Bool(settings.KeyDeleteSend)
	return ok && v
}

// MemoryForms is an in-memory FormsRepository.
type MemoryForms struct {
	mu    sync.RWMutex
	forms []Form
}

var _ FormStore = (*MemoryForms)(nil)

// NewMemoryForms returns an empty MemoryForms.
func NewMemoryForms() *MemoryForms { return &MemoryForms{} }

// Save adds a form revision.
func (m *MemoryForms) Save(_ context.Context, f Form) error {
	if f.FormID == "" {
		return fmt.Errorf("form id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forms = append(m.forms, f)
	return nil
}

func (m *MemoryForms) GetLatestByFormIDAndVersion(_ context.Context, formID, version string) (*Form, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *Form
	for i := range m.forms {
		f := m.forms[i]
		if f.FormID != formID || f.Version != version {
			continue
		}
		if latest == nil || f.Revision >= latest.Revision {
			cp := f
			latest = &cp
		}
	}
	return latest, latest != nil
}

// DeleteByProject drops every form of a project.
func (m *MemoryForms) DeleteByProject(_ context.Context, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.forms[:0]
	for _, f := range m.forms {
		if f.ProjectID != projectID {
			kept = append(kept, f)
		}
	}
	m.forms = kept
	return nil
}

// MemoryInstances is an in-memory InstancesRepository.
type MemoryInstances struct {
	mu        sync.RWMutex
	instances map[string]Instance
}

// NewMemoryInstances returns an empty MemoryInstances.
func NewMemoryInstances() *MemoryInstances {
	return &MemoryInstances{instances: make(map[string]Instance)}
}

func (m *MemoryInstances) Save(_ context.Context, inst Instance) error {
	if inst.ID == "" || inst.ProjectID == "" {
		return fmt.Errorf("instance id and project id are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances[inst.ID] = inst
	return nil
}

func (m *MemoryInstances) Get(_ context.Context, id string) (Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instances[id]
	if !ok {
		return Instance{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return inst, nil
}

func (m *MemoryInstances) ListByProject(_ context.Context, projectID string) ([]Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Instance
	for _, inst := range m.instances {
		if inst.ProjectID == projectID {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryInstances) DeleteByProject(_ context.Context, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, inst := range m.instances {
		if inst.ProjectID == projectID {
			delete(m.instances, id)
		}
	}
	return nil
}
