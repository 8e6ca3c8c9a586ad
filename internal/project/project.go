package project

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Common errors.
var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrProjectExists    = errors.New("project already exists")
	ErrInvalidProjectID = errors.New("invalid project ID")
	ErrEmptyProjectName = errors.New("project name cannot be empty")
	ErrNoCurrentProject = errors.New("no current project")
)

// Project is a configured workspace in the registry.
type Project struct {
	// ID is the unique project identifier (UUID).
	ID string `json:"id"`

	// Name is the human-readable project name.
	Name string `json:"name"`

	// Icon is a short label shown in place of an image.
	Icon string `json:"icon"`

	// Color is a hex color such as "#3e9fcc".
	Color string `json:"color"`

	// CreatedAt is when the project was added to the registry.
	CreatedAt time.Time `json:"created_at"`
}

// NewProject creates a project with a fresh ID.
func NewProject(d Details) (*Project, error) {
	if d.Name == "" {
		return nil, ErrEmptyProjectName
	}
	return &Project{
		ID:        uuid.New().String(),
		Name:      d.Name,
		Icon:      d.Icon,
		Color:     d.Color,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Validate checks a project before it is stored.
func (p *Project) Validate() error {
	if p.ID == "" {
		return ErrInvalidProjectID
	}
	if _, err := uuid.Parse(p.ID); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidProjectID, p.ID)
	}
	if p.Name == "" {
		return ErrEmptyProjectName
	}
	return nil
}

// SortByRegistryOrder sorts projects by creation time, then ID.
func SortByRegistryOrder(projects []*Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		if !projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].CreatedAt.Before(projects[j].CreatedAt)
		}
		return projects[i].ID < projects[j].ID
	})
}
