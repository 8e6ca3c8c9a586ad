package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/fyrsmithlabs/projectd/internal/project"
)

// projectRecord is the stored form of a project.
type projectRecord struct {
	ID        string `badgerhold:"key"`
	Name      string
	Icon      string
	Color     string
	CreatedAt time.Time
}

// ProjectRepository implements project.Repository on badger.
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository returns a badger-backed project repository.
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

var _ project.Repository = (*ProjectRepository)(nil)

func (r *ProjectRepository) Save(_ context.Context, p *project.Project) error {
	if p == nil {
		return fmt.Errorf("%w: nil project", project.ErrInvalidProjectID)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	rec := projectRecord{ID: p.ID, Name: p.Name, Icon: p.Icon, Color: p.Color, CreatedAt: p.CreatedAt}
	if err := r.db.Store().Upsert(p.ID, &rec); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) Get(_ context.Context, id string) (*project.Project, error) {
	if id == "" {
		return nil, project.ErrInvalidProjectID
	}
	var rec projectRecord
	err := r.db.Store().Get(id, &rec)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", project.ErrProjectNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return rec.toProject(), nil
}

func (r *ProjectRepository) GetAll(_ context.Context) ([]*project.Project, error) {
	var recs []projectRecord
	if err := r.db.Store().Find(&recs, nil); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	out := make([]*project.Project, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toProject())
	}
	project.SortByRegistryOrder(out)
	return out, nil
}

func (r *ProjectRepository) Delete(_ context.Context, id string) error {
	if id == "" {
		return project.ErrInvalidProjectID
	}
	err := r.db.Store().Delete(id, &projectRecord{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("%w: %s", project.ErrProjectNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func (rec projectRecord) toProject() *project.Project {
	return &project.Project{
		ID:        rec.ID,
		Name:      rec.Name,
		Icon:      rec.Icon,
		Color:     rec.Color,
		CreatedAt: rec.CreatedAt,
	}
}
