package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectd/internal/analytics"
	"github.com/fyrsmithlabs/projectd/internal/logging"
	"github.com/fyrsmithlabs/projectd/internal/project"
	"github.com/fyrsmithlabs/projectd/internal/settings"
	"github.com/fyrsmithlabs/projectd/internal/telemetry"
)

// Creator adds projects to the registry.
type Creator interface {
	CreateProject(ctx context.Context, doc settings.Document, opts ...ActionOption) (*project.Project, settings.ImportResult, error)
}

// Switcher changes the current project.
type Switcher interface {
	SwitchProject(ctx context.Context, id string, opts ...ActionOption) error
}

// Deleter removes projects from the registry.
type Deleter interface {
	DeleteProject(ctx context.Context, id string, opts ...ActionOption) (DeletionResult, error)
}

// Actions is the full set of lifecycle operations.
type Actions interface {
	Creator
	Switcher
	Deleter
	FindMatchingProject(ctx context.Context, candidate settings.Document) (string, bool)
}

// DeletionGuard may veto deleting a project. A non-nil error blocks the delete.
type DeletionGuard interface {
	CheckDelete(ctx context.Context, projectID string) error
}

// ProjectCleaner removes data owned by a deleted project.
type ProjectCleaner interface {
	DeleteByProject(ctx context.Context, projectID string) error
}

// Deps are the collaborators a Service needs.
type Deps struct {
	Projects project.Repository
	Settings settings.Store
	Current  *project.DataService
	Details  *project.DetailsCreator
	Guard    DeletionGuard
	Cleaners []ProjectCleaner
	Sink     analytics.Sink
	Logger   *logging.Logger
	Tracer   trace.TracerProvider
	Policy   DeletePolicy
}

// Service serializes lifecycle actions.
type Service struct {
	mu sync.Mutex
	c  *core
}

var _ Actions = (*Service)(nil)

// NewService builds a Service. Projects, Settings and Current are required.
func NewService(d Deps) (*Service, error) {
	if d.Projects == nil || d.Settings == nil || d.Current == nil {
		return nil, fmt.Errorf("lifecycle: projects, settings and current are required")
	}
	if d.Details == nil {
		d.Details = project.NewDetailsCreator()
	}
	if d.Sink == nil {
		d.Sink = analytics.Nop{}
	}
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	if d.Tracer == nil {
		d.Tracer = otel.GetTracerProvider()
	}
	policy, err := ParseDeletePolicy(string(d.Policy))
	if err != nil {
		return nil, err
	}
	d.Policy = policy

	return &Service{c: &core{
		deps:    d,
		matcher: NewMatcher(d.Projects, d.Settings, d.Logger),
		tracer:  d.Tracer.Tracer(telemetry.InstrumentationName + "/lifecycle"),
	}}, nil
}

// Atomically runs fn while holding the service lock. The Actions passed to
// fn must not be retained after fn returns.
func (s *Service) Atomically(ctx context.Context, fn func(ctx context.Context, a Actions) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, s.c)
}

func (s *Service) FindMatchingProject(ctx context.Context, candidate settings.Document) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.FindMatchingProject(ctx, candidate)
}

func (s *Service) CreateProject(ctx context.Context, doc settings.Document, opts ...ActionOption) (*project.Project, settings.ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.CreateProject(ctx, doc, opts...)
}

func (s *Service) SwitchProject(ctx context.Context, id string, opts ...ActionOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.SwitchProject(ctx, id, opts...)
}

func (s *Service) DeleteProject(ctx context.Context, id string, opts ...ActionOption) (DeletionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.DeleteProject(ctx, id, opts...)
}

// core implements Actions without locking.
type core struct {
	deps    Deps
	matcher *Matcher
	tracer  trace.Tracer
}

func (c *core) FindMatchingProject(ctx context.Context, candidate settings.Document) (string, bool) {
	ctx, span := c.tracer.Start(ctx, "lifecycle.match")
	defer span.End()

	id, ok := c.matcher.FindMatchingProject(ctx, candidate)
	span.SetAttributes(attribute.Bool("match.found", ok))
	return id, ok
}

func (c *core) CreateProject(ctx context.Context, doc settings.Document, opts ...ActionOption) (*project.Project, settings.ImportResult, error) {
	o := applyOptions(analytics.EventFromURICreateProject, opts)
	ctx, span := c.tracer.Start(ctx, "lifecycle.create")
	defer span.End()

	if result := doc.Validate(); result != settings.ImportSuccess {
		err := fmt.Errorf("%w: %s", ErrImportFailed, result)
		recordError(span, err)
		return nil, result, err
	}

	conn := doc.Connection()
	p, err := project.NewProject(c.deps.Details.FromServerURL(conn.ServerURL))
	if err != nil {
		recordError(span, err)
		return nil, settings.ImportInvalidSettings, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}

	c.orderAfterExisting(ctx, p)

	if err := c.deps.Projects.Save(ctx, p); err != nil {
		recordError(span, err)
		return nil, settings.ImportInvalidSettings, fmt.Errorf("failed to save project: %w", err)
	}
	if err := c.deps.Settings.Save(ctx, p.ID, doc); err != nil {
		c.rollbackCreate(ctx, p.ID, false)
		recordError(span, err)
		return nil, settings.ImportInvalidSettings, fmt.Errorf("failed to save settings: %w", err)
	}
	if err := c.deps.Current.SetCurrent(ctx, p.ID); err != nil {
		c.rollbackCreate(ctx, p.ID, true)
		recordError(span, err)
		return nil, settings.ImportInvalidSettings, fmt.Errorf("failed to switch to new project: %w", err)
	}

	span.SetAttributes(attribute.String("project.id", p.ID))
	ctx = logging.WithProjectID(ctx, p.ID)
	c.deps.Logger.Info(ctx, "project created", zap.String("project.name", p.Name))
	c.emit(ctx, o, p.ID, conn.ServerURL)
	return p, settings.ImportSuccess, nil
}

// orderAfterExisting keeps registry order equal to creation order even when
// the clock does not advance between two creates.
func (c *core) orderAfterExisting(ctx context.Context, p *project.Project) {
	all, err := c.deps.Projects.GetAll(ctx)
	if err != nil || len(all) == 0 {
		return
	}
	if last := all[len(all)-1].CreatedAt; !p.CreatedAt.After(last) {
		p.CreatedAt = last.Add(time.Nanosecond)
	}
}

func (c *core) rollbackCreate(ctx context.Context, id string, settingsSaved bool) {
	if settingsSaved {
		if err := c.deps.Settings.Delete(ctx, id); err != nil {
			c.deps.Logger.Error(ctx, "rollback: failed to delete settings", zap.String("project.id", id), zap.Error(err))
		}
	}
	if err := c.deps.Projects.Delete(ctx, id); err != nil {
		c.deps.Logger.Error(ctx, "rollback: failed to delete project", zap.String("project.id", id), zap.Error(err))
	}
}

func (c *core) SwitchProject(ctx context.Context, id string, opts ...ActionOption) error {
	o := applyOptions(analytics.EventSwitchProject, opts)
	ctx, span := c.tracer.Start(ctx, "lifecycle.switch", trace.WithAttributes(attribute.String("project.id", id)))
	defer span.End()

	if err := c.deps.Current.SetCurrent(ctx, id); err != nil {
		recordError(span, err)
		return err
	}

	ctx = logging.WithProjectID(ctx, id)
	c.deps.Logger.Info(ctx, "switched current project")
	c.emit(ctx, o, id, c.serverURLOf(ctx, id))
	return nil
}

func (c *core) DeleteProject(ctx context.Context, id string, opts ...ActionOption) (DeletionResult, error) {
	o := applyOptions(analytics.EventDeleteProject, opts)
	ctx, span := c.tracer.Start(ctx, "lifecycle.delete", trace.WithAttributes(attribute.String("project.id", id)))
	defer span.End()

	if _, err := c.deps.Projects.Get(ctx, id); err != nil {
		recordError(span, err)
		return DeletionResult{}, err
	}

	if c.deps.Guard != nil {
		if err := c.deps.Guard.CheckDelete(ctx, id); err != nil {
			span.SetAttributes(attribute.String("deletion.status", string(DeletionBlocked)))
			c.deps.Logger.Info(logging.WithProjectID(ctx, id), "project deletion blocked", zap.Error(err))
			return DeletionResult{Status: DeletionBlocked}, fmt.Errorf("%w: %v", ErrDeletionBlocked, err)
		}
	}

	serverURL := c.serverURLOf(ctx, id)
	wasCurrent := c.deps.Current.IsCurrent(ctx, id)

	if err := c.deps.Settings.Delete(ctx, id); err != nil {
		recordError(span, err)
		return DeletionResult{}, fmt.Errorf("failed to delete settings: %w", err)
	}
	if err := c.deps.Projects.Delete(ctx, id); err != nil {
		recordError(span, err)
		return DeletionResult{}, fmt.Errorf("failed to delete project: %w", err)
	}

	// Owned data goes only once the project itself is gone. A failing cleaner
	// leaves orphans behind but does not undo the delete.
	for _, cl := range c.deps.Cleaners {
		if err := cl.DeleteByProject(ctx, id); err != nil {
			span.RecordError(err)
			c.deps.Logger.Warn(logging.WithProjectID(ctx, id), "failed to delete project data", zap.Error(err))
		}
	}

	result, err := c.afterDelete(ctx, wasCurrent)
	if err != nil {
		recordError(span, err)
		return result, err
	}

	span.SetAttributes(attribute.String("deletion.status", string(result.Status)))
	c.deps.Logger.Info(logging.WithProjectID(ctx, id), "project deleted",
		zap.String("status", string(result.Status)), zap.String("new_current", result.NewCurrentID))
	c.emit(ctx, o, id, serverURL)
	return result, nil
}

func (c *core) afterDelete(ctx context.Context, wasCurrent bool) (DeletionResult, error) {
	remaining, err := c.deps.Projects.GetAll(ctx)
	if err != nil {
		return DeletionResult{}, fmt.Errorf("failed to list remaining projects: %w", err)
	}

	if len(remaining) == 0 {
		if err := c.deps.Current.Clear(ctx); err != nil {
			return DeletionResult{}, err
		}
		return DeletionResult{Status: DeletedLast}, nil
	}
	if !wasCurrent {
		return DeletionResult{Status: Deleted}, nil
	}

	if c.deps.Policy == DeletePolicyClear {
		if err := c.deps.Current.Clear(ctx); err != nil {
			return DeletionResult{}, err
		}
		return DeletionResult{Status: DeletedCurrent}, nil
	}

	next := remaining[0].ID
	if err := c.deps.Current.SetCurrent(ctx, next); err != nil {
		return DeletionResult{}, err
	}
	return DeletionResult{Status: DeletedCurrent, NewCurrentID: next}, nil
}

func (c *core) serverURLOf(ctx context.Context, id string) string {
	doc, err := c.deps.Settings.Load(ctx, id)
	if err != nil {
		return ""
	}
	return doc.Connection().ServerURL
}

func (c *core) emit(ctx context.Context, o actionOptions, projectID, serverURL string) {
	surface := o.surface
	if surface == "" {
		surface = logging.SurfaceFromContext(ctx)
	}
	c.deps.Sink.Log(ctx, analytics.NewEvent(o.event, projectID, serverURL, surface))
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// IsNotFound reports whether err means the project does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, project.ErrProjectNotFound) || errors.Is(err, project.ErrInvalidProjectID)
}
