package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/projectd/internal/analytics"
	"github.com/fyrsmithlabs/projectd/internal/config"
	"github.com/fyrsmithlabs/projectd/internal/logging"
	"github.com/fyrsmithlabs/projectd/internal/project"
	"github.com/fyrsmithlabs/projectd/internal/settings"
	"github.com/fyrsmithlabs/projectd/internal/telemetry"
)

type fixture struct {
	svc      *Service
	projects project.Repository
	settings *flakySettings
	current  *project.DataService
	events   *analytics.Recorder
	logger   *logging.TestLogger
	tel      *telemetry.TestTelemetry
}

type fixtureOption func(*Deps)

func withGuard(g DeletionGuard) fixtureOption { return func(d *Deps) { d.Guard = g } }
func withPolicy(p DeletePolicy) fixtureOption  { return func(d *Deps) { d.Policy = p } }

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	f := &fixture{
		projects: project.NewMemoryRepository(),
		settings: &flakySettings{Store: settings.NewMemoryStore()},
		events:   analytics.NewRecorder(),
		logger:   logging.NewTestLogger(),
		tel:      telemetry.NewTestTelemetry(),
	}
	f.current = project.NewDataService(f.projects, project.NewMemoryPointer())

	deps := Deps{
		Projects: f.projects,
		Settings: f.settings,
		Current:  f.current,
		Sink:     f.events,
		Logger:   f.logger.Logger,
		Tracer:   f.tel.TracerProvider(),
	}
	for _, o := range opts {
		o(&deps)
	}
	svc, err := NewService(deps)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func doc(url, user, pass string) settings.Document {
	return settings.NewGenerator().WithServerDetails(url, user, config.Secret(pass))
}

func (f *fixture) create(t *testing.T, url, user, pass string) *project.Project {
	t.Helper()
	p, result, err := f.svc.CreateProject(context.Background(), doc(url, user, pass))
	require.NoError(t, err)
	require.Equal(t, settings.ImportSuccess, result)
	return p
}

func (f *fixture) count(t *testing.T) int {
	t.Helper()
	all, err := f.projects.GetAll(context.Background())
	require.NoError(t, err)
	return len(all)
}

// flakySettings fails selected operations on demand.
type flakySettings struct {
	settings.Store
	failSave   bool
	failDelete bool
	failLoad   map[string]bool
}

var errStorage = errors.New("storage unavailable")

func (s *flakySettings) Save(ctx context.Context, id string, d settings.Document) error {
	if s.failSave {
		return errStorage
	}
	return s.Store.Save(ctx, id, d)
}

func (s *flakySettings) Load(ctx context.Context, id string) (settings.Document, error) {
	if s.failLoad[id] {
		return settings.Document{}, errStorage
	}
	return s.Store.Load(ctx, id)
}

func (s *flakySettings) Delete(ctx context.Context, id string) error {
	if s.failDelete {
		return errStorage
	}
	return s.Store.Delete(ctx, id)
}

type guardFunc func(ctx context.Context, id string) error

func (g guardFunc) CheckDelete(ctx context.Context, id string) error { return g(ctx, id) }
