package lifecycle

import (
	"context"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectd/internal/logging"
	"github.com/fyrsmithlabs/projectd/internal/project"
	"github.com/fyrsmithlabs/projectd/internal/settings"
)

// Matcher finds the project whose stored settings point at the same server
// account as a candidate document.
type Matcher struct {
	projects project.Repository
	settings settings.Store
	logger   *logging.Logger
}

// NewMatcher returns a Matcher over the registry and settings store.
func NewMatcher(projects project.Repository, store settings.Store, logger *logging.Logger) *Matcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Matcher{projects: projects, settings: store, logger: logger}
}

// FindMatchingProject returns the first project in registry order whose
// connection matches candidate. Projects whose settings cannot be read are
// skipped; absence of a match is reported as ("", false), never as an error.
func (m *Matcher) FindMatchingProject(ctx context.Context, candidate settings.Document) (string, bool) {
	all, err := m.projects.GetAll(ctx)
	if err != nil {
		m.logger.Warn(ctx, "matcher could not list projects", zap.Error(err))
		return "", false
	}

	want := candidate.Stable().Connection()
	for _, p := range all {
		doc, err := m.settings.Load(ctx, p.ID)
		if err != nil {
			m.logger.Debug(ctx, "matcher skipped project", zap.String("project.id", p.ID), zap.Error(err))
			continue
		}
		if connectionMatches(want, doc.Stable().Connection()) {
			return p.ID, true
		}
	}
	return "", false
}

// connectionMatches compares server and user exactly. The password only
// takes part when the candidate carries one, so a lookup by url and user
// alone still finds the project.
func connectionMatches(candidate, existing settings.Connection) bool {
	if candidate.ServerURL != existing.ServerURL || candidate.UserName != existing.UserName {
		return false
	}
	if candidate.Password == "" {
		return true
	}
	return candidate.Password == existing.Password
}
