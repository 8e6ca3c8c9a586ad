package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectd/internal/instances"
	"github.com/fyrsmithlabs/projectd/internal/lifecycle"
)

func (s *Server) requireProject(c echo.Context) (string, error) {
	id := c.Param("id")
	if _, err := s.deps.Projects.Get(c.Request().Context(), id); err != nil {
		if lifecycle.IsNotFound(err) {
			return "", echo.NewHTTPError(http.StatusNotFound, "project not found")
		}
		return "", echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}
	return id, nil
}

// saveForProject runs save under the lifecycle lock after checking the
// project still exists, so a concurrent delete cannot leave orphans.
func (s *Server) saveForProject(c echo.Context, projectID string, save func(ctx context.Context) error) error {
	ctx := c.Request().Context()
	err := s.deps.Lifecycle.Atomically(ctx, func(ctx context.Context, _ lifecycle.Actions) error {
		if _, err := s.deps.Projects.Get(ctx, projectID); err != nil {
			return err
		}
		return save(ctx)
	})
	switch {
	case err == nil:
		return nil
	case lifecycle.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, "project not found")
	default:
		s.logger.Error(ctx, "failed to save project data", zap.String("project.id", projectID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "save failed")
	}
}

func (s *Server) handleAddForm(c echo.Context) error {
	var req FormRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	form := instances.Form{
		ProjectID:  c.Param("id"),
		FormID:     req.FormID,
		Version:    req.Version,
		AutoDelete: req.AutoDelete,
		Revision:   req.Revision,
	}
	if err := s.saveForProject(c, form.ProjectID, func(ctx context.Context) error {
		return s.deps.Forms.Save(ctx, form)
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, form)
}

func (s *Server) handleAddInstance(c echo.Context) error {
	var req InstanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	inst := instances.Instance{
		ID:          req.ID,
		ProjectID:   c.Param("id"),
		FormID:      req.FormID,
		FormVersion: req.FormVersion,
		Status:      req.Status,
	}
	if err := s.saveForProject(c, inst.ProjectID, func(ctx context.Context) error {
		return s.deps.Instances.Save(ctx, inst)
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, inst)
}

// handleAutoDelete evaluates the auto-delete rule for one instance using the
// owning project's settings.
func (s *Server) handleAutoDelete(c echo.Context) error {
	ctx := c.Request().Context()
	projectID, err := s.requireProject(c)
	if err != nil {
		return err
	}

	inst, err := s.deps.Instances.Get(ctx, c.Param("instance"))
	if err != nil || inst.ProjectID != projectID {
		if err != nil && !errors.Is(err, instances.ErrNotFound) {
			s.logger.Error(ctx, "instance lookup failed", zap.Error(err))
		}
		return echo.NewHTTPError(http.StatusNotFound, "instance not found")
	}

	enabled := false
	if doc, err := s.deps.Settings.Load(ctx, projectID); err == nil {
		enabled = instances.AutoDeleteEnabled(doc)
	}
	return c.JSON(http.StatusOK, AutoDeleteResponse{
		InstanceID: inst.ID,
		Delete:     instances.ShouldInstanceBeDeleted(ctx, s.deps.Forms, enabled, inst),
	})
}

// connectionKeys cannot be changed after creation; a project's server identity is fixed.
var connectionKeys = map[string]struct{}{
	"server_url": {},
	"username":   {},
	"password":   {},
	"protocol":   {},
}

// handleUpdateGeneral merges keys into the project's general settings section.
func (s *Server) handleUpdateGeneral(c echo.Context) error {
	ctx := c.Request().Context()
	projectID, err := s.requireProject(c)
	if err != nil {
		return err
	}

	// BindBody only; path params would otherwise land in the map.
	var patch map[string]any
	if err := (&echo.DefaultBinder{}).BindBody(c, &patch); err != nil || len(patch) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	for k := range patch {
		if _, fixed := connectionKeys[k]; fixed {
			return echo.NewHTTPError(http.StatusBadRequest, "connection setting "+k+" cannot be changed")
		}
	}

	err = s.deps.Lifecycle.Atomically(ctx, func(ctx context.Context, _ lifecycle.Actions) error {
		doc, err := s.deps.Settings.Load(ctx, projectID)
		if err != nil {
			return err
		}
		for k, v := range patch {
			doc.General[k] = v
		}
		return s.deps.Settings.Save(ctx, projectID, doc)
	})
	if err != nil {
		s.logger.Error(ctx, "settings update failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "settings update failed")
	}
	return c.JSON(http.StatusOK, CountResponse{Count: len(patch)})
}
