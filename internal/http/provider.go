package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectd/internal/analytics"
	"github.com/fyrsmithlabs/projectd/internal/lifecycle"
	"github.com/fyrsmithlabs/projectd/internal/project"
	"github.com/fyrsmithlabs/projectd/internal/settings"
)

// handleInsert creates a project from server details. Provider inserts never
// prompt: a matching project is duplicated.
func (s *Server) handleInsert(c echo.Context) error {
	ctx := c.Request().Context()

	var req InsertRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(ctx, "invalid insert request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		s.logger.Info(ctx, "rejected insert request", zap.Error(err))
		return c.JSON(http.StatusUnprocessableEntity, InsertResponse{Result: InsertResultInvalidRequest})
	}

	doc := settings.NewGenerator().WithServerDetails(req.ProjectURL, req.UserName, req.Password)
	p, result, err := s.deps.Lifecycle.CreateProject(ctx, doc,
		lifecycle.WithEvent(analytics.EventProviderCreateProject), lifecycle.WithSurface(SurfaceProvider))
	if err != nil {
		s.logger.Warn(ctx, "provider insert failed", zap.String("result", string(result)), zap.Error(err))
		return c.JSON(http.StatusUnprocessableEntity, InsertResponse{Result: string(result)})
	}

	uri := "/api/v1/projects/" + p.ID
	return c.JSON(http.StatusCreated, InsertResponse{URI: &uri, ProjectID: p.ID, Result: string(result)})
}

// handleDelete removes the project named by the projectId query parameter.
func (s *Server) handleDelete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.QueryParam("projectId")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "projectId is required")
	}

	res, err := s.deps.Lifecycle.DeleteProject(ctx, id, lifecycle.WithSurface(SurfaceProvider))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, CountResponse{Count: 1, Message: string(res.Status)})
	case lifecycle.IsNotFound(err):
		return c.JSON(http.StatusNotFound, CountResponse{Count: 0, Message: "project not found"})
	case errors.Is(err, lifecycle.ErrDeletionBlocked):
		return c.JSON(http.StatusConflict, CountResponse{Count: 0, Message: "project has unsent instances"})
	default:
		s.logger.Error(ctx, "provider delete failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "delete failed")
	}
}

// handleSwitch changes the current project by id, or by url and user.
func (s *Server) handleSwitch(c echo.Context) error {
	ctx := c.Request().Context()

	var req SwitchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ProjectID == nil && (req.ProjectURL == nil || req.UserName == nil) {
		return echo.NewHTTPError(http.StatusBadRequest, "projectId or projectUrl and userName are required")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "projectUrl and userName must not be blank")
	}

	err := s.deps.Lifecycle.Atomically(ctx, func(ctx context.Context, a lifecycle.Actions) error {
		var id string
		if req.ProjectID != nil {
			id = *req.ProjectID
		} else {
			// Lookup by url and user only; the password is not part of this surface.
			doc := settings.NewGenerator().WithServerDetails(*req.ProjectURL, *req.UserName, "")
			matched, ok := a.FindMatchingProject(ctx, doc)
			if !ok {
				return project.ErrProjectNotFound
			}
			id = matched
		}
		return a.SwitchProject(ctx, id, lifecycle.WithSurface(SurfaceProvider))
	})

	switch {
	case err == nil:
		return c.JSON(http.StatusOK, CountResponse{Count: 1})
	case lifecycle.IsNotFound(err):
		return c.JSON(http.StatusNotFound, CountResponse{Count: 0, Message: "project not found"})
	default:
		s.logger.Error(ctx, "provider switch failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "switch failed")
	}
}

// handleGetType reports the content type of a provider path.
func (s *Server) handleGetType(c echo.Context) error {
	if c.Param("path") != "switch" {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown uri "+c.Param("path"))
	}
	return c.JSON(http.StatusOK, TypeResponse{Type: ContentItemTypeSwitch})
}

func (s *Server) handleList(c echo.Context) error {
	ctx := c.Request().Context()
	all, err := s.deps.Projects.GetAll(ctx)
	if err != nil {
		s.logger.Error(ctx, "list projects failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "list failed")
	}
	cur, _ := s.deps.Current.CurrentID(ctx)

	resp := ListResponse{Projects: make([]ProjectResponse, 0, len(all))}
	for _, p := range all {
		resp.Projects = append(resp.Projects, toProjectResponse(p, p.ID == cur))
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCurrent(c echo.Context) error {
	p, err := s.deps.Current.Current(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no current project")
	}
	return c.JSON(http.StatusOK, toProjectResponse(p, true))
}

func (s *Server) handleGetProject(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := s.deps.Projects.Get(ctx, c.Param("id"))
	if err != nil {
		if lifecycle.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "project not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}
	return c.JSON(http.StatusOK, toProjectResponse(p, s.deps.Current.IsCurrent(ctx, p.ID)))
}

func toProjectResponse(p *project.Project, current bool) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		Icon:      p.Icon,
		Color:     p.Color,
		CreatedAt: p.CreatedAt,
		Current:   current,
	}
}
