package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectd/internal/lifecycle"
	"github.com/fyrsmithlabs/projectd/internal/resolver"
)

// handleURI runs a direct-invocation request through the resolver.
func (s *Server) handleURI(c echo.Context) error {
	var req URIRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, URIResponse{Outcome: "error", Message: resolver.MessageUnrecognizedURI})
	}

	out, err := s.deps.Resolver.Resolve(c.Request().Context(), toResolverRequest(req))
	if err != nil {
		return s.uriError(c, err)
	}
	return c.JSON(http.StatusOK, toURIResponse(out))
}

// handleChoose applies the caller's answer to a duplicate prompt.
func (s *Server) handleChoose(c echo.Context) error {
	var req URIRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, URIResponse{Outcome: "error", Message: resolver.MessageUnrecognizedURI})
	}

	out, err := s.deps.Resolver.Choose(c.Request().Context(), toResolverRequest(req), resolver.Choice(req.Choice))
	if err != nil {
		return s.uriError(c, err)
	}
	return c.JSON(http.StatusOK, toURIResponse(out))
}

func (s *Server) uriError(c echo.Context, err error) error {
	status := http.StatusBadRequest
	message := resolver.UserMessage(err)

	switch {
	case errors.Is(err, resolver.ErrInvalidRequest), errors.Is(err, resolver.ErrUnknownAction), errors.Is(err, resolver.ErrNoMatch):
	case errors.Is(err, lifecycle.ErrDeletionBlocked):
		status, message = http.StatusConflict, "This project still has unsent forms and cannot be deleted"
	case errors.Is(err, lifecycle.ErrImportFailed):
		status, message = http.StatusUnprocessableEntity, "These settings cannot be imported"
	default:
		s.logger.Error(c.Request().Context(), "uri request failed", zap.Error(err))
		status, message = http.StatusInternalServerError, "Something went wrong"
	}
	return c.JSON(status, URIResponse{Outcome: "error", Message: message})
}

func toResolverRequest(req URIRequest) resolver.Request {
	return resolver.Request{
		Action:     req.Action,
		ProjectURL: req.ProjectURL,
		UserName:   req.UserName,
		Password:   req.Password,
	}
}

func toURIResponse(out resolver.Outcome) URIResponse {
	resp := URIResponse{Outcome: string(out.Kind), ProjectID: out.ProjectID}
	switch out.Kind {
	case resolver.OutcomeChoiceRequired:
		for _, ch := range out.Choices {
			resp.Choices = append(resp.Choices, string(ch))
		}
		resp.Title = resolver.MessageDuplicateTitle
		resp.Message = resolver.MessageDuplicateDetails
	case resolver.OutcomeDeleted:
		resp.NewCurrentID = out.Deletion.NewCurrentID
		resp.Redirect = RedirectMainMenu
	default:
		resp.Redirect = RedirectMainMenu
	}
	return resp
}
