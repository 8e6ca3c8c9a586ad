package http

import (
	"time"

	"github.com/fyrsmithlabs/projectd/internal/config"
)

// ContentItemTypeSwitch is the content type reported for the switch path.
const ContentItemTypeSwitch = "vnd.android.cursor.item/vnd.odk.project"

// RedirectMainMenu is where a successful direct request sends the caller.
const RedirectMainMenu = "/main-menu"

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	Projects       int    `json:"projects"`
	CurrentProject string `json:"current_project,omitempty"`
}

// InsertRequest is the body for POST /api/v1/projects.
type InsertRequest struct {
	ProjectURL string        `json:"projectUrl" validate:"required,notblank,http_url"`
	UserName   string        `json:"userName" validate:"required,notblank"`
	Password   config.Secret `json:"password" validate:"required,notblank"`
}

// InsertResponse carries the new project's reference, or null on failure.
type InsertResponse struct {
	URI       *string `json:"uri"`
	ProjectID string  `json:"project_id,omitempty"`
	Result    string  `json:"result,omitempty"`
}

// InsertResultInvalidRequest is reported when the insert body fails validation.
const InsertResultInvalidRequest = "invalid_request"

// SwitchRequest is the body for PUT /api/v1/switch. Absent keys stay nil.
type SwitchRequest struct {
	ProjectID  *string `json:"projectId"`
	ProjectURL *string `json:"projectUrl" validate:"omitnil,notblank"`
	UserName   *string `json:"userName" validate:"omitnil,notblank"`
}

// CountResponse reports how many rows an update or delete touched.
type CountResponse struct {
	Count   int    `json:"count"`
	Message string `json:"message,omitempty"`
}

// TypeResponse is the body for GET /api/v1/types/:path.
type TypeResponse struct {
	Type string `json:"type"`
}

// ProjectResponse describes one project.
type ProjectResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	Current   bool      `json:"current"`
}

// ListResponse is the body for GET /api/v1/projects.
type ListResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

// URIRequest is the body for the direct-invocation surface.
type URIRequest struct {
	Action     string        `json:"action"`
	ProjectURL string        `json:"projectUrl"`
	UserName   string        `json:"userName"`
	Password   config.Secret `json:"password"`
	Choice     string        `json:"choice,omitempty"`
}

// URIResponse is what the direct-invocation surface returns.
type URIResponse struct {
	Outcome   string   `json:"outcome"`
	ProjectID string   `json:"project_id,omitempty"`
	Redirect  string   `json:"redirect,omitempty"`
	Choices   []string `json:"choices,omitempty"`
	Title     string   `json:"title,omitempty"`
	Message   string   `json:"message,omitempty"`
	// NewCurrentID is set when deleting the current project picked another.
	NewCurrentID string `json:"new_current_id,omitempty"`
}

// FormRequest registers a form definition for a project.
type FormRequest struct {
	FormID     string `json:"form_id" validate:"required"`
	Version    string `json:"version"`
	AutoDelete string `json:"auto_delete" validate:"omitempty,oneof=true false"`
	Revision   int64  `json:"revision"`
}

// InstanceRequest records a form instance for a project.
type InstanceRequest struct {
	ID          string `json:"id" validate:"required"`
	FormID      string `json:"form_id" validate:"required"`
	FormVersion string `json:"form_version"`
	Status      string `json:"status" validate:"required,oneof=incomplete complete submitted submission_failed"`
}

// AutoDeleteResponse answers whether an instance should be auto-deleted.
type AutoDeleteResponse struct {
	InstanceID string `json:"instance_id"`
	Delete     bool   `json:"delete"`
}
