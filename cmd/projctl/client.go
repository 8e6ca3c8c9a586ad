package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// client talks to a running projectd.
type client struct {
	base string
	http *http.Client
}

func newClient(base string, timeout time.Duration) *client {
	return &client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// statusError is a non-2xx reply. Body is kept for display.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.Code, strings.TrimSpace(e.Body))
}

// do sends in as JSON (when non-nil) and decodes the reply into out.
// okCodes lists the statuses whose body is decoded instead of failing.
func (c *client) do(ctx context.Context, method, path string, in, out any, okCodes ...int) (int, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request to %s: %w", c.base+path, err)
	}
	defer resp.Body.Close()

	accepted := resp.StatusCode >= 200 && resp.StatusCode < 300
	for _, code := range okCodes {
		if resp.StatusCode == code {
			accepted = true
		}
	}
	if !accepted {
		raw, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return resp.StatusCode, fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		return resp.StatusCode, &statusError{Code: resp.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Wire types mirror internal/http/types.go.

type healthResponse struct {
	Status         string `json:"status"`
	Projects       int    `json:"projects"`
	CurrentProject string `json:"current_project,omitempty"`
}

type connectionRequest struct {
	Action     string `json:"action,omitempty"`
	ProjectURL string `json:"projectUrl"`
	UserName   string `json:"userName"`
	Password   string `json:"password"`
	Choice     string `json:"choice,omitempty"`
}

type uriResponse struct {
	Outcome      string   `json:"outcome"`
	ProjectID    string   `json:"project_id,omitempty"`
	Redirect     string   `json:"redirect,omitempty"`
	Choices      []string `json:"choices,omitempty"`
	Title        string   `json:"title,omitempty"`
	Message      string   `json:"message,omitempty"`
	NewCurrentID string   `json:"new_current_id,omitempty"`
}

type insertResponse struct {
	URI       *string `json:"uri"`
	ProjectID string  `json:"project_id,omitempty"`
	Result    string  `json:"result,omitempty"`
}

type switchRequest struct {
	ProjectID  *string `json:"projectId,omitempty"`
	ProjectURL *string `json:"projectUrl,omitempty"`
	UserName   *string `json:"userName,omitempty"`
}

type countResponse struct {
	Count   int    `json:"count"`
	Message string `json:"message,omitempty"`
}

type projectResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	Current   bool      `json:"current"`
}

type listResponse struct {
	Projects []projectResponse `json:"projects"`
}

func (c *client) Health(ctx context.Context) (healthResponse, error) {
	var out healthResponse
	_, err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

// Open submits a direct-invocation request. Client errors (4xx) still carry
// a uriResponse with a message, so they are decoded rather than failed.
func (c *client) Open(ctx context.Context, req connectionRequest) (uriResponse, error) {
	var out uriResponse
	_, err := c.do(ctx, http.MethodPost, "/api/v1/uri", req, &out,
		http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity)
	return out, err
}

func (c *client) Choose(ctx context.Context, req connectionRequest) (uriResponse, error) {
	var out uriResponse
	_, err := c.do(ctx, http.MethodPost, "/api/v1/uri/choose", req, &out,
		http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity)
	return out, err
}

func (c *client) Insert(ctx context.Context, req connectionRequest) (insertResponse, error) {
	var out insertResponse
	_, err := c.do(ctx, http.MethodPost, "/api/v1/projects", req, &out, http.StatusUnprocessableEntity)
	return out, err
}

func (c *client) Delete(ctx context.Context, id string) (countResponse, error) {
	var out countResponse
	path := "/api/v1/projects?projectId=" + url.QueryEscape(id)
	_, err := c.do(ctx, http.MethodDelete, path, nil, &out, http.StatusNotFound, http.StatusConflict)
	return out, err
}

func (c *client) Switch(ctx context.Context, req switchRequest) (countResponse, error) {
	var out countResponse
	_, err := c.do(ctx, http.MethodPut, "/api/v1/switch", req, &out, http.StatusNotFound)
	return out, err
}

func (c *client) List(ctx context.Context) (listResponse, error) {
	var out listResponse
	_, err := c.do(ctx, http.MethodGet, "/api/v1/projects", nil, &out)
	return out, err
}
