package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/projectd/internal/analytics"
	"github.com/fyrsmithlabs/projectd/internal/resolver"
)

func uriBody(action string) map[string]string {
	return map[string]string{
		"action": action, "projectUrl": "https://example.com", "userName": "alice", "password": "secret",
	}
}

func TestHandleURI_CreateThenPrompt(t *testing.T) {
	env := setupTestServer(t, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/uri", uriBody("insert-or-edit"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[URIResponse](t, rec)
	assert.Equal(t, "created", created.Outcome)
	assert.Equal(t, RedirectMainMenu, created.Redirect)
	assert.Equal(t, 1, env.size(t))

	rec = env.do(t, http.MethodPost, "/api/v1/uri", uriBody("insert"))
	require.Equal(t, http.StatusOK, rec.Code)
	prompt := decode[URIResponse](t, rec)
	assert.Equal(t, "choice_required", prompt.Outcome)
	assert.Equal(t, created.ProjectID, prompt.ProjectID)
	assert.Equal(t, []string{"switch", "duplicate"}, prompt.Choices)
	assert.Equal(t, resolver.MessageDuplicateTitle, prompt.Title)
	assert.Empty(t, prompt.Redirect)
	assert.Equal(t, 1, env.size(t))
}

func TestHandleChoose(t *testing.T) {
	env := setupTestServer(t, nil)
	first := decode[URIResponse](t, env.do(t, http.MethodPost, "/api/v1/uri", uriBody("insert")))

	body := uriBody("insert")
	body["choice"] = "duplicate"
	rec := env.do(t, http.MethodPost, "/api/v1/uri/choose", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dup := decode[URIResponse](t, rec)
	assert.Equal(t, "created", dup.Outcome)
	assert.NotEqual(t, first.ProjectID, dup.ProjectID)
	assert.Equal(t, 2, env.size(t))

	body["choice"] = "switch"
	rec = env.do(t, http.MethodPost, "/api/v1/uri/choose", body)
	require.Equal(t, http.StatusOK, rec.Code)
	sw := decode[URIResponse](t, rec)
	assert.Equal(t, "switched", sw.Outcome)
	assert.Equal(t, first.ProjectID, sw.ProjectID, "first match in registry order")
	assert.Equal(t, 2, env.size(t))

	names := env.events.Names()
	assert.Equal(t, analytics.EventDuplicateProjectSwitch, names[len(names)-1])

	body["choice"] = "merge"
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/v1/uri/choose", body).Code)
}

func TestHandleURI_Delete(t *testing.T) {
	env := setupTestServer(t, nil)
	env.do(t, http.MethodPost, "/api/v1/uri", uriBody("insert"))

	rec := env.do(t, http.MethodPost, "/api/v1/uri", uriBody("delete"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "deleted", decode[URIResponse](t, rec).Outcome)
	assert.Equal(t, 0, env.size(t))

	rec = env.do(t, http.MethodPost, "/api/v1/uri", uriBody("delete"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[URIResponse](t, rec)
	assert.Equal(t, "error", resp.Outcome)
	assert.Equal(t, resolver.MessageNoMatch, resp.Message)
}

func TestHandleURI_Errors(t *testing.T) {
	env := setupTestServer(t, nil)

	tests := []struct {
		name    string
		mutate  func(map[string]string)
		message string
	}{
		{"unknown action", func(b map[string]string) { b["action"] = "edit" }, resolver.MessageUnrecognizedURI},
		{"invalid url", func(b map[string]string) { b["projectUrl"] = "example" }, resolver.MessageInvalidURL},
		{"empty url", func(b map[string]string) { b["projectUrl"] = "" }, resolver.MessageMissingParameters},
		{"blank password", func(b map[string]string) { b["password"] = "  " }, resolver.MessageMissingParameters},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := uriBody("insert")
			tt.mutate(body)
			rec := env.do(t, http.MethodPost, "/api/v1/uri", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decode[URIResponse](t, rec)
			assert.Equal(t, "error", resp.Outcome)
			assert.Equal(t, tt.message, resp.Message)
			assert.Equal(t, 0, env.size(t))
		})
	}
}
