package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/events"
	"projecthub/internal/platform/middleware"
	projectmodels "projecthub/internal/project/models"
	projectstore "projecthub/internal/project/store"
	"projecthub/internal/task/models"
	"projecthub/internal/task/service"
	"projecthub/internal/task/store"
	"projecthub/internal/token"
	id "projecthub/pkg/domain"
)

type env struct {
	server   *httptest.Server
	codec    *token.Codec
	tenant   id.TenantID
	projects *projectstore.Memory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	codec := token.NewCodec("test-signing-key")
	projects := projectstore.NewMemory()

	svc := service.New(store.NewMemory(), projects, events.NewMemory(), logger)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(codec, logger))
		New(svc, logger).Register(r)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &env{server: srv, codec: codec, tenant: id.NewTenantID(), projects: projects}
}

func (e *env) seedProject(t *testing.T) *projectmodels.Project {
	t.Helper()
	now := time.Now().UTC()
	project := &projectmodels.Project{
		ID:        id.NewProjectID(),
		TenantID:  e.tenant,
		Name:      "Seed Project",
		Status:    projectmodels.StatusPending,
		CreatedBy: id.NewUserID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, e.projects.Create(context.Background(), project))
	return project
}

func (e *env) tokenFor(t *testing.T, role id.Role) string {
	t.Helper()
	tok, err := e.codec.Issue(token.Identity{
		UserID:   id.NewUserID(),
		Role:     role,
		TenantID: e.tenant,
	}, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *env) do(t *testing.T, method, path, bearer string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestTasksRequireAuth(t *testing.T) {
	e := newEnv(t)
	project := e.seedProject(t)

	resp := e.do(t, http.MethodGet, "/tasks/project/"+project.ID.String(), "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTaskMutationsRequireAdmin(t *testing.T) {
	e := newEnv(t)
	project := e.seedProject(t)
	user := e.tokenFor(t, id.RoleUser)

	resp := e.do(t, http.MethodPost, "/tasks", user, models.CreateRequest{
		ProjectID: project.ID.String(),
		Title:     "Forbidden task",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/tasks/project/"+project.ID.String(), user, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTaskLifecycle(t *testing.T) {
	e := newEnv(t)
	project := e.seedProject(t)
	admin := e.tokenFor(t, id.RoleAdmin)

	resp := e.do(t, http.MethodPost, "/tasks", admin, models.CreateRequest{
		ProjectID: project.ID.String(),
		Title:     "Draft homepage copy",
		Status:    "in-progress",
		DueDate:   "2026-10-01T12:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, models.StatusInProgress, created.Status)
	require.NotNil(t, created.DueDate)

	resp = e.do(t, http.MethodGet, "/tasks/"+created.ID.String(), admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodPut, "/tasks/"+created.ID.String(), admin, models.UpdateRequest{
		Title:  "Finalize homepage copy",
		Status: "done",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Equal(t, models.StatusDone, updated.Status)

	resp = e.do(t, http.MethodGet, "/tasks/project/"+project.ID.String(), admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []models.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed, 1)

	resp = e.do(t, http.MethodDelete, "/tasks/"+created.ID.String(), admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/tasks/"+created.ID.String(), admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateTaskUnknownProject(t *testing.T) {
	e := newEnv(t)
	admin := e.tokenFor(t, id.RoleAdmin)

	resp := e.do(t, http.MethodPost, "/tasks", admin, models.CreateRequest{
		ProjectID: id.NewProjectID().String(),
		Title:     "Orphan task",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTaskValidationErrors(t *testing.T) {
	e := newEnv(t)
	admin := e.tokenFor(t, id.RoleAdmin)

	resp := e.do(t, http.MethodPost, "/tasks", admin, models.CreateRequest{Title: "ab"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Details)
}
