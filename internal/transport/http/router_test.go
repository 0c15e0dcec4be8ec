package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authhandler "projecthub/internal/auth/handler"
	authmodels "projecthub/internal/auth/models"
	authservice "projecthub/internal/auth/service"
	authstore "projecthub/internal/auth/store"
	"projecthub/internal/cache"
	"projecthub/internal/events"
	"projecthub/internal/platform/metrics"
	projecthandler "projecthub/internal/project/handler"
	projectmodels "projecthub/internal/project/models"
	projectservice "projecthub/internal/project/service"
	projectstore "projecthub/internal/project/store"
	taskhandler "projecthub/internal/task/handler"
	taskmodels "projecthub/internal/task/models"
	taskservice "projecthub/internal/task/service"
	taskstore "projecthub/internal/task/store"
	"projecthub/internal/token"
	id "projecthub/pkg/domain"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewWith(nil)
	codec := token.NewCodec("test-signing-key")
	publisher := events.NewMemory()

	users := authstore.NewMemoryUsers()
	tenants := authstore.NewMemoryTenants()
	authSvc := authservice.New(users, authstore.NewMemoryTx(users, tenants),
		codec, publisher, logger, m, time.Hour, 0)

	projects := projectstore.NewMemory()
	tasks := taskstore.NewMemory()
	projects.OnDelete(func(ctx context.Context, projectID id.ProjectID) {
		_ = tasks.DeleteByProject(ctx, projectID)
	})

	projectSvc := projectservice.New(projects, cache.NewMemory(), publisher, logger, m)
	taskSvc := taskservice.New(tasks, projects, publisher, logger)

	router := NewRouter(Deps{
		Logger:   logger,
		Metrics:  m,
		Verifier: codec,
		Auth:     authhandler.New(authSvc, logger),
		Projects: projecthandler.New(projectSvc, logger),
		Tasks:    taskhandler.New(taskSvc, logger),
		Checks: []HealthCheck{
			{Name: "store", Check: func(context.Context) error { return nil }},
			{Name: "cache", Check: func(context.Context) error { return errors.New("down") }},
		},
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, bearer string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthReportsDegradedDependencies(t *testing.T) {
	srv := newServer(t)

	resp := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string            `json:"status"`
		Deps   map[string]string `json:"dependencies"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Deps["store"])
	assert.Equal(t, "unavailable", body.Deps["cache"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t)

	resp := doJSON(t, srv, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterLoginAndManageResources(t *testing.T) {
	srv := newServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/auth/register", "", authmodels.RegisterRequest{
		Email:      "admin@acme.test",
		Password:   "s3cret!",
		Role:       "admin",
		TenantName: "Acme",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var session authmodels.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	require.NotEmpty(t, session.Token)

	resp = doJSON(t, srv, http.MethodPost, "/auth/login", "", authmodels.LoginRequest{
		Email:    "admin@acme.test",
		Password: "s3cret!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	admin := session.Token

	resp = doJSON(t, srv, http.MethodPost, "/projects", admin, projectmodels.UpsertRequest{
		Name: "Website Redesign",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var project projectmodels.Project
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&project))

	resp = doJSON(t, srv, http.MethodGet, "/projects", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))

	resp = doJSON(t, srv, http.MethodGet, "/projects", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))

	resp = doJSON(t, srv, http.MethodPost, "/tasks", admin, taskmodels.CreateRequest{
		ProjectID: project.ID.String(),
		Title:     "Draft homepage copy",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var task taskmodels.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))

	resp = doJSON(t, srv, http.MethodGet, "/tasks/project/"+project.ID.String(), admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodDelete, "/projects/"+project.ID.String(), admin, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAuthenticatedRoutesRejectAnonymous(t *testing.T) {
	srv := newServer(t)

	resp := doJSON(t, srv, http.MethodGet, "/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodGet, "/projects", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNonAdminCannotMutate(t *testing.T) {
	srv := newServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/auth/register", "", authmodels.RegisterRequest{
		Email:      "member@acme.test",
		Password:   "s3cret!",
		Role:       "user",
		TenantName: "Acme",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var session authmodels.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))

	resp = doJSON(t, srv, http.MethodPost, "/projects", session.Token, projectmodels.UpsertRequest{
		Name: "Forbidden",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestNonJSONBodyRejected(t *testing.T) {
	srv := newServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/auth/register", bytes.NewBufferString("email=x"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}
