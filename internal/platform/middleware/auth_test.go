package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/token"
	id "projecthub/pkg/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func okHandler(t *testing.T, wantIdentity bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantIdentity {
			require.NotNil(t, GetIdentity(r.Context()), "identity must be in context")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	codec := token.NewCodec("test-key")
	h := RequireAuth(codec, testLogger())(okHandler(t, true))

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestRequireAuth_MalformedToken(t *testing.T) {
	codec := token.NewCodec("test-key")
	h := RequireAuth(codec, testLogger())(okHandler(t, true))

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token")
}

func TestRequireAuth_ExpiredTokenIsDistinguished(t *testing.T) {
	codec := token.NewCodec("test-key")
	expired, err := codec.Issue(token.Identity{UserID: id.NewUserID(), Role: id.RoleUser}, -time.Minute)
	require.NoError(t, err)

	h := RequireAuth(codec, testLogger())(okHandler(t, true))
	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")
}

func TestRequireAuth_WrongSigningKey(t *testing.T) {
	ours := token.NewCodec("test-key")
	theirs := token.NewCodec("other-key")
	forged, err := theirs.Issue(token.Identity{UserID: id.NewUserID(), Role: id.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	h := RequireAuth(ours, testLogger())(okHandler(t, true))
	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_AttachesIdentity(t *testing.T) {
	codec := token.NewCodec("test-key")
	ident := token.Identity{UserID: id.NewUserID(), Role: id.RoleAdmin, TenantID: id.NewTenantID()}
	tok, err := codec.Issue(ident, time.Hour)
	require.NoError(t, err)

	var got *token.Identity
	h := RequireAuth(codec, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, ident.UserID, got.UserID)
	assert.Equal(t, ident.TenantID, got.TenantID)
}

func TestRequireRole_Forbidden(t *testing.T) {
	h := RequireRole(testLogger(), id.RoleAdmin)(okHandler(t, false))

	req := httptest.NewRequest(http.MethodPost, "/projects", nil)
	ident := &token.Identity{UserID: id.NewUserID(), Role: id.RoleUser}
	req = req.WithContext(WithIdentity(req.Context(), ident))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "forbidden", body["error"])
}

func TestRequireRole_MissingIdentityIsUnauthorized(t *testing.T) {
	h := RequireRole(testLogger(), id.RoleAdmin)(okHandler(t, false))

	req := httptest.NewRequest(http.MethodPost, "/projects", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole_AllowsListedRole(t *testing.T) {
	h := RequireRole(testLogger(), id.RoleAdmin, id.RoleUser)(okHandler(t, false))

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req = req.WithContext(WithIdentity(req.Context(), &token.Identity{UserID: id.NewUserID(), Role: id.RoleUser}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
