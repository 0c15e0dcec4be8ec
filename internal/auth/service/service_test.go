package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/auth/models"
	"projecthub/internal/auth/store"
	"projecthub/internal/events"
	"projecthub/internal/platform/metrics"
	"projecthub/internal/token"
	dErrors "projecthub/pkg/domain-errors"
)

type fixture struct {
	svc       *Service
	users     *store.MemoryUsers
	tenants   *store.MemoryTenants
	codec     *token.Codec
	publisher *events.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := store.NewMemoryUsers()
	tenants := store.NewMemoryTenants()
	codec := token.NewCodec("test-signing-key")
	publisher := events.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(users, store.NewMemoryTx(users, tenants),
		codec, publisher, logger, metrics.NewWith(nil), time.Hour, 0)
	return &fixture{svc: svc, users: users, tenants: tenants, codec: codec, publisher: publisher}
}

func validRegistration() models.RegisterRequest {
	return models.RegisterRequest{
		Email:      "admin@acme.test",
		Password:   "s3cret!",
		Role:       "admin",
		TenantName: "Acme",
	}
}

func TestRegisterIssuesVerifiableToken(t *testing.T) {
	f := newFixture(t)

	session, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	assert.Equal(t, "admin@acme.test", session.User.Email)

	ident, err := f.codec.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, ident.UserID)
	assert.Equal(t, session.User.TenantID, ident.TenantID)

	assert.Equal(t, 1, f.users.Count())
	assert.Equal(t, 1, f.tenants.Count())

	published := f.publisher.Published(events.TopicUserEvents)
	require.Len(t, published, 1)
	assert.Equal(t, events.TypeUserRegistered, published[0].Type)
}

func TestRegisterValidationEnumeratesViolations(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), models.RegisterRequest{
		Email:    "not-an-email",
		Password: "short",
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.GreaterOrEqual(t, len(dErrors.Details(err)), 2)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	req := validRegistration()
	req.TenantName = "Acme Again"
	_, err = f.svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	// The failed registration must not leave a second tenant behind.
	assert.Equal(t, 1, f.tenants.Count())
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	session, err := f.svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@acme.test",
		Password: "s3cret!",
	})
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	_, err = f.codec.Verify(session.Token)
	require.NoError(t, err)

	published := f.publisher.Published(events.TopicUserEvents)
	require.Len(t, published, 2)
	assert.Equal(t, events.TypeUserLoggedIn, published[1].Type)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, wrongPassword := f.svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@acme.test",
		Password: "wrong-password",
	})
	require.Error(t, wrongPassword)
	assert.True(t, dErrors.HasCode(wrongPassword, dErrors.CodeUnauthorized))

	_, unknownEmail := f.svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@acme.test",
		Password: "whatever!",
	})
	require.Error(t, unknownEmail)
	assert.True(t, dErrors.HasCode(unknownEmail, dErrors.CodeUnauthorized))

	// Unknown email and wrong password must be indistinguishable.
	assert.Equal(t, dErrors.Message(wrongPassword), dErrors.Message(unknownEmail))
}

func TestHashNeverLeavesStoreLayer(t *testing.T) {
	f := newFixture(t)

	session, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	stored, err := f.users.FindByEmail(context.Background(), "admin@acme.test")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotContains(t, session.Token, stored.PasswordHash)
}

func TestPublishFailureDoesNotFailRegistration(t *testing.T) {
	f := newFixture(t)
	f.publisher.FailWith(errors.New("broker unreachable"))

	session, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
}

func TestDefaultRoleIsUser(t *testing.T) {
	f := newFixture(t)

	req := validRegistration()
	req.Role = ""
	session, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "user", session.User.Role.String())
}
