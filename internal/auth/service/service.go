// Package service implements the registration and login flows. Store
// failures are translated into coded domain errors here; event publishing is
// best-effort and never fails the flow.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"projecthub/internal/auth/models"
	"projecthub/internal/auth/store"
	"projecthub/internal/events"
	"projecthub/internal/platform/metrics"
	"projecthub/internal/token"
	id "projecthub/pkg/domain"
	dErrors "projecthub/pkg/domain-errors"
	"projecthub/pkg/platform/sentinel"
)

// dummyHash is compared against when the email is unknown so the response
// shape does not reveal whether the account exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Service orchestrates onboarding and session issuance.
type Service struct {
	users      store.UserStore
	tx         store.Tx
	codec      *token.Codec
	publisher  events.Publisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tokenTTL   time.Duration
	bcryptCost int
}

func New(
	users store.UserStore,
	tx store.Tx,
	codec *token.Codec,
	publisher events.Publisher,
	logger *slog.Logger,
	m *metrics.Metrics,
	tokenTTL time.Duration,
	bcryptCost int,
) *Service {
	if bcryptCost < bcrypt.DefaultCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		tx:         tx,
		codec:      codec,
		publisher:  publisher,
		logger:     logger,
		metrics:    m,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

// Register creates a tenant and its first user atomically, then issues a
// session token.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.Session, error) {
	if details := req.Validate(); len(details) > 0 {
		return nil, dErrors.NewValidation("invalid registration request", details)
	}
	role, err := id.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	// Pre-check is an optimization for a friendly error; the unique
	// constraint on users.email is the authoritative guard against a
	// concurrent duplicate.
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "user with this email already exists")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           id.NewUserID(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		TenantID:     id.NewTenantID(),
		CreatedAt:    now,
	}
	tenant := &models.Tenant{
		ID:        user.TenantID,
		Name:      req.TenantName,
		CreatedAt: now,
	}

	err = s.tx.RunInTx(ctx, func(users store.UserStore, tenants store.TenantStore) error {
		if err := tenants.Create(ctx, tenant); err != nil {
			return err
		}
		return users.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "user with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.TopicUserEvents, events.Event{
		Type:     events.TypeUserRegistered,
		EntityID: user.ID.String(),
		ActorID:  user.ID.String(),
		TenantID: user.TenantID.String(),
	})
	if s.metrics != nil {
		s.metrics.UsersRegistered.Inc()
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID.String(),
		"role", user.Role.String(),
		"tenant_id", user.TenantID.String(),
	)
	return session, nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password produce the same response.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	if details := req.Validate(); len(details) > 0 {
		return nil, dErrors.NewValidation("invalid login request", details)
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Burn a hash comparison so unknown emails cost the same as
			// wrong passwords.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.TopicUserEvents, events.Event{
		Type:     events.TypeUserLoggedIn,
		EntityID: user.ID.String(),
		ActorID:  user.ID.String(),
		TenantID: user.TenantID.String(),
	})
	if s.metrics != nil {
		s.metrics.UserLogins.Inc()
	}

	s.logger.InfoContext(ctx, "user logged in",
		"user_id", user.ID.String(),
		"role", user.Role.String(),
	)
	return session, nil
}

func (s *Service) issueSession(user *models.User) (*models.Session, error) {
	tok, err := s.codec.Issue(token.Identity{
		UserID:   user.ID,
		Role:     user.Role,
		TenantID: user.TenantID,
	}, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return &models.Session{Token: tok, User: user.Public()}, nil
}

func (s *Service) emit(ctx context.Context, topic string, event events.Event) {
	event.Timestamp = time.Now().UTC()
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish event",
			"topic", topic,
			"type", event.Type,
			"error", err,
		)
	}
}
