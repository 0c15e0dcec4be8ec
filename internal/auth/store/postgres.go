package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"projecthub/internal/auth/models"
	id "projecthub/pkg/domain"
	"projecthub/pkg/platform/sentinel"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the same store code
// serves pooled and transactional access.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresUsers is the production UserStore.
type PostgresUsers struct {
	q querier
}

func NewPostgresUsers(db *sql.DB) *PostgresUsers {
	return &PostgresUsers{q: db}
}

func (s *PostgresUsers) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, role, tenant_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.q.ExecContext(ctx, query,
		uuid.UUID(user.ID), user.Email, user.PasswordHash,
		user.Role.String(), uuid.UUID(user.TenantID), user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, role, tenant_id, created_at
		FROM users WHERE email = $1
	`
	return s.scanUser(s.q.QueryRowContext(ctx, query, email))
}

func (s *PostgresUsers) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, role, tenant_id, created_at
		FROM users WHERE id = $1
	`
	return s.scanUser(s.q.QueryRowContext(ctx, query, uuid.UUID(userID)))
}

func (s *PostgresUsers) scanUser(row *sql.Row) (*models.User, error) {
	var (
		user     models.User
		rawID    uuid.UUID
		rawRole  string
		tenantID uuid.UUID
	)
	err := row.Scan(&rawID, &user.Email, &user.PasswordHash, &rawRole, &tenantID, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.ID = id.UserID(rawID)
	user.Role = id.Role(rawRole)
	user.TenantID = id.TenantID(tenantID)
	return &user, nil
}

// PostgresTenants is the production TenantStore.
type PostgresTenants struct {
	q querier
}

func NewPostgresTenants(db *sql.DB) *PostgresTenants {
	return &PostgresTenants{q: db}
}

func (s *PostgresTenants) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `INSERT INTO tenants (id, name, created_at) VALUES ($1, $2, $3)`
	_, err := s.q.ExecContext(ctx, query, uuid.UUID(tenant.ID), tenant.Name, tenant.CreatedAt)
	if err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

const defaultTxTimeout = 5 * time.Second

// PostgresTx runs registration writes in a single SQL transaction.
type PostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresTx(db *sql.DB) *PostgresTx {
	return &PostgresTx{db: db, timeout: defaultTxTimeout}
}

func (t *PostgresTx) RunInTx(ctx context.Context, fn func(users UserStore, tenants TenantStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(&PostgresUsers{q: tx}, &PostgresTenants{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
}
