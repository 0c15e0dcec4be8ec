// Package store persists users and tenants. Postgres is authoritative; the
// unique constraint on users.email is the real duplicate guard, the service
// pre-check is an optimization only.
package store

import (
	"context"

	"projecthub/internal/auth/models"
	id "projecthub/pkg/domain"
)

// UserStore persists credential records.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
}

// TenantStore persists tenant records.
type TenantStore interface {
	Create(ctx context.Context, tenant *models.Tenant) error
}

// Tx runs a function with transactional user and tenant stores. Either every
// write inside fn commits or none do.
type Tx interface {
	RunInTx(ctx context.Context, fn func(users UserStore, tenants TenantStore) error) error
}
