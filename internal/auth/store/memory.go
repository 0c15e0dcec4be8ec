package store

import (
	"context"
	"sync"

	"projecthub/internal/auth/models"
	id "projecthub/pkg/domain"
	"projecthub/pkg/platform/sentinel"
)

// MemoryUsers is an in-memory UserStore for tests and local development.
// Email uniqueness is enforced the same way the Postgres constraint does:
// at insert time, case-sensitively.
type MemoryUsers struct {
	mu      sync.RWMutex
	byID    map[id.UserID]*models.User
	byEmail map[string]*models.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{
		byID:    make(map[id.UserID]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (s *MemoryUsers) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[user.Email]; exists {
		return sentinel.ErrConflict
	}
	u := *user
	s.byID[u.ID] = &u
	s.byEmail[u.Email] = &u
	return nil
}

func (s *MemoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	u := *user
	return &u, nil
}

func (s *MemoryUsers) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	u := *user
	return &u, nil
}

// Count reports the number of stored users. Test helper for atomicity
// assertions.
func (s *MemoryUsers) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// MemoryTenants is an in-memory TenantStore.
type MemoryTenants struct {
	mu   sync.RWMutex
	byID map[id.TenantID]*models.Tenant
}

func NewMemoryTenants() *MemoryTenants {
	return &MemoryTenants{byID: make(map[id.TenantID]*models.Tenant)}
}

func (s *MemoryTenants) Create(_ context.Context, tenant *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := *tenant
	s.byID[t.ID] = &t
	return nil
}

func (s *MemoryTenants) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// MemoryTx mimics transactional semantics over the memory stores: writes go
// to a staging buffer and apply only when fn succeeds. A conflict during
// apply leaves neither row behind, matching the all-or-nothing SQL
// transaction.
type MemoryTx struct {
	users   *MemoryUsers
	tenants *MemoryTenants
}

func NewMemoryTx(users *MemoryUsers, tenants *MemoryTenants) *MemoryTx {
	return &MemoryTx{users: users, tenants: tenants}
}

func (t *MemoryTx) RunInTx(ctx context.Context, fn func(users UserStore, tenants TenantStore) error) error {
	buf := &staging{}
	stagedUsers := &stagedUserStore{real: t.users, buf: buf}
	stagedTenants := &stagedTenantStore{buf: buf}

	if err := fn(stagedUsers, stagedTenants); err != nil {
		return err
	}

	// Apply users first: the email uniqueness check is the only write that
	// can conflict, and failing it must leave no tenant row behind.
	t.users.mu.Lock()
	for _, user := range buf.users {
		if _, exists := t.users.byEmail[user.Email]; exists {
			t.users.mu.Unlock()
			return sentinel.ErrConflict
		}
	}
	for _, user := range buf.users {
		u := *user
		t.users.byID[u.ID] = &u
		t.users.byEmail[u.Email] = &u
	}
	t.users.mu.Unlock()

	for _, tenant := range buf.tenants {
		if err := t.tenants.Create(ctx, tenant); err != nil {
			return err
		}
	}
	return nil
}

type staging struct {
	users   []*models.User
	tenants []*models.Tenant
}

type stagedUserStore struct {
	real *MemoryUsers
	buf  *staging
}

func (s *stagedUserStore) Create(_ context.Context, user *models.User) error {
	if _, err := s.real.FindByEmail(context.Background(), user.Email); err == nil {
		return sentinel.ErrConflict
	}
	u := *user
	s.buf.users = append(s.buf.users, &u)
	return nil
}

func (s *stagedUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range s.buf.users {
		if user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return s.real.FindByEmail(ctx, email)
}

func (s *stagedUserStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	for _, user := range s.buf.users {
		if user.ID == userID {
			u := *user
			return &u, nil
		}
	}
	return s.real.FindByID(ctx, userID)
}

type stagedTenantStore struct {
	buf *staging
}

func (s *stagedTenantStore) Create(_ context.Context, tenant *models.Tenant) error {
	t := *tenant
	s.buf.tenants = append(s.buf.tenants, &t)
	return nil
}
