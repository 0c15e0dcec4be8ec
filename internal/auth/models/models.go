package models

import (
	"time"

	"github.com/asaskevich/govalidator"

	id "projecthub/pkg/domain"
)

// User is the credential record. PasswordHash never leaves the store and
// service layers; handlers only ever see PublicUser.
type User struct {
	ID           id.UserID
	Email        string
	PasswordHash string
	Role         id.Role
	TenantID     id.TenantID
	CreatedAt    time.Time
}

// Tenant is created atomically alongside the first user of a registration.
type Tenant struct {
	ID        id.TenantID
	Name      string
	CreatedAt time.Time
}

// PublicUser is the projection returned to clients.
type PublicUser struct {
	ID       id.UserID   `json:"id"`
	Email    string      `json:"email"`
	Role     id.Role     `json:"role"`
	TenantID id.TenantID `json:"tenant_id"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Role: u.Role, TenantID: u.TenantID}
}

// RegisterRequest is the POST /auth/register body.
type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	TenantName string `json:"tenant_name"`
}

// Validate returns every violated field, not just the first.
func (r RegisterRequest) Validate() []string {
	var details []string
	if !govalidator.IsEmail(r.Email) {
		details = append(details, "email: must be a valid email address")
	}
	if len(r.Password) < 6 {
		details = append(details, "password: must be at least 6 characters")
	}
	if _, err := id.ParseRole(r.Role); err != nil {
		details = append(details, "role: must be one of: admin, user")
	}
	if !govalidator.StringLength(r.TenantName, "1", "128") {
		details = append(details, "tenant_name: must be between 1 and 128 characters")
	}
	return details
}

// LoginRequest is the POST /auth/login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() []string {
	var details []string
	if !govalidator.IsEmail(r.Email) {
		details = append(details, "email: must be a valid email address")
	}
	if r.Password == "" {
		details = append(details, "password: must not be empty")
	}
	return details
}

// Session is the outcome of a successful register or login.
type Session struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}
