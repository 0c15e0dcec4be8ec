// Package token signs and verifies the bearer tokens carrying identity
// claims. Verification is a pure function of token, signing key and clock.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "projecthub/pkg/domain"
)

// Verification failures are collapsed into exactly three kinds. Callers that
// do not care about the distinction treat any of them as unauthenticated.
var (
	ErrExpired          = errors.New("token has expired")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrMalformed        = errors.New("token is malformed")
)

// Claims is the identity payload embedded in every issued token.
type Claims struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the decoded, validated form of Claims that downstream code
// consumes. Parsed once at the authentication boundary.
type Identity struct {
	UserID   id.UserID
	Role     id.Role
	TenantID id.TenantID
}

// Codec issues and verifies HS256-signed tokens.
type Codec struct {
	signingKey []byte
	issuer     string
}

func NewCodec(signingKey string) *Codec {
	return &Codec{
		signingKey: []byte(signingKey),
		issuer:     "projecthub",
	}
}

// Issue encodes the identity plus expiry into a signed token string.
func (c *Codec) Issue(ident Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: ident.UserID.String(),
		Role:   ident.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    c.issuer,
			ID:        uuid.NewString(),
		},
	}
	if !ident.TenantID.IsNil() {
		claims.TenantID = ident.TenantID.String()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
}

// Verify parses and validates a token string, returning the embedded
// identity. Fails with ErrExpired, ErrInvalidSignature or ErrMalformed; no
// other kinds.
func (c *Codec) Verify(tokenString string) (*Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.signingKey, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}

	return decodeIdentity(claims)
}

func decodeIdentity(claims *Claims) (*Identity, error) {
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, ErrMalformed
	}

	role := id.Role(claims.Role)
	if !role.Valid() {
		return nil, ErrMalformed
	}

	ident := &Identity{UserID: userID, Role: role}
	if claims.TenantID != "" {
		tenantID, err := id.ParseTenantID(claims.TenantID)
		if err != nil {
			return nil, ErrMalformed
		}
		ident.TenantID = tenantID
	}
	return ident, nil
}
