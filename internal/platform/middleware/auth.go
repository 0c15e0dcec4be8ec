package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"projecthub/internal/token"
	id "projecthub/pkg/domain"
)

// TokenVerifier validates bearer tokens and returns the embedded identity.
type TokenVerifier interface {
	Verify(tokenString string) (*token.Identity, error)
}

type contextKeyIdentity struct{}

// ContextKeyIdentity is exported for tests that need context.WithValue.
var ContextKeyIdentity = contextKeyIdentity{}

// GetIdentity retrieves the authenticated identity from the context.
// Returns nil when the request did not pass RequireAuth.
func GetIdentity(ctx context.Context) *token.Identity {
	ident, ok := ctx.Value(ContextKeyIdentity).(*token.Identity)
	if !ok {
		return nil
	}
	return ident
}

// WithIdentity injects an identity into the context. Useful for service and
// handler tests that do not run the full middleware chain.
func WithIdentity(ctx context.Context, ident *token.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, ident)
}

// RequireAuth extracts the bearer token from the Authorization header,
// verifies it and attaches the decoded identity to the request context.
// It never touches the store or cache.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			raw, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || raw == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			ident, err := verifier.Verify(raw)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				// Expired gets its own description so clients can prompt
				// re-login instead of treating the token as corrupt.
				if errors.Is(err, token.ErrExpired) {
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Token has expired")
					return
				}
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, ident)))
		})
	}
}

// RequireRole gates a route on the authenticated identity's role. Must run
// after RequireAuth; a missing identity is treated as unauthenticated, not
// forbidden. Pure predicate over the claims, no I/O.
func RequireRole(logger *slog.Logger, allowed ...id.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ident := GetIdentity(ctx)
			if ident == nil {
				logger.WarnContext(ctx, "role check without authenticated identity",
					"request_id", GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
				return
			}

			for _, role := range allowed {
				if ident.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.WarnContext(ctx, "forbidden access attempt",
				"user_id", ident.UserID.String(),
				"role", ident.Role.String(),
				"request_id", GetRequestID(ctx),
			)
			writeJSONError(w, http.StatusForbidden, "forbidden", "Access denied: insufficient permissions")
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + errCode + `","error_description":"` + errDesc + `"}`))
}
