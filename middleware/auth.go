package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/sports-center/apperr"
	"github.com/Dosada05/sports-center/models"
)

type contextKey string

const identityContextKey contextKey = "identity"

const (
	msgUnauthenticated = "No autenticado"
	msgForbidden       = "No autorizado"
)

var ErrNoIdentity = errors.New("identity not found in context")

// IdentityResolver turns a bearer token into the caller's identity.
// services.AuthService implements it.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, bearer string) (*models.Identity, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// resolved identity in the request context.
func Authenticate(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, msgUnauthenticated)
				return
			}
			identity, err := resolver.ResolveIdentity(r.Context(), token)
			if err != nil {
				if errors.Is(err, apperr.ErrUnauthorized) {
					writeError(w, http.StatusUnauthorized, msgUnauthenticated)
					return
				}
				slog.ErrorContext(r.Context(), "failed to resolve identity", "error", err)
				writeError(w, http.StatusInternalServerError, msgInternal)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *identity)))
		})
	}
}

// OptionalAuth resolves the identity when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if identity, err := resolver.ResolveIdentity(r.Context(), token); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), *identity))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := GetIdentityFromContext(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, msgUnauthenticated)
			return
		}
		if !identity.IsAdmin {
			writeError(w, http.StatusForbidden, msgForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func GetIdentityFromContext(ctx context.Context) (models.Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(models.Identity)
	if !ok {
		return models.Identity{}, ErrNoIdentity
	}
	return identity, nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
