// Package auth adapts the external identity provider: it resolves the
// opaque bearer token attached to each request into a Principal and
// gates handlers on authentication and the admin role. Credential
// issuance itself is out of scope; tokens are opaque strings minted
// elsewhere.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/safar/storefront/internal/apperr"
	"github.com/safar/storefront/internal/models"
)

type Principal struct {
	UserID int64
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// ErrUnknownToken signals that the token does not map to any principal.
var ErrUnknownToken = errors.New("unknown token")

type Resolver interface {
	Resolve(ctx context.Context, token string) (*Principal, error)
}

type principalKey struct{}

func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// Authenticate resolves the request token, if any, and attaches the
// principal to the request context. Requests without a token, or with a
// token the resolver does not recognize, pass through unauthenticated;
// RequireAuth / RequireAdmin decide whether that is acceptable for a
// given route. A resolver failure that is not ErrUnknownToken is an
// infrastructure fault and surfaces as a 500, not a missing principal.
func Authenticate(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, ErrUnknownToken) {
					next.ServeHTTP(w, r)
					return
				}
				deny(w, http.StatusInternalServerError, &apperr.Error{
					Kind:    apperr.KindInternal,
					Message: "internal server error",
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()) == nil {
			deny(w, http.StatusUnauthorized, apperr.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := FromContext(r.Context())
		if principal == nil {
			deny(w, http.StatusUnauthorized, apperr.ErrUnauthenticated)
			return
		}
		if !principal.IsAdmin() {
			deny(w, http.StatusForbidden, apperr.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return strings.TrimSpace(r.Header.Get("X-Auth-Token"))
}

func deny(w http.ResponseWriter, status int, err *apperr.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"kind":    string(err.Kind),
			"message": err.Message,
		},
	})
}
