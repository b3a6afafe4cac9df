package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/safar/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver map[string]*Principal

func (r staticResolver) Resolve(_ context.Context, token string) (*Principal, error) {
	p, ok := r[token]
	if !ok {
		return nil, ErrUnknownToken
	}
	return p, nil
}

var resolver = staticResolver{
	"user-token":  {UserID: 7, Role: models.RoleUser},
	"admin-token": {UserID: 1, Role: models.RoleAdmin},
}

func principalEcho() (http.Handler, *[]*Principal) {
	var seen []*Principal
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, FromContext(r.Context()))
	})
	return h, &seen
}

func TestAuthenticateAttachesPrincipal(t *testing.T) {
	echo, seen := principalEcho()
	handler := Authenticate(resolver)(echo)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, *seen, 1)
	require.NotNil(t, (*seen)[0])
	assert.Equal(t, int64(7), (*seen)[0].UserID)
}

func TestAuthenticateXAuthTokenHeader(t *testing.T) {
	echo, seen := principalEcho()
	handler := Authenticate(resolver)(echo)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Auth-Token", "admin-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, *seen, 1)
	require.NotNil(t, (*seen)[0])
	assert.True(t, (*seen)[0].IsAdmin())
}

func TestAuthenticateUnknownTokenPassesThroughAnonymous(t *testing.T) {
	echo, seen := principalEcho()
	handler := Authenticate(resolver)(echo)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, *seen, 1)
	assert.Nil(t, (*seen)[0])
}

type failingResolver struct{ err error }

func (r failingResolver) Resolve(_ context.Context, _ string) (*Principal, error) {
	return nil, r.err
}

func TestAuthenticateResolverFailureIsInternal(t *testing.T) {
	echo, seen := principalEcho()
	handler := Authenticate(failingResolver{err: errors.New("resolve token: connection refused")})(echo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal")
	assert.Empty(t, *seen, "handler must not run when the resolver is down")
}

func TestAuthenticateWrappedUnknownTokenStaysAnonymous(t *testing.T) {
	echo, seen := principalEcho()
	handler := Authenticate(failingResolver{err: fmt.Errorf("resolve token: %w", ErrUnknownToken)})(echo)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, *seen, 1)
	assert.Nil(t, (*seen)[0])
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthenticated")

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), &Principal{UserID: 7, Role: models.RoleUser}))
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), &Principal{UserID: 7, Role: models.RoleUser}))
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "forbidden")

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), &Principal{UserID: 1, Role: models.RoleAdmin}))
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
