package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lms-backend/internal/config"
	"lms-backend/internal/model"
	"lms-backend/internal/service"
	"lms-backend/pkg/apierror"
)

type stubUserLoader struct {
	user  model.User
	err   error
	calls int
}

func (s *stubUserLoader) CurrentUser(_ context.Context, userID string) (model.User, error) {
	s.calls++
	if s.err != nil {
		return model.User{}, s.err
	}
	user := s.user
	user.ID = userID
	return user, nil
}

func newTestMiddleware(loader *stubUserLoader) (*AuthMiddleware, *service.TokenService) {
	tokens := service.NewTokenService(&config.Config{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		ActivationSecret:   "activation-secret",
		AccessTokenTTL:     5 * time.Minute,
		RefreshTokenTTL:    72 * time.Hour,
		ActivationTTL:      5 * time.Minute,
	})
	return NewAuthMiddleware(tokens, loader), tokens
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	okHandler := func(t *testing.T) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			require.True(t, ok)
			require.NotEmpty(t, identity.UserID)
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("accepts the access token cookie", func(t *testing.T) {
		loader := &stubUserLoader{}
		m, tokens := newTestMiddleware(loader)

		access, err := tokens.SignAccessToken("user-1")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: service.AccessCookieName, Value: access})
		rec := httptest.NewRecorder()

		m.RequireAuth(okHandler(t)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		// Token verification alone must not touch the session store.
		require.Zero(t, loader.calls)
	})

	t.Run("accepts a bearer header", func(t *testing.T) {
		m, tokens := newTestMiddleware(&stubUserLoader{})

		access, err := tokens.SignAccessToken("user-1")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rec := httptest.NewRecorder()

		m.RequireAuth(okHandler(t)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects a missing token", func(t *testing.T) {
		m, _ := newTestMiddleware(&stubUserLoader{})

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		rec := httptest.NewRecorder()

		m.RequireAuth(okHandler(t)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Please login to access this resource", decodeErrorBody(t, rec).Message)
	})

	t.Run("rejects a garbage token", func(t *testing.T) {
		m, _ := newTestMiddleware(&stubUserLoader{})

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()

		m.RequireAuth(okHandler(t)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Invalid token", decodeErrorBody(t, rec).Message)
	})

	t.Run("rejects a refresh token used as access", func(t *testing.T) {
		m, tokens := newTestMiddleware(&stubUserLoader{})

		refresh, err := tokens.SignRefreshToken("user-1")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		rec := httptest.NewRecorder()

		m.RequireAuth(okHandler(t)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireUser(t *testing.T) {
	t.Parallel()

	t.Run("attaches the session user", func(t *testing.T) {
		loader := &stubUserLoader{user: model.User{Name: "Ada", Role: model.RoleUser}}
		m, tokens := newTestMiddleware(loader)

		access, err := tokens.SignAccessToken("user-1")
		require.NoError(t, err)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			require.True(t, ok)
			require.Equal(t, "user-1", user.ID)
			require.Equal(t, "Ada", user.Name)
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rec := httptest.NewRecorder()

		m.RequireAuth(m.RequireUser(handler)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, 1, loader.calls)
	})

	t.Run("expired session means login again", func(t *testing.T) {
		loader := &stubUserLoader{err: apierror.Unauthorized("Please login to access this resource")}
		m, tokens := newTestMiddleware(loader)

		access, err := tokens.SignAccessToken("user-1")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rec := httptest.NewRecorder()

		next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { t.Fatal("handler must not run") })
		m.RequireAuth(m.RequireUser(next)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Please login to access this resource", decodeErrorBody(t, rec).Message)
	})

	t.Run("refuses to run without a verified identity", func(t *testing.T) {
		m, _ := newTestMiddleware(&stubUserLoader{})

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		rec := httptest.NewRecorder()

		next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { t.Fatal("handler must not run") })
		m.RequireUser(next).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	t.Parallel()

	serve := func(t *testing.T, role string) *httptest.ResponseRecorder {
		t.Helper()
		loader := &stubUserLoader{user: model.User{Name: "Ada", Role: role}}
		m, tokens := newTestMiddleware(loader)

		access, err := tokens.SignAccessToken("user-1")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/get-all-users", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rec := httptest.NewRecorder()

		chain := m.RequireAuth(m.RequireUser(m.RequireRoles("admin")(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))))
		chain.ServeHTTP(rec, req)
		return rec
	}

	t.Run("admin passes", func(t *testing.T) {
		rec := serve(t, model.RoleAdmin)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("plain user is refused with the role named", func(t *testing.T) {
		rec := serve(t, model.RoleUser)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "Role: user is not allowed to access this resource", decodeErrorBody(t, rec).Message)
	})

	t.Run("role match is case insensitive", func(t *testing.T) {
		rec := serve(t, "Admin")
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
