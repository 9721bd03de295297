package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"lms-backend/internal/model"
	"lms-backend/internal/service"
	"lms-backend/pkg/apierror"
)

type accessVerifier interface {
	VerifyAccessToken(tokenString string) (string, error)
}

type userLoader interface {
	CurrentUser(ctx context.Context, userID string) (model.User, error)
}

type contextKey string

const (
	identityContextKey contextKey = "identity"
	userContextKey     contextKey = "user"
)

// Identity is what token verification alone establishes. Role checks and
// anything needing user data go through RequireUser.
type Identity struct {
	UserID string
}

type AuthMiddleware struct {
	tokens accessVerifier
	users  userLoader
}

func NewAuthMiddleware(tokens accessVerifier, users userLoader) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// RequireAuth verifies the access token from the cookie or Authorization
// header. It does no cache or database I/O.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractAccessToken(r)
		if token == "" {
			writeAuthError(w, apierror.Unauthorized("Please login to access this resource"))
			return
		}

		userID, err := m.tokens.VerifyAccessToken(token)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, Identity{UserID: userID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser resolves the session snapshot for the verified identity and
// attaches the full user. Runs after RequireAuth.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			writeAuthError(w, apierror.Unauthorized("Please login to access this resource"))
			return
		}

		user, err := m.users.CurrentUser(r.Context(), identity.UserID)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles gates on the role already loaded by RequireUser. It performs
// no I/O of its own.
func (m *AuthMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	roleSet := map[string]struct{}{}
	for _, role := range allowedRoles {
		roleSet[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeAuthError(w, apierror.Unauthorized("Please login to access this resource"))
				return
			}

			if _, allowed := roleSet[strings.ToLower(user.Role)]; !allowed {
				writeAuthError(w, apierror.Forbidden(
					"Role: "+user.Role+" is not allowed to access this resource"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	return identity, ok
}

func UserFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userContextKey).(model.User)
	return user, ok
}

func extractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(service.AccessCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}

	return ""
}

func writeAuthError(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	message := "Please login to access this resource"

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		message = apiErr.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{Success: false, Message: message})
}
