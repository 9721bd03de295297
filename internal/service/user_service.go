package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lms-backend/internal/model"
	"lms-backend/pkg/apierror"
)

const bcryptCost = 12

// loginRequiredMessage is returned whenever a session snapshot is gone from
// the cache: after logout, after idle eviction, or for a user id that never
// logged in.
const loginRequiredMessage = "Please login to access this resource"

type UserService struct {
	tokens     *TokenService
	users      UserStore
	sessions   SessionCache
	mailer     Mailer
	objects    ObjectStore
	sessionTTL time.Duration
}

func NewUserService(tokens *TokenService, users UserStore, sessions SessionCache, mailer Mailer, objects ObjectStore, sessionTTL time.Duration) *UserService {
	return &UserService{
		tokens:     tokens,
		users:      users,
		sessions:   sessions,
		mailer:     mailer,
		objects:    objects,
		sessionTTL: sessionTTL,
	}
}

// Register does not persist anything. It hashes the password, wraps the
// pending user in a signed activation ticket, and mails the embedded code
// so the caller can prove receipt.
func (s *UserService) Register(ctx context.Context, req model.RegistrationRequest) (string, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return "", apierror.Conflict("Email already exist")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	pending := model.PendingUser{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
	}

	ticket, code, err := s.tokens.CreateActivationTicket(pending)
	if err != nil {
		return "", err
	}

	mailData := map[string]any{
		"Name":           pending.Name,
		"ActivationCode": code,
	}
	if err := s.mailer.Send(ctx, pending.Email, "Activate your account", "activation-mail", mailData); err != nil {
		return "", apierror.Dependency("could not send activation mail", err)
	}

	return ticket, nil
}

// Activate turns a valid ticket into a persisted user. The ticket is never
// marked used; email uniqueness is the sole guard against double
// activation, so replaying a consumed ticket fails with the conflict error.
func (s *UserService) Activate(ctx context.Context, req model.ActivationRequest) (model.User, error) {
	pending, err := s.tokens.VerifyActivationTicket(req.ActivationToken, req.ActivationCode)
	if err != nil {
		return model.User{}, err
	}

	exists, err := s.users.ExistsByEmail(ctx, pending.Email)
	if err != nil {
		return model.User{}, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return model.User{}, apierror.Conflict("Email already exist")
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         pending.Name,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Role:         model.RoleUser,
		IsVerified:   true,
		Courses:      []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.User{}, err
	}

	return user, nil
}

// Login verifies credentials and opens a session: a fresh token pair plus a
// cached snapshot with no explicit expiry. The snapshot only gains its
// sliding 7-day TTL once the client refreshes.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (model.User, string, string, error) {
	user, err := s.users.FindByEmailWithPassword(ctx, normalizeEmail(req.Email))
	if err != nil {
		return model.User{}, "", "", apierror.BadRequest("Invalid email or password")
	}

	if user.PasswordHash == "" {
		return model.User{}, "", "", apierror.BadRequest("Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.User{}, "", "", apierror.BadRequest("Invalid email or password")
	}

	user.PasswordHash = ""
	access, refresh, err := s.openSession(ctx, user, 0)
	if err != nil {
		return model.User{}, "", "", err
	}

	return user, access, refresh, nil
}

// SocialAuth signs in an externally verified identity, creating the record
// on first sight. Such users have no password; password login stays closed
// for them until they set one.
func (s *UserService) SocialAuth(ctx context.Context, req model.SocialAuthRequest) (model.User, string, string, error) {
	email := normalizeEmail(req.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !isNotFound(err) {
			return model.User{}, "", "", err
		}

		now := time.Now().UTC()
		user = model.User{
			ID:        uuid.NewString(),
			Name:      strings.TrimSpace(req.Name),
			Email:     email,
			Avatar:    model.Avatar{URL: req.Avatar},
			Role:      model.RoleUser,
			Courses:   []string{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return model.User{}, "", "", err
		}
	}

	access, refresh, err := s.openSession(ctx, user, 0)
	if err != nil {
		return model.User{}, "", "", err
	}

	return user, access, refresh, nil
}

// Refresh implements the sliding-session exchange: a valid refresh token
// plus a live cache entry buy a brand-new token pair and reset the snapshot
// TTL to the full session window. Two concurrent refreshes may both
// succeed; the last snapshot write wins and both pairs stay valid until
// their own expiry.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (model.User, string, string, error) {
	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return model.User{}, "", "", apierror.Unauthorized("Could not refresh token")
	}

	user, err := s.sessionSnapshot(ctx, userID)
	if err != nil {
		return model.User{}, "", "", err
	}

	access, refresh, err := s.openSession(ctx, user, s.sessionTTL)
	if err != nil {
		return model.User{}, "", "", err
	}

	return user, access, refresh, nil
}

// Logout evicts the cached snapshot. Already issued access tokens are not
// revoked and keep verifying until their own 5-minute expiry; only
// cache-backed operations stop working immediately. Preserved upstream
// behavior, not an oversight.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.sessions.Del(ctx, userID)
}

// CurrentUser serves /me straight from the session cache.
func (s *UserService) CurrentUser(ctx context.Context, userID string) (model.User, error) {
	return s.sessionSnapshot(ctx, userID)
}

func (s *UserService) UpdateUserData(ctx context.Context, userID string, req model.UpdateUserDataRequest) (model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	if email := normalizeEmail(req.Email); email != "" && email != user.Email {
		exists, err := s.users.ExistsByEmail(ctx, email)
		if err != nil {
			return model.User{}, fmt.Errorf("check email exists: %w", err)
		}
		if exists {
			return model.User{}, apierror.Conflict("Email already exist")
		}
		user.Email = email
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return model.User{}, err
	}

	if err := s.cacheSnapshot(ctx, user, 0); err != nil {
		return model.User{}, err
	}

	return user, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, userID string, req model.UpdatePasswordRequest) (model.User, error) {
	user, err := s.users.FindByIDWithPassword(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	// Social-auth accounts have no password to compare against.
	if user.PasswordHash == "" {
		return model.User{}, apierror.BadRequest("Invalid user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return model.User{}, apierror.BadRequest("Invalid old password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return model.User{}, err
	}

	user.PasswordHash = ""
	user.UpdatedAt = time.Now().UTC()
	if err := s.cacheSnapshot(ctx, user, 0); err != nil {
		return model.User{}, err
	}

	return user, nil
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID string, req model.UpdateAvatarRequest) (model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	data, err := decodeImagePayload(req.Avatar)
	if err != nil {
		return model.User{}, apierror.BadRequest("invalid avatar payload")
	}

	if user.Avatar.Key != "" {
		if err := s.objects.Delete(ctx, user.Avatar.Key); err != nil {
			return model.User{}, apierror.Dependency("could not replace avatar", err)
		}
	}

	key := "avatars/" + uuid.NewString()
	url, err := s.objects.Put(ctx, key, data, http.DetectContentType(data))
	if err != nil {
		return model.User{}, apierror.Dependency("could not upload avatar", err)
	}

	user.Avatar = model.Avatar{Key: key, URL: url}
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return model.User{}, err
	}

	if err := s.cacheSnapshot(ctx, user, 0); err != nil {
		return model.User{}, err
	}

	return user, nil
}

func (s *UserService) AllUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) UpdateRole(ctx context.Context, req model.UpdateUserRoleRequest) (model.User, error) {
	user, err := s.users.FindByID(ctx, req.ID)
	if err != nil {
		return model.User{}, err
	}

	user.Role = req.Role
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return model.User{}, err
	}

	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	return s.sessions.Del(ctx, id)
}

// EnrollUser appends a course to the user's enrollments and refreshes the
// cached snapshot so content-access checks see the purchase immediately.
func (s *UserService) EnrollUser(ctx context.Context, userID string, courseID string) (model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	if user.Enrolled(courseID) {
		return user, nil
	}

	user.Courses = append(user.Courses, courseID)
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return model.User{}, err
	}

	if err := s.cacheSnapshot(ctx, user, 0); err != nil {
		return model.User{}, err
	}

	return user, nil
}

func (s *UserService) openSession(ctx context.Context, user model.User, ttl time.Duration) (string, string, error) {
	access, err := s.tokens.SignAccessToken(user.ID)
	if err != nil {
		return "", "", err
	}

	refresh, err := s.tokens.SignRefreshToken(user.ID)
	if err != nil {
		return "", "", err
	}

	if err := s.cacheSnapshot(ctx, user, ttl); err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

func (s *UserService) cacheSnapshot(ctx context.Context, user model.User, ttl time.Duration) error {
	user.PasswordHash = ""
	snapshot, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal session snapshot: %w", err)
	}

	return s.sessions.Set(ctx, user.ID, string(snapshot), ttl)
}

func (s *UserService) sessionSnapshot(ctx context.Context, userID string) (model.User, error) {
	raw, found, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	if !found {
		return model.User{}, apierror.Unauthorized(loginRequiredMessage)
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return model.User{}, fmt.Errorf("unmarshal session snapshot: %w", err)
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isNotFound(err error) bool {
	var apiErr *apierror.APIError
	return errors.As(err, &apiErr) && apiErr.HTTPStatus == http.StatusNotFound
}

// decodeImagePayload accepts both bare base64 and data-URL payloads.
func decodeImagePayload(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if idx := strings.Index(raw, ";base64,"); idx >= 0 {
		raw = raw[idx+len(";base64,"):]
	}
	if raw == "" {
		return nil, fmt.Errorf("empty payload")
	}
	return base64.StdEncoding.DecodeString(raw)
}
