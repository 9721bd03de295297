package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"lms-backend/internal/cache"
	"lms-backend/internal/model"
	"lms-backend/internal/repository"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

type sentMail struct {
	To       string
	Subject  string
	Template string
	Data     any
}

func (m *fakeMailer) Send(_ context.Context, to string, subject string, template string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return errors.New("smtp unreachable")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Template: template, Data: data})
	return nil
}

func (m *fakeMailer) lastSent() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (s *fakeObjectStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return "https://cdn.example.com/" + key, nil
}

func (s *fakeObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

type userFixture struct {
	service *UserService
	tokens  *TokenService
	users   *repository.MemoryUserStore
	cache   *cache.Cache
	redis   *miniredis.Miniredis
	mailer  *fakeMailer
	objects *fakeObjectStore
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	sessionCache, err := cache.New(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessionCache.Close() })

	tokens := testTokenService()
	users := repository.NewMemoryUserStore()
	mailer := &fakeMailer{}
	objects := newFakeObjectStore()

	return &userFixture{
		service: NewUserService(tokens, users, sessionCache, mailer, objects, 168*time.Hour),
		tokens:  tokens,
		users:   users,
		cache:   sessionCache,
		redis:   mr,
		mailer:  mailer,
		objects: objects,
	}
}

func (f *userFixture) registerAndActivate(t *testing.T, name, email, password string) model.User {
	t.Helper()
	ctx := context.Background()

	ticket, err := f.service.Register(ctx, model.RegistrationRequest{
		Name: name, Email: email, Password: password,
	})
	require.NoError(t, err)

	data, ok := f.mailer.lastSent().Data.(map[string]any)
	require.True(t, ok)
	code, _ := data["ActivationCode"].(string)
	require.Len(t, code, 4)

	user, err := f.service.Activate(ctx, model.ActivationRequest{
		ActivationToken: ticket, ActivationCode: code,
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns a ticket and mails the code", func(t *testing.T) {
		f := newUserFixture(t)

		ticket, err := f.service.Register(ctx, model.RegistrationRequest{
			Name: "Ada", Email: "Ada@Example.com", Password: "secret123",
		})
		require.NoError(t, err)
		require.NotEmpty(t, ticket)

		mail := f.mailer.lastSent()
		require.Equal(t, "ada@example.com", mail.To)
		require.Equal(t, "activation-mail", mail.Template)

		// Nothing is persisted until activation.
		_, err = f.users.FindByEmail(ctx, "ada@example.com")
		requireAPIError(t, err, http.StatusNotFound, "User not found")
	})

	t.Run("rejects a taken email", func(t *testing.T) {
		f := newUserFixture(t)
		f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")

		_, err := f.service.Register(ctx, model.RegistrationRequest{
			Name: "Imposter", Email: "ADA@example.com", Password: "secret123",
		})
		requireAPIError(t, err, http.StatusBadRequest, "Email already exist")
	})

	t.Run("mail failure aborts registration", func(t *testing.T) {
		f := newUserFixture(t)
		f.mailer.fail = true

		_, err := f.service.Register(ctx, model.RegistrationRequest{
			Name: "Ada", Email: "ada@example.com", Password: "secret123",
		})
		require.Error(t, err)
	})
}

func TestActivate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates a verified user", func(t *testing.T) {
		f := newUserFixture(t)
		user := f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")

		require.True(t, user.IsVerified)
		require.Equal(t, model.RoleUser, user.Role)
		require.Equal(t, "ada@example.com", user.Email)
		require.Empty(t, user.Courses)
	})

	t.Run("replaying a consumed ticket fails with conflict", func(t *testing.T) {
		f := newUserFixture(t)

		ticket, err := f.service.Register(ctx, model.RegistrationRequest{
			Name: "Ada", Email: "ada@example.com", Password: "secret123",
		})
		require.NoError(t, err)

		data := f.mailer.lastSent().Data.(map[string]any)
		code := data["ActivationCode"].(string)

		_, err = f.service.Activate(ctx, model.ActivationRequest{ActivationToken: ticket, ActivationCode: code})
		require.NoError(t, err)

		_, err = f.service.Activate(ctx, model.ActivationRequest{ActivationToken: ticket, ActivationCode: code})
		requireAPIError(t, err, http.StatusBadRequest, "Email already exist")
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("valid credentials open a session", func(t *testing.T) {
		f := newUserFixture(t)
		created := f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")

		user, access, refresh, err := f.service.Login(ctx, model.LoginRequest{
			Email: "ada@example.com", Password: "secret123",
		})
		require.NoError(t, err)
		require.Equal(t, created.ID, user.ID)
		require.Empty(t, user.PasswordHash)
		require.NotEmpty(t, access)
		require.NotEmpty(t, refresh)

		// Snapshot is cached with no expiry until the first refresh.
		require.True(t, f.redis.Exists(user.ID))
		require.Equal(t, time.Duration(0), f.redis.TTL(user.ID))
	})

	t.Run("wrong password and unknown email share one message", func(t *testing.T) {
		f := newUserFixture(t)
		f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")

		_, _, _, err := f.service.Login(ctx, model.LoginRequest{Email: "ada@example.com", Password: "wrong"})
		requireAPIError(t, err, http.StatusBadRequest, "Invalid email or password")

		_, _, _, err = f.service.Login(ctx, model.LoginRequest{Email: "ghost@example.com", Password: "secret123"})
		requireAPIError(t, err, http.StatusBadRequest, "Invalid email or password")
	})

	t.Run("social accounts cannot password login", func(t *testing.T) {
		f := newUserFixture(t)

		_, _, _, err := f.service.SocialAuth(ctx, model.SocialAuthRequest{
			Name: "Ada", Email: "ada@example.com",
		})
		require.NoError(t, err)

		_, _, _, err = f.service.Login(ctx, model.LoginRequest{Email: "ada@example.com", Password: "anything"})
		requireAPIError(t, err, http.StatusBadRequest, "Invalid email or password")
	})
}

func TestSocialAuth(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates on first sight and reuses afterwards", func(t *testing.T) {
		f := newUserFixture(t)

		first, _, _, err := f.service.SocialAuth(ctx, model.SocialAuthRequest{
			Name: "Ada", Email: "ada@example.com", Avatar: "https://example.com/a.png",
		})
		require.NoError(t, err)

		second, _, _, err := f.service.SocialAuth(ctx, model.SocialAuthRequest{
			Name: "Ada Again", Email: "ada@example.com",
		})
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)
		require.Equal(t, "Ada", second.Name)
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("issues a new pair and slides the session TTL", func(t *testing.T) {
		f := newUserFixture(t)
		f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")

		user, access, refresh, err := f.service.Login(ctx, model.LoginRequest{
			Email: "ada@example.com", Password: "secret123",
		})
		require.NoError(t, err)

		_, newAccess, newRefresh, err := f.service.Refresh(ctx, refresh)
		require.NoError(t, err)
		require.NotEqual(t, access, newAccess)
		require.NotEqual(t, refresh, newRefresh)

		// Refresh stamps the sliding window on the snapshot.
		require.Equal(t, 168*time.Hour, f.redis.TTL(user.ID))
	})

	t.Run("access token cannot be exchanged", func(t *testing.T) {
		f := newUserFixture(t)
		f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")

		_, access, _, err := f.service.Login(ctx, model.LoginRequest{
			Email: "ada@example.com", Password: "secret123",
		})
		require.NoError(t, err)

		_, _, _, err = f.service.Refresh(ctx, access)
		requireAPIError(t, err, http.StatusUnauthorized, "Could not refresh token")
	})

	t.Run("fails after logout even with a valid token", func(t *testing.T) {
		f := newUserFixture(t)
		f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")

		user, _, refresh, err := f.service.Login(ctx, model.LoginRequest{
			Email: "ada@example.com", Password: "secret123",
		})
		require.NoError(t, err)

		require.NoError(t, f.service.Logout(ctx, user.ID))

		_, _, _, err = f.service.Refresh(ctx, refresh)
		requireAPIError(t, err, http.StatusUnauthorized, "Please login to access this resource")
	})

	t.Run("fails after idle eviction", func(t *testing.T) {
		f := newUserFixture(t)
		f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")

		_, _, refresh, err := f.service.Login(ctx, model.LoginRequest{
			Email: "ada@example.com", Password: "secret123",
		})
		require.NoError(t, err)

		_, _, refresh, err = f.service.Refresh(ctx, refresh)
		require.NoError(t, err)

		// Idle past the whole session window.
		f.redis.FastForward(169 * time.Hour)

		_, _, _, err = f.service.Refresh(ctx, refresh)
		requireAPIError(t, err, http.StatusUnauthorized, "Please login to access this resource")
	})

	t.Run("both pairs from concurrent refreshes stay usable", func(t *testing.T) {
		f := newUserFixture(t)
		f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")

		_, _, refresh, err := f.service.Login(ctx, model.LoginRequest{
			Email: "ada@example.com", Password: "secret123",
		})
		require.NoError(t, err)

		_, _, firstRefresh, err := f.service.Refresh(ctx, refresh)
		require.NoError(t, err)
		_, _, secondRefresh, err := f.service.Refresh(ctx, refresh)
		require.NoError(t, err)

		_, _, _, err = f.service.Refresh(ctx, firstRefresh)
		require.NoError(t, err)
		_, _, _, err = f.service.Refresh(ctx, secondRefresh)
		require.NoError(t, err)
	})
}

func TestCurrentUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("serves the cached snapshot", func(t *testing.T) {
		f := newUserFixture(t)
		f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")

		user, _, _, err := f.service.Login(ctx, model.LoginRequest{
			Email: "ada@example.com", Password: "secret123",
		})
		require.NoError(t, err)

		got, err := f.service.CurrentUser(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
		require.Empty(t, got.PasswordHash)
	})

	t.Run("requires a live session", func(t *testing.T) {
		f := newUserFixture(t)
		user := f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")

		_, err := f.service.CurrentUser(ctx, user.ID)
		requireAPIError(t, err, http.StatusUnauthorized, "Please login to access this resource")
	})
}

func TestUpdateUserData(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("updates name and email and re-caches", func(t *testing.T) {
		f := newUserFixture(t)
		f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")
		user, _, _, err := f.service.Login(ctx, model.LoginRequest{
			Email: "ada@example.com", Password: "secret123",
		})
		require.NoError(t, err)

		updated, err := f.service.UpdateUserData(ctx, user.ID, model.UpdateUserDataRequest{
			Name: "Ada Lovelace", Email: "lovelace@example.com",
		})
		require.NoError(t, err)
		require.Equal(t, "Ada Lovelace", updated.Name)
		require.Equal(t, "lovelace@example.com", updated.Email)

		cached, err := f.service.CurrentUser(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, "lovelace@example.com", cached.Email)
	})

	t.Run("rejects an email owned by another user", func(t *testing.T) {
		f := newUserFixture(t)
		f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")
		other := f.registerAndActivate(t, "Grace", "grace@example.com", "secret123")

		_, err := f.service.UpdateUserData(ctx, other.ID, model.UpdateUserDataRequest{Email: "ada@example.com"})
		requireAPIError(t, err, http.StatusBadRequest, "Email already exist")
	})
}

func TestUpdatePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rotates the hash after verifying the old password", func(t *testing.T) {
		f := newUserFixture(t)
		user := f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")

		_, _, _, err := f.service.Login(ctx, model.LoginRequest{Email: "ada@example.com", Password: "secret123"})
		require.NoError(t, err)

		_, err = f.service.UpdatePassword(ctx, user.ID, model.UpdatePasswordRequest{
			OldPassword: "secret123", NewPassword: "evenmoresecret",
		})
		require.NoError(t, err)

		_, _, _, err = f.service.Login(ctx, model.LoginRequest{Email: "ada@example.com", Password: "secret123"})
		requireAPIError(t, err, http.StatusBadRequest, "Invalid email or password")

		_, _, _, err = f.service.Login(ctx, model.LoginRequest{Email: "ada@example.com", Password: "evenmoresecret"})
		require.NoError(t, err)
	})

	t.Run("rejects a wrong old password", func(t *testing.T) {
		f := newUserFixture(t)
		user := f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")

		_, err := f.service.UpdatePassword(ctx, user.ID, model.UpdatePasswordRequest{
			OldPassword: "wrong", NewPassword: "evenmoresecret",
		})
		requireAPIError(t, err, http.StatusBadRequest, "Invalid old password")
	})

	t.Run("rejects accounts without a password", func(t *testing.T) {
		f := newUserFixture(t)
		user, _, _, err := f.service.SocialAuth(ctx, model.SocialAuthRequest{
			Name: "Ada", Email: "ada@example.com",
		})
		require.NoError(t, err)

		_, err = f.service.UpdatePassword(ctx, user.ID, model.UpdatePasswordRequest{
			OldPassword: "anything", NewPassword: "evenmoresecret",
		})
		requireAPIError(t, err, http.StatusBadRequest, "Invalid user")
	})
}

func TestUpdateAvatar(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("uploads and replaces the previous object", func(t *testing.T) {
		f := newUserFixture(t)
		user := f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")
		_, _, _, err := f.service.Login(ctx, model.LoginRequest{Email: "ada@example.com", Password: "secret123"})
		require.NoError(t, err)

		payload := "data:image/png;base64,aGVsbG8="
		updated, err := f.service.UpdateAvatar(ctx, user.ID, model.UpdateAvatarRequest{Avatar: payload})
		require.NoError(t, err)
		require.NotEmpty(t, updated.Avatar.Key)
		require.Contains(t, updated.Avatar.URL, updated.Avatar.Key)
		firstKey := updated.Avatar.Key

		updated, err = f.service.UpdateAvatar(ctx, user.ID, model.UpdateAvatarRequest{Avatar: payload})
		require.NoError(t, err)
		require.NotEqual(t, firstKey, updated.Avatar.Key)
		require.Contains(t, f.objects.deleted, firstKey)
	})

	t.Run("rejects undecodable payloads", func(t *testing.T) {
		f := newUserFixture(t)
		user := f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")

		_, err := f.service.UpdateAvatar(ctx, user.ID, model.UpdateAvatarRequest{Avatar: "%%%not-base64%%%"})
		requireAPIError(t, err, http.StatusBadRequest, "invalid avatar payload")
	})
}

func TestUserAdministration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("role changes persist", func(t *testing.T) {
		f := newUserFixture(t)
		user := f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")

		updated, err := f.service.UpdateRole(ctx, model.UpdateUserRoleRequest{ID: user.ID, Role: model.RoleAdmin})
		require.NoError(t, err)
		require.Equal(t, model.RoleAdmin, updated.Role)
	})

	t.Run("deleting a user evicts the session", func(t *testing.T) {
		f := newUserFixture(t)
		f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")
		user, _, _, err := f.service.Login(ctx, model.LoginRequest{Email: "ada@example.com", Password: "secret123"})
		require.NoError(t, err)

		require.NoError(t, f.service.DeleteUser(ctx, user.ID))

		_, err = f.service.CurrentUser(ctx, user.ID)
		requireAPIError(t, err, http.StatusUnauthorized, "Please login to access this resource")

		require.Error(t, f.service.DeleteUser(ctx, user.ID))
	})

	t.Run("enrollment is idempotent and refreshes the snapshot", func(t *testing.T) {
		f := newUserFixture(t)
		f.registerAndActivate(t, "Ada", "ada@example.com", "secret123")
		user, _, _, err := f.service.Login(ctx, model.LoginRequest{Email: "ada@example.com", Password: "secret123"})
		require.NoError(t, err)

		enrolled, err := f.service.EnrollUser(ctx, user.ID, "course-1")
		require.NoError(t, err)
		require.Equal(t, []string{"course-1"}, enrolled.Courses)

		enrolled, err = f.service.EnrollUser(ctx, user.ID, "course-1")
		require.NoError(t, err)
		require.Equal(t, []string{"course-1"}, enrolled.Courses)

		cached, err := f.service.CurrentUser(ctx, user.ID)
		require.NoError(t, err)
		require.True(t, cached.Enrolled("course-1"))
	})
}
