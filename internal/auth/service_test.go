package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"auth-service/internal/apperr"
	"auth-service/internal/mail"
	"auth-service/internal/session"
	"auth-service/internal/token"
	"auth-service/internal/user"
)

// memUserStore is an in-memory user.Store used instead of MongoDB in tests.
type memUserStore struct {
	mu    sync.Mutex
	users map[string]*user.User // keyed by lowercase email
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]*user.User{}}
}

func (m *memUserStore) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, ok := m.users[key]; ok {
		return user.ErrDuplicateEmail
	}

	now := time.Now().UTC()
	u.Email = key
	u.CreatedAt = now
	u.UpdatedAt = now

	clone := *u
	m.users[key] = &clone
	return nil
}

func (m *memUserStore) FindByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, user.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memUserStore) FindByID(_ context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memUserStore) UpdatePasswordByEmail(_ context.Context, email, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return user.ErrNotFound
	}
	u.Password = passwordHash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memUserStore) All(_ context.Context) ([]user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]user.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

// fakeMailer records messages instead of delivering them.
type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) messages() []mail.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mail.Message(nil), f.sent...)
}

type testEnv struct {
	service  *Service
	users    *memUserStore
	sessions session.Store
	mailer   *fakeMailer
}

func newTestService(t *testing.T) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	users := newMemUserStore()
	sessions := session.NewRedisStore(client)
	mailer := &fakeMailer{}

	access := []byte("access-secret")
	refresh := []byte("refresh-secret")
	issuer := token.NewIssuer(access, refresh, time.Hour, 24*time.Hour, sessions)
	verifier := token.NewVerifier(access, refresh, sessions)

	product := mail.Product{Name: "auth-service", URL: "http://localhost:3330/"}

	return &testEnv{
		service:  NewService(users, sessions, issuer, verifier, mailer, product),
		users:    users,
		sessions: sessions,
		mailer:   mailer,
	}
}

func (e *testEnv) register(t *testing.T) *user.User {
	t.Helper()

	u, err := e.service.Register(context.Background(), "alice smith", "alice@example.com", "password1")
	require.NoError(t, err)
	return u
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	env := newTestService(t)
	env.register(t)

	_, err := env.service.Register(context.Background(), "alice again", "alice@example.com", "password2")
	require.Error(t, err)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRegisterHashesPasswordAndSendsWelcomeMail(t *testing.T) {
	env := newTestService(t)
	u := env.register(t)

	require.NotEmpty(t, u.ID)
	require.NotEqual(t, "password1", u.Password)

	msgs := env.mailer.messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "alice@example.com", msgs[0].To)
	require.Equal(t, "Create account", msgs[0].Subject)
}

func TestLoginUnknownEmailIsNotFound(t *testing.T) {
	env := newTestService(t)

	_, err := env.service.Login(context.Background(), "nobody@example.com", "password1")
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	env := newTestService(t)
	env.register(t)

	_, err := env.service.Login(context.Background(), "alice@example.com", "wrong-pass")
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestLoginIssuesVerifiablePair(t *testing.T) {
	env := newTestService(t)
	u := env.register(t)
	ctx := context.Background()

	pair, err := env.service.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	// The issued refresh token is the stored session value.
	stored, err := env.sessions.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, pair.RefreshToken, stored)

	rotated, err := env.service.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, rotated.AccessToken)
}

func TestSecondLoginInvalidatesFirstRefreshToken(t *testing.T) {
	env := newTestService(t)
	env.register(t)
	ctx := context.Background()

	first, err := env.service.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)

	// Identical claims within the same second would yield an identical
	// token, which would not rotate anything.
	time.Sleep(1100 * time.Millisecond)

	second, err := env.service.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)

	_, err = env.service.Refresh(ctx, first.RefreshToken)
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = env.service.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	env := newTestService(t)
	env.register(t)
	ctx := context.Background()

	pair, err := env.service.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)

	require.NoError(t, env.service.Logout(ctx, pair.RefreshToken))

	_, err = env.service.Refresh(ctx, pair.RefreshToken)
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	// Second logout with the same token: the session is gone, so the
	// token no longer verifies. Unauthorized, never a crash.
	err = env.service.Logout(ctx, pair.RefreshToken)
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestLogoutWithoutTokenIsBadRequest(t *testing.T) {
	env := newTestService(t)

	err := env.service.Logout(context.Background(), "")
	require.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}

func TestRefreshWithoutTokenIsBadRequest(t *testing.T) {
	env := newTestService(t)

	_, err := env.service.Refresh(context.Background(), "")
	require.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}

func TestChangePasswordWrongCurrentLeavesHashUnchanged(t *testing.T) {
	env := newTestService(t)
	u := env.register(t)
	ctx := context.Background()

	before, err := env.users.FindByID(ctx, u.ID)
	require.NoError(t, err)

	err = env.service.ChangePassword(ctx, u.ID, "wrong-pass", "new-password1")
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	after, err := env.users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, before.Password, after.Password)
}

func TestChangePasswordUnknownUserIsNotFound(t *testing.T) {
	env := newTestService(t)

	err := env.service.ChangePassword(context.Background(), "missing-id", "password1", "password2")
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestChangePasswordRotatesHashAndInvalidatesSession(t *testing.T) {
	env := newTestService(t)
	u := env.register(t)
	ctx := context.Background()

	pair, err := env.service.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)

	require.NoError(t, env.service.ChangePassword(ctx, u.ID, "password1", "new-password1"))

	_, err = env.service.Login(ctx, "alice@example.com", "password1")
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = env.service.Login(ctx, "alice@example.com", "new-password1")
	require.NoError(t, err)

	// The refresh session issued before the change is gone.
	_, err = env.service.Refresh(ctx, pair.RefreshToken)
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestForgotPasswordUnknownEmailSendsNothing(t *testing.T) {
	env := newTestService(t)

	err := env.service.ForgotPassword(context.Background(), "nobody@example.com")
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	require.Empty(t, env.mailer.messages())
}

func TestForgotPasswordMailsGeneratedPassword(t *testing.T) {
	env := newTestService(t)
	env.register(t)
	ctx := context.Background()

	require.NoError(t, env.service.ForgotPassword(ctx, "alice@example.com"))

	msgs := env.mailer.messages()
	require.Len(t, msgs, 2) // welcome + reset
	reset := msgs[1]
	require.Equal(t, "Reset Your Password", reset.Subject)

	// The mailed plaintext is the only way to recover the new password.
	newPassword := strings.TrimPrefix(reset.Text, "Your new password is: ")
	require.NotEqual(t, reset.Text, newPassword)

	_, err := env.service.Login(ctx, "alice@example.com", "password1")
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = env.service.Login(ctx, "alice@example.com", newPassword)
	require.NoError(t, err)
}

func TestListUsersReturnsAllRecords(t *testing.T) {
	env := newTestService(t)
	env.register(t)

	_, err := env.service.Register(context.Background(), "robert brown", "bob@example.com", "password1")
	require.NoError(t, err)

	users, err := env.service.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
}
