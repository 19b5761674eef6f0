package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/madac4/doCreate-server/internal/domain"
	"github.com/madac4/doCreate-server/internal/token"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *fakeSessionStore) {
	t.Helper()

	users := newFakeUserRepo()
	sessions := newFakeSessionStore()
	auth := NewAuthService(users, sessions, newTestTokens())
	return auth, users, sessions
}

func seedUser(t *testing.T, users *fakeUserRepo, email, password string) *domain.User {
	t.Helper()

	hash, err := token.HashPassword(password)
	require.NoError(t, err)

	user, err := users.Create(context.Background(), &domain.User{
		ID:         primitive.NewObjectID(),
		Name:       "Alice",
		Email:      email,
		Password:   hash,
		IsVerified: true,
	})
	require.NoError(t, err)
	return user
}

func TestLogin_Success(t *testing.T) {
	auth, users, sessions := newAuthFixture(t)
	seeded := seedUser(t, users, "alice@example.com", "s3cret")

	user, pair, err := auth.Login(context.Background(), "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// Успешный вход кладет пользователя в кеш сессий
	cached, err := sessions.Get(context.Background(), seeded.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, seeded.Email, cached.Email)
}

func TestLogin_WrongPasswordAndUnknownEmailLookTheSame(t *testing.T) {
	auth, users, _ := newAuthFixture(t)
	seedUser(t, users, "alice@example.com", "s3cret")

	_, _, errWrongPassword := auth.Login(context.Background(), "alice@example.com", "nope")
	_, _, errUnknownEmail := auth.Login(context.Background(), "nobody@example.com", "s3cret")

	assert.ErrorIs(t, errWrongPassword, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknownEmail, domain.ErrInvalidCredentials)
}

func TestRefresh_RotatesPair(t *testing.T) {
	auth, users, _ := newAuthFixture(t)
	seeded := seedUser(t, users, "alice@example.com", "s3cret")

	_, pair, err := auth.Login(context.Background(), "alice@example.com", "s3cret")
	require.NoError(t, err)

	user, next, err := auth.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)
	assert.NotEmpty(t, next.AccessToken)
	assert.NotEmpty(t, next.RefreshToken)
}

func TestRefresh_FailsAfterLogout(t *testing.T) {
	auth, users, _ := newAuthFixture(t)
	seeded := seedUser(t, users, "alice@example.com", "s3cret")

	_, pair, err := auth.Login(context.Background(), "alice@example.com", "s3cret")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(context.Background(), seeded.ID.Hex()))

	// Подпись токена все еще валидна, но сессии в кеше больше нет
	_, _, err = auth.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrRefreshSession)
}

func TestRefresh_GarbageToken(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	_, _, err := auth.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, domain.ErrRefreshSession)
}

func TestSession_ResolvesCachedUser(t *testing.T) {
	auth, users, _ := newAuthFixture(t)
	seeded := seedUser(t, users, "alice@example.com", "s3cret")

	_, pair, err := auth.Login(context.Background(), "alice@example.com", "s3cret")
	require.NoError(t, err)

	user, err := auth.Session(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)
}

func TestSession_InvalidToken(t *testing.T) {
	auth, _, _ := newAuthFixture(t)

	_, err := auth.Session(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
