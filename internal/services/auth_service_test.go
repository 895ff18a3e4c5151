package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeos/internal/config"
	"lifeos/internal/domain/user"
	lifeos_errors "lifeos/pkg/errors"
)

type fakeUserRepo struct {
	byEmail map[string]user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]user.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	f.byEmail[u.Email] = *u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, lifeos_errors.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return user.User{}, lifeos_errors.ErrNotFound
}

func newTestAuthService() (*AuthService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret", ExpiryHours: 1}}
	return NewAuthService(repo, cfg), repo
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{
		Email:       "ada@example.com",
		Password:    "correct-horse",
		DisplayName: "Ada",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.AccessToken)
	assert.Equal(t, "ada@example.com", registered.User.Email)

	loggedIn, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	claims, err := svc.ParseAccessToken(loggedIn.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	in := RegisterInput{Email: "ada@example.com", Password: "correct-horse", DisplayName: "Ada"}
	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	_, err = svc.Register(ctx, in)
	assert.ErrorIs(t, err, lifeos_errors.ErrAlreadyExists)
}

func TestRegisterValidatesInput(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "no-at-sign", Password: "correct-horse", DisplayName: "Ada"})
	assert.ErrorIs(t, err, lifeos_errors.ErrInvalidInput)

	_, err = svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "short", DisplayName: "Ada"})
	assert.ErrorIs(t, err, lifeos_errors.ErrInvalidInput)

	_, err = svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, lifeos_errors.ErrInvalidInput)
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "correct-horse", DisplayName: "Ada"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong-horse"})
	assert.ErrorIs(t, err, lifeos_errors.ErrUnauthorized)

	// Unknown account looks the same as a bad password.
	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, lifeos_errors.ErrUnauthorized)
}

func TestParseAccessTokenRejectsForgedToken(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "correct-horse", DisplayName: "Ada"})
	require.NoError(t, err)

	other := NewAuthService(repo, &config.Config{JWT: config.JWTConfig{Secret: "different-secret", ExpiryHours: 1}})
	forged, err := other.Login(ctx, LoginInput{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(forged.AccessToken)
	assert.ErrorIs(t, err, lifeos_errors.ErrUnauthorized)

	_, err = svc.ParseAccessToken("")
	assert.ErrorIs(t, err, lifeos_errors.ErrUnauthorized)
}
