package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainuser "homeseek/internal/domain/user"
	"homeseek/internal/infra/security"
	"homeseek/internal/infra/storage/memory"
)

type staticSigner struct{}

func (staticSigner) Sign(userID string) (string, error) {
	return "token-for-" + userID, nil
}

func newService() (*Service, *memory.UserRepository) {
	users := memory.NewUserRepository()
	return &Service{
		Users:     users,
		Passwords: security.BcryptHasher{Cost: 4},
		Tokens:    staticSigner{},
	}, users
}

func TestSignupAndSignin(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	created, err := service.Signup(ctx, SignupParams{
		Username: "ana",
		Email:    "  Ana@Example.COM ",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", created.User.Email)
	assert.NotEmpty(t, created.User.ID)
	assert.NotEqual(t, "secret1", created.User.PasswordHash)
	assert.Equal(t, "token-for-"+string(created.User.ID), created.Token)

	signed, err := service.Signin(ctx, SigninParams{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, signed.User.ID)

	_, err = service.Signin(ctx, SigninParams{Email: "ana@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Signin(ctx, SigninParams{Email: "ghost@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignupValidation(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	_, err := service.Signup(ctx, SignupParams{Username: "ana", Email: "", Password: "secret1"})
	assert.ErrorIs(t, err, domainuser.ErrEmailRequired)

	_, err = service.Signup(ctx, SignupParams{Username: "", Email: "a@b.c", Password: "secret1"})
	assert.ErrorIs(t, err, domainuser.ErrUsernameRequired)

	_, err = service.Signup(ctx, SignupParams{Username: "ana", Email: "a@b.c", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestSignupDuplicateEmail(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	_, err := service.Signup(ctx, SignupParams{Username: "ana", Email: "a@b.c", Password: "secret1"})
	require.NoError(t, err)

	_, err = service.Signup(ctx, SignupParams{Username: "other", Email: "a@b.c", Password: "secret2"})
	assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
}

func TestGoogleCreatesThenReuses(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	first, err := service.Google(ctx, GoogleParams{Email: "Ana@example.com", Name: "Ana Maria", Photo: "http://p/x.png"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.Token)
	assert.Equal(t, "http://p/x.png", first.User.Avatar)
	assert.NotEmpty(t, first.User.Username)
	assert.NotContains(t, first.User.Username, " ")

	second, err := service.Google(ctx, GoogleParams{Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestGoogleExistingPasswordAccount(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	created, err := service.Signup(ctx, SignupParams{Username: "ana", Email: "a@b.c", Password: "secret1"})
	require.NoError(t, err)

	viaGoogle, err := service.Google(ctx, GoogleParams{Email: "a@b.c", Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, viaGoogle.User.ID)
}
