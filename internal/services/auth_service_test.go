package services

import (
	"context"
	"testing"

	"roomatch/config"
	"roomatch/internal/domain/user"
	roomatch_errors "roomatch/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiryMin: 15}
	return NewAuthService(users, cfg), users
}

func TestRegisterIssuesTokenWithSubject(t *testing.T) {
	svc, _ := newAuthFixture()

	resp, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: "long-enough-pass",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)

	claims, err := svc.ParseAccessToken(resp.AccessToken)
	require.NoError(t, err)

	subject, err := uuid.Parse(claims.Subject)
	require.NoError(t, err, "subject should be the user id")
	assert.Equal(t, resp.User.ID, subject.String())
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{
		Email:    "bob@example.com",
		Password: "long-enough-pass",
	})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginInput{Email: "bob@example.com", Password: "long-enough-pass"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resp.User.ID)

	claims, err := svc.ParseAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.Subject)
}

func TestLoginWrongPasswordFails(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "carol@example.com",
		Password: "long-enough-pass",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "carol@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, roomatch_errors.ErrUnauthorized)
}

func TestLoginBannedAccountFails(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterInput{
		Email:    "dave@example.com",
		Password: "long-enough-pass",
	})
	require.NoError(t, err)

	id, err := uuid.Parse(resp.User.ID)
	require.NoError(t, err)
	require.NoError(t, users.UpdateStatus(ctx, id, user.StatusBanned))

	_, err = svc.Login(ctx, LoginInput{Email: "dave@example.com", Password: "long-enough-pass"})
	assert.ErrorIs(t, err, roomatch_errors.ErrForbidden)
}

func TestParseAccessTokenRejectsBadToken(t *testing.T) {
	svc, _ := newAuthFixture()

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.ParseAccessToken(token)
		assert.ErrorIs(t, err, roomatch_errors.ErrUnauthorized, "token %q", token)
	}
}
