package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	repotest "github.com/yungbote/quitbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
)

func init() {
	passwordHashCost = bcrypt.MinCost
}

const testJWTSecret = "test-secret-key-with-enough-entropy"

func newTestAuthService(t *testing.T) (AuthService, repos.Set) {
	t.Helper()
	db := repotest.FreshDB(t)
	log := repotest.Logger(t)
	r := repos.NewSet(db, log)
	return NewAuthService(db, log, r.Users, r.Tokens, testJWTSecret, 15*time.Minute, 24*time.Hour), r
}

func TestAuthService_RegisterLoginRefreshLogout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	u, err := svc.RegisterUser(ctx, RegisterInput{Email: "Ada.Smoker@Example.com", Password: "hunter22", FirstName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "ada.smoker@example.com", u.Email)
	assert.Equal(t, "adasmoker", u.Username)
	assert.Equal(t, "user", u.Role)

	pair, err := svc.LoginUser(ctx, "ada.smoker@example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	authed, err := svc.SetContextFromToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	rd := ctxutil.GetRequestData(authed)
	require.NotNil(t, rd)
	assert.Equal(t, u.ID, rd.UserID)
	assert.Equal(t, pair.SessionID, rd.SessionID)
	assert.Equal(t, "user", rd.Role)

	me, err := svc.GetMe(authed)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)

	rotated, err := svc.RefreshUser(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	assert.NotEqual(t, pair.SessionID, rotated.SessionID)

	_, err = svc.RefreshUser(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized, "old refresh token must be consumed")
	_, err = svc.SetContextFromToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized, "rotated access token must be revoked")

	authed, err = svc.SetContextFromToken(ctx, rotated.AccessToken)
	require.NoError(t, err)
	require.NoError(t, svc.LogoutUser(authed))
	_, err = svc.SetContextFromToken(ctx, rotated.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_DeleteAccount(t *testing.T) {
	ctx := context.Background()
	svc, r := newTestAuthService(t)

	u, err := svc.RegisterUser(ctx, RegisterInput{Email: "leaving@example.com", Password: "hunter22"})
	require.NoError(t, err)
	pair, err := svc.LoginUser(ctx, "leaving@example.com", "hunter22")
	require.NoError(t, err)
	_, err = r.Profiles.Create(dbctx.New(ctx), &types.UserProfile{UserID: u.ID, CigarettesPerDay: 12})
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteAccount(ctx), ErrUnauthorized)

	authed, err := svc.SetContextFromToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteAccount(authed))

	_, err = svc.SetContextFromToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
	profile, err := r.Profiles.GetByUserID(dbctx.New(ctx), u.ID)
	require.NoError(t, err)
	assert.Nil(t, profile)
	available, err := svc.EmailAvailable(ctx, "leaving@example.com")
	require.NoError(t, err)
	assert.True(t, available)

	err = svc.DeleteAccount(authed)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "got %v", err)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	_, err := svc.RegisterUser(ctx, RegisterInput{Email: "not-an-email", Password: "hunter22"})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "bad email: %v", err)

	_, err = svc.RegisterUser(ctx, RegisterInput{Email: "short@example.com", Password: "abc"})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "short password: %v", err)

	_, err = svc.RegisterUser(ctx, RegisterInput{Email: "sam@example.com", Username: "sam", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, RegisterInput{Email: "SAM@example.com", Password: "hunter22"})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "duplicate email: %v", err)

	_, err = svc.RegisterUser(ctx, RegisterInput{Email: "other@example.com", Username: "sam", Password: "hunter22"})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "duplicate username: %v", err)

	derived, err := svc.RegisterUser(ctx, RegisterInput{Email: "sam@example.org", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEqual(t, "sam", derived.Username)
	assert.Contains(t, derived.Username, "sam_")

	avail, err := svc.UsernameAvailable(ctx, "sam")
	require.NoError(t, err)
	assert.False(t, avail)
	avail, err = svc.EmailAvailable(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.True(t, avail)
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)
	_, err := svc.RegisterUser(ctx, RegisterInput{Email: "kim@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.LoginUser(ctx, "kim@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.LoginUser(ctx, "missing@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_SetContextFromTokenRejectsForgedTokens(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	claims := JWTClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-other-secret"))
	require.NoError(t, err)
	_, err = svc.SetContextFromToken(ctx, forged)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Correctly signed but never issued: no session row backs it.
	unissued, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	_, err = svc.SetContextFromToken(ctx, unissued)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.SetContextFromToken(ctx, "")
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestAuthService_RefreshExpiredSessionIsDeleted(t *testing.T) {
	ctx := context.Background()
	db := repotest.FreshDB(t)
	log := repotest.Logger(t)
	r := repos.NewSet(db, log)
	svc := NewAuthService(db, log, r.Users, r.Tokens, testJWTSecret, time.Minute, -time.Minute)

	_, err := svc.RegisterUser(ctx, RegisterInput{Email: "lee@example.com", Password: "hunter22"})
	require.NoError(t, err)
	pair, err := svc.LoginUser(ctx, "lee@example.com", "hunter22")
	require.NoError(t, err)

	_, err = svc.RefreshUser(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrSessionExpired)

	tok, err := r.Tokens.GetByRefreshToken(dbctx.New(ctx), pair.RefreshToken)
	require.NoError(t, err)
	assert.Nil(t, tok)
}
