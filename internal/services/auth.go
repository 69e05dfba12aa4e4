package services

import (
	"context"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/domain/user"
	"github.com/yungbote/quitbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

// JWTClaims are the access token claims. Subject is the user id and SessionID
// the user_token row backing the token.
type JWTClaims struct {
	Role      string `json:"role,omitempty"`
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email             string
	Username          string
	Password          string
	FirstName         string
	LastName          string
	PreferredLanguage string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	SessionID    uuid.UUID
	User         *types.User
}

type AuthService interface {
	RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (TokenPair, error)
	RefreshUser(ctx context.Context, refreshToken string) (TokenPair, error)
	LogoutUser(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetMe(ctx context.Context) (*types.User, error)
	UsernameAvailable(ctx context.Context, username string) (bool, error)
	EmailAvailable(ctx context.Context, email string) (bool, error)
	GetAccessTTL() time.Duration
}

// passwordHashCost is lowered by tests.
var passwordHashCost = bcrypt.DefaultCost

const minPasswordLength = 6

var usernameSanitizer = regexp.MustCompile(`[^a-z0-9_]+`)

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error) {
	const op = "auth.register"
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, validationErr(op, "a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, validationErr(op, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), passwordHashCost)
	if err != nil {
		return nil, internalErr(op, err)
	}

	var created *types.User
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.EmailExists(dbc, email)
		if err != nil {
			return internalErr(op, err)
		}
		if exists {
			return validationErr(op, "email already exists")
		}
		username, err := as.resolveUsername(dbc, in.Username, email)
		if err != nil {
			return err
		}
		u := &types.User{
			Email:             email,
			Username:          username,
			Password:          string(hashed),
			FirstName:         strings.TrimSpace(in.FirstName),
			LastName:          strings.TrimSpace(in.LastName),
			Role:              user.RoleUser,
			PreferredLanguage: strings.TrimSpace(in.PreferredLanguage),
		}
		if u.PreferredLanguage == "" {
			u.PreferredLanguage = "ar-dz"
		}
		users, err := as.userRepo.Create(dbc, []*types.User{u})
		if err != nil {
			return internalErr(op, err)
		}
		created = users[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("user registered", "user_id", created.ID)
	return created, nil
}

// resolveUsername validates an explicit username, or derives a free one from
// the email local part.
func (as *authService) resolveUsername(dbc dbctx.Context, requested, email string) (string, error) {
	const op = "auth.register"
	requested = strings.TrimSpace(requested)
	if requested != "" {
		exists, err := as.userRepo.UsernameExists(dbc, requested)
		if err != nil {
			return "", internalErr(op, err)
		}
		if exists {
			return "", validationErr(op, "username already exists")
		}
		return requested, nil
	}
	base := usernameSanitizer.ReplaceAllString(strings.ToLower(strings.SplitN(email, "@", 2)[0]), "")
	if base == "" {
		base = "user"
	}
	candidate := base
	for i := 0; i < 5; i++ {
		exists, err := as.userRepo.UsernameExists(dbc, candidate)
		if err != nil {
			return "", internalErr(op, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	}
	return "", domainagg.NewError(domainagg.CodeConflict, op, "could not allocate a username", nil)
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (TokenPair, error) {
	const op = "auth.login"
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return TokenPair{}, validationErr(op, "email and password are required")
	}
	u, err := as.userRepo.GetByEmail(dbctx.New(ctx), email)
	if err != nil {
		return TokenPair{}, internalErr(op, err)
	}
	if u == nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	var pair TokenPair
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		now := time.Now().UTC()
		if _, err := as.userTokenRepo.DeleteExpiredByUserID(dbc, u.ID, now); err != nil {
			return internalErr(op, err)
		}
		p, err := as.issueSession(dbc, u, now)
		if err != nil {
			return err
		}
		if err := as.userRepo.TouchLastLogin(dbc, u.ID, now); err != nil {
			return internalErr(op, err)
		}
		pair = p
		return nil
	})
	if err != nil {
		return TokenPair{}, err
	}
	as.log.Info("user logged in", "user_id", u.ID, "session_id", pair.SessionID)
	return pair, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (TokenPair, error) {
	const op = "auth.refresh"
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return TokenPair{}, validationErr(op, "refresh_token is required")
	}
	var (
		pair      TokenPair
		expiredID uuid.UUID
	)
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := as.userTokenRepo.GetByRefreshToken(dbc, refreshToken)
		if err != nil {
			return internalErr(op, err)
		}
		if existing == nil {
			return ErrUnauthorized
		}
		now := time.Now().UTC()
		if existing.ExpiresAt.Before(now) {
			expiredID = existing.ID
			return ErrSessionExpired
		}
		u, err := as.userRepo.GetByID(dbc, existing.UserID)
		if err != nil {
			return internalErr(op, err)
		}
		if u == nil {
			return ErrUnauthorized
		}
		p, err := as.issueSession(dbc, u, now)
		if err != nil {
			return err
		}
		if err := as.userTokenRepo.DeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
			return internalErr(op, err)
		}
		pair = p
		return nil
	})
	if err != nil {
		if expiredID != uuid.Nil {
			if derr := as.userTokenRepo.DeleteByIDs(dbctx.New(ctx), []uuid.UUID{expiredID}); derr != nil {
				as.log.Warn("failed to delete expired session", "session_id", expiredID, "error", derr)
			}
		}
		return TokenPair{}, err
	}
	return pair, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	const op = "auth.logout"
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return ErrUnauthorized
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		tok, err := as.userTokenRepo.GetByAccessToken(dbc, rd.TokenString)
		if err != nil {
			return internalErr(op, err)
		}
		if tok == nil {
			return nil
		}
		if err := as.userTokenRepo.DeleteByIDs(dbc, []uuid.UUID{tok.ID}); err != nil {
			return internalErr(op, err)
		}
		return nil
	})
}

// issueSession creates a user_token row and signs an access token bound to it.
// DeleteAccount removes the caller and everything they own. The user row lock
// orders it after any in-flight ledger write.
func (as *authService) DeleteAccount(ctx context.Context) error {
	const op = "auth.delete_account"
	userID, err := requestUser(ctx)
	if err != nil {
		return err
	}
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		u, err := as.userRepo.LockByID(dbc, userID)
		if err != nil {
			return internalErr(op, err)
		}
		if u == nil {
			return notFoundErr(op, "user not found")
		}
		if err := as.userRepo.DeleteAccount(dbc, userID); err != nil {
			return internalErr(op, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	as.log.Info("account deleted", "user_id", userID)
	return nil
}

func (as *authService) issueSession(dbc dbctx.Context, u *types.User, now time.Time) (TokenPair, error) {
	sessionID := uuid.New()
	access, err := as.generateAccessToken(u, sessionID, now)
	if err != nil {
		return TokenPair{}, internalErr("auth.issue_session", err)
	}
	refresh := uuid.NewString()
	tok := &types.UserToken{
		ID:           sessionID,
		UserID:       u.ID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(as.refreshTTL),
	}
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{tok}); err != nil {
		return TokenPair{}, internalErr("auth.issue_session", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, SessionID: sessionID, User: u}, nil
}

func (as *authService) generateAccessToken(u *types.User, sessionID uuid.UUID, now time.Time) (string, error) {
	claims := JWTClaims{
		Role:      u.Role,
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, ErrUnauthorized
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ctx, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, ErrUnauthorized
	}
	tok, err := as.userTokenRepo.GetByAccessToken(dbctx.New(ctx), tokenString)
	if err != nil {
		as.log.Warn("Error fetching user token by access token", "error", err)
		return ctx, internalErr("auth.set_context", err)
	}
	// Logged out or rotated away.
	if tok == nil || tok.UserID != userID {
		return ctx, ErrUnauthorized
	}
	rd := &ctxutil.RequestData{
		TokenString:  tokenString,
		RefreshToken: tok.RefreshToken,
		UserID:       userID,
		SessionID:    tok.ID,
		Role:         claims.Role,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetMe(ctx context.Context) (*types.User, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	u, err := as.userRepo.GetByID(dbctx.New(ctx), userID)
	if err != nil {
		return nil, internalErr("auth.me", err)
	}
	if u == nil {
		return nil, notFoundErr("auth.me", "user not found")
	}
	return u, nil
}

func (as *authService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, validationErr("auth.check_username", "username is required")
	}
	exists, err := as.userRepo.UsernameExists(dbctx.New(ctx), username)
	if err != nil {
		return false, internalErr("auth.check_username", err)
	}
	return !exists, nil
}

func (as *authService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, validationErr("auth.check_email", "email is required")
	}
	exists, err := as.userRepo.EmailExists(dbctx.New(ctx), email)
	if err != nil {
		return false, internalErr("auth.check_email", err)
	}
	return !exists, nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
