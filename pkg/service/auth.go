package service

import (
	"context"
	"errors"
	"log"
	"time"

	tokensvc "fitfest/internal/token"
	"fitfest/pkg/bootstrap"
	"fitfest/pkg/model"
	"fitfest/pkg/session"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers unknown email, wrong password and lockout.
	// The causes are logged and audited separately but never distinguished in
	// the response.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionExpired     = errors.New("session expired or revoked")
)

const bcryptCost = 12

const (
	loginMaxFailures = 10
	loginWindow      = 15 * time.Minute
)

func NewAuthService(db *gorm.DB, cache *redis.Client, sessions *session.Store, audit model.AuditService, jwtEnv *bootstrap.JWTEnv) model.AuthService {
	return &AuthServiceImpl{
		db:       db,
		cache:    cache,
		sessions: sessions,
		audit:    audit,
		limiter:  newLoginLimiter(loginMaxFailures, loginWindow),
		jwt:      jwtEnv,
	}
}

type AuthServiceImpl struct {
	db       *gorm.DB
	cache    *redis.Client
	sessions *session.Store
	audit    model.AuditService
	limiter  *loginLimiter
	jwt      *bootstrap.JWTEnv
}

// Register creates a credential and immediately issues a session for it.
func (as *AuthServiceImpl) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, *model.TokenPair, error) {
	var count int64
	if err := as.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, nil, err
	}
	if count > 0 {
		return nil, nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleMember
	}
	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := as.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, nil, err
	}

	pair, err := as.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	as.auditEvent(ctx, user.ID, user.Email, model.AuditActionRegister)
	return user.Sanitized(), pair, nil
}

// Login verifies the credential and issues a fresh session. Prior sessions on
// other devices stay valid; multi-session is intentional.
func (as *AuthServiceImpl) Login(ctx context.Context, req *model.LoginRequest) (*model.User, *model.TokenPair, error) {
	if !as.limiter.Allow(req.Email) {
		as.auditEvent(ctx, "", req.Email, model.AuditActionLoginFailed)
		return nil, nil, ErrInvalidCredentials
	}

	user := &model.User{}
	err := as.db.WithContext(ctx).Where("email = ?", req.Email).First(user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		as.limiter.RecordFailure(req.Email)
		as.auditEvent(ctx, "", req.Email, model.AuditActionLoginFailed)
		return nil, nil, ErrInvalidCredentials
	case err != nil:
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		as.limiter.RecordFailure(req.Email)
		as.auditEvent(ctx, user.ID, user.Email, model.AuditActionLoginFailed)
		return nil, nil, ErrInvalidCredentials
	}

	as.limiter.Reset(req.Email)
	pair, err := as.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	as.auditEvent(ctx, user.ID, user.Email, model.AuditActionLogin)
	return user.Sanitized(), pair, nil
}

// Refresh rotates the refresh token and mints a new access token. A stale or
// replayed refresh token ends the session.
func (as *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	sessionID, err := tokensvc.SplitRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrSessionExpired
	}

	newToken, err := tokensvc.RotateRefreshToken(sessionID)
	if err != nil {
		return nil, err
	}

	userID, err := as.sessions.Rotate(ctx, sessionID, refreshToken, tokensvc.HashToken(newToken))
	switch {
	case errors.Is(err, session.ErrTokenReplayed):
		as.auditEvent(ctx, userID, "", model.AuditActionRefreshReplay)
		return nil, ErrSessionExpired
	case errors.Is(err, session.ErrSessionNotFound):
		return nil, ErrSessionExpired
	case err != nil:
		return nil, err
	}

	user, err := as.GetUserByID(ctx, userID)
	if err != nil {
		return nil, ErrSessionExpired
	}

	accessToken, err := tokensvc.CreateAccessToken(user, as.jwt.AccessTokenSecret, as.jwt.AccessTokenExpiry)
	if err != nil {
		return nil, err
	}

	as.auditEvent(ctx, user.ID, user.Email, model.AuditActionRefresh)
	return &model.TokenPair{AccessToken: accessToken, RefreshToken: newToken}, nil
}

// Logout denylists the access token for its remaining lifetime and deletes
// the refresh session. It is idempotent; repeated calls are not errors.
func (as *AuthServiceImpl) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if claims, err := tokensvc.ExtractCustomClaimsFromToken(&accessToken, as.jwt.AccessTokenSecret); err == nil {
		ttl := claims.ExpiresAt.Unix() - time.Now().Unix()
		if ttl > 0 {
			if err := as.cache.Set(ctx, claims.ID, accessToken, time.Duration(ttl)*time.Second).Err(); err != nil {
				return err
			}
		}
		as.auditEvent(ctx, claims.UserID, claims.Email, model.AuditActionLogout)
	}

	if refreshToken == "" {
		return nil
	}
	sessionID, err := tokensvc.SplitRefreshToken(refreshToken)
	if err != nil {
		return nil
	}
	return as.sessions.Delete(ctx, sessionID)
}

func (as *AuthServiceImpl) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := as.db.WithContext(ctx).Where(&model.User{ID: id}).First(user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrUserNotFound
	case err != nil:
		return nil, err
	}
	return user, nil
}

func (as *AuthServiceImpl) issueSession(ctx context.Context, user *model.User) (*model.TokenPair, error) {
	accessToken, err := tokensvc.CreateAccessToken(user, as.jwt.AccessTokenSecret, as.jwt.AccessTokenExpiry)
	if err != nil {
		return nil, err
	}

	sessionID, refreshToken, err := tokensvc.MintRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := as.sessions.Save(ctx, user.ID, sessionID, tokensvc.HashToken(refreshToken)); err != nil {
		return nil, err
	}

	return &model.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// auditEvent is best effort; a full queue must not fail the auth operation.
func (as *AuthServiceImpl) auditEvent(ctx context.Context, userID, email, action string) {
	if as.audit == nil {
		return
	}
	if err := as.audit.EnqueueAuthEvent(ctx, userID, email, action); err != nil {
		log.Printf("enqueue audit event %q: %v", action, err)
	}
}
