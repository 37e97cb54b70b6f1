package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"vregistry/internal/apperr"
	"vregistry/internal/idp"
	"vregistry/internal/models"
	"vregistry/internal/repositories"
	"vregistry/internal/utils"
)

const (
	AuthModeLocal = "local"
	AuthModeIDP   = "idp"

	msgInvalidCredentials = "Неверные учетные данные"
	msgInvalidToken       = "Недействительный или просроченный токен"
)

// AuthService отвечает за вход, обновление токенов и определение текущего пользователя.
// Оба режима отдают одинаковый TokenPair.
type AuthService interface {
	Mode() string
	Login(ctx context.Context, username, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
}

func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func CheckPassword(hash, plain string) bool {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// ===== local =====

type LocalAuthOptions struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type localAuthService struct {
	users repositories.UserRepository
	opts  LocalAuthOptions
	log   *zap.Logger
	now   func() time.Time
}

func NewLocalAuthService(users repositories.UserRepository, opts LocalAuthOptions, log *zap.Logger) AuthService {
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 15 * time.Minute
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 30 * 24 * time.Hour
	}
	return &localAuthService{users: users, opts: opts, log: log, now: time.Now}
}

func (s *localAuthService) Mode() string { return AuthModeLocal }

func (s *localAuthService) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	username = strings.TrimSpace(username)
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.log.Info("login: unknown username", zap.String("username", username))
			return nil, apperr.BadRequest(msgInvalidCredentials, nil)
		}
		return nil, apperr.Internal(err)
	}
	if !CheckPassword(user.PasswordHash, password) {
		s.log.Info("login: password mismatch", zap.Int("user_id", user.ID))
		return nil, apperr.BadRequest(msgInvalidCredentials, nil)
	}

	rt, err := utils.NewRefreshToken(32)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.users.UpdateRefresh(ctx, user.ID, rt, s.now().Add(s.opts.RefreshTTL)); err != nil {
		return nil, apperr.Internal(err)
	}
	pair, err := s.issue(user, rt)
	if err != nil {
		return nil, err
	}
	s.log.Info("login: success", zap.Int("user_id", user.ID), zap.Int("role_id", user.RoleID))
	return pair, nil
}

func (s *localAuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	old := strings.TrimSpace(refreshToken)
	user, err := s.users.GetByRefreshToken(ctx, old)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Unauthorized(msgInvalidToken, nil)
		}
		return nil, apperr.Internal(err)
	}
	if user.RefreshRevoked || user.RefreshExpiresAt == nil || s.now().After(*user.RefreshExpiresAt) {
		return nil, apperr.Unauthorized(msgInvalidToken, nil)
	}

	// ротация refresh-токена
	newRT, err := utils.NewRefreshToken(32)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	rotated, err := s.users.RotateRefresh(ctx, old, newRT, s.now().Add(s.opts.RefreshTTL))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Unauthorized(msgInvalidToken, nil)
		}
		return nil, apperr.Internal(err)
	}
	return s.issue(rotated, newRT)
}

func (s *localAuthService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := utils.ParseAccessToken(s.opts.Secret, accessToken)
	if err != nil {
		return nil, apperr.Unauthorized(msgInvalidToken, nil)
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Unauthorized(msgInvalidToken, nil)
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}

func (s *localAuthService) issue(user *models.User, refresh string) (*models.TokenPair, error) {
	access, err := utils.SignAccessToken(s.opts.Secret, user.ID, user.RoleID, s.opts.AccessTTL, s.now())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.opts.AccessTTL.Seconds()),
	}, nil
}

// ===== identity provider =====

// idpClient is the part of *idp.Client the service needs.
type idpClient interface {
	PasswordLogin(ctx context.Context, username, password string) (*oauth2.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	UserInfo(ctx context.Context, accessToken string) (*idp.UserInfo, error)
}

type idpAuthService struct {
	client idpClient
	users  repositories.UserRepository
	log    *zap.Logger
}

func NewIDPAuthService(client idpClient, users repositories.UserRepository, log *zap.Logger) AuthService {
	return &idpAuthService{client: client, users: users, log: log}
}

func (s *idpAuthService) Mode() string { return AuthModeIDP }

func (s *idpAuthService) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	tok, err := s.client.PasswordLogin(ctx, strings.TrimSpace(username), password)
	if err != nil {
		s.log.Warn("idp login failed", zap.String("username", username), zap.Error(err))
		if idp.IsRejected(err) {
			// детали провайдера клиенту не отдаём
			return nil, apperr.BadRequest(msgInvalidCredentials, nil)
		}
		return nil, apperr.Internal(err)
	}
	return tokenPair(tok), nil
}

func (s *idpAuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	tok, err := s.client.Refresh(ctx, strings.TrimSpace(refreshToken))
	if err != nil {
		s.log.Warn("idp refresh failed", zap.Error(err))
		if idp.IsRejected(err) {
			return nil, apperr.Unauthorized(msgInvalidToken, nil)
		}
		return nil, apperr.Internal(err)
	}
	return tokenPair(tok), nil
}

func (s *idpAuthService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	info, err := s.client.UserInfo(ctx, accessToken)
	if err != nil {
		if errors.Is(err, idp.ErrUnauthorized) {
			return nil, apperr.Unauthorized(msgInvalidToken, nil)
		}
		return nil, apperr.Internal(err)
	}
	user, err := s.users.GetByUsername(ctx, info.PreferredUsername)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Unauthorized("Пользователь не зарегистрирован в системе", nil).
				With("username", info.PreferredUsername)
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}

func tokenPair(tok *oauth2.Token) *models.TokenPair {
	tt := strings.ToLower(tok.TokenType)
	if tt == "" {
		tt = "bearer"
	}
	return &models.TokenPair{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tt,
		ExpiresIn:    idp.ExpiresIn(tok),
	}
}
