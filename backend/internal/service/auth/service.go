/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-08 20:40:06
 * @FilePath: \isizulu-corpus\backend\internal\service\auth\service.go
 * @LastEditTime: 2025-10-14 16:02:31
 */
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "isizulu-corpus/backend/internal/domain/user"
	appLogger "isizulu-corpus/backend/internal/infra/logger"
	"isizulu-corpus/backend/internal/infra/token"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidLogin  = errors.New("invalid username or password")
	ErrUsernameTaken = errors.New("username already taken")
	ErrInvalidInput  = errors.New("username and password are required")
)

// minPasswordLength 是创建账号时要求的最短密码长度。
const minPasswordLength = 8

// UserStore 抽象鉴权所需的用户读写。
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	TouchLogin(ctx context.Context, id uint, at time.Time) error
}

// TokenIssuer 抽象访问令牌签发，目前由 token.JWTManager 实现。
type TokenIssuer interface {
	Issue(user *domain.User) (token.AccessToken, error)
}

// Service 负责编辑账号的登录与创建。语料的只读接口不需要登录。
type Service struct {
	users  UserStore
	tokens TokenIssuer
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewService 创建鉴权服务实例。
func NewService(users UserStore, tokens TokenIssuer, logger *zap.SugaredLogger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: appLogger.OrNop(logger, "auth.service"),
		now:    time.Now,
	}
}

// Login 校验用户名与密码，成功后签发访问令牌并记录登录时间。
// 用户不存在与密码错误返回同一个错误，避免泄露账号是否存在。
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, token.AccessToken, error) {
	username = strings.TrimSpace(username)
	log := s.logger.With("username", username)

	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("login user not found")
			return nil, token.AccessToken{}, ErrInvalidLogin
		}
		log.Errorw("find user failed", "error", err)
		return nil, token.AccessToken{}, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		log.Warn("login password mismatch")
		return nil, token.AccessToken{}, ErrInvalidLogin
	}

	access, err := s.tokens.Issue(u)
	if err != nil {
		log.Errorw("issue token failed", "error", err)
		return nil, token.AccessToken{}, fmt.Errorf("issue token: %w", err)
	}

	at := s.now()
	if err := s.users.TouchLogin(ctx, u.ID, at); err != nil {
		log.Warnw("update last login failed", "error", err)
	} else {
		u.LastLoginAt = &at
	}

	log.Infow("login success", "user_id", u.ID)
	return u, access, nil
}

// CreateUser 创建编辑账号，密码以 bcrypt 哈希保存。
func (s *Service) CreateUser(ctx context.Context, username, password string, admin bool) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check username unique: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      admin,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Infow("user created", "user_id", u.ID, "username", u.Username, "admin", admin)
	return u, nil
}
