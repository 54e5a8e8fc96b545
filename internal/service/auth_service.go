package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/qs3c/bio_go_server/config"
	"github.com/qs3c/bio_go_server/internal/model"
	"github.com/qs3c/bio_go_server/internal/model/dto"
	"github.com/qs3c/bio_go_server/internal/pkg/jwt"
	"github.com/qs3c/bio_go_server/internal/repository"
)

type AuthService struct {
	userRepo  *repository.UserRepository
	cfg       *config.Config
	dummyHash []byte
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	// 未知邮箱时也做一次比对，两种失败耗时相近
	dummy, err := bcrypt.GenerateFromPassword([]byte("bio-login-placeholder"), bcryptCost(cfg))
	if err != nil {
		dummy = nil
	}

	return &AuthService{
		userRepo:  userRepo,
		cfg:       cfg,
		dummyHash: dummy,
	}
}

func bcryptCost(cfg *config.Config) int {
	cost := cfg.Auth.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

// Register 用户注册
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, validationError("email and password are required")
	}
	if len(req.Password) < s.cfg.Auth.MinPasswordLength {
		return nil, validationError("password must be at least %d characters", s.cfg.Auth.MinPasswordLength)
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost(s.cfg))
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		IsPremium:    false,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 并发注册由唯一索引兜底
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	slog.InfoContext(ctx, "account registered", "user_id", user.ID)

	return s.authResponse(user)
}

// Login 用户登录，邮箱不存在与密码错误返回同一错误
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, validationError("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
			slog.InfoContext(ctx, "login rejected")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.InfoContext(ctx, "login rejected")
		return nil, ErrInvalidCredentials
	}

	return s.authResponse(user)
}

// IssueToken 签发访问令牌
func (s *AuthService) IssueToken(userID int64) (string, error) {
	return jwt.GenerateToken(userID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
}

// VerifyToken 校验令牌，返回用户 ID
func (s *AuthService) VerifyToken(token string) (int64, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}
	claims, err := jwt.ParseToken(token, s.cfg.JWT.Secret)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

// GetUserByID 根据 ID 获取用户
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) authResponse(user *model.User) (*dto.AuthResponse, error) {
	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token:   token,
		Account: buildAccountInfo(user),
	}, nil
}

func buildAccountInfo(user *model.User) *dto.AccountInfo {
	info := &dto.AccountInfo{
		ID:        user.ID,
		Email:     user.Email,
		IsPremium: user.IsPremium,
	}
	if !user.CreatedAt.IsZero() {
		info.CreatedAt = user.CreatedAt.UTC().Format(time.RFC3339)
	}
	return info
}
