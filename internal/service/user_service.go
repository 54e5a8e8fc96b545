package service

import (
	"context"
	"errors"
	"time"

	"github.com/qs3c/bio_go_server/internal/model/dto"
	"github.com/qs3c/bio_go_server/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type UserService struct {
	userRepo       *repository.UserRepository
	generationRepo *repository.GenerationRepository
	quotaService   *QuotaService
}

func NewUserService(
	userRepo *repository.UserRepository,
	generationRepo *repository.GenerationRepository,
	quotaService *QuotaService,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		generationRepo: generationRepo,
		quotaService:   quotaService,
	}
}

// GetProfile 获取账户概况
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	total, err := s.generationRepo.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	quota, err := s.quotaService.GetQuotaInfo(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.ProfileResponse{
		Account:          buildAccountInfo(user),
		TotalGenerations: total,
		DailyUsage:       quota.DailyUsed,
		Quota:            quota,
	}, nil
}

// GetQuota 当前用户的配额信息
func (s *UserService) GetQuota(ctx context.Context, userID int64) (*dto.QuotaInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.quotaService.GetQuotaInfo(ctx, user)
}

// ListGenerations 历史记录，新的在前
func (s *UserService) ListGenerations(ctx context.Context, userID int64, page, pageSize int) ([]dto.GenerationItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	generations, total, err := s.generationRepo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]dto.GenerationItem, 0, len(generations))
	for _, g := range generations {
		items = append(items, dto.GenerationItem{
			ID:        g.ID,
			Bio:       g.BioText,
			Platform:  g.Platform,
			CreatedAt: g.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return items, total, nil
}
