package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/qs3c/bio_go_server/config"
	"github.com/qs3c/bio_go_server/internal/model"
	"github.com/qs3c/bio_go_server/internal/model/dto"
)

// UsageStore 每日计数存储，数据库与 Redis 两种实现
type UsageStore interface {
	GetDailyUsage(ctx context.Context, userID int64, date string) (int, error)
	IncrementDailyUsage(ctx context.Context, userID int64, date string) (int, error)
}

// UsagePruner 支持按日期清理历史计数的存储
type UsagePruner interface {
	CountUsageBefore(ctx context.Context, date string) (int64, error)
	DeleteUsageBefore(ctx context.Context, date string) (int64, error)
}

// Admission 准入结果
type Admission struct {
	Allowed      bool
	NeedsUpgrade bool
	Used         int
	Limit        int
	Message      string
}

type QuotaService struct {
	store UsageStore
	cfg   *config.Config
	loc   *time.Location
	now   func() time.Time
}

func NewQuotaService(store UsageStore, cfg *config.Config) *QuotaService {
	return &QuotaService{
		store: store,
		cfg:   cfg,
		loc:   cfg.Quota.Location(),
		now:   time.Now,
	}
}

// Today 参考时区下的当天日期
func (s *QuotaService) Today() string {
	return s.now().In(s.loc).Format(model.DateLayout)
}

// nextReset 下一个参考时区零点
func (s *QuotaService) nextReset() time.Time {
	now := s.now().In(s.loc)
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, s.loc)
}

// CheckAdmission 会员直接放行，免费用户当天计数小于上限才放行
func (s *QuotaService) CheckAdmission(ctx context.Context, userID int64, isPremium bool) (*Admission, error) {
	limit := s.cfg.Quota.FreeDailyLimit
	if isPremium {
		return &Admission{Allowed: true, Limit: -1}, nil
	}

	used, err := s.store.GetDailyUsage(ctx, userID, s.Today())
	if err != nil {
		return nil, err
	}

	if used >= limit {
		return &Admission{
			Allowed:      false,
			NeedsUpgrade: true,
			Used:         used,
			Limit:        limit,
			Message:      UpgradeMessage,
		}, nil
	}

	return &Admission{Allowed: true, Used: used, Limit: limit}, nil
}

// RecordUsage 当天计数原子加一，返回新值
func (s *QuotaService) RecordUsage(ctx context.Context, userID int64) (int, error) {
	count, err := s.store.IncrementDailyUsage(ctx, userID, s.Today())
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DailyUsage 当天已用次数
func (s *QuotaService) DailyUsage(ctx context.Context, userID int64) (int, error) {
	return s.store.GetDailyUsage(ctx, userID, s.Today())
}

// GetQuotaInfo 获取用户配额信息
func (s *QuotaService) GetQuotaInfo(ctx context.Context, user *model.User) (*dto.QuotaInfo, error) {
	used, err := s.DailyUsage(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	info := &dto.QuotaInfo{
		IsPremium: user.IsPremium,
		DailyUsed: used,
		Date:      s.Today(),
		ResetAt:   s.nextReset().Format(time.RFC3339),
	}

	if user.IsPremium {
		info.DailyLimit = -1
		info.DailyRemain = -1
		return info, nil
	}

	info.DailyLimit = s.cfg.Quota.FreeDailyLimit
	info.DailyRemain = info.DailyLimit - used
	if info.DailyRemain < 0 {
		info.DailyRemain = 0
	}
	return info, nil
}

// RetentionCutoff 保留期之外的最早日期
func (s *QuotaService) RetentionCutoff() string {
	days := s.cfg.Quota.RetentionDays
	if days <= 0 {
		days = 90
	}
	return s.now().In(s.loc).AddDate(0, 0, -days).Format(model.DateLayout)
}

// PruneUsageBefore 清理早于 cutoff 的计数，dryRun 时只统计
// Redis 计数自带过期，不需要清理
func (s *QuotaService) PruneUsageBefore(ctx context.Context, cutoff string, dryRun bool) (int64, error) {
	pruner, ok := s.store.(UsagePruner)
	if !ok {
		return 0, nil
	}

	if dryRun {
		return pruner.CountUsageBefore(ctx, cutoff)
	}

	deleted, err := pruner.DeleteUsageBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "pruned daily usage", "before", cutoff, "rows", deleted)
	return deleted, nil
}
