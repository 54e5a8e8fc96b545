package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/qs3c/bio_go_server/internal/service"
)

// 每次清理的超时
const pruneTimeout = 5 * time.Minute

type Service struct {
	quotaService *service.QuotaService
	loc          *time.Location
	stopChan     chan struct{}
}

func NewService(quotaService *service.QuotaService, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		quotaService: quotaService,
		loc:          loc,
		stopChan:     make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runDailyPrune()
	slog.Info("cron service started", "job", "usage retention")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	slog.Info("cron service stopped")
}

// untilNextRun 距参考时区下一个凌晨一点
func untilNextRun(now time.Time, loc *time.Location) time.Duration {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), 1, 0, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, 1, 0, 0, 0, loc)
	}
	return next.Sub(local)
}

// runDailyPrune 每日清理过期的使用计数
func (s *Service) runDailyPrune() {
	timer := time.NewTimer(untilNextRun(time.Now(), s.loc))
	defer timer.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-timer.C:
			s.prune()
			timer.Reset(untilNextRun(time.Now(), s.loc))
		}
	}
}

func (s *Service) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	if _, err := s.RunNow(ctx); err != nil {
		slog.Error("usage retention prune failed", "error", err)
	}
}

// RunNow 立即清理保留期之前的计数（用于测试或手动触发）
func (s *Service) RunNow(ctx context.Context) (int64, error) {
	cutoff := s.quotaService.RetentionCutoff()
	removed, err := s.quotaService.PruneUsageBefore(ctx, cutoff, false)
	if err != nil {
		return 0, err
	}
	slog.Info("usage retention prune completed", "cutoff", cutoff, "removed", removed)
	return removed, nil
}
