package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/bio_go_server/internal/model"
)

// UsageRepository 每日计数的数据库实现
type UsageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// GetDailyUsage 不存在时返回 0
func (r *UsageRepository) GetDailyUsage(ctx context.Context, userID int64, date string) (int, error) {
	var usage model.DailyUsage
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND usage_date = ?", userID, date).
		First(&usage).Error
	if err != nil {
		if err = translate(err); errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return usage.Count, nil
}

// IncrementDailyUsage 单条 upsert 完成创建或自增，返回自增后的值
func (r *UsageRepository) IncrementDailyUsage(ctx context.Context, userID int64, date string) (int, error) {
	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		usage := model.DailyUsage{
			UserID:    userID,
			UsageDate: date,
			Count:     1,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "usage_date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"usage_count": gorm.Expr("usage_count + 1"),
				"updated_at":  time.Now(),
			}),
		}).Create(&usage).Error
		if err != nil {
			return err
		}

		var current model.DailyUsage
		if err := tx.Where("user_id = ? AND usage_date = ?", userID, date).First(&current).Error; err != nil {
			return err
		}
		count = current.Count
		return nil
	})
	if err != nil {
		return 0, translate(err)
	}
	return count, nil
}

// CountUsageBefore 早于 date 的计数行数
func (r *UsageRepository) CountUsageBefore(ctx context.Context, date string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DailyUsage{}).Where("usage_date < ?", date).Count(&count).Error
	return count, err
}

// DeleteUsageBefore 删除早于 date 的计数
func (r *UsageRepository) DeleteUsageBefore(ctx context.Context, date string) (int64, error) {
	result := r.db.WithContext(ctx).Where("usage_date < ?", date).Delete(&model.DailyUsage{})
	return result.RowsAffected, result.Error
}
