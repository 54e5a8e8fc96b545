package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/bio_go_server/internal/model"
)

type GenerationRepository struct {
	db *gorm.DB
}

func NewGenerationRepository(db *gorm.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

func (r *GenerationRepository) Create(ctx context.Context, generation *model.Generation) error {
	return translate(r.db.WithContext(ctx).Create(generation).Error)
}

func (r *GenerationRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Generation{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// ListByUser 按时间倒序分页
func (r *GenerationRepository) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]model.Generation, int64, error) {
	var (
		items []model.Generation
		total int64
	)

	query := r.db.WithContext(ctx).Model(&model.Generation{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}
