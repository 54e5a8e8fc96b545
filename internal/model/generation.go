package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Generation 一次成功生成的 bio，只追加不修改
type Generation struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    int64     `gorm:"not null;index:idx_generations_user_created,priority:1" json:"userId"`
	BioText   string    `gorm:"type:text;not null" json:"bio"`
	Platform  string    `gorm:"size:32;not null" json:"platform"`
	CreatedAt time.Time `gorm:"index:idx_generations_user_created,priority:2" json:"createdAt"`
}

func (Generation) TableName() string {
	return "generations"
}

func (g *Generation) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
