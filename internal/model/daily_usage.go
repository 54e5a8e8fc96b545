package model

import (
	"time"
)

// DateLayout 每日计数的日期键格式
const DateLayout = "2006-01-02"

// DailyUsage 免费用户每日生成计数，(user_id, usage_date) 唯一
type DailyUsage struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_daily_usage_user_date,priority:1" json:"userId"`
	UsageDate string    `gorm:"size:10;not null;uniqueIndex:idx_daily_usage_user_date,priority:2;index" json:"date"`
	Count     int       `gorm:"column:usage_count;not null;default:0" json:"count"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (DailyUsage) TableName() string {
	return "daily_usage"
}
