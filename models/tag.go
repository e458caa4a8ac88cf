package models

import (
	"time"
)

// Tag 标签模型
type Tag struct {
	ID        string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(60);uniqueIndex" json:"name"`
	CreatedBy string    `gorm:"type:varchar(50)" json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}
