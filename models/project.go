package models

import (
	"time"
)

// Project 项目模型
type Project struct {
	ID         string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name       string     `gorm:"type:varchar(100)" json:"name"`
	CreatedBy  string     `gorm:"type:varchar(50)" json:"createdBy"`
	ArchivedAt *time.Time `json:"archivedAt"` // 归档后项目内任务只读
	CreatedAt  time.Time  `json:"createdAt"`
}

// ProjectMember 项目成员关联
type ProjectMember struct {
	ProjectID string    `gorm:"type:varchar(50);primaryKey"`
	UserID    string    `gorm:"type:varchar(50);primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ProjectMember) TableName() string {
	return "project_members"
}
