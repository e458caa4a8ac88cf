package models

import (
	"time"
)

// RecurringSeries 重复任务系列模板
type RecurringSeries struct {
	ID                    string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	ProjectID             string    `gorm:"type:varchar(50);index" json:"projectId"`
	CreatedBy             string    `gorm:"type:varchar(50)" json:"createdBy"`
	Title                 string    `gorm:"type:varchar(120)" json:"title"`
	Description           *string   `gorm:"type:text" json:"description"`
	AssigneeID            *string   `gorm:"type:varchar(50)" json:"assigneeId"`
	RRule                 string    `gorm:"type:varchar(255);column:rrule" json:"rrule"` // RFC5545 重复规则
	DtstartDate           string    `gorm:"type:varchar(10)" json:"dtstartDate"`         // 锚点日期 YYYY-MM-DD
	DtstartTimeMinutes    *int      `json:"dtstartTimeMinutes"`                          // 锚点时刻（0-1439 分钟）
	DeadlineOffsetMinutes int       `json:"deadlineOffsetMinutes"`
	Revision              int64     `gorm:"default:1" json:"revision"` // 乐观并发版本号
	CreatedAt             time.Time `json:"createdAt"`
}

// 表名
func (RecurringSeries) TableName() string {
	return "recurring_series"
}

// HasTime 锚点是否带时刻
func (s *RecurringSeries) HasTime() bool {
	return s.DtstartTimeMinutes != nil
}

// SeriesTag 系列默认标签关联
type SeriesTag struct {
	SeriesID string `gorm:"type:varchar(50);primaryKey"`
	TagID    string `gorm:"type:varchar(50);primaryKey"`
}

func (SeriesTag) TableName() string {
	return "recurring_series_tags"
}
