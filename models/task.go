package models

import (
	"time"
)

// 任务状态
const (
	StatusTodo      = "todo"
	StatusDone      = "done"
	StatusAbandoned = "abandoned"
)

// 时间分桶
const (
	BucketOverdue  = "overdue"
	BucketToday    = "today"
	BucketTomorrow = "tomorrow"
	BucketUpcoming = "upcoming"
	BucketNoDate   = "no_date"
)

// Task 任务模型
type Task struct {
	ID                   string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	ProjectID            string     `gorm:"type:varchar(50);index" json:"projectId"`
	AuthorID             string     `gorm:"type:varchar(50)" json:"authorId"`
	AssigneeID           *string    `gorm:"type:varchar(50)" json:"assigneeId"`
	SeriesID             *string    `gorm:"type:varchar(50);uniqueIndex:idx_series_slot" json:"seriesId"` // 弱引用：仅按 ID 查找
	Title                string     `gorm:"type:varchar(120)" json:"title"`
	Description          *string    `gorm:"type:text" json:"description"`
	Status               string     `gorm:"type:varchar(20);default:todo" json:"status"`
	ScheduledDate        *string    `gorm:"type:varchar(10);uniqueIndex:idx_series_slot" json:"scheduledDate"`
	ScheduledTimeMinutes *int       `gorm:"uniqueIndex:idx_series_slot" json:"scheduledTimeMinutes"`
	DeadlineDate         *string    `gorm:"type:varchar(10)" json:"deadlineDate"`
	DeadlineTimeMinutes  *int       `json:"deadlineTimeMinutes"`
	CompletedAt          *time.Time `json:"completedAt"`
	CompletedBy          *string    `gorm:"type:varchar(50)" json:"completedBy"`
	AbandonedAt          *time.Time `json:"abandonedAt"`
	AbandonedBy          *string    `gorm:"type:varchar(50)" json:"abandonedBy"`
	Revision             int64      `gorm:"default:1" json:"revision"` // 乐观并发版本号
	CreatedAt            time.Time  `json:"createdAt"`
	LastModified         time.Time  `json:"lastModified"`
}

// TaskTag 任务标签关联
type TaskTag struct {
	TaskID string `gorm:"type:varchar(50);primaryKey"`
	TagID  string `gorm:"type:varchar(50);primaryKey"`
}

func (TaskTag) TableName() string {
	return "task_tags"
}
