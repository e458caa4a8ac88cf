package models

import "time"

// SeriesResponse 系列模板响应结构体
type SeriesResponse struct {
	ID                    string    `json:"id"`
	ProjectID             string    `json:"projectId"`
	CreatedBy             string    `json:"createdBy"`
	Title                 string    `json:"title"`
	Description           *string   `json:"description"`
	AssigneeID            *string   `json:"assigneeId"`
	DefaultTagIDs         []string  `json:"defaultTagIds"`
	RRule                 string    `json:"rrule"`
	DtstartDate           string    `json:"dtstartDate"`
	DtstartTimeMinutes    *int      `json:"dtstartTimeMinutes"`
	DeadlineOffsetMinutes int       `json:"deadlineOffsetMinutes"`
	Revision              int64     `json:"revision"`
	CreatedAt             time.Time `json:"createdAt"`
}

// NewSeriesResponse 由模型和默认标签组装响应
func NewSeriesResponse(s *RecurringSeries, tagIDs []string) SeriesResponse {
	if tagIDs == nil {
		tagIDs = []string{}
	}
	return SeriesResponse{
		ID:                    s.ID,
		ProjectID:             s.ProjectID,
		CreatedBy:             s.CreatedBy,
		Title:                 s.Title,
		Description:           s.Description,
		AssigneeID:            s.AssigneeID,
		DefaultTagIDs:         tagIDs,
		RRule:                 s.RRule,
		DtstartDate:           s.DtstartDate,
		DtstartTimeMinutes:    s.DtstartTimeMinutes,
		DeadlineOffsetMinutes: s.DeadlineOffsetMinutes,
		Revision:              s.Revision,
		CreatedAt:             s.CreatedAt,
	}
}

// TaskResponse 任务响应结构体，含读取时派生的时间分类
type TaskResponse struct {
	ID                   string     `json:"id"`
	ProjectID            string     `json:"projectId"`
	AuthorID             string     `json:"authorId"`
	AssigneeID           *string    `json:"assigneeId"`
	SeriesID             *string    `json:"seriesId"`
	Title                string     `json:"title"`
	Description          *string    `json:"description"`
	Status               string     `json:"status"`
	ScheduledDate        *string    `json:"scheduledDate"`
	ScheduledTimeMinutes *int       `json:"scheduledTimeMinutes"`
	DeadlineDate         *string    `json:"deadlineDate"`
	DeadlineTimeMinutes  *int       `json:"deadlineTimeMinutes"`
	CompletedAt          *time.Time `json:"completedAt"`
	CompletedBy          *string    `json:"completedBy"`
	AbandonedAt          *time.Time `json:"abandonedAt"`
	AbandonedBy          *string    `json:"abandonedBy"`
	Revision             int64      `json:"revision"`
	CreatedAt            time.Time  `json:"createdAt"`
	LastModified         time.Time  `json:"lastModified"`
	IsOverdue            bool       `json:"isOverdue"`
	Bucket               string     `json:"bucket"`
}
