package models

// CreateSeriesRequest 创建重复任务系列请求结构体
type CreateSeriesRequest struct {
	ProjectID             string   `json:"projectId" binding:"required"`
	Title                 string   `json:"title" binding:"required"`
	Description           *string  `json:"description"`
	AssigneeID            *string  `json:"assigneeId"`
	DefaultTagIDs         []string `json:"defaultTagIds"`
	RRule                 string   `json:"rrule" binding:"required"`
	DtstartDate           string   `json:"dtstartDate" binding:"required"` // YYYY-MM-DD
	DtstartTimeMinutes    *int     `json:"dtstartTimeMinutes"`
	DeadlineOffsetMinutes int      `json:"deadlineOffsetMinutes"`
}

// UpdateSeriesRequest 系列部分更新请求结构体。
// 字段缺失表示保持不变，null 表示显式清空。
type UpdateSeriesRequest struct {
	Title                 Patch[string]   `json:"title"`
	Description           Patch[string]   `json:"description"`
	AssigneeID            Patch[string]   `json:"assigneeId"`
	DefaultTagIDs         Patch[[]string] `json:"defaultTagIds"`
	RRule                 Patch[string]   `json:"rrule"`
	DtstartDate           Patch[string]   `json:"dtstartDate"`
	DtstartTimeMinutes    Patch[int]      `json:"dtstartTimeMinutes"`
	DeadlineOffsetMinutes Patch[int]      `json:"deadlineOffsetMinutes"`
	LastKnownRevision     int64           `json:"lastKnownRevision"`
}

// CreateTaskRequest 创建独立任务请求结构体
type CreateTaskRequest struct {
	ProjectID            string   `json:"projectId" binding:"required"`
	Title                string   `json:"title" binding:"required"`
	Description          *string  `json:"description"`
	AssigneeID           *string  `json:"assigneeId"`
	TagIDs               []string `json:"tagIds"`
	ScheduledDate        *string  `json:"scheduledDate"`
	ScheduledTimeMinutes *int     `json:"scheduledTimeMinutes"`
	DeadlineDate         *string  `json:"deadlineDate"`
	DeadlineTimeMinutes  *int     `json:"deadlineTimeMinutes"`
}

// TaskLifecycleRequest 任务状态流转请求结构体（完成/放弃/恢复）
type TaskLifecycleRequest struct {
	LastKnownRevision int64 `json:"lastKnownRevision"`
}

// CreateProjectRequest 创建项目请求结构体
type CreateProjectRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddMemberRequest 按用户名添加项目成员
type AddMemberRequest struct {
	Username string `json:"username" binding:"required"`
}

// CreateTagRequest 创建标签请求结构体
type CreateTagRequest struct {
	Name string `json:"name" binding:"required"`
}

// RegisterRequest 注册请求结构体
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`
}

// LoginRequest 登录请求结构体
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
