package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"github.com/thisdotrob/family-monolith/config"
	"github.com/thisdotrob/family-monolith/models"
	"github.com/thisdotrob/family-monolith/services"
	"github.com/thisdotrob/family-monolith/utils"
)

// TaskController 任务控制器
type TaskController struct{}

// validateDateTimePair 时刻字段必须与对应日期字段成对出现
func validateDateTimePair(dateStr *string, timeMinutes *int, loc *time.Location, field string) error {
	if timeMinutes != nil && dateStr == nil {
		return models.ValidationError(field + " 时刻必须和日期一起提供")
	}
	if dateStr == nil {
		return nil
	}
	if _, ok := services.CombineDateTime(*dateStr, timeMinutes, loc); !ok {
		return models.ValidationError("无效的 " + field + " 日期或时刻")
	}
	return nil
}

// CreateTask 创建独立任务（不关联系列）
func (tc *TaskController) CreateTask(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户ID"})
		return
	}

	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timezone := c.DefaultQuery("timezone", "UTC")
	loc, err := services.ParseTimezone(timezone)
	if err != nil {
		respondError(c, err)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" || len(title) > 120 {
		respondError(c, models.ValidationError("标题不能为空且不超过 120 个字符"))
		return
	}
	if err := validateDateTimePair(req.ScheduledDate, req.ScheduledTimeMinutes, loc, "scheduled"); err != nil {
		respondError(c, err)
		return
	}
	if err := validateDateTimePair(req.DeadlineDate, req.DeadlineTimeMinutes, loc, "deadline"); err != nil {
		respondError(c, err)
		return
	}

	if err := services.RequireMember(config.DB, uid, req.ProjectID); err != nil {
		respondError(c, err)
		return
	}
	if err := services.RequireWritableProject(config.DB, req.ProjectID); err != nil {
		respondError(c, err)
		return
	}
	if req.AssigneeID != nil {
		exists, err := services.UserExists(config.DB, *req.AssigneeID)
		if err != nil || !exists {
			respondError(c, models.NotFoundError("负责人不存在"))
			return
		}
	}
	if err := services.RequireTags(config.DB, req.TagIDs); err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	task := models.Task{
		ID:                   utils.GenerateID(),
		ProjectID:            req.ProjectID,
		AuthorID:             uid,
		AssigneeID:           req.AssigneeID,
		Title:                title,
		Description:          req.Description,
		Status:               models.StatusTodo,
		ScheduledDate:        req.ScheduledDate,
		ScheduledTimeMinutes: req.ScheduledTimeMinutes,
		DeadlineDate:         req.DeadlineDate,
		DeadlineTimeMinutes:  req.DeadlineTimeMinutes,
		Revision:             1,
		CreatedAt:            now,
		LastModified:         now,
	}

	// 开启事务
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&task).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "任务创建失败"})
		return
	}
	for _, tagID := range req.TagIDs {
		assoc := models.TaskTag{TaskID: task.ID, TagID: tagID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&assoc).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "任务创建失败"})
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "任务创建失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": services.ClassifyTask(&task, loc, now)})
}

// ListTasks 项目任务列表，逐行计算逾期标记和分桶
func (tc *TaskController) ListTasks(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户ID"})
		return
	}

	projectID := c.Query("projectId")
	if projectID == "" {
		respondError(c, models.ValidationError("缺少 projectId 参数"))
		return
	}
	timezone := c.DefaultQuery("timezone", "UTC")
	loc, err := services.ParseTimezone(timezone)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := services.RequireMember(config.DB, uid, projectID); err != nil {
		respondError(c, err)
		return
	}

	var tasks []models.Task
	if err := config.DB.Where("project_id = ?", projectID).
		Order("scheduled_date, scheduled_time_minutes, created_at").
		Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取任务失败"})
		return
	}

	now := time.Now()
	responses := make([]models.TaskResponse, len(tasks))
	for i := range tasks {
		responses[i] = services.ClassifyTask(&tasks[i], loc, now)
	}

	c.JSON(http.StatusOK, gin.H{"tasks": responses})
}

// lifecycle 状态流转的公共入口
func (tc *TaskController) lifecycle(c *gin.Context, fn func(taskID, uid string, rev int64, tz string, now time.Time) (*models.Task, error)) {
	uid, ok := currentUID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户ID"})
		return
	}

	var req models.TaskLifecycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timezone := c.DefaultQuery("timezone", "UTC")
	loc, err := services.ParseTimezone(timezone)
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	task, err := fn(c.Param("id"), uid, req.LastKnownRevision, timezone, now)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": services.ClassifyTask(task, loc, now)})
}

// CompleteTask 完成任务
func (tc *TaskController) CompleteTask(c *gin.Context) {
	tc.lifecycle(c, func(taskID, uid string, rev int64, tz string, now time.Time) (*models.Task, error) {
		return services.CompleteTask(config.DB, taskID, uid, rev, tz, now)
	})
}

// AbandonTask 放弃任务
func (tc *TaskController) AbandonTask(c *gin.Context) {
	tc.lifecycle(c, func(taskID, uid string, rev int64, tz string, now time.Time) (*models.Task, error) {
		return services.AbandonTask(config.DB, taskID, uid, rev, tz, now)
	})
}

// RestoreTask 恢复已放弃的任务
func (tc *TaskController) RestoreTask(c *gin.Context) {
	tc.lifecycle(c, func(taskID, uid string, rev int64, tz string, now time.Time) (*models.Task, error) {
		return services.RestoreTask(config.DB, taskID, uid, rev, tz, now)
	})
}
