package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/thisdotrob/family-monolith/config"
	"github.com/thisdotrob/family-monolith/models"
)

// loadGuardedTask 读取任务并完成成员、归档与并发前置检查
func loadGuardedTask(db *gorm.DB, taskID, userID string, lastKnownRevision int64) (*models.Task, error) {
	var task models.Task
	if err := db.Where("id = ?", taskID).First(&task).Error; err != nil {
		return nil, models.NotFoundError("任务不存在")
	}
	if err := RequireMember(db, userID, task.ProjectID); err != nil {
		return nil, err
	}
	if err := RequireWritableProject(db, task.ProjectID); err != nil {
		return nil, err
	}
	if err := CheckRevision(task.Revision, lastKnownRevision); err != nil {
		return nil, err
	}
	return &task, nil
}

// applyStatusChange 写入状态流转并推进版本号
func applyStatusChange(db *gorm.DB, task *models.Task, updates map[string]interface{}, now time.Time) (*models.Task, error) {
	updates["last_modified"] = now
	if err := db.Model(task).Updates(BumpRevision(updates)).Error; err != nil {
		return nil, err
	}
	var fresh models.Task
	if err := db.Where("id = ?", task.ID).First(&fresh).Error; err != nil {
		return nil, err
	}
	return &fresh, nil
}

// topUpAfterMutation 状态流转后的补齐是尽力而为：
// 失败只记日志，绝不影响已提交的用户操作。
func topUpAfterMutation(db *gorm.DB, task *models.Task, timezone string, now time.Time) {
	if task.SeriesID == nil {
		return
	}
	if _, err := TopUpSeries(db, *task.SeriesID, timezone, now); err != nil {
		config.Logger.Warnw("系列补齐失败",
			"seriesID", *task.SeriesID,
			"taskID", task.ID,
			"error", err,
		)
	}
}

// CompleteTask 完成任务，随后尽力补齐所属系列
func CompleteTask(db *gorm.DB, taskID, userID string, lastKnownRevision int64, timezone string, now time.Time) (*models.Task, error) {
	task, err := loadGuardedTask(db, taskID, userID, lastKnownRevision)
	if err != nil {
		return nil, err
	}
	if task.Status != models.StatusTodo {
		return nil, models.ValidationError("只有待办任务可以完成")
	}

	fresh, err := applyStatusChange(db, task, map[string]interface{}{
		"status":       models.StatusDone,
		"completed_at": now,
		"completed_by": userID,
	}, now)
	if err != nil {
		return nil, err
	}

	topUpAfterMutation(db, fresh, timezone, now)
	return fresh, nil
}

// AbandonTask 放弃任务，随后尽力补齐所属系列
func AbandonTask(db *gorm.DB, taskID, userID string, lastKnownRevision int64, timezone string, now time.Time) (*models.Task, error) {
	task, err := loadGuardedTask(db, taskID, userID, lastKnownRevision)
	if err != nil {
		return nil, err
	}
	if task.Status == models.StatusDone {
		return nil, models.ValidationError("已完成的任务不能放弃")
	}
	if task.Status != models.StatusTodo {
		return nil, models.ValidationError("只有待办任务可以放弃")
	}

	fresh, err := applyStatusChange(db, task, map[string]interface{}{
		"status":       models.StatusAbandoned,
		"abandoned_at": now,
		"abandoned_by": userID,
	}, now)
	if err != nil {
		return nil, err
	}

	topUpAfterMutation(db, fresh, timezone, now)
	return fresh, nil
}

// RestoreTask 把已放弃的任务恢复为待办；已完成的任务不可恢复
func RestoreTask(db *gorm.DB, taskID, userID string, lastKnownRevision int64, timezone string, now time.Time) (*models.Task, error) {
	task, err := loadGuardedTask(db, taskID, userID, lastKnownRevision)
	if err != nil {
		return nil, err
	}
	if task.Status != models.StatusAbandoned {
		return nil, models.ValidationError("只有已放弃的任务可以恢复")
	}

	fresh, err := applyStatusChange(db, task, map[string]interface{}{
		"status":       models.StatusTodo,
		"abandoned_at": nil,
		"abandoned_by": nil,
	}, now)
	if err != nil {
		return nil, err
	}

	// 恢复会多出一个未来待办，补齐逻辑自身是幂等的，照常触发
	topUpAfterMutation(db, fresh, timezone, now)
	return fresh, nil
}
