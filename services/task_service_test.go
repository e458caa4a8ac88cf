package services

import (
	"testing"
	"time"

	"github.com/thisdotrob/family-monolith/models"
)

func TestCompleteTask(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, user.ID)
	_, tasks := seedSeries(t, db, user.ID, project.ID, "FREQ=DAILY", "2025-06-01", nil, 0, seriesNow)

	done, err := CompleteTask(db, tasks[0].ID, user.ID, 1, "UTC", seriesNow)
	if err != nil {
		t.Fatalf("完成任务失败: %v", err)
	}
	if done.Status != models.StatusDone {
		t.Errorf("状态 = %s，期望 done", done.Status)
	}
	if done.CompletedAt == nil || done.CompletedBy == nil || *done.CompletedBy != user.ID {
		t.Error("完成元数据缺失")
	}
	if done.Revision != 2 {
		t.Errorf("版本号 = %d，期望 2", done.Revision)
	}

	// 完成后系列自动补齐回目标数量
	if got := countTodo(t, db, *done.SeriesID); got != TopUpTarget {
		t.Errorf("完成后待办数 = %d，期望 %d", got, TopUpTarget)
	}
}

func TestCompleteTaskRejections(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	outsider := seedUser(t, db, "mallory")
	project := seedProject(t, db, user.ID)
	_, tasks := seedSeries(t, db, user.ID, project.ID, "FREQ=DAILY", "2025-06-01", nil, 0, seriesNow)

	// 版本号不一致
	_, err := CompleteTask(db, tasks[0].ID, user.ID, 7, "UTC", seriesNow)
	assertAppError(t, err, models.CodeConflictStaleWrite)

	// 非成员
	_, err = CompleteTask(db, tasks[0].ID, outsider.ID, 1, "UTC", seriesNow)
	assertAppError(t, err, models.CodePermissionDenied)

	// 不存在的任务
	_, err = CompleteTask(db, "no-such-task", user.ID, 1, "UTC", seriesNow)
	assertAppError(t, err, models.CodeNotFound)

	// 已完成的任务不能再次完成
	if _, err := CompleteTask(db, tasks[0].ID, user.ID, 1, "UTC", seriesNow); err != nil {
		t.Fatalf("完成任务失败: %v", err)
	}
	_, err = CompleteTask(db, tasks[0].ID, user.ID, 2, "UTC", seriesNow)
	assertAppError(t, err, models.CodeValidationFailed)
}

func TestAbandonAndRestoreTask(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, user.ID)
	_, tasks := seedSeries(t, db, user.ID, project.ID, "FREQ=DAILY", "2025-06-01", nil, 0, seriesNow)

	abandoned, err := AbandonTask(db, tasks[0].ID, user.ID, 1, "UTC", seriesNow)
	if err != nil {
		t.Fatalf("放弃任务失败: %v", err)
	}
	if abandoned.Status != models.StatusAbandoned {
		t.Errorf("状态 = %s，期望 abandoned", abandoned.Status)
	}
	if abandoned.AbandonedAt == nil || abandoned.AbandonedBy == nil {
		t.Error("放弃元数据缺失")
	}

	restored, err := RestoreTask(db, tasks[0].ID, user.ID, abandoned.Revision, "UTC", seriesNow)
	if err != nil {
		t.Fatalf("恢复任务失败: %v", err)
	}
	if restored.Status != models.StatusTodo {
		t.Errorf("状态 = %s，期望 todo", restored.Status)
	}
	if restored.AbandonedAt != nil || restored.AbandonedBy != nil {
		t.Error("恢复后放弃元数据应被清空")
	}
	if restored.Revision != abandoned.Revision+1 {
		t.Errorf("版本号 = %d，期望 %d", restored.Revision, abandoned.Revision+1)
	}
}

func TestAbandonDoneTaskRejected(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, user.ID)
	_, tasks := seedSeries(t, db, user.ID, project.ID, "FREQ=DAILY", "2025-06-01", nil, 0, seriesNow)

	done, err := CompleteTask(db, tasks[0].ID, user.ID, 1, "UTC", seriesNow)
	if err != nil {
		t.Fatalf("完成任务失败: %v", err)
	}

	_, err = AbandonTask(db, done.ID, user.ID, done.Revision, "UTC", seriesNow)
	assertAppError(t, err, models.CodeValidationFailed)

	// 已完成的任务同样不可恢复
	_, err = RestoreTask(db, done.ID, user.ID, done.Revision, "UTC", seriesNow)
	assertAppError(t, err, models.CodeValidationFailed)
}

func TestRestoreTodoTaskRejected(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, user.ID)
	_, tasks := seedSeries(t, db, user.ID, project.ID, "FREQ=DAILY", "2025-06-01", nil, 0, seriesNow)

	_, err := RestoreTask(db, tasks[0].ID, user.ID, 1, "UTC", seriesNow)
	assertAppError(t, err, models.CodeValidationFailed)
}

func TestArchivedProjectTasksReadOnly(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, user.ID)
	_, tasks := seedSeries(t, db, user.ID, project.ID, "FREQ=DAILY", "2025-06-01", nil, 0, seriesNow)

	archivedAt := time.Now()
	if err := db.Model(&models.Project{}).Where("id = ?", project.ID).
		Update("archived_at", archivedAt).Error; err != nil {
		t.Fatalf("归档项目失败: %v", err)
	}

	_, err := CompleteTask(db, tasks[0].ID, user.ID, 1, "UTC", seriesNow)
	assertAppError(t, err, models.CodePermissionDenied)

	_, err = AbandonTask(db, tasks[0].ID, user.ID, 1, "UTC", seriesNow)
	assertAppError(t, err, models.CodePermissionDenied)
}
