package services

import (
	"testing"

	"github.com/thisdotrob/family-monolith/models"
)

func TestUpdateSeriesStaleRevision(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, user.ID)
	series, _ := seedSeries(t, db, user.ID, project.ID, "FREQ=DAILY", "2025-06-01", nil, 0, seriesNow)

	_, _, err := UpdateSeries(db, series.ID, user.ID, &models.UpdateSeriesRequest{
		Title:             models.PatchSet("新标题"),
		LastKnownRevision: 99,
	}, "UTC", seriesNow)
	assertAppError(t, err, models.CodeConflictStaleWrite)

	// 冲突拒绝后不得有任何写入
	var fresh models.RecurringSeries
	if err := db.Where("id = ?", series.ID).First(&fresh).Error; err != nil {
		t.Fatalf("重读系列失败: %v", err)
	}
	if fresh.Title != series.Title || fresh.Revision != 1 {
		t.Error("冲突拒绝后系列被改动")
	}
	if got := countTodo(t, db, series.ID); got != 5 {
		t.Errorf("冲突拒绝后待办数 = %d，期望 5", got)
	}
}

func TestUpdateSeriesCosmeticPatch(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, user.ID)
	series, tasks := seedSeries(t, db, user.ID, project.ID, "FREQ=DAILY", "2025-06-01", nil, 0, seriesNow)
	markStatus(t, db, tasks[0].ID, models.StatusDone)

	updated, _, err := UpdateSeries(db, series.ID, user.ID, &models.UpdateSeriesRequest{
		Title:             models.PatchSet("改名后的打卡"),
		Description:       models.PatchSet("新说明"),
		LastKnownRevision: 1,
	}, "UTC", seriesNow)
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if updated.Revision != 2 {
		t.Errorf("系列版本号 = %d，期望 2", updated.Revision)
	}
	if updated.Title != "改名后的打卡" {
		t.Errorf("标题 = %q", updated.Title)
	}

	// 外观变更不增删任务，只改写待办任务的字段
	var all []models.Task
	if err := db.Where("series_id = ?", series.ID).Find(&all).Error; err != nil {
		t.Fatalf("读取任务失败: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("任务总数 = %d，期望 5", len(all))
	}
	for _, task := range all {
		if task.Status == models.StatusDone {
			if task.Title != series.Title {
				t.Error("历史任务不应被改写")
			}
			continue
		}
		if task.Title != "改名后的打卡" {
			t.Errorf("待办任务标题 = %q，期望已同步", task.Title)
		}
		if task.Revision != 2 {
			t.Errorf("待办任务版本号 = %d，期望 2", task.Revision)
		}
	}
}

func TestUpdateSeriesStructuralRegeneration(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, user.ID)
	series, tasks := seedSeries(t, db, user.ID, project.ID, "FREQ=DAILY", "2025-06-01", nil, 0, seriesNow)
	markStatus(t, db, tasks[0].ID, models.StatusDone)

	updated, _, err := UpdateSeries(db, series.ID, user.ID, &models.UpdateSeriesRequest{
		RRule:             models.PatchSet("FREQ=WEEKLY"),
		LastKnownRevision: 1,
	}, "UTC", seriesNow)
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if updated.RRule != "FREQ=WEEKLY" {
		t.Errorf("规则 = %q，期望 FREQ=WEEKLY", updated.RRule)
	}

	// 历史任务保留，未来待办按周重建
	var done []models.Task
	if err := db.Where("series_id = ? AND status = ?", series.ID, models.StatusDone).Find(&done).Error; err != nil {
		t.Fatalf("读取历史任务失败: %v", err)
	}
	if len(done) != 1 || *done[0].ScheduledDate != "2025-06-01" {
		t.Fatal("已完成的历史任务不应被重建触碰")
	}

	var todos []models.Task
	if err := db.Where("series_id = ? AND status = ?", series.ID, models.StatusTodo).
		Order("scheduled_date").Find(&todos).Error; err != nil {
		t.Fatalf("读取待办任务失败: %v", err)
	}
	if len(todos) != 5 {
		t.Fatalf("重建后待办数 = %d，期望 5", len(todos))
	}
	// 06-01 槽位已被完成任务占住，周重复从 06-08 开始
	wantDates := []string{"2025-06-08", "2025-06-15", "2025-06-22", "2025-06-29", "2025-07-06"}
	for i, task := range todos {
		if *task.ScheduledDate != wantDates[i] {
			t.Errorf("第 %d 个待办日期 = %s，期望 %s", i, *task.ScheduledDate, wantDates[i])
		}
	}
}

func TestUpdateSeriesTagReplacement(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, user.ID)
	oldTag := seedTag(t, db, "旧标签")
	newTag := seedTag(t, db, "新标签")

	series, tasks, err := CreateSeries(db, &models.CreateSeriesRequest{
		ProjectID:     project.ID,
		Title:         "买菜",
		RRule:         "FREQ=DAILY",
		DtstartDate:   "2025-06-01",
		DefaultTagIDs: []string{oldTag.ID},
	}, user.ID, "UTC", seriesNow)
	if err != nil {
		t.Fatalf("创建系列失败: %v", err)
	}

	_, tagIDs, err := UpdateSeries(db, series.ID, user.ID, &models.UpdateSeriesRequest{
		DefaultTagIDs:     models.PatchSet([]string{newTag.ID}),
		LastKnownRevision: 1,
	}, "UTC", seriesNow)
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if len(tagIDs) != 1 || tagIDs[0] != newTag.ID {
		t.Fatalf("默认标签 = %v，期望 [%s]", tagIDs, newTag.ID)
	}

	var count int64
	if err := db.Model(&models.TaskTag{}).
		Where("task_id = ? AND tag_id = ?", tasks[0].ID, newTag.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("统计任务标签失败: %v", err)
	}
	if count != 1 {
		t.Error("待办任务的标签未被同步替换")
	}
}

func TestUpdateSeriesClearAssignee(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	helper := seedUser(t, db, "bob")
	project := seedProject(t, db, user.ID)

	series, _, err := CreateSeries(db, &models.CreateSeriesRequest{
		ProjectID:   project.ID,
		Title:       "做饭",
		AssigneeID:  &helper.ID,
		RRule:       "FREQ=DAILY",
		DtstartDate: "2025-06-01",
	}, user.ID, "UTC", seriesNow)
	if err != nil {
		t.Fatalf("创建系列失败: %v", err)
	}

	updated, _, err := UpdateSeries(db, series.ID, user.ID, &models.UpdateSeriesRequest{
		AssigneeID:        models.PatchCleared[string](),
		LastKnownRevision: 1,
	}, "UTC", seriesNow)
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if updated.AssigneeID != nil {
		t.Errorf("负责人应被清空，实际 %v", *updated.AssigneeID)
	}
}

func TestUpdateSeriesRejectsInvalidPatches(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	outsider := seedUser(t, db, "mallory")
	project := seedProject(t, db, user.ID)
	series, _ := seedSeries(t, db, user.ID, project.ID, "FREQ=DAILY", "2025-06-01", nil, 0, seriesNow)

	tests := []struct {
		name     string
		userID   string
		req      *models.UpdateSeriesRequest
		wantCode string
	}{
		{
			name:     "标题不能清空",
			req:      &models.UpdateSeriesRequest{Title: models.PatchCleared[string](), LastKnownRevision: 1},
			wantCode: models.CodeValidationFailed,
		},
		{
			name:     "规则不能清空",
			req:      &models.UpdateSeriesRequest{RRule: models.PatchCleared[string](), LastKnownRevision: 1},
			wantCode: models.CodeValidationFailed,
		},
		{
			name:     "锚点日期不能清空",
			req:      &models.UpdateSeriesRequest{DtstartDate: models.PatchCleared[string](), LastKnownRevision: 1},
			wantCode: models.CodeValidationFailed,
		},
		{
			name:     "非法规则拒绝",
			req:      &models.UpdateSeriesRequest{RRule: models.PatchSet("FREQ=NOPE"), LastKnownRevision: 1},
			wantCode: models.CodeValidationFailed,
		},
		{
			name:     "锚点改到过去拒绝",
			req:      &models.UpdateSeriesRequest{DtstartDate: models.PatchSet("2025-05-01"), LastKnownRevision: 1},
			wantCode: models.CodeValidationFailed,
		},
		{
			name:     "截止偏移越界拒绝",
			req:      &models.UpdateSeriesRequest{DeadlineOffsetMinutes: models.PatchSet(525601), LastKnownRevision: 1},
			wantCode: models.CodeValidationFailed,
		},
		{
			name:     "非成员拒绝",
			userID:   outsider.ID,
			req:      &models.UpdateSeriesRequest{Title: models.PatchSet("偷改"), LastKnownRevision: 1},
			wantCode: models.CodePermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uid := tt.userID
			if uid == "" {
				uid = user.ID
			}
			_, _, err := UpdateSeries(db, series.ID, uid, tt.req, "UTC", seriesNow)
			assertAppError(t, err, tt.wantCode)
		})
	}

	// 系列在所有被拒绝的更新之后保持原样
	var fresh models.RecurringSeries
	if err := db.Where("id = ?", series.ID).First(&fresh).Error; err != nil {
		t.Fatalf("重读系列失败: %v", err)
	}
	if fresh.Revision != 1 {
		t.Errorf("系列版本号 = %d，期望仍为 1", fresh.Revision)
	}
}
