package services

import (
	"testing"

	"github.com/thisdotrob/family-monolith/models"
)

func TestTopUpSeriesNoOpWhenFull(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, user.ID)
	series, _ := seedSeries(t, db, user.ID, project.ID, "FREQ=DAILY", "2025-06-01", nil, 0, seriesNow)

	created, err := TopUpSeries(db, series.ID, "UTC", seriesNow)
	if err != nil {
		t.Fatalf("补齐失败: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("已满的系列不应补任务，实际补了 %d 个", len(created))
	}
}

func TestTopUpSeriesFillsShortfall(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, user.ID)
	series, tasks := seedSeries(t, db, user.ID, project.ID, "FREQ=DAILY", "2025-06-01", nil, 0, seriesNow)

	// 完成前两个，未来待办数降到 3
	markStatus(t, db, tasks[0].ID, models.StatusDone)
	markStatus(t, db, tasks[1].ID, models.StatusDone)

	created, err := TopUpSeries(db, series.ID, "UTC", seriesNow)
	if err != nil {
		t.Fatalf("补齐失败: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("补齐任务数 = %d，期望 2", len(created))
	}
	// 已完成任务占住槽位，新任务接在序列末尾
	if *created[0].ScheduledDate != "2025-06-06" || *created[1].ScheduledDate != "2025-06-07" {
		t.Errorf("补齐日期 = %s, %s，期望 2025-06-06, 2025-06-07",
			*created[0].ScheduledDate, *created[1].ScheduledDate)
	}

	if got := countTodo(t, db, series.ID); got != TopUpTarget {
		t.Errorf("补齐后待办数 = %d，期望 %d", got, TopUpTarget)
	}
	// 任何槽位都不应重复占用
	for slot, n := range taskSlots(t, db, series.ID) {
		if n > 1 {
			t.Errorf("槽位 %s 被占用 %d 次", slot, n)
		}
	}
}

func TestTopUpSeriesIdempotent(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, user.ID)
	series, tasks := seedSeries(t, db, user.ID, project.ID, "FREQ=DAILY", "2025-06-01", nil, 0, seriesNow)
	markStatus(t, db, tasks[0].ID, models.StatusAbandoned)

	first, err := TopUpSeries(db, series.ID, "UTC", seriesNow)
	if err != nil {
		t.Fatalf("第一次补齐失败: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("第一次补齐任务数 = %d，期望 1", len(first))
	}

	second, err := TopUpSeries(db, series.ID, "UTC", seriesNow)
	if err != nil {
		t.Fatalf("第二次补齐失败: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("重复补齐不应产生新任务，实际 %d 个", len(second))
	}
}

// 规则枯竭时只能补到规则允许的数量
func TestTopUpSeriesExhaustedRule(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, user.ID)
	series, tasks := seedSeries(t, db, user.ID, project.ID, "FREQ=DAILY;COUNT=3", "2025-06-01", nil, 0, seriesNow)

	if len(tasks) != 3 {
		t.Fatalf("COUNT=3 的系列播种任务数 = %d，期望 3", len(tasks))
	}

	markStatus(t, db, tasks[0].ID, models.StatusDone)
	created, err := TopUpSeries(db, series.ID, "UTC", seriesNow)
	if err != nil {
		t.Fatalf("补齐失败: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("规则枯竭且槽位全被占用时不应补任务，实际 %d 个", len(created))
	}
}

func TestTopUpSeriesCopiesDefaultTags(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, user.ID)
	tag := seedTag(t, db, "家务")

	series, tasks, err := CreateSeries(db, &models.CreateSeriesRequest{
		ProjectID:     project.ID,
		Title:         "拖地",
		RRule:         "FREQ=DAILY",
		DtstartDate:   "2025-06-01",
		DefaultTagIDs: []string{tag.ID},
	}, user.ID, "UTC", seriesNow)
	if err != nil {
		t.Fatalf("创建系列失败: %v", err)
	}
	markStatus(t, db, tasks[0].ID, models.StatusDone)

	created, topErr := TopUpSeries(db, series.ID, "UTC", seriesNow)
	if topErr != nil {
		t.Fatalf("补齐失败: %v", topErr)
	}
	if len(created) != 1 {
		t.Fatalf("补齐任务数 = %d，期望 1", len(created))
	}

	var count int64
	if err := db.Model(&models.TaskTag{}).Where("task_id = ?", created[0].ID).Count(&count).Error; err != nil {
		t.Fatalf("统计任务标签失败: %v", err)
	}
	if count != 1 {
		t.Errorf("补齐任务的标签数 = %d，期望 1", count)
	}
}

func TestTopUpSeriesUnknownSeries(t *testing.T) {
	db := newTestDB(t)
	_, err := TopUpSeries(db, "no-such-series", "UTC", seriesNow)
	assertAppError(t, err, models.CodeNotFound)
}
