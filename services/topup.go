package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/thisdotrob/family-monolith/models"
)

// TopUpTarget 每个活跃系列应保有的未来待办任务数
const TopUpTarget = 5

// seriesSlots 统计系列已占用的时间槽和未来待办数。
// 时间槽的占用不区分状态：已完成/已放弃的任务同样占住它的槽位。
func seriesSlots(tasks []models.Task, loc *time.Location, now time.Time) (map[string]struct{}, int) {
	occupied := make(map[string]struct{})
	futureTodo := 0
	nowLocal := now.In(loc)

	for i := range tasks {
		t := &tasks[i]
		if t.ScheduledDate == nil {
			continue
		}
		occupied[occurrenceKey(*t.ScheduledDate, t.ScheduledTimeMinutes)] = struct{}{}

		if t.Status != models.StatusTodo {
			continue
		}
		if occDT, ok := CombineDateTime(*t.ScheduledDate, t.ScheduledTimeMinutes, loc); ok && !occDT.Before(nowLocal) {
			futureTodo++
		}
	}
	return occupied, futureTodo
}

// TopUpSeries 补齐系列的未来待办任务到目标数量。
// 不足时从原始锚点重新展开规则，跳过已占用的时间槽，只补缺口；
// 重复调用除补齐缺口外没有其他副作用。
func TopUpSeries(db *gorm.DB, seriesID string, timezone string, now time.Time) ([]models.Task, error) {
	loc, err := ParseTimezone(timezone)
	if err != nil {
		return nil, err
	}

	var series models.RecurringSeries
	if err := db.Where("id = ?", seriesID).First(&series).Error; err != nil {
		return nil, models.NotFoundError("重复任务系列不存在")
	}

	tagIDs, err := LoadSeriesTagIDs(db, seriesID)
	if err != nil {
		return nil, err
	}

	var tasks []models.Task
	if err := db.Where("series_id = ?", seriesID).Find(&tasks).Error; err != nil {
		return nil, err
	}

	occupied, futureTodo := seriesSlots(tasks, loc, now)
	if futureTodo >= TopUpTarget {
		return nil, nil
	}
	shortfall := TopUpTarget - futureTodo

	iter, err := ExpandRule(series.RRule, series.DtstartDate, series.DtstartTimeMinutes, loc)
	if err != nil {
		return nil, err
	}

	// 查缺与补插在同一事务内完成
	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	created, err := MaterializeOccurrences(tx, &series, tagIDs, iter, occupied, loc, now, shortfall)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return created, nil
}
