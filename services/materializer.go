package services

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thisdotrob/family-monolith/models"
	"github.com/thisdotrob/family-monolith/utils"
)

// MaterializeCap 单次生成的任务数上限
const MaterializeCap = 5

// occurrenceKey 以 (日期, 时刻) 标识一个已占用的时间槽
func occurrenceKey(date string, timeMinutes *int) string {
	if timeMinutes == nil {
		return date
	}
	return fmt.Sprintf("%s|%d", date, *timeMinutes)
}

// MaterializeOccurrences 把时间点序列落库为待办任务。
// 早于 now 的时间点丢弃，已占用的时间槽跳过，单次最多生成 limit 条；
// 生成的任务按时间递增，时刻有无与模板锚点一致。
func MaterializeOccurrences(tx *gorm.DB, series *models.RecurringSeries, tagIDs []string, iter rrule.Next, occupied map[string]struct{}, loc *time.Location, now time.Time, limit int) ([]models.Task, error) {
	if limit > MaterializeCap {
		limit = MaterializeCap
	}
	if occupied == nil {
		occupied = make(map[string]struct{})
	}

	hasTime := series.HasTime()
	nowLocal := now.In(loc)
	created := make([]models.Task, 0, limit)

	for len(created) < limit {
		occ, ok := iter()
		if !ok {
			break // 规则已枯竭
		}
		occLocal := occ.In(loc)
		if occLocal.Before(nowLocal) {
			continue
		}

		scheduledDate := occLocal.Format(DateLayout)
		scheduledTimeMinutes := series.DtstartTimeMinutes

		key := occurrenceKey(scheduledDate, scheduledTimeMinutes)
		if _, taken := occupied[key]; taken {
			continue
		}

		deadlineDT := occLocal.Add(time.Duration(series.DeadlineOffsetMinutes) * time.Minute)
		deadlineDate := deadlineDT.Format(DateLayout)
		var deadlineTimeMinutes *int
		if hasTime {
			mins := deadlineDT.Hour()*60 + deadlineDT.Minute()
			deadlineTimeMinutes = &mins
		}

		task := models.Task{
			ID:                   utils.GenerateID(),
			ProjectID:            series.ProjectID,
			AuthorID:             series.CreatedBy,
			AssigneeID:           series.AssigneeID,
			SeriesID:             &series.ID,
			Title:                series.Title,
			Description:          series.Description,
			Status:               models.StatusTodo,
			ScheduledDate:        &scheduledDate,
			ScheduledTimeMinutes: scheduledTimeMinutes,
			DeadlineDate:         &deadlineDate,
			DeadlineTimeMinutes:  deadlineTimeMinutes,
			Revision:             1,
			CreatedAt:            now,
			LastModified:         now,
		}
		if err := tx.Create(&task).Error; err != nil {
			return nil, err
		}

		for _, tagID := range tagIDs {
			assoc := models.TaskTag{TaskID: task.ID, TagID: tagID}
			// 重复的关联静默忽略
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&assoc).Error; err != nil {
				return nil, err
			}
		}

		occupied[key] = struct{}{}
		created = append(created, task)
	}

	return created, nil
}

// LoadSeriesTagIDs 读取系列的默认标签
func LoadSeriesTagIDs(db *gorm.DB, seriesID string) ([]string, error) {
	var tagIDs []string
	err := db.Model(&models.SeriesTag{}).Where("series_id = ?", seriesID).Pluck("tag_id", &tagIDs).Error
	return tagIDs, err
}
