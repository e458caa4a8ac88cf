package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/thisdotrob/family-monolith/models"
)

// mergedSeriesUpdate 部分更新与现有模板合并后的生效值
type mergedSeriesUpdate struct {
	title                 string
	description           *string
	assigneeID            *string
	rrule                 string
	dtstartDate           string
	dtstartTimeMinutes    *int
	deadlineOffsetMinutes int
	tagIDs                []string
	tagsTouched           bool
	needsRegeneration     bool
	cosmeticTouched       bool
}

// mergeSeriesUpdate 合并请求与现有模板并校验所有变更字段，
// 校验规则与创建时一致。
func mergeSeriesUpdate(db *gorm.DB, series *models.RecurringSeries, req *models.UpdateSeriesRequest, loc *time.Location, now time.Time) (*mergedSeriesUpdate, error) {
	m := &mergedSeriesUpdate{
		title:                 series.Title,
		description:           series.Description,
		assigneeID:            series.AssigneeID,
		rrule:                 series.RRule,
		dtstartDate:           series.DtstartDate,
		dtstartTimeMinutes:    series.DtstartTimeMinutes,
		deadlineOffsetMinutes: series.DeadlineOffsetMinutes,
	}

	if req.Title.IsCleared() {
		return nil, models.ValidationError("标题不能清空")
	}
	if req.Title.IsSet() {
		title, err := validateTitle(req.Title.Value())
		if err != nil {
			return nil, err
		}
		m.title = title
	}

	if req.Description.IsSet() {
		v := req.Description.Value()
		m.description = &v
	} else if req.Description.IsCleared() {
		m.description = nil
	}

	if req.AssigneeID.IsSet() {
		v := req.AssigneeID.Value()
		if err := validateAssignee(db, &v); err != nil {
			return nil, err
		}
		m.assigneeID = &v
	} else if req.AssigneeID.IsCleared() {
		m.assigneeID = nil
	}

	if req.RRule.IsCleared() {
		return nil, models.ValidationError("重复规则不能清空")
	}
	if req.RRule.IsSet() {
		if err := ValidateRule(req.RRule.Value()); err != nil {
			return nil, err
		}
		m.rrule = req.RRule.Value()
	}

	if req.DtstartDate.IsCleared() {
		return nil, models.ValidationError("锚点日期不能清空")
	}
	if req.DtstartDate.IsSet() {
		m.dtstartDate = req.DtstartDate.Value()
	}

	if req.DtstartTimeMinutes.IsSet() {
		v := req.DtstartTimeMinutes.Value()
		m.dtstartTimeMinutes = &v
	} else if req.DtstartTimeMinutes.IsCleared() {
		m.dtstartTimeMinutes = nil
	}

	if req.DeadlineOffsetMinutes.IsCleared() {
		return nil, models.ValidationError("deadlineOffsetMinutes 不能清空")
	}
	if req.DeadlineOffsetMinutes.IsSet() {
		if err := validateDeadlineOffset(req.DeadlineOffsetMinutes.Value()); err != nil {
			return nil, err
		}
		m.deadlineOffsetMinutes = req.DeadlineOffsetMinutes.Value()
	}

	// 锚点变更按创建规则整体复核
	if req.DtstartDate.Touched() || req.DtstartTimeMinutes.Touched() {
		if err := validateAnchorNotPast(m.dtstartDate, m.dtstartTimeMinutes, loc, now); err != nil {
			return nil, err
		}
	}

	if req.DefaultTagIDs.Touched() {
		m.tagsTouched = true
		if req.DefaultTagIDs.IsSet() {
			m.tagIDs = req.DefaultTagIDs.Value()
			if err := RequireTags(db, m.tagIDs); err != nil {
				return nil, err
			}
		}
	}

	// 规则、锚点或截止偏移变化时需要重建未来任务
	m.needsRegeneration = req.RRule.Touched() ||
		req.DtstartDate.Touched() ||
		req.DtstartTimeMinutes.Touched() ||
		req.DeadlineOffsetMinutes.Touched()
	m.cosmeticTouched = req.Title.Touched() ||
		req.Description.Touched() ||
		req.AssigneeID.Touched() ||
		m.tagsTouched

	m.rrule = NormalizeRule(m.rrule, m.dtstartTimeMinutes != nil)
	return m, nil
}

// futureTodoCondition 今天及以后的待办任务筛选条件；
// 今天已带时刻且早于当前时间的视作历史，不在删除范围内。
func futureTodoCondition(q *gorm.DB, seriesID string, loc *time.Location, now time.Time) *gorm.DB {
	nowLocal := now.In(loc)
	today := nowLocal.Format(DateLayout)
	nowMins := nowLocal.Hour()*60 + nowLocal.Minute()
	return q.Where("series_id = ? AND status = ?", seriesID, models.StatusTodo).
		Where("(scheduled_date > ? OR (scheduled_date = ? AND scheduled_time_minutes IS NULL) OR (scheduled_date = ? AND scheduled_time_minutes >= ?))",
			today, today, today, nowMins)
}

// UpdateSeries 按部分更新修改系列模板。
// 先做乐观并发检查，再校验变更字段，然后在同一事务内落库并
// 视影响面选择重建未来任务或原地修补，任何失败整体回滚。
func UpdateSeries(db *gorm.DB, seriesID string, userID string, req *models.UpdateSeriesRequest, timezone string, now time.Time) (*models.RecurringSeries, []string, error) {
	loc, err := ParseTimezone(timezone)
	if err != nil {
		return nil, nil, err
	}

	var series models.RecurringSeries
	if err := db.Where("id = ?", seriesID).First(&series).Error; err != nil {
		return nil, nil, models.NotFoundError("重复任务系列不存在")
	}

	// 并发检查先于一切写入
	if err := CheckRevision(series.Revision, req.LastKnownRevision); err != nil {
		return nil, nil, err
	}
	if err := RequireMember(db, userID, series.ProjectID); err != nil {
		return nil, nil, err
	}

	m, err := mergeSeriesUpdate(db, &series, req, loc, now)
	if err != nil {
		return nil, nil, err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	updates := map[string]interface{}{
		"title":                   m.title,
		"description":             m.description,
		"assignee_id":             m.assigneeID,
		"rrule":                   m.rrule,
		"dtstart_date":            m.dtstartDate,
		"dtstart_time_minutes":    m.dtstartTimeMinutes,
		"deadline_offset_minutes": m.deadlineOffsetMinutes,
	}
	if err := tx.Model(&series).Updates(BumpRevision(updates)).Error; err != nil {
		tx.Rollback()
		return nil, nil, err
	}

	finalTagIDs := m.tagIDs
	if m.tagsTouched {
		if err := tx.Where("series_id = ?", seriesID).Delete(&models.SeriesTag{}).Error; err != nil {
			tx.Rollback()
			return nil, nil, err
		}
		for _, tagID := range finalTagIDs {
			if err := tx.Create(&models.SeriesTag{SeriesID: seriesID, TagID: tagID}).Error; err != nil {
				tx.Rollback()
				return nil, nil, err
			}
		}
	} else {
		if finalTagIDs, err = LoadSeriesTagIDs(tx, seriesID); err != nil {
			tx.Rollback()
			return nil, nil, err
		}
	}

	updated := series
	updated.Title = m.title
	updated.Description = m.description
	updated.AssigneeID = m.assigneeID
	updated.RRule = m.rrule
	updated.DtstartDate = m.dtstartDate
	updated.DtstartTimeMinutes = m.dtstartTimeMinutes
	updated.DeadlineOffsetMinutes = m.deadlineOffsetMinutes

	if m.needsRegeneration {
		if err := regenerateOccurrences(tx, &updated, finalTagIDs, loc, now); err != nil {
			tx.Rollback()
			return nil, nil, err
		}
	} else if m.cosmeticTouched {
		if err := patchOccurrences(tx, &updated, finalTagIDs, m.tagsTouched, now); err != nil {
			tx.Rollback()
			return nil, nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, nil, err
	}

	if err := db.Where("id = ?", seriesID).First(&series).Error; err != nil {
		return nil, nil, err
	}
	return &series, finalTagIDs, nil
}

// regenerateOccurrences 删除今天及以后的待办任务，再按新模板从当前时间重新生成。
// 已完成/已放弃的历史任务从不触碰。
func regenerateOccurrences(tx *gorm.DB, series *models.RecurringSeries, tagIDs []string, loc *time.Location, now time.Time) error {
	var doomed []string
	if err := futureTodoCondition(tx.Model(&models.Task{}), series.ID, loc, now).Pluck("id", &doomed).Error; err != nil {
		return err
	}
	if len(doomed) > 0 {
		if err := tx.Where("task_id IN ?", doomed).Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", doomed).Delete(&models.Task{}).Error; err != nil {
			return err
		}
	}

	// 留存任务（历史和今天更早的待办）占住的槽位不再复用
	var remaining []models.Task
	if err := tx.Where("series_id = ?", series.ID).Find(&remaining).Error; err != nil {
		return err
	}
	occupied, _ := seriesSlots(remaining, loc, now)

	iter, err := ExpandRule(series.RRule, series.DtstartDate, series.DtstartTimeMinutes, loc)
	if err != nil {
		return err
	}

	_, err = MaterializeOccurrences(tx, series, tagIDs, iter, occupied, loc, now, MaterializeCap)
	return err
}

// patchOccurrences 外观字段变更时原地修补所有待办任务
func patchOccurrences(tx *gorm.DB, series *models.RecurringSeries, tagIDs []string, tagsTouched bool, now time.Time) error {
	updates := map[string]interface{}{
		"title":         series.Title,
		"description":   series.Description,
		"assignee_id":   series.AssigneeID,
		"last_modified": now,
	}
	if err := tx.Model(&models.Task{}).
		Where("series_id = ? AND status = ?", series.ID, models.StatusTodo).
		Updates(BumpRevision(updates)).Error; err != nil {
		return err
	}

	if !tagsTouched {
		return nil
	}

	var todoIDs []string
	if err := tx.Model(&models.Task{}).
		Where("series_id = ? AND status = ?", series.ID, models.StatusTodo).
		Pluck("id", &todoIDs).Error; err != nil {
		return err
	}
	if len(todoIDs) == 0 {
		return nil
	}

	if err := tx.Where("task_id IN ?", todoIDs).Delete(&models.TaskTag{}).Error; err != nil {
		return err
	}
	for _, taskID := range todoIDs {
		for _, tagID := range tagIDs {
			if err := tx.Create(&models.TaskTag{TaskID: taskID, TagID: tagID}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
