package services

import (
	"fmt"
	"time"

	"github.com/thisdotrob/family-monolith/models"
)

// DateLayout 日期字段统一格式
const DateLayout = "2006-01-02"

// ParseTimezone 解析 IANA 时区名
func ParseTimezone(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, models.ValidationError(fmt.Sprintf("无效的时区: %s", name))
	}
	return loc, nil
}

// CombineDateTime 将日期和可选时刻合成指定时区的时间点。
// 日期非法或时刻超出 0-1439 时返回 false。
func CombineDateTime(dateStr string, timeMinutes *int, loc *time.Location) (time.Time, bool) {
	date, err := time.ParseInLocation(DateLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, false
	}

	hour, minute := 0, 0
	if timeMinutes != nil {
		if *timeMinutes < 0 || *timeMinutes > 1439 {
			return time.Time{}, false
		}
		hour = *timeMinutes / 60
		minute = *timeMinutes % 60
	}

	// time.Date 会把夏令时间隙中的本地时间向后顺延
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc), true
}

// effectiveDateTime 取生效的日期/时刻：计划字段优先，仅在无计划日期时回退到截止字段
func effectiveDateTime(scheduledDate *string, scheduledTimeMinutes *int, deadlineDate *string, deadlineTimeMinutes *int) (*string, *int) {
	if scheduledDate != nil {
		return scheduledDate, scheduledTimeMinutes
	}
	if deadlineDate != nil {
		return deadlineDate, deadlineTimeMinutes
	}
	return nil, nil
}

// IsTaskOverdue 判断任务是否逾期。
// 带时刻的按时间点比较，仅有日期的按日历日比较（等于今天不算逾期）。
func IsTaskOverdue(scheduledDate *string, scheduledTimeMinutes *int, deadlineDate *string, deadlineTimeMinutes *int, loc *time.Location, now time.Time) bool {
	checkDate, checkTime := effectiveDateTime(scheduledDate, scheduledTimeMinutes, deadlineDate, deadlineTimeMinutes)
	if checkDate == nil {
		return false // 无日期即不逾期
	}

	taskDT, ok := CombineDateTime(*checkDate, checkTime, loc)
	if !ok {
		return false
	}

	nowLocal := now.In(loc)
	if checkTime != nil {
		return taskDT.Before(nowLocal)
	}
	return taskDT.Format(DateLayout) < nowLocal.Format(DateLayout)
}

// TaskBucketFor 计算任务的展示分桶
func TaskBucketFor(scheduledDate *string, scheduledTimeMinutes *int, deadlineDate *string, deadlineTimeMinutes *int, loc *time.Location, now time.Time) string {
	checkDate, checkTime := effectiveDateTime(scheduledDate, scheduledTimeMinutes, deadlineDate, deadlineTimeMinutes)
	if checkDate == nil {
		return models.BucketNoDate
	}

	taskDate, err := time.ParseInLocation(DateLayout, *checkDate, loc)
	if err != nil {
		return models.BucketNoDate
	}

	nowLocal := now.In(loc)

	// 带时刻的任务还要按时间点判断是否已过
	if checkTime != nil {
		if taskDT, ok := CombineDateTime(*checkDate, checkTime, loc); ok && taskDT.Before(nowLocal) {
			return models.BucketOverdue
		}
	}

	today := nowLocal.Format(DateLayout)
	tomorrow := nowLocal.AddDate(0, 0, 1).Format(DateLayout)
	taskDay := taskDate.Format(DateLayout)

	switch {
	case taskDay < today:
		return models.BucketOverdue
	case taskDay == today:
		return models.BucketToday
	case taskDay == tomorrow:
		return models.BucketTomorrow
	default:
		return models.BucketUpcoming
	}
}

// ClassifyTask 组装含派生字段的任务响应
func ClassifyTask(t *models.Task, loc *time.Location, now time.Time) models.TaskResponse {
	return models.TaskResponse{
		ID:                   t.ID,
		ProjectID:            t.ProjectID,
		AuthorID:             t.AuthorID,
		AssigneeID:           t.AssigneeID,
		SeriesID:             t.SeriesID,
		Title:                t.Title,
		Description:          t.Description,
		Status:               t.Status,
		ScheduledDate:        t.ScheduledDate,
		ScheduledTimeMinutes: t.ScheduledTimeMinutes,
		DeadlineDate:         t.DeadlineDate,
		DeadlineTimeMinutes:  t.DeadlineTimeMinutes,
		CompletedAt:          t.CompletedAt,
		CompletedBy:          t.CompletedBy,
		AbandonedAt:          t.AbandonedAt,
		AbandonedBy:          t.AbandonedBy,
		Revision:             t.Revision,
		CreatedAt:            t.CreatedAt,
		LastModified:         t.LastModified,
		IsOverdue:            IsTaskOverdue(t.ScheduledDate, t.ScheduledTimeMinutes, t.DeadlineDate, t.DeadlineTimeMinutes, loc, now),
		Bucket:               TaskBucketFor(t.ScheduledDate, t.ScheduledTimeMinutes, t.DeadlineDate, t.DeadlineTimeMinutes, loc, now),
	}
}
