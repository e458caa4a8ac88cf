package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/thisdotrob/family-monolith/models"
	"github.com/thisdotrob/family-monolith/utils"
)

// validateTitle 标题去除首尾空白后校验长度
func validateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" || len(trimmed) > 120 {
		return "", models.ValidationError("标题不能为空且不超过 120 个字符")
	}
	return trimmed, nil
}

// validateDeadlineOffset 截止偏移范围 0 到 525600 分钟（一年）
func validateDeadlineOffset(minutes int) error {
	if minutes < 0 || minutes > 525600 {
		return models.ValidationError("deadlineOffsetMinutes 必须在 0 到 525600 之间")
	}
	return nil
}

// validateAnchorNotPast 锚点必须是今天或将来；
// 锚点在今天且带时刻时，该时刻不得早于当前时间。
func validateAnchorNotPast(dateStr string, timeMinutes *int, loc *time.Location, now time.Time) error {
	anchor, err := AnchorTime(dateStr, timeMinutes, loc)
	if err != nil {
		return err
	}

	nowLocal := now.In(loc)
	today := nowLocal.Format(DateLayout)
	anchorDay := anchor.Format(DateLayout)

	if anchorDay < today {
		return models.ValidationError("首次发生日期必须是今天或将来")
	}
	if timeMinutes != nil && anchorDay == today && anchor.Before(nowLocal) {
		return models.ValidationError("首次发生时间不得早于当前时间")
	}
	return nil
}

// validateAssignee 负责人存在性校验
func validateAssignee(db *gorm.DB, assigneeID *string) error {
	if assigneeID == nil {
		return nil
	}
	ok, err := UserExists(db, *assigneeID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NotFoundError("负责人不存在")
	}
	return nil
}

// CreateSeries 创建重复任务系列并播种前 5 个未来任务
func CreateSeries(db *gorm.DB, req *models.CreateSeriesRequest, userID string, timezone string, now time.Time) (*models.RecurringSeries, []models.Task, error) {
	loc, err := ParseTimezone(timezone)
	if err != nil {
		return nil, nil, err
	}

	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, nil, err
	}
	if err := validateDeadlineOffset(req.DeadlineOffsetMinutes); err != nil {
		return nil, nil, err
	}
	if err := ValidateRule(req.RRule); err != nil {
		return nil, nil, err
	}
	if err := validateAnchorNotPast(req.DtstartDate, req.DtstartTimeMinutes, loc, now); err != nil {
		return nil, nil, err
	}

	if err := RequireMember(db, userID, req.ProjectID); err != nil {
		return nil, nil, err
	}
	if err := validateAssignee(db, req.AssigneeID); err != nil {
		return nil, nil, err
	}
	if err := RequireTags(db, req.DefaultTagIDs); err != nil {
		return nil, nil, err
	}

	series := models.RecurringSeries{
		ID:                    utils.GenerateID(),
		ProjectID:             req.ProjectID,
		CreatedBy:             userID,
		Title:                 title,
		Description:           req.Description,
		AssigneeID:            req.AssigneeID,
		RRule:                 NormalizeRule(req.RRule, req.DtstartTimeMinutes != nil),
		DtstartDate:           req.DtstartDate,
		DtstartTimeMinutes:    req.DtstartTimeMinutes,
		DeadlineOffsetMinutes: req.DeadlineOffsetMinutes,
		Revision:              1,
		CreatedAt:             now,
	}

	iter, err := ExpandRule(series.RRule, series.DtstartDate, series.DtstartTimeMinutes, loc)
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

	if err := tx.Create(&series).Error; err != nil {
		tx.Rollback()
		return nil, nil, err
	}
	for _, tagID := range req.DefaultTagIDs {
		if err := tx.Create(&models.SeriesTag{SeriesID: series.ID, TagID: tagID}).Error; err != nil {
			tx.Rollback()
			return nil, nil, err
		}
	}

	tasks, err := MaterializeOccurrences(tx, &series, req.DefaultTagIDs, iter, nil, loc, now, MaterializeCap)
	if err != nil {
		tx.Rollback()
		return nil, nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, nil, err
	}
	return &series, tasks, nil
}

// GetSeries 读取系列模板及其默认标签
func GetSeries(db *gorm.DB, seriesID string) (*models.RecurringSeries, []string, error) {
	var series models.RecurringSeries
	if err := db.Where("id = ?", seriesID).First(&series).Error; err != nil {
		return nil, nil, models.NotFoundError("重复任务系列不存在")
	}
	tagIDs, err := LoadSeriesTagIDs(db, series.ID)
	if err != nil {
		return nil, nil, err
	}
	return &series, tagIDs, nil
}
