package services

import (
	"gorm.io/gorm"

	"github.com/thisdotrob/family-monolith/models"
)

// ProjectMemberExists 用户是否为项目成员
func ProjectMemberExists(db *gorm.DB, userID, projectID string) (bool, error) {
	var count int64
	err := db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RequireMember 成员校验前置条件，非成员拒绝
func RequireMember(db *gorm.DB, userID, projectID string) error {
	ok, err := ProjectMemberExists(db, userID, projectID)
	if err != nil {
		return err
	}
	if !ok {
		return models.PermissionError("没有该项目的访问权限")
	}
	return nil
}

// RequireWritableProject 归档项目内任务只读
func RequireWritableProject(db *gorm.DB, projectID string) error {
	var project models.Project
	if err := db.Where("id = ?", projectID).First(&project).Error; err != nil {
		return models.NotFoundError("项目不存在")
	}
	if project.ArchivedAt != nil {
		return models.PermissionError("项目已归档，任务只读")
	}
	return nil
}

// UserExists 用户是否存在
func UserExists(db *gorm.DB, userID string) (bool, error) {
	var count int64
	err := db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error
	return count > 0, err
}

// RequireTags 校验一组标签全部存在
func RequireTags(db *gorm.DB, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}
	var count int64
	if err := db.Model(&models.Tag{}).Where("id IN ?", tagIDs).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(tagIDs)) {
		return models.NotFoundError("一个或多个标签不存在")
	}
	return nil
}
