package services

import (
	"gorm.io/gorm"

	"github.com/thisdotrob/family-monolith/models"
)

// CheckRevision 乐观并发检查：版本号严格相等才放行，
// 任何不一致都在写入前拒绝。
func CheckRevision(current, lastKnown int64) error {
	if current != lastKnown {
		return models.StaleWriteError("数据已被其他用户修改，请刷新后重试")
	}
	return nil
}

// BumpRevision 在更新字段集合上追加版本号递增，
// 与数据变更同一条 UPDATE 落库，不会出现版本号滞后。
func BumpRevision(updates map[string]interface{}) map[string]interface{} {
	updates["revision"] = gorm.Expr("revision + 1")
	return updates
}
