package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/thisdotrob/family-monolith/models"
)

// respondError 按错误分类码返回统一的错误响应
func respondError(c *gin.Context, err error) {
	appErr := models.AsAppError(err)
	c.JSON(appErr.HTTPStatus(), gin.H{
		"error": appErr.Msg,
		"code":  appErr.Code,
	})
}

// currentUID 从上下文取认证用户ID
func currentUID(c *gin.Context) (string, bool) {
	uid, exists := c.Get("uid")
	if !exists {
		return "", false
	}
	uidStr, ok := uid.(string)
	return uidStr, ok
}
