package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thisdotrob/family-monolith/config"
	"github.com/thisdotrob/family-monolith/models"
	"github.com/thisdotrob/family-monolith/utils"
)

// TagController 标签控制器
type TagController struct{}

// CreateTag 创建标签
func (tc *TagController) CreateTag(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户ID"})
		return
	}

	var req models.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 60 {
		respondError(c, models.ValidationError("标签名不能为空且不超过 60 个字符"))
		return
	}

	var existing models.Tag
	if err := config.DB.Where("name = ?", name).First(&existing).Error; err == nil {
		respondError(c, models.ValidationError("标签已存在"))
		return
	}

	tag := models.Tag{
		ID:        utils.GenerateID(),
		Name:      name,
		CreatedBy: uid,
		CreatedAt: time.Now(),
	}
	if err := config.DB.Create(&tag).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "标签创建失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// ListTags 标签列表
func (tc *TagController) ListTags(c *gin.Context) {
	var tags []models.Tag
	if err := config.DB.Order("name").Find(&tags).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取标签失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
