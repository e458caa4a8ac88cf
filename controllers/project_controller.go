package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"github.com/thisdotrob/family-monolith/config"
	"github.com/thisdotrob/family-monolith/models"
	"github.com/thisdotrob/family-monolith/services"
	"github.com/thisdotrob/family-monolith/utils"
)

// ProjectController 项目控制器
type ProjectController struct{}

// CreateProject 创建项目，创建者自动成为成员
func (pc *ProjectController) CreateProject(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户ID"})
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 100 {
		respondError(c, models.ValidationError("项目名不能为空且不超过 100 个字符"))
		return
	}

	project := models.Project{
		ID:        utils.GenerateID(),
		Name:      name,
		CreatedBy: uid,
		CreatedAt: time.Now(),
	}

	// 开启事务
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&project).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "项目创建失败"})
		return
	}
	member := models.ProjectMember{ProjectID: project.ID, UserID: uid, CreatedAt: time.Now()}
	if err := tx.Create(&member).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "项目创建失败"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "项目创建失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

// AddMember 按用户名添加项目成员，重复添加静默忽略
func (pc *ProjectController) AddMember(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户ID"})
		return
	}
	projectID := c.Param("id")

	var req models.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 只有成员能添加成员
	if err := services.RequireMember(config.DB, uid, projectID); err != nil {
		respondError(c, err)
		return
	}

	var user models.User
	if err := config.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		respondError(c, models.NotFoundError("用户不存在"))
		return
	}

	member := models.ProjectMember{ProjectID: projectID, UserID: user.ID, CreatedAt: time.Now()}
	if err := config.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "添加成员失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "成员添加成功", "userId": user.ID})
}
