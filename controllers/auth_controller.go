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

// AuthController 认证控制器
type AuthController struct{}

// Register 用户注册
func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || len(username) > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的用户名"})
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "密码至少8位"})
		return
	}

	var existing models.User
	if err := config.DB.Where("username = ?", username).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "用户名已存在"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "注册失败"})
		return
	}

	user := models.User{
		ID:           utils.GenerateID(),
		Username:     username,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := config.DB.Create(&user).Error; err != nil {
		config.Logger.Errorw("用户创建失败", "error", err, "username", username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "用户创建失败"})
		return
	}
	config.Logger.Infow("用户创建成功", "userID", user.ID)

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "令牌生成失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Login 用户登录
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "用户名或密码错误"})
		return
	}
	if !utils.VerifyPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "用户名或密码错误"})
		return
	}

	now := time.Now()
	config.DB.Model(&user).Update("last_login", now)

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "令牌生成失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.GetDisplayName(),
			"email":    user.Email,
		},
	})
}

// CreateTestUser 创建测试用户
func (ac *AuthController) CreateTestUser(c *gin.Context) {
	suffix := utils.GenerateID()[:8]
	testUser := models.User{
		ID:         utils.GenerateID(),
		Username:   "test_user_" + suffix,
		Email:      "test_" + suffix + "@example.com",
		IsTestUser: true,
		CreatedAt:  time.Now(),
	}

	if err := config.DB.Create(&testUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建测试用户失败"})
		return
	}

	// 生成 JWT
	token, err := utils.GenerateToken(testUser.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "令牌生成失败"})
		return
	}

	config.Logger.Infow("创建测试用户",
		"userID", testUser.ID,
		"username", testUser.Username,
	)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       testUser.ID,
			"username": testUser.Username,
			"email":    testUser.Email,
		},
	})
}
