package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thisdotrob/family-monolith/config"
	"github.com/thisdotrob/family-monolith/models"
	"github.com/thisdotrob/family-monolith/services"
)

// SeriesController 重复任务系列控制器
type SeriesController struct{}

// CreateSeries 创建系列并预生成前几次任务
func (sc *SeriesController) CreateSeries(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户ID"})
		return
	}

	var req models.CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timezone := c.DefaultQuery("timezone", "UTC")
	now := time.Now()
	series, tasks, err := services.CreateSeries(config.DB, &req, uid, timezone, now)
	if err != nil {
		respondError(c, err)
		return
	}

	loc, _ := services.ParseTimezone(timezone)
	responses := make([]models.TaskResponse, len(tasks))
	for i := range tasks {
		responses[i] = services.ClassifyTask(&tasks[i], loc, now)
	}

	c.JSON(http.StatusOK, gin.H{
		"series": models.NewSeriesResponse(series, req.DefaultTagIDs),
		"tasks":  responses,
	})
}

// GetSeries 查询系列详情
func (sc *SeriesController) GetSeries(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户ID"})
		return
	}

	series, tagIDs, err := services.GetSeries(config.DB, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := services.RequireMember(config.DB, uid, series.ProjectID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"series": models.NewSeriesResponse(series, tagIDs)})
}

// UpdateSeries 系列部分更新，结构性变更会重生成未来的待办任务
func (sc *SeriesController) UpdateSeries(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户ID"})
		return
	}

	var req models.UpdateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timezone := c.DefaultQuery("timezone", "UTC")
	series, tagIDs, err := services.UpdateSeries(config.DB, c.Param("id"), uid, &req, timezone, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"series": models.NewSeriesResponse(series, tagIDs)})
}

// TopUpSeries 内部补货接口：把系列的未来待办任务补足到目标数量
func (sc *SeriesController) TopUpSeries(c *gin.Context) {
	timezone := c.DefaultQuery("timezone", "UTC")
	now := time.Now()
	created, err := services.TopUpSeries(config.DB, c.Param("id"), timezone, now)
	if err != nil {
		respondError(c, err)
		return
	}

	loc, _ := services.ParseTimezone(timezone)
	responses := make([]models.TaskResponse, len(created))
	for i := range created {
		responses[i] = services.ClassifyTask(&created[i], loc, now)
	}

	c.JSON(http.StatusOK, gin.H{"created": responses})
}
