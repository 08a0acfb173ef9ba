package prize

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shareat/lucky-draw-backend/internal/platform/database"
	"github.com/shareat/lucky-draw-backend/pkg/month"
	"gorm.io/gorm"
)

// ErrPrizeNotFound 表示目标奖品不存在
var ErrPrizeNotFound = errors.New("奖品不存在")

// PrizeRequestBody 定义了创建和更新奖品的请求体
type PrizeRequestBody struct {
	Name         string `json:"name" binding:"required,max=100"`
	Description  string `json:"description" binding:"max=500"`
	ImageURL     string `json:"image_url" binding:"max=500"`
	Month        string `json:"month" binding:"required"`
	IsActive     *bool  `json:"is_active"`
	IsGrandPrize *bool  `json:"is_grand_prize"`
}

// ListPrizes 返回某月对前台可见的奖品列表（公开接口）
func ListPrizes(c *gin.Context) {
	monthKey, err := parseMonthQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": month.ErrInvalidFormat.Error()})
		return
	}

	var prizes []Prize
	err = database.DB.Where("month = ? AND is_active = ?", monthKey, true).
		Order("is_grand_prize desc, id asc").Find(&prizes).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询奖品列表失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": prizes})
}

// ListAllPrizes 返回某月的全部奖品，包括未启用的（管理员）
func ListAllPrizes(c *gin.Context) {
	monthKey, err := parseMonthQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": month.ErrInvalidFormat.Error()})
		return
	}

	var prizes []Prize
	err = database.DB.Where("month = ?", monthKey).
		Order("is_grand_prize desc, id asc").Find(&prizes).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询奖品列表失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": prizes})
}

// CreatePrize 创建一个奖品（管理员）
func CreatePrize(c *gin.Context) {
	var body PrizeRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	monthKey, err := month.Parse(body.Month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": month.ErrInvalidFormat.Error()})
		return
	}

	newPrize := Prize{
		Name:        body.Name,
		Description: body.Description,
		ImageURL:    body.ImageURL,
		Month:       monthKey,
		IsActive:    true,
	}
	if body.IsActive != nil {
		newPrize.IsActive = *body.IsActive
	}
	if body.IsGrandPrize != nil {
		newPrize.IsGrandPrize = *body.IsGrandPrize
	}

	if err := database.DB.Create(&newPrize).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建奖品失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": newPrize})
}

// UpdatePrize 更新一个奖品（管理员）
func UpdatePrize(c *gin.Context) {
	var uri struct {
		ID uint `uri:"id" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "奖品ID无效"})
		return
	}

	var body PrizeRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	monthKey, err := month.Parse(body.Month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": month.ErrInvalidFormat.Error()})
		return
	}

	var existing Prize
	if err := database.DB.First(&existing, uri.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": ErrPrizeNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询奖品失败"})
		return
	}

	existing.Name = body.Name
	existing.Description = body.Description
	existing.ImageURL = body.ImageURL
	existing.Month = monthKey
	if body.IsActive != nil {
		existing.IsActive = *body.IsActive
	}
	if body.IsGrandPrize != nil {
		existing.IsGrandPrize = *body.IsGrandPrize
	}

	if err := database.DB.Save(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新奖品失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": existing})
}

// DeletePrize 删除一个奖品（管理员）
func DeletePrize(c *gin.Context) {
	var uri struct {
		ID uint `uri:"id" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "奖品ID无效"})
		return
	}

	result := database.DB.Delete(&Prize{}, uri.ID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除奖品失败"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrPrizeNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// parseMonthQuery 解析query中的month参数，缺省为当前月份。
func parseMonthQuery(c *gin.Context) (time.Time, error) {
	s := c.Query("month")
	if s == "" {
		return month.Current(), nil
	}
	return month.Parse(s)
}
