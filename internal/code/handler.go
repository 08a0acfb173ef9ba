package code

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateCodeRequest 定义了录入单个兑换码的请求体
type CreateCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// GenerateCodesRequest 定义了批量生成兑换码的请求体
type GenerateCodesRequest struct {
	Count  int    `json:"count" binding:"required,min=1,max=10000"`
	Prefix string `json:"prefix" binding:"max=20"`
}

// SetActiveRequest 定义了启用/停用兑换码的请求体
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// CreateCode 录入单个兑换码（管理员）
func CreateCode(c *gin.Context) {
	var body CreateCodeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	newCode, err := Create(body.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrCodeFormat), errors.Is(err, ErrCodeExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "创建兑换码失败"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": newCode})
}

// GenerateCodes 批量生成兑换码（管理员）
func GenerateCodes(c *gin.Context) {
	var body GenerateCodesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	created, err := CreateBatch(body.Count, body.Prefix)
	if err != nil {
		if errors.Is(err, ErrCodeFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// 部分成功也一并报告，管理员可以据此补发
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "批量生成兑换码失败",
			"created": len(created),
			"codes":   created,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "created": len(created), "codes": created})
}

// ListCodes 分页查询兑换码（管理员）
func ListCodes(c *gin.Context) {
	var query struct {
		IsUsed   *bool `form:"is_used"`
		IsActive *bool `form:"is_active"`
		Page     int   `form:"page,default=1"`
		PageSize int   `form:"page_size,default=100"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	codes, total, err := List(ListFilter{
		IsUsed:   query.IsUsed,
		IsActive: query.IsActive,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询兑换码列表失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": codes, "total": total})
}

// SetCodeActive 启用或停用一个兑换码（管理员）
func SetCodeActive(c *gin.Context) {
	var uri struct {
		ID uint `uri:"id" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "兑换码ID无效"})
		return
	}

	var body SetActiveRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	if err := SetActive(uri.ID, *body.IsActive); err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": ErrCodeNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新兑换码状态失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
