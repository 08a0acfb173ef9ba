package entry

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shareat/lucky-draw-backend/internal/code"
	"github.com/shareat/lucky-draw-backend/internal/user"
	"github.com/shareat/lucky-draw-backend/pkg/month"
)

// RedeemRequestBody 定义了前端提交兑换码时，请求体的JSON结构。
// 长度校验放在服务层，这里只要求字段存在。
type RedeemRequestBody struct {
	Code string `json:"code" binding:"required"`
}

// RedeemCode 处理参与者提交的兑换请求
func RedeemCode(c *gin.Context) {
	var body RedeemRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	userID := c.GetString(user.UserIDKey)
	newEntry, err := Redeem(userID, body.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrTooManyAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		case errors.Is(err, code.ErrCodeFormat),
			errors.Is(err, code.ErrCodeNotFound),
			errors.Is(err, ErrCodeUsed),
			errors.Is(err, ErrAlreadyEntered):
			// 冲突类错误消息直接面向用户展示
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "兑换失败，请稍后再试"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "entry": newEntry})
}

// GetMyEntry 返回当前用户本月的参与状态
func GetMyEntry(c *gin.Context) {
	userID := c.GetString(user.UserIDKey)
	currentMonth := month.Current()

	entered, err := HasEntered(userID, currentMonth)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询参与状态失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"month":   currentMonth.Format("2006-01-02"),
		"entered": entered,
	})
}

// ListEntries 分页返回某月的参与记录（管理员）
func ListEntries(c *gin.Context) {
	var query struct {
		Month    string `form:"month" binding:"required"`
		Page     int    `form:"page,default=1"`
		PageSize int    `form:"page_size,default=100"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	monthKey, err := month.Parse(query.Month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": month.ErrInvalidFormat.Error()})
		return
	}

	entries, total, err := ListForMonth(monthKey, query.Page, query.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询参与记录失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries, "total": total})
}
