package draw

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shareat/lucky-draw-backend/internal/platform/database"
	"github.com/shareat/lucky-draw-backend/internal/user"
	"github.com/shareat/lucky-draw-backend/pkg/month"
)

// ErrWinnerNotFound 表示目标中奖记录不存在
var ErrWinnerNotFound = errors.New("中奖记录不存在")

// PickWinnersRequest 定义了执行抽签的请求体。
// Count 不在绑定层校验，0和越界值统一由服务层夹取到合法区间。
type PickWinnersRequest struct {
	Month string `json:"month" binding:"required"`
	Count int    `json:"count"`
}

// ConfirmWinnersRequest 定义了确认中奖名单的请求体
type ConfirmWinnersRequest struct {
	Winners []ConfirmWinnerItem `json:"winners" binding:"required,min=1,dive"`
}

// ConfirmWinnerItem 是确认名单中的一条
type ConfirmWinnerItem struct {
	UserID  string `json:"user_id" binding:"required,uuid"`
	Month   string `json:"month" binding:"required"`
	PrizeID *uint  `json:"prize_id"`
}

// ResetMonthRequest 定义了月度重置的请求体
type ResetMonthRequest struct {
	Month string `json:"month" binding:"required"`
}

// CreateWinnerRequest 定义了管理员手工添加中奖记录的请求体
type CreateWinnerRequest struct {
	UserID   string `json:"user_id" binding:"required,uuid"`
	Month    string `json:"month" binding:"required"`
	PrizeID  *uint  `json:"prize_id"`
	IsPublic bool   `json:"is_public"`
}

// SetPublicRequest 定义了公示/取消公示的请求体
type SetPublicRequest struct {
	IsPublic *bool `json:"is_public" binding:"required"`
}

// PickWinnersHandler 执行一次抽签并返回候选名单（管理员）。
// 本接口只读，不持久化任何结果。
func PickWinnersHandler(c *gin.Context) {
	var body PickWinnersRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	monthKey, err := month.Parse(body.Month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": month.ErrInvalidFormat.Error()})
		return
	}

	candidates, err := PickWinners(monthKey, body.Count)
	if err != nil {
		if errors.Is(err, ErrNoEntries) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrNoEntries.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "抽签失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": candidates})
}

// ConfirmWinnersHandler 持久化管理员确认后的中奖名单（管理员）。
// 逐条写入，报告成功条数与请求条数，不保证全有或全无。
func ConfirmWinnersHandler(c *gin.Context) {
	var body ConfirmWinnersRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	confirmations := make([]Confirmation, 0, len(body.Winners))
	for _, item := range body.Winners {
		monthKey, err := month.Parse(item.Month)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": month.ErrInvalidFormat.Error()})
			return
		}
		confirmations = append(confirmations, Confirmation{
			UserID:  item.UserID,
			Month:   monthKey,
			PrizeID: item.PrizeID,
		})
	}

	created := ConfirmWinners(confirmations)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"requested": len(confirmations),
		"created":   created,
	})
}

// ResetMonthHandler 清空某月参与记录并回退兑换码（管理员）
func ResetMonthHandler(c *gin.Context) {
	var body ResetMonthRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	monthKey, err := month.Parse(body.Month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": month.ErrInvalidFormat.Error()})
		return
	}

	entriesDeleted, codesReverted, err := ResetMonth(monthKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "月度重置失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"entries_deleted": entriesDeleted,
		"codes_reverted":  codesReverted,
	})
}

// PublicWinnerResponse 是公示名单的响应模型，不暴露电话号码
type PublicWinnerResponse struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	PrizeID  *uint  `json:"prize_id"`
	Month    string `json:"month"`
}

// ListPublicWinners 返回某月已公示的中奖名单（公开接口）
func ListPublicWinners(c *gin.Context) {
	monthKey, err := parseMonthQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": month.ErrInvalidFormat.Error()})
		return
	}

	winners, err := ListWinners(monthKey, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询中奖名单失败"})
		return
	}

	ids := make([]string, 0, len(winners))
	for _, w := range winners {
		ids = append(ids, w.UserID)
	}
	profiles, err := user.GetProfiles(ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询中奖名单失败"})
		return
	}

	list := make([]PublicWinnerResponse, 0, len(winners))
	for _, w := range winners {
		item := PublicWinnerResponse{
			UserID:  w.UserID,
			PrizeID: w.PrizeID,
			Month:   w.Month.Format("2006-01-02"),
		}
		if p, ok := profiles[w.UserID]; ok {
			item.FullName = p.FullName
		}
		list = append(list, item)
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// ListAllWinners 返回某月的全部中奖记录（管理员）
func ListAllWinners(c *gin.Context) {
	monthKey, err := parseMonthQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": month.ErrInvalidFormat.Error()})
		return
	}

	winners, err := ListWinners(monthKey, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询中奖记录失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": winners})
}

// CreateWinner 管理员手工添加一条中奖记录
func CreateWinner(c *gin.Context) {
	var body CreateWinnerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	monthKey, err := month.Parse(body.Month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": month.ErrInvalidFormat.Error()})
		return
	}

	w := Winner{
		UserID:   body.UserID,
		PrizeID:  body.PrizeID,
		Month:    monthKey,
		IsPublic: body.IsPublic,
	}
	if err := database.DB.Create(&w).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建中奖记录失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": w})
}

// SetWinnerPublic 公示或取消公示一条中奖记录（管理员）
func SetWinnerPublic(c *gin.Context) {
	var uri struct {
		ID uint `uri:"id" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "中奖记录ID无效"})
		return
	}

	var body SetPublicRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	result := database.DB.Model(&Winner{}).Where("id = ?", uri.ID).Update("is_public", *body.IsPublic)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新中奖记录失败"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrWinnerNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteWinner 删除一条中奖记录（管理员）
func DeleteWinner(c *gin.Context) {
	var uri struct {
		ID uint `uri:"id" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "中奖记录ID无效"})
		return
	}

	result := database.DB.Delete(&Winner{}, uri.ID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除中奖记录失败"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrWinnerNotFound.Error()})
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
