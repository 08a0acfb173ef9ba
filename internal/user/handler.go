package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ProfileResponse 是用户档案的API响应模型
type ProfileResponse struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// UpdateProfileRequest 定义了用户更新自己档案的请求体
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required,max=100"`
	Phone    string `json:"phone" binding:"required,max=20"`
}

// SetRoleRequest 定义了管理员修改用户角色的请求体
type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func formatProfile(u *User) ProfileResponse {
	return ProfileResponse{
		UserID:   u.UUID,
		FullName: u.FullName,
		Phone:    u.Phone,
		Role:     u.Role,
	}
}

// GetMe 返回当前登录用户的档案
func GetMe(c *gin.Context) {
	u, err := GetByUUID(c.GetString(UserIDKey))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": ErrUserNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询用户档案失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": formatProfile(u)})
}

// UpdateMe 更新当前登录用户的展示信息
func UpdateMe(c *gin.Context) {
	var body UpdateProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	if err := UpdateProfile(c.GetString(UserIDKey), body.FullName, body.Phone); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": ErrUserNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新用户档案失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListUsers 分页返回用户列表（管理员）
func ListUsers(c *gin.Context) {
	var query struct {
		Page     int `form:"page,default=1"`
		PageSize int `form:"page_size,default=50"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	users, total, err := List(query.Page, query.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询用户列表失败"})
		return
	}

	list := make([]ProfileResponse, 0, len(users))
	for i := range users {
		list = append(list, formatProfile(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total})
}

// SetUserRole 由管理员修改指定用户的角色
func SetUserRole(c *gin.Context) {
	targetID := c.Param("id")
	if !IsValidUUID(targetID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "用户ID格式无效"})
		return
	}

	var body SetRoleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	if err := SetRole(targetID, body.Role); err != nil {
		switch {
		case errors.Is(err, ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidRole.Error()})
		case errors.Is(err, ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": ErrUserNotFound.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "更新角色失败"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
