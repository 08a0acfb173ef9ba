package user

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shareat/lucky-draw-backend/pkg/token"
)

const (
	// UserIDKey 是经过验证的用户UUID在Gin上下文中的键名
	UserIDKey = "userID"
)

// RequireAuth 校验请求头中的Bearer令牌，并把验证过的用户UUID放入Gin上下文。
// 失败时统一返回401和一个不泄露具体原因的通用消息。
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "未授权"})
			return
		}

		subject, err := token.Verify(tokenStr)
		if err != nil || !IsValidUUID(subject) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "未授权"})
			return
		}

		// 首次见到该subject时惰性建档。下游接口都默认用户行存在，
		// 建档失败时直接失败本次请求
		if err := EnsureUser(subject); err != nil {
			fmt.Printf("为用户建档时发生错误: %v\n", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "服务内部错误"})
			return
		}

		c.Set(UserIDKey, subject)
		c.Next()
	}
}

// RequireAdmin 在RequireAuth之后使用，逐请求重新查询角色列。
// 非管理员统一返回403，不说明具体是哪一步检查失败。
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "未授权"})
			return
		}

		isAdmin, err := IsAdmin(userID)
		if err != nil {
			fmt.Printf("查询管理员角色时发生错误: %v\n", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "服务内部错误"})
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "没有权限"})
			return
		}

		c.Next()
	}
}
