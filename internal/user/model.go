package user

import (
	"time"

	"gorm.io/gorm"
)

// 角色常量。角色值是一个封闭集合，其他取值一律视为非法输入。
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 定义了参与者在SQLite数据库中的持久化模型。
// 身份认证由外部服务完成，这里只存储抽奖业务需要的最小信息。
type User struct {
	// UUID 是用户的主键，来自身份令牌中经过验证的subject。
	UUID string `gorm:"primarykey;type:varchar(36)"`

	// FullName 和 Phone 用于管理员确认中奖名单时的人工核对。
	FullName string
	Phone    string

	// Role 是用户的角色（user / admin）。
	// 每个请求都会重新读取这一列，不做任何会话级缓存。
	Role string `gorm:"type:varchar(16);not null;default:'user'"`

	// 部分gorm.Model，由GORM自动管理
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// IsValidRole 判断一个角色字符串是否属于合法取值。
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
