package code

import (
	"time"

	"gorm.io/gorm"
)

// Code 定义了兑换码在SQLite数据库中的持久化模型。
// 兑换码印在商品包装内，由管理员生成，每个码只能被成功兑换一次。
type Code struct {
	// gorm.Model 包含 ID, CreatedAt, UpdatedAt, DeletedAt
	gorm.Model

	// Code 是归一化后的兑换码文本（去除首尾空白并转为大写）。
	// 唯一索引保证同一个码不会被重复录入。
	Code string `gorm:"uniqueIndex;not null" json:"code"`

	// IsUsed 标记该码是否已被兑换。unused→used 只会发生一次，永不复用。
	IsUsed bool `gorm:"not null;default:false;index" json:"is_used"`

	// UsedBy 是兑换该码的用户UUID，未兑换时为NULL
	UsedBy *string `gorm:"type:varchar(36)" json:"used_by"`

	// UsedAt 是兑换发生的时间，未兑换时为NULL。
	// 月度重置依据该时间戳判断哪些码需要回退。
	UsedAt *time.Time `gorm:"index" json:"used_at"`

	// IsActive 标记该码是否可被兑换，管理员可以停用问题批次
	IsActive bool `gorm:"not null;default:true" json:"is_active"`
}
