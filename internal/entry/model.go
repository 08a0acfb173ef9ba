package entry

import (
	"time"

	"gorm.io/gorm"
)

// DrawEntry 定义了一条抽奖参与记录。
// 两个唯一索引分别落实两条核心不变量：
//   - (user_id, month) 唯一：每个用户每月至多一条参与记录
//   - code_id 唯一：每个兑换码至多产生一条参与记录
//
// 即使两个请求同时通过了前置检查，数据库约束也能保证只有一个写入成功。
type DrawEntry struct {
	// gorm.Model 包含 ID, CreatedAt, UpdatedAt, DeletedAt
	gorm.Model

	// UserID 是参与者的UUID
	UserID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_entry_user_month" json:"user_id"`

	// CodeID 是本次参与消耗的兑换码ID
	CodeID uint `gorm:"not null;uniqueIndex" json:"code_id"`

	// Month 是月份键（当月1日零点，UTC）
	Month time.Time `gorm:"not null;uniqueIndex:idx_entry_user_month;index" json:"month"`
}
