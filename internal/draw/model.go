package draw

import (
	"time"

	"gorm.io/gorm"
)

// Winner 定义了一条已确认的中奖记录。
// 只有管理员在核对抽签结果后显式确认，才会产生Winner行；
// 抽签本身不落库。(user_id, month) 上有意不加唯一约束：
// 管理员可以手工追加记录，重复与否由人来把关。
type Winner struct {
	// gorm.Model 包含 ID, CreatedAt, UpdatedAt, DeletedAt
	gorm.Model

	// UserID 是中奖者的UUID
	UserID string `gorm:"type:varchar(36);not null;index" json:"user_id"`

	// PrizeID 是关联的奖品ID，可以为空（先定人再定奖）
	PrizeID *uint `json:"prize_id"`

	// Month 是中奖所属的月份键
	Month time.Time `gorm:"not null;index" json:"month"`

	// IsPublic 标记该记录是否对前台公示
	IsPublic bool `gorm:"not null;default:false" json:"is_public"`
}
