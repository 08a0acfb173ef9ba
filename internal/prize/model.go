package prize

import (
	"time"

	"gorm.io/gorm"
)

// Prize 定义了某月奖品的持久化模型。
// 奖品是纯展示性的描述信息，与参与记录相互独立。
type Prize struct {
	// gorm.Model 包含 ID, CreatedAt, UpdatedAt, DeletedAt
	gorm.Model

	// Name 是奖品名称，例如 "65寸电视"
	Name string `gorm:"not null" json:"name"`

	// Description 是奖品的补充说明
	Description string `json:"description"`

	// ImageURL 是奖品图片的外链地址（图片托管在外部，本服务不处理上传）
	ImageURL string `json:"image_url"`

	// Month 是奖品所属的月份键
	Month time.Time `gorm:"not null;index" json:"month"`

	// IsActive 标记奖品是否在前台展示
	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	// IsGrandPrize 标记这是否是当月的头奖。
	// 抽签结果的顺序即名次，头奖对应名单中的第一位。
	IsGrandPrize bool `gorm:"not null;default:false" json:"is_grand_prize"`
}
