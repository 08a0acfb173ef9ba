package entry

import (
	"fmt"

	"github.com/shareat/lucky-draw-backend/internal/platform/database"
)

// PrimeDB 负责初始化entry模块的数据库部分
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&DrawEntry{}); err != nil {
		return fmt.Errorf("无法迁移entry表: %w", err)
	}
	fmt.Println("DrawEntry数据库表迁移成功。")
	return nil
}
