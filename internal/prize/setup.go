package prize

import (
	"fmt"

	"github.com/shareat/lucky-draw-backend/internal/platform/database"
)

// PrimeDB 负责初始化prize模块的数据库部分
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Prize{}); err != nil {
		return fmt.Errorf("无法迁移prize表: %w", err)
	}
	fmt.Println("Prize数据库表迁移成功。")
	return nil
}
