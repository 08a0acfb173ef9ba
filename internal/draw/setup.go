package draw

import (
	"fmt"

	"github.com/shareat/lucky-draw-backend/internal/platform/database"
)

// PrimeDB 负责初始化draw模块的数据库部分
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Winner{}); err != nil {
		return fmt.Errorf("无法迁移winner表: %w", err)
	}
	fmt.Println("Winner数据库表迁移成功。")
	return nil
}
