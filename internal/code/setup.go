package code

import (
	"fmt"

	"github.com/shareat/lucky-draw-backend/internal/platform/database"
)

// PrimeDB 负责初始化code模块的数据库部分
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Code{}); err != nil {
		return fmt.Errorf("无法迁移code表: %w", err)
	}
	fmt.Println("Code数据库表迁移成功。")
	return nil
}
