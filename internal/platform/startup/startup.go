package startup

import (
	"fmt"

	"github.com/shareat/lucky-draw-backend/internal/code"
	"github.com/shareat/lucky-draw-backend/internal/draw"
	"github.com/shareat/lucky-draw-backend/internal/entry"
	"github.com/shareat/lucky-draw-backend/internal/platform/config"
	"github.com/shareat/lucky-draw-backend/internal/prize"
	"github.com/shareat/lucky-draw-backend/internal/user"
)

// InitializeApplication 是应用启动时执行的总入口。
// 依次驱动各业务模块完成表迁移，最后根据配置落实初始管理员。
func InitializeApplication(cfg *config.Config) error {
	fmt.Println("开始应用初始化...")

	if err := user.PrimeDB(); err != nil {
		return err
	}
	if err := code.PrimeDB(); err != nil {
		return err
	}
	if err := entry.PrimeDB(); err != nil {
		return err
	}
	if err := prize.PrimeDB(); err != nil {
		return err
	}
	if err := draw.PrimeDB(); err != nil {
		return err
	}

	if err := user.EnsureAdmins(cfg.Auth.AdminIDs); err != nil {
		return fmt.Errorf("初始化管理员失败: %w", err)
	}

	fmt.Println("应用初始化完成！")
	return nil
}
