package entry

import (
	"errors"
	"fmt"
	"time"

	"github.com/shareat/lucky-draw-backend/internal/code"
	"github.com/shareat/lucky-draw-backend/internal/platform/database"
	"github.com/shareat/lucky-draw-backend/internal/platform/ratelimit"
	"github.com/shareat/lucky-draw-backend/pkg/month"
	"gorm.io/gorm"
)

// 兑换操作的限流参数：每个用户60秒内最多尝试5次
const (
	redeemOperation  = "redeem_code"
	redeemRateLimit  = 5
	redeemRateWindow = 60 * time.Second
)

var (
	// ErrTooManyAttempts 表示触发了兑换限流
	ErrTooManyAttempts = errors.New("尝试次数过多，请稍后再试")
	// ErrAlreadyEntered 表示该用户本月已有参与记录
	ErrAlreadyEntered = errors.New("本月已参与过抽奖")
	// ErrCodeUsed 表示兑换码已被使用
	ErrCodeUsed = errors.New("兑换码已被使用")
)

// HasEntered 查询一个用户在指定月份是否已有参与记录。
func HasEntered(userID string, monthKey time.Time) (bool, error) {
	var count int64
	err := database.DB.Model(&DrawEntry{}).
		Where("user_id = ? AND month = ?", userID, monthKey).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("查询参与记录失败: %w", err)
	}
	return count > 0, nil
}

// Redeem 执行一次完整的兑换事务：限流、校验、占用兑换码、创建参与记录。
//
// 校验顺序是固定的：
//  1. 限流检查（后端故障时放行，只记日志）
//  2. 兑换码格式检查
//  3. 本月是否已参与
//  4. 在同一个数据库事务内：查找可用码 → 条件化标记已用 → 创建参与记录。
//     标记语句带 WHERE is_used=false，受影响行数为0即视为已被抢用；
//     参与记录写入失败时整个事务回滚，兑换码自动恢复未使用状态。
//
// 月份键由服务端取当前时间计算，调用方无法指定。
func Redeem(userID string, rawCode string) (*DrawEntry, error) {
	// 1. 限流检查。后端不可用时按设计放行
	allowed, err := ratelimit.Allow(userID, redeemOperation, redeemRateLimit, redeemRateWindow)
	if err != nil {
		fmt.Printf("限流检查失败（已放行）: %v\n", err)
	}
	if !allowed {
		return nil, ErrTooManyAttempts
	}

	// 2. 格式校验，不合法时不发起任何数据库操作
	normalized := code.Normalize(rawCode)
	if err := code.ValidateFormat(normalized); err != nil {
		return nil, err
	}

	currentMonth := month.Current()

	// 3. 幂等检查：本月已有参与记录则直接拒绝，不触碰任何状态
	entered, err := HasEntered(userID, currentMonth)
	if err != nil {
		return nil, err
	}
	if entered {
		return nil, ErrAlreadyEntered
	}

	// 4. 占用兑换码并创建参与记录，两步在同一个事务内完成
	var newEntry DrawEntry
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		c, err := code.FindActive(tx, normalized)
		if err != nil {
			return err
		}
		if c.IsUsed {
			return ErrCodeUsed
		}

		claimed, err := code.MarkUsed(tx, c.ID, userID, time.Now().UTC())
		if err != nil {
			return err
		}
		if !claimed {
			// 并发兑换中被别人抢先，等价于"已被使用"
			return ErrCodeUsed
		}

		newEntry = DrawEntry{
			UserID: userID,
			CodeID: c.ID,
			Month:  currentMonth,
		}
		if err := tx.Create(&newEntry).Error; err != nil {
			// 唯一索引兜底：并发的同月第二条记录在这里被拦下，
			// 事务回滚后兑换码回到未使用状态
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyEntered
			}
			return fmt.Errorf("创建参与记录失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &newEntry, nil
}

// CountForMonth 返回指定月份的参与记录总数。
func CountForMonth(monthKey time.Time) (int64, error) {
	var count int64
	err := database.DB.Model(&DrawEntry{}).Where("month = ?", monthKey).Count(&count).Error
	return count, err
}

// DistinctUserIDs 返回指定月份去重后的参与者UUID列表。
// 上游已保证每人每月至多一条记录，这里的去重是抽签口径的兜底：
// 每个参与者无论如何只占一个签位。
func DistinctUserIDs(monthKey time.Time) ([]string, error) {
	var userIDs []string
	err := database.DB.Model(&DrawEntry{}).
		Where("month = ?", monthKey).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, fmt.Errorf("无法从参与记录提取用户ID: %w", err)
	}
	return userIDs, nil
}

// ListForMonth 分页返回指定月份的参与记录，供管理后台展示。
func ListForMonth(monthKey time.Time, page, pageSize int) ([]DrawEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 100
	}

	total, err := CountForMonth(monthKey)
	if err != nil {
		return nil, 0, err
	}

	var entries []DrawEntry
	err = database.DB.Where("month = ?", monthKey).Order("id asc").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// DeleteForMonth 在事务中删除指定月份的所有参与记录，返回删除的行数。
// 使用硬删除：重置就是不可逆的破坏性操作，软删除残留反而会撞唯一索引。
func DeleteForMonth(tx *gorm.DB, monthKey time.Time) (int64, error) {
	result := tx.Unscoped().Where("month = ?", monthKey).Delete(&DrawEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("删除参与记录失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}
