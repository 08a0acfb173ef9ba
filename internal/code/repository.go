package code

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shareat/lucky-draw-backend/internal/platform/database"
	"gorm.io/gorm"
)

// MaxCodeLength 是兑换码文本允许的最大长度
const MaxCodeLength = 50

// codeAlphabet 是批量生成兑换码时使用的字符集。
// 去掉了容易混淆的 0/O/1/I，方便印在包装上人工输入。
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generatedCodeLength 是批量生成时随机部分的长度
const generatedCodeLength = 10

var (
	// ErrCodeFormat 表示兑换码文本为空或超长
	ErrCodeFormat = errors.New("兑换码格式无效")
	// ErrCodeExists 表示录入的兑换码已存在
	ErrCodeExists = errors.New("兑换码已存在")
	// ErrCodeNotFound 表示目标兑换码不存在
	ErrCodeNotFound = errors.New("兑换码不存在")
)

// Normalize 把用户输入的兑换码归一化：去除首尾空白并转为大写。
// 数据库中只存储归一化形式，比较因此是大小写不敏感的。
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidateFormat 检查归一化后的兑换码文本是否合法。
func ValidateFormat(normalized string) error {
	if normalized == "" || len(normalized) > MaxCodeLength {
		return ErrCodeFormat
	}
	return nil
}

// Create 录入单个兑换码。
func Create(raw string) (*Code, error) {
	normalized := Normalize(raw)
	if err := ValidateFormat(normalized); err != nil {
		return nil, err
	}

	newCode := Code{Code: normalized, IsActive: true}
	if err := database.DB.Create(&newCode).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCodeExists
		}
		return nil, fmt.Errorf("无法创建兑换码: %w", err)
	}
	return &newCode, nil
}

// randomCode 生成一个带前缀的随机兑换码。
func randomCode(prefix string) (string, error) {
	b := make([]byte, generatedCodeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return prefix + string(b), nil
}

// CreateBatch 批量生成count个带前缀的兑换码并写入数据库。
// 随机碰撞到已有码时会换一个重试，返回实际生成的码文本列表。
func CreateBatch(count int, prefix string) ([]string, error) {
	prefix = Normalize(prefix)
	if len(prefix)+generatedCodeLength > MaxCodeLength {
		return nil, ErrCodeFormat
	}

	created := make([]string, 0, count)
	for i := 0; i < count; i++ {
		// 唯一索引兜底，碰撞时重试几次即可
		var lastErr error
		for attempt := 0; attempt < 5; attempt++ {
			text, err := randomCode(prefix)
			if err != nil {
				return created, fmt.Errorf("生成随机兑换码失败: %w", err)
			}
			newCode := Code{Code: text, IsActive: true}
			if err := database.DB.Create(&newCode).Error; err != nil {
				lastErr = err
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					continue
				}
				return created, fmt.Errorf("无法创建兑换码: %w", err)
			}
			created = append(created, text)
			lastErr = nil
			break
		}
		if lastErr != nil {
			return created, fmt.Errorf("批量生成兑换码时连续碰撞: %w", lastErr)
		}
	}
	return created, nil
}

// FindActive 在事务中按归一化文本查找一个可用的兑换码。
// 查不到时返回 ErrCodeNotFound。
func FindActive(tx *gorm.DB, normalized string) (*Code, error) {
	var c Code
	err := tx.Where("code = ? AND is_active = ?", normalized, true).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("查询兑换码失败: %w", err)
	}
	return &c, nil
}

// MarkUsed 在事务中把一个兑换码条件化地标记为已使用。
// WHERE条件带上 is_used=false，因此两个并发兑换中只有一个能成功，
// 通过受影响行数判断是否抢到了这个码。
func MarkUsed(tx *gorm.DB, codeID uint, userID string, usedAt time.Time) (bool, error) {
	result := tx.Model(&Code{}).
		Where("id = ? AND is_used = ?", codeID, false).
		Updates(map[string]interface{}{
			"is_used": true,
			"used_by": userID,
			"used_at": usedAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("标记兑换码已使用失败: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// RevertUsedBetween 在事务中把使用时间落在 [from, to) 内的兑换码全部回退为未使用。
// 月度重置时调用，返回回退的行数。
func RevertUsedBetween(tx *gorm.DB, from, to time.Time) (int64, error) {
	result := tx.Model(&Code{}).
		Where("is_used = ? AND used_at >= ? AND used_at < ?", true, from, to).
		Updates(map[string]interface{}{
			"is_used": false,
			"used_by": nil,
			"used_at": nil,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("回退兑换码失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// SetActive 启用或停用一个兑换码。
func SetActive(codeID uint, active bool) error {
	result := database.DB.Model(&Code{}).Where("id = ?", codeID).Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("更新兑换码状态失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCodeNotFound
	}
	return nil
}

// ListFilter 定义了管理后台查询兑换码时的过滤条件
type ListFilter struct {
	IsUsed   *bool
	IsActive *bool
	Page     int
	PageSize int
}

// List 分页返回兑换码列表和满足条件的总数。
func List(filter ListFilter) ([]Code, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 500 {
		filter.PageSize = 100
	}

	query := database.DB.Model(&Code{})
	if filter.IsUsed != nil {
		query = query.Where("is_used = ?", *filter.IsUsed)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var codes []Code
	err := query.Order("id desc").
		Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize).
		Find(&codes).Error
	if err != nil {
		return nil, 0, err
	}
	return codes, total, nil
}
