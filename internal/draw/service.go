package draw

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/shareat/lucky-draw-backend/internal/code"
	"github.com/shareat/lucky-draw-backend/internal/entry"
	"github.com/shareat/lucky-draw-backend/internal/platform/database"
	"github.com/shareat/lucky-draw-backend/internal/user"
	"github.com/shareat/lucky-draw-backend/pkg/month"
	"gorm.io/gorm"
)

// 抽取人数的夹取范围
const (
	minWinnerCount = 1
	maxWinnerCount = 100
)

// ErrNoEntries 表示目标月份没有任何参与记录
var ErrNoEntries = errors.New("该月份没有参与记录")

// Candidate 是抽签产生的候选中奖者，附带管理员核对用的档案信息。
// 切片中的顺序即名次：第一位对应头奖。
type Candidate struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// Confirmation 是管理员确认一条中奖记录时提交的数据。
type Confirmation struct {
	UserID  string
	Month   time.Time
	PrizeID *uint
}

// randUint32 从密码学安全的随机源取一个均匀的32位数。
func randUint32() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// secureShuffle 使用密码学随机源对列表做Fisher-Yates洗牌。
// 下标用 value % (i+1) 折算，i+1 远小于2^32，取模偏差可以忽略。
func secureShuffle(ids []string) error {
	for i := len(ids) - 1; i > 0; i-- {
		v, err := randUint32()
		if err != nil {
			return fmt.Errorf("获取随机数失败: %w", err)
		}
		j := int(v % uint32(i+1))
		ids[i], ids[j] = ids[j], ids[i]
	}
	return nil
}

// PickWinners 对指定月份执行一次抽签，返回count个候选中奖者。
// 只读不写：结果仅供管理员核对，落库由ConfirmWinners单独完成。
// count会被夹取到 [1,100]；候选人不足时返回全部参与者。
func PickWinners(monthKey time.Time, count int) ([]Candidate, error) {
	if count < minWinnerCount {
		count = minWinnerCount
	}
	if count > maxWinnerCount {
		count = maxWinnerCount
	}

	// 1. 收集该月去重后的参与者，每人只占一个签位
	userIDs, err := entry.DistinctUserIDs(monthKey)
	if err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return nil, ErrNoEntries
	}

	// 2. 洗牌后取前count个，洗牌顺序即名次
	if err := secureShuffle(userIDs); err != nil {
		return nil, err
	}
	if count > len(userIDs) {
		count = len(userIDs)
	}
	selected := userIDs[:count]

	// 3. 补充档案信息供管理员人工核对
	profiles, err := user.GetProfiles(selected)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, count)
	for _, id := range selected {
		candidate := Candidate{UserID: id}
		if p, ok := profiles[id]; ok {
			candidate.FullName = p.FullName
			candidate.Phone = p.Phone
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

// ConfirmWinners 把管理员核对后的名单逐条持久化为Winner记录。
// 逐条写入、容忍部分失败，返回成功条数；不做任何查重。
func ConfirmWinners(confirmations []Confirmation) int {
	created := 0
	for _, confirmation := range confirmations {
		w := Winner{
			UserID:  confirmation.UserID,
			PrizeID: confirmation.PrizeID,
			Month:   confirmation.Month,
		}
		if err := database.DB.Create(&w).Error; err != nil {
			fmt.Printf("确认中奖记录失败 (user=%s): %v\n", confirmation.UserID, err)
			continue
		}
		created++
	}
	return created
}

// ResetMonth 清空指定月份的所有参与记录，并把该月消耗的兑换码回退为未使用。
// 这是不可逆的管理操作；两步在同一个事务内完成。
// 月份本来就没有记录时同样报告成功（幂等）。
func ResetMonth(monthKey time.Time) (entriesDeleted, codesReverted int64, err error) {
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		entriesDeleted, txErr = entry.DeleteForMonth(tx, monthKey)
		if txErr != nil {
			return txErr
		}

		codesReverted, txErr = code.RevertUsedBetween(tx, monthKey, month.Next(monthKey))
		return txErr
	})
	if err != nil {
		return 0, 0, err
	}
	return entriesDeleted, codesReverted, nil
}

// ListWinners 返回某月的中奖记录。publicOnly为true时只返回已公示的。
func ListWinners(monthKey time.Time, publicOnly bool) ([]Winner, error) {
	query := database.DB.Where("month = ?", monthKey)
	if publicOnly {
		query = query.Where("is_public = ?", true)
	}

	var winners []Winner
	if err := query.Order("id asc").Find(&winners).Error; err != nil {
		return nil, fmt.Errorf("查询中奖记录失败: %w", err)
	}
	return winners, nil
}
