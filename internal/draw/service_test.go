package draw

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shareat/lucky-draw-backend/internal/code"
	"github.com/shareat/lucky-draw-backend/internal/entry"
	"github.com/shareat/lucky-draw-backend/internal/platform/database"
	"github.com/shareat/lucky-draw-backend/internal/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var december = time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)

// setupTestDB 把全局DB替换为一个该测试专用的内存SQLite库。
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("无法打开测试数据库: %v", err)
	}
	err = db.AutoMigrate(&user.User{}, &code.Code{}, &entry.DrawEntry{}, &Winner{})
	if err != nil {
		t.Fatalf("无法迁移测试表: %v", err)
	}
	database.DB = db
}

// seedEntrant 为一个用户造好档案、一个已消耗的兑换码和对应的参与记录。
func seedEntrant(t *testing.T, userID string, monthKey time.Time) {
	t.Helper()

	u := user.User{UUID: userID, FullName: "测试用户" + userID[len(userID)-2:], Phone: "0800000000", Role: user.RoleUser}
	if err := database.DB.Create(&u).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	usedAt := monthKey.Add(24 * time.Hour)
	c := code.Code{
		Code:     "SEED-" + strings.ToUpper(userID[len(userID)-4:]) + monthKey.Format("200601"),
		IsUsed:   true,
		UsedBy:   &userID,
		UsedAt:   &usedAt,
		IsActive: true,
	}
	if err := database.DB.Create(&c).Error; err != nil {
		t.Fatalf("创建兑换码失败: %v", err)
	}

	e := entry.DrawEntry{UserID: userID, CodeID: c.ID, Month: monthKey}
	if err := database.DB.Create(&e).Error; err != nil {
		t.Fatalf("创建参与记录失败: %v", err)
	}
}

func entrantID(n int) string {
	return fmt.Sprintf("0190f1f0-0000-7000-8000-%012d", n)
}

func TestPickWinners(t *testing.T) {
	setupTestDB(t)

	for i := 1; i <= 4; i++ {
		seedEntrant(t, entrantID(i), december)
	}

	t.Run("no entries for month", func(t *testing.T) {
		empty := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
		if _, err := PickWinners(empty, 2); !errors.Is(err, ErrNoEntries) {
			t.Fatalf("空月份应返回ErrNoEntries, got %v", err)
		}
	})

	t.Run("picks requested count without duplicates", func(t *testing.T) {
		candidates, err := PickWinners(december, 2)
		if err != nil {
			t.Fatalf("抽签失败: %v", err)
		}
		if len(candidates) != 2 {
			t.Fatalf("应抽出2人, got %d", len(candidates))
		}
		if candidates[0].UserID == candidates[1].UserID {
			t.Error("中奖候选不应重复")
		}
		for _, candidate := range candidates {
			if candidate.FullName == "" || candidate.Phone == "" {
				t.Errorf("候选人 %s 应附带档案信息", candidate.UserID)
			}
		}
	})

	t.Run("count above entrant total returns everyone", func(t *testing.T) {
		candidates, err := PickWinners(december, 50)
		if err != nil {
			t.Fatalf("抽签失败: %v", err)
		}
		if len(candidates) != 4 {
			t.Errorf("候选人不足时应返回全部4人, got %d", len(candidates))
		}
	})

	t.Run("count is clamped to at least one", func(t *testing.T) {
		for _, count := range []int{0, -3} {
			candidates, err := PickWinners(december, count)
			if err != nil {
				t.Fatalf("count=%d 抽签失败: %v", count, err)
			}
			if len(candidates) != 1 {
				t.Errorf("count=%d 被夹取后应抽出1人, got %d", count, len(candidates))
			}
		}
	})
}

// TestPickWinnersFairness 做统计意义上的公平性检查：
// 4个参与者每次抽2人，重复足够多次后每人的命中频率应接近1/2。
func TestPickWinnersFairness(t *testing.T) {
	setupTestDB(t)

	for i := 1; i <= 4; i++ {
		seedEntrant(t, entrantID(i), december)
	}

	const trials = 1000
	hits := make(map[string]int)
	firstPlace := make(map[string]bool)
	for i := 0; i < trials; i++ {
		candidates, err := PickWinners(december, 2)
		if err != nil {
			t.Fatalf("抽签失败: %v", err)
		}
		for _, candidate := range candidates {
			hits[candidate.UserID]++
		}
		firstPlace[candidates[0].UserID] = true
	}

	// 期望每人命中约500次，给一个宽松的置信区间
	for i := 1; i <= 4; i++ {
		id := entrantID(i)
		if hits[id] < 350 || hits[id] > 650 {
			t.Errorf("参与者 %s 的命中次数 %d 偏离期望500过远", id, hits[id])
		}
	}

	// 顺序即名次：1000次抽签中第一名不应始终是同一个人
	if len(firstPlace) < 2 {
		t.Error("多次抽签的头名应该发生变化")
	}
}

func TestConfirmWinners(t *testing.T) {
	setupTestDB(t)

	prizeID := uint(7)
	confirmations := []Confirmation{
		{UserID: entrantID(1), Month: december, PrizeID: &prizeID},
		{UserID: entrantID(2), Month: december},
		// 重复确认同一个人是允许的，查重由管理员负责
		{UserID: entrantID(1), Month: december},
	}

	created := ConfirmWinners(confirmations)
	if created != 3 {
		t.Fatalf("应创建3条中奖记录, got %d", created)
	}

	var total int64
	database.DB.Model(&Winner{}).Where("month = ?", december).Count(&total)
	if total != 3 {
		t.Errorf("数据库中应有3条记录, got %d", total)
	}

	t.Run("partial failure reports created count", func(t *testing.T) {
		// 删掉winner表来模拟逐条写入全部失败
		if err := database.DB.Migrator().DropTable(&Winner{}); err != nil {
			t.Fatalf("删除测试表失败: %v", err)
		}
		created := ConfirmWinners(confirmations[:2])
		if created != 0 {
			t.Errorf("写入失败时应报告0条成功, got %d", created)
		}
	})
}

func TestResetMonth(t *testing.T) {
	setupTestDB(t)

	january := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		seedEntrant(t, entrantID(i), december)
	}
	seedEntrant(t, entrantID(4), january)

	t.Run("clears entries and reverts codes", func(t *testing.T) {
		entriesDeleted, codesReverted, err := ResetMonth(december)
		if err != nil {
			t.Fatalf("月度重置失败: %v", err)
		}
		if entriesDeleted != 3 {
			t.Errorf("应删除3条参与记录, got %d", entriesDeleted)
		}
		if codesReverted != 3 {
			t.Errorf("应回退3个兑换码, got %d", codesReverted)
		}

		remaining, err := entry.CountForMonth(december)
		if err != nil {
			t.Fatalf("统计参与记录失败: %v", err)
		}
		if remaining != 0 {
			t.Errorf("重置后12月不应有参与记录, got %d", remaining)
		}

		var usedCount int64
		database.DB.Model(&code.Code{}).Where("is_used = ?", true).Count(&usedCount)
		if usedCount != 1 {
			t.Errorf("只应剩下1月的那个已使用码, got %d", usedCount)
		}

		otherMonth, err := entry.CountForMonth(january)
		if err != nil {
			t.Fatalf("统计参与记录失败: %v", err)
		}
		if otherMonth != 1 {
			t.Errorf("其他月份的参与记录不应受影响, got %d", otherMonth)
		}
	})

	t.Run("resetting an empty month is a successful no-op", func(t *testing.T) {
		entriesDeleted, codesReverted, err := ResetMonth(december)
		if err != nil {
			t.Fatalf("空月份重置应报告成功: %v", err)
		}
		if entriesDeleted != 0 || codesReverted != 0 {
			t.Errorf("空月份重置不应影响任何行: entries=%d codes=%d", entriesDeleted, codesReverted)
		}
	})

	t.Run("entrants can redeem again after reset", func(t *testing.T) {
		// 唯一索引是硬删除后的状态，重新插入同 (user, month) 应成功
		e := entry.DrawEntry{UserID: entrantID(1), CodeID: 999, Month: december}
		if err := database.DB.Create(&e).Error; err != nil {
			t.Errorf("重置后重新参与应成功: %v", err)
		}
	})
}
