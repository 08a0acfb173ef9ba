package ratelimit

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shareat/lucky-draw-backend/internal/platform/database"
)

// keyPrefix 是Redis中限流有序集合的键名前缀
const keyPrefix = "ratelimit:"

// ttlBuffer 让每个限流键的生存时间比窗口稍长，作为缓冲
const ttlBuffer = time.Minute

// ErrUnavailable 表示限流后端不可用。
// 按设计，调用方收到该错误时应记录日志并放行（fail-open）。
var ErrUnavailable = errors.New("限流后端不可用")

// generateMemberID 根据给定的时间生成一个16字节的、抗冲突的成员ID，并编码为Base64。
// 结构: [ 8字节纳秒时间戳 (Big Endian) | 8字节随机数 ]
func generateMemberID(t time.Time) (string, error) {
	b := make([]byte, 16)

	binary.BigEndian.PutUint64(b[0:8], uint64(t.UnixNano()))
	if _, err := rand.Read(b[8:16]); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Allow 在Redis中为 (operation, key) 原子地记录一次新的尝试，
// 并判断滑动窗口内的尝试总数是否超过limit。
// 本次尝试无论放行与否都会计入窗口。
// 当Redis不可用或操作失败时，返回 allowed=true 和一个非nil错误，
// 由调用方决定如何记录。限流只是防滥用手段，不应阻断正常请求。
func Allow(key string, operation string, limit int64, window time.Duration) (bool, error) {
	if database.RDB == nil || !database.IsRedisHealthy() {
		return true, ErrUnavailable
	}

	now := time.Now()
	redisKey := keyPrefix + operation + ":" + key

	// 1. 计算窗口起点，作为清理旧记录的边界
	minTimestamp := float64(now.Add(-window).UnixMicro())

	// 2. 生成本次尝试的Score和Member
	score := float64(now.UnixMicro())
	memberID, err := generateMemberID(now)
	if err != nil {
		return true, fmt.Errorf("生成限流memberID失败: %w", err)
	}

	// 3. 使用Redis事务(TxPipeline)来保证所有操作的原子性
	pipe := database.RDB.TxPipeline()
	// a. 移除窗口外的旧记录
	pipe.ZRemRangeByScore(database.Ctx, redisKey, "-inf", fmt.Sprintf("(%f", minTimestamp))
	// b. 添加本次尝试
	pipe.ZAdd(database.Ctx, redisKey, redis.Z{Score: score, Member: memberID})
	// c. 刷新过期时间
	pipe.Expire(database.Ctx, redisKey, window+ttlBuffer)
	// d. 获取窗口内的总数
	countCmd := pipe.ZCard(database.Ctx, redisKey)

	if _, err := pipe.Exec(database.Ctx); err != nil {
		return true, fmt.Errorf("执行限流计数事务失败: %w", err)
	}

	count, err := countCmd.Result()
	if err != nil {
		return true, fmt.Errorf("获取限流计数结果失败: %w", err)
	}

	return count <= limit, nil
}
