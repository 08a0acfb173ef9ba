package month

import (
	"errors"
	"time"
)

// 月份键统一使用UTC时区下当月1日零点的时间戳，
// 用于给抽奖条目、奖品和中奖记录分桶。

// ErrInvalidFormat 表示月份字符串无法解析
var ErrInvalidFormat = errors.New("月份格式无效")

// Truncate 把任意时刻归一化为其所在月份的键。
func Truncate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Current 返回当前时刻对应的月份键。
// 由服务端计算，调用方永远不提供"当前月"。
func Current() time.Time {
	return Truncate(time.Now())
}

// Next 返回给定月份键的下一个月份键。
func Next(m time.Time) time.Time {
	return m.AddDate(0, 1, 0)
}

// Parse 解析前端传来的月份字符串。
// 接受 "2006-01-02"（取其所在月）和 "2006-01" 两种写法。
func Parse(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return Truncate(t), nil
	}
	if t, err := time.ParseInLocation("2006-01", s, time.UTC); err == nil {
		return Truncate(t), nil
	}
	return time.Time{}, ErrInvalidFormat
}
