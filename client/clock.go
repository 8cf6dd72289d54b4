package client

import "time"

// Accumulator 将可变帧间隔换算为整数个固定逻辑 Tick，剩余时间记为 Lag
// 不变式：每次 Advance 之后 0 <= Lag < TickDuration
type Accumulator struct {
	Lag          time.Duration
	TickDuration time.Duration
	// MaxTicks 单帧最多执行的 Tick 数，<=0 表示不限
	MaxTicks int

	dropped int64 // 因上限被丢弃的 Tick 累计
}

// NewAccumulator 按 Tick 频率创建累加器
func NewAccumulator(tickHz, maxTicks int) *Accumulator {
	return &Accumulator{
		TickDuration: time.Second / time.Duration(tickHz),
		MaxTicks:     maxTicks,
	}
}

// Advance 由前后两次墙钟时间推进
func (a *Accumulator) Advance(prev, now time.Time) int {
	return a.AdvanceBy(now.Sub(prev))
}

// AdvanceBy 累加 elapsed 并返回本帧应执行的 Tick 数（可能为 0 或多个）
func (a *Accumulator) AdvanceBy(elapsed time.Duration) int {
	if elapsed < 0 {
		// 时钟回拨：视为无时间流逝
		elapsed = 0
	}
	a.Lag += elapsed
	n := int(a.Lag / a.TickDuration)
	a.Lag -= time.Duration(n) * a.TickDuration
	if a.MaxTicks > 0 && n > a.MaxTicks {
		// 超出部分直接丢弃，只保留不足一个 Tick 的余量，避免卡顿后追帧雪崩
		a.dropped += int64(n - a.MaxTicks)
		n = a.MaxTicks
	}
	return n
}

// Dropped 返回累计被上限丢弃的 Tick 数
func (a *Accumulator) Dropped() int64 {
	return a.dropped
}
