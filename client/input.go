package client

import "time"

// Intent 方向意图位掩码（同时按下可叠加）
type Intent uint8

const (
	IntentUp Intent = 1 << iota
	IntentDown
	IntentLeft
	IntentRight

	IntentNone Intent = 0
)

// Sampled 一次采样的结果：Moved 为 false 即 Idle
type Sampled struct {
	Moved    bool
	Position Position
}

// Sample 每个逻辑 Tick 调用一次，纯函数：只根据意图与当前位置计算新位置
// 上下同时按下位移抵消，但仍算作 Moved
func Sample(intent Intent, pos Position, speed float64) Sampled {
	if intent == IntentNone {
		return Sampled{Position: pos}
	}
	if intent&IntentUp != 0 {
		pos.Y += speed
	}
	if intent&IntentDown != 0 {
		pos.Y -= speed
	}
	if intent&IntentLeft != 0 {
		pos.X -= speed
	}
	if intent&IntentRight != 0 {
		pos.X += speed
	}
	return Sampled{Moved: true, Position: pos}
}

// InputState 当前帧"按住"的方向键
// 终端只有按下/连发事件、没有抬起事件，按下后在 HoldWindow 内视为按住
type InputState struct {
	HoldWindow time.Duration

	pressedAt [4]time.Time
	now       time.Time
}

func intentIndex(in Intent) int {
	switch in {
	case IntentUp:
		return 0
	case IntentDown:
		return 1
	case IntentLeft:
		return 2
	case IntentRight:
		return 3
	}
	return -1
}

// Press 记录一次按键（由事件队列在帧开始时回放）
func (s *InputState) Press(in Intent, at time.Time) {
	for _, bit := range []Intent{IntentUp, IntentDown, IntentLeft, IntentRight} {
		if in&bit != 0 {
			s.pressedAt[intentIndex(bit)] = at
		}
	}
}

// Release 立即松开（用于有抬起事件的输入源）
func (s *InputState) Release(in Intent) {
	for _, bit := range []Intent{IntentUp, IntentDown, IntentLeft, IntentRight} {
		if in&bit != 0 {
			s.pressedAt[intentIndex(bit)] = time.Time{}
		}
	}
}

// Latch 固定本帧的时间点，本帧所有 Tick 读到同一份意图
func (s *InputState) Latch(now time.Time) {
	s.now = now
}

// Intent 返回本帧按住的方向
func (s *InputState) Intent() Intent {
	var out Intent
	for i, bit := range []Intent{IntentUp, IntentDown, IntentLeft, IntentRight} {
		at := s.pressedAt[i]
		if at.IsZero() {
			continue
		}
		if s.HoldWindow <= 0 || s.now.Sub(at) < s.HoldWindow {
			out |= bit
		}
	}
	return out
}
