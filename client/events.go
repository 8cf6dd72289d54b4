package client

import "time"

// Event 由输入/窗口/调试接口产生，Tick 线程每帧开始时统一回放
type Event interface {
	event()
}

// KeyEvent 方向键按下（Release=true 表示抬起）
type KeyEvent struct {
	Intent  Intent
	Release bool
	At      time.Time
}

// ConfigEvent 运行期热更新，nil 字段保持不变
type ConfigEvent struct {
	Speed            *float64
	MaxTicksPerFrame *int
	EvictAfter       *time.Duration
}

// QuitEvent 请求停止主循环
type QuitEvent struct{}

func (KeyEvent) event()    {}
func (ConfigEvent) event() {}
func (QuitEvent) event()   {}

// EventQueue 多生产者、单消费者（Tick 线程）的有界事件队列
type EventQueue struct {
	ch chan Event
}

func NewEventQueue(size int) *EventQueue {
	if size <= 0 {
		size = 256
	}
	return &EventQueue{ch: make(chan Event, size)}
}

// Push 非阻塞入队，队列满时丢弃并返回 false
func (q *EventQueue) Push(e Event) bool {
	select {
	case q.ch <- e:
		return true
	default:
		return false
	}
}

// Drain 非阻塞地取出当前所有事件
func (q *EventQueue) Drain(fn func(Event)) int {
	n := 0
	for {
		select {
		case e := <-q.ch:
			fn(e)
			n++
		default:
			return n
		}
	}
}
