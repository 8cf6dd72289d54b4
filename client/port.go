package client

import (
	"context"
	"errors"
)

var (
	// ErrNoTransport 未知的传输名
	ErrNoTransport = errors.New("unknown transport")
	// ErrSetupNotCalled 在 Setup 之前使用端口
	ErrSetupNotCalled = errors.New("network port not set up")
)

// Snapshot 一次轮询得到的远端玩家位置增量（可能只覆盖部分玩家）
type Snapshot map[ClientID]Position

// NetworkPort 与权威端的抽象收发通道
// 发送一律 fire-and-forget；PollSnapshot 不得阻塞，无数据时返回 false
type NetworkPort interface {
	// Setup 启动时建立一次数据报关联，失败即致命
	Setup(ctx context.Context) error
	SendMovement(id ClientID, x, y float64)
	SendHeartbeat(id ClientID)
	PollSnapshot() (Snapshot, bool)
	Close() error
}

const (
	inboxSize  = 64
	outboxSize = 128
)

// snapshotInbox 读协程（单生产者）到 Tick 线程（单消费者）的交接队列
type snapshotInbox struct {
	ch      chan Snapshot
	metrics *Metrics
}

func newSnapshotInbox(m *Metrics) *snapshotInbox {
	return &snapshotInbox{ch: make(chan Snapshot, inboxSize), metrics: m}
}

// push 由读协程调用，之后 s 归队列所有；队列满时丢弃本条（后续快照会覆盖它）
func (in *snapshotInbox) push(s Snapshot) {
	select {
	case in.ch <- s:
	default:
		if in.metrics != nil {
			in.metrics.IncInboxDropped()
		}
	}
}

// poll 非阻塞地取走全部积压快照，按到达顺序合并（后到覆盖先到）
func (in *snapshotInbox) poll() (Snapshot, bool) {
	var merged Snapshot
	for {
		select {
		case s := <-in.ch:
			if merged == nil {
				merged = s
				continue
			}
			for id, p := range s {
				merged[id] = p
			}
		default:
			return merged, merged != nil
		}
	}
}

// outbox Tick 线程到写协程的发送队列；满则丢弃（实时性优先，不阻塞 Tick）
type outbox struct {
	ch      chan []byte
	metrics *Metrics
}

func newOutbox(m *Metrics) *outbox {
	return &outbox{ch: make(chan []byte, outboxSize), metrics: m}
}

func (o *outbox) enqueue(b []byte) {
	select {
	case o.ch <- b:
	default:
		if o.metrics != nil {
			o.metrics.IncOutboxDropped()
		}
	}
}
