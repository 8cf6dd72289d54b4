package client

import (
	"sync/atomic"
)

// Metrics 客户端运行期指标；Tick 线程写，调试 HTTP 读
type Metrics struct {
	Frames           int64
	Ticks            int64
	Movements        int64 // 发送的移动消息
	Heartbeats       int64 // 发送的心跳消息
	SnapshotsMerged  int64
	PlayersAdded     int64
	PlayersEvicted   int64
	ResourceFailures int64
	TicksDropped     int64 // 因单帧上限被丢弃
	InboxDropped     int64 // 交接队列满被丢弃的快照
	OutboxDropped    int64 // 发送队列满被丢弃的消息
	TotalFrameNs     int64
}

func (m *Metrics) IncTick() { atomic.AddInt64(&m.Ticks, 1) }
func (m *Metrics) IncMovement() { atomic.AddInt64(&m.Movements, 1) }
func (m *Metrics) IncHeartbeat() { atomic.AddInt64(&m.Heartbeats, 1) }
func (m *Metrics) IncSnapshotMerged() { atomic.AddInt64(&m.SnapshotsMerged, 1) }
func (m *Metrics) AddPlayersAdded(n int) { atomic.AddInt64(&m.PlayersAdded, int64(n)) }
func (m *Metrics) AddPlayersEvicted(n int) { atomic.AddInt64(&m.PlayersEvicted, int64(n)) }
func (m *Metrics) AddResourceFailures(n int) {
	atomic.AddInt64(&m.ResourceFailures, int64(n))
}
func (m *Metrics) SetTicksDropped(n int64) { atomic.StoreInt64(&m.TicksDropped, n) }
func (m *Metrics) IncInboxDropped() { atomic.AddInt64(&m.InboxDropped, 1) }
func (m *Metrics) IncOutboxDropped() { atomic.AddInt64(&m.OutboxDropped, 1) }
func (m *Metrics) AddFrame(ns int64) {
	atomic.AddInt64(&m.Frames, 1)
	atomic.AddInt64(&m.TotalFrameNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	frames := atomic.LoadInt64(&m.Frames)
	total := atomic.LoadInt64(&m.TotalFrameNs)
	var avgMs float64
	if frames > 0 {
		avgMs = float64(total) / float64(frames) / 1e6
	}
	return map[string]any{
		"frames":            frames,
		"ticks":             atomic.LoadInt64(&m.Ticks),
		"movements":         atomic.LoadInt64(&m.Movements),
		"heartbeats":        atomic.LoadInt64(&m.Heartbeats),
		"snapshots_merged":  atomic.LoadInt64(&m.SnapshotsMerged),
		"players_added":     atomic.LoadInt64(&m.PlayersAdded),
		"players_evicted":   atomic.LoadInt64(&m.PlayersEvicted),
		"resource_failures": atomic.LoadInt64(&m.ResourceFailures),
		"ticks_dropped":     atomic.LoadInt64(&m.TicksDropped),
		"inbox_dropped":     atomic.LoadInt64(&m.InboxDropped),
		"outbox_dropped":    atomic.LoadInt64(&m.OutboxDropped),
		"avg_frame_ms":      avgMs,
	}
}
