package client

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// Roster 来自网络的远端玩家视图，仅由 Tick 线程读写
// 不变式：永远不包含本地玩家自己的 ID
type Roster struct {
	self    ClientID
	players map[ClientID]*RemotePlayer
	log     *zap.SugaredLogger
}

// NewRoster 创建名册，self 为本地玩家 ID
func NewRoster(self ClientID, log *zap.SugaredLogger) *Roster {
	if log == nil {
		log = Log
	}
	return &Roster{
		self:    self,
		players: make(map[ClientID]*RemotePlayer),
		log:     log,
	}
}

func (r *Roster) Len() int { return len(r.players) }

// Get 返回条目副本
func (r *Roster) Get(id ClientID) (RemotePlayer, bool) {
	p, ok := r.players[id]
	if !ok {
		return RemotePlayer{}, false
	}
	return *p, true
}

// Merge 将一次快照增量并入名册，返回新增条目数
// 未知 ID 插入且 ResourceReady=false；已知 ID 原地覆盖位置、保留就绪标记
// 后到即生效，不比较时间戳：乱序到达的旧快照同样会覆盖
func (r *Roster) Merge(delta Snapshot, now time.Time) int {
	added := 0
	for id, pos := range delta {
		if id == r.self {
			continue
		}
		p, ok := r.players[id]
		if !ok {
			p = &RemotePlayer{ID: id}
			r.players[id] = p
			added++
			r.log.Debugw("player joined roster", "player", id, "x", pos.X, "y", pos.Y)
		}
		p.Position = pos
		p.LastSeen = now
	}
	return added
}

// InitPending 对每个未就绪条目尝试一次懒加载，返回本次失败的 ID
// 失败只记录，条目保留，下一帧继续重试
func (r *Roster) InitPending(loader ResourceLoader) []ClientID {
	if loader == nil {
		return nil
	}
	var failed []ClientID
	for id, p := range r.players {
		if p.ResourceReady {
			continue
		}
		p.InitAttempts++
		if err := loader.Load(id); err != nil {
			failed = append(failed, id)
			r.log.Warnw("failed to load resource for player", "player", id, "attempt", p.InitAttempts, "err", err)
			continue
		}
		p.ResourceReady = true
	}
	return failed
}

// Evict 移除超过 timeout 未出现在任何快照中的条目；timeout<=0 关闭淘汰
func (r *Roster) Evict(now time.Time, timeout time.Duration) int {
	if timeout <= 0 {
		return 0
	}
	n := 0
	for id, p := range r.players {
		if now.Sub(p.LastSeen) >= timeout {
			delete(r.players, id)
			n++
			r.log.Infow("evicted silent player", "player", id, "silent", now.Sub(p.LastSeen))
		}
	}
	return n
}

// RemoteView 渲染层可见的只读条目
type RemoteView struct {
	ID            ClientID
	Position      Position
	ResourceReady bool
}

// AppendView 追加按 ID 排序的只读副本到 dst（dst 可复用上一帧的缓冲）
func (r *Roster) AppendView(dst []RemoteView) []RemoteView {
	start := len(dst)
	for _, p := range r.players {
		dst = append(dst, RemoteView{ID: p.ID, Position: p.Position, ResourceReady: p.ResourceReady})
	}
	out := dst[start:]
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return dst
}
