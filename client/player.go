package client

import (
	"math/rand"
	"time"
)

// ClientID 参与者标识，进程生命周期内唯一
type ClientID int32

// Position 世界坐标（不做单位换算）
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LocalPlayer 本地唯一受控实体，仅在逻辑 Tick 中被输入修改
type LocalPlayer struct {
	ID       ClientID
	Position Position
}

// RemotePlayer 远端玩家在本地的视图，由网络快照驱动
type RemotePlayer struct {
	ID            ClientID
	Position      Position
	ResourceReady bool // 视觉资源是否已初始化，渲染层据此跳过未就绪实体

	InitAttempts int       // 懒加载尝试次数（含失败重试）
	LastSeen     time.Time // 最近一次出现在快照中的帧时间，用于超时淘汰
}

// NewClientID 启动时伪随机抽取本地 ID（权威端随后确认）
func NewClientID(r *rand.Rand) ClientID {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	// 保留 0 作为"未分配"
	return ClientID(r.Int31n(1<<31-2) + 1)
}
