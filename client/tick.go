package client

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// View 渲染层在一帧内可读的只读视图
// Remotes 复用同一块缓冲，仅在下一次 Frame 之前有效
type View struct {
	Local   Position
	LocalID ClientID
	Remotes []RemoteView
	Ticks   int     // 本帧执行的逻辑 Tick 数
	FPS     float64 // 最近一次统计的帧率
}

// TickLoop 编排器：时钟推进 → 固定步长 Tick（采样输入、发送）→ 每帧一次网络合并
// 所有状态只在调用 Frame 的单一线程上修改
type TickLoop struct {
	port   NetworkPort
	loader ResourceLoader
	events *EventQueue

	Local   LocalPlayer
	Roster  *Roster
	Clock   *Accumulator
	Input   InputState
	Metrics *Metrics

	speed      float64
	evictAfter time.Duration

	prev    time.Time
	started bool
	stop    bool
	view    View

	fpsFrames int
	fpsTime   time.Duration

	// 供其他 goroutine（调试 HTTP）读取的只读副本
	settings  atomic.Pointer[Settings]
	publish   bool
	published atomic.Pointer[View]

	log *zap.SugaredLogger
}

// Settings 可热更新的运行参数
type Settings struct {
	Speed            float64       `json:"speed"`
	MaxTicksPerFrame int           `json:"maxTicksPerFrame"`
	EvictAfter       time.Duration `json:"evictAfterNs"`
}

// LoopOption 可选项
type LoopOption func(*TickLoop)

func WithLogger(l *zap.SugaredLogger) LoopOption {
	return func(t *TickLoop) { t.log = l }
}

func WithMetrics(m *Metrics) LoopOption {
	return func(t *TickLoop) { t.Metrics = m }
}

func WithEvents(q *EventQueue) LoopOption {
	return func(t *TickLoop) { t.events = q }
}

// WithPublishedView 每帧额外发布一份视图副本，供 LatestView 跨 goroutine 读取
func WithPublishedView() LoopOption {
	return func(t *TickLoop) { t.publish = true }
}

// NewTickLoop 创建编排器，本地玩家从原点出发
func NewTickLoop(cfg Config, id ClientID, port NetworkPort, loader ResourceLoader, opts ...LoopOption) *TickLoop {
	t := &TickLoop{
		port:       port,
		loader:     loader,
		Local:      LocalPlayer{ID: id},
		Clock:      NewAccumulator(cfg.TickHz, cfg.MaxTicksPerFrame),
		Input:      InputState{HoldWindow: cfg.HoldWindow},
		speed:      cfg.Speed,
		evictAfter: cfg.EvictAfter,
	}
	for _, o := range opts {
		o(t)
	}
	if t.log == nil {
		t.log = Log
	}
	t.log = t.log.With("client", id)
	if t.Metrics == nil {
		t.Metrics = &Metrics{}
	}
	if t.events == nil {
		t.events = NewEventQueue(0)
	}
	t.Roster = NewRoster(id, t.log)
	t.storeSettings()
	return t
}

// Events 返回事件队列，供输入源/调试接口投递
func (t *TickLoop) Events() *EventQueue { return t.events }

// Stopped 是否已收到停止事件
func (t *TickLoop) Stopped() bool { return t.stop }

// Frame 执行一帧：回放事件 → 推进时钟 → 跑完所有 Tick → 轮询并合并快照 → 懒加载 → 淘汰
// 第一次调用只记录时间基准，不产生 Tick
func (t *TickLoop) Frame(now time.Time) View {
	start := time.Now()

	t.events.Drain(t.apply)
	t.Input.Latch(now)

	var elapsed time.Duration
	if t.started {
		elapsed = now.Sub(t.prev)
	}
	t.prev = now
	t.started = true

	dropped := t.Clock.Dropped()
	n := t.Clock.AdvanceBy(elapsed)
	if d := t.Clock.Dropped(); d != dropped {
		t.Metrics.SetTicksDropped(d)
		t.log.Warnw("frame stalled, dropping ticks", "elapsed", elapsed, "dropped", d-dropped)
	}
	for i := 0; i < n; i++ {
		t.tick()
	}

	t.merge(now)
	t.reportFPS(elapsed)

	t.view.Local = t.Local.Position
	t.view.LocalID = t.Local.ID
	t.view.Ticks = n
	t.view.Remotes = t.Roster.AppendView(t.view.Remotes[:0])

	if t.publish {
		cp := t.view
		cp.Remotes = append([]RemoteView(nil), t.view.Remotes...)
		t.published.Store(&cp)
	}

	t.Metrics.AddFrame(time.Since(start).Nanoseconds())
	return t.view
}

// tick 单个逻辑步：有方向输入则移动并上报位置，否则发送心跳；二者每 Tick 恰好其一
func (t *TickLoop) tick() {
	t.Metrics.IncTick()
	s := Sample(t.Input.Intent(), t.Local.Position, t.speed)
	if s.Moved {
		t.Local.Position = s.Position
		t.port.SendMovement(t.Local.ID, s.Position.X, s.Position.Y)
		t.Metrics.IncMovement()
		return
	}
	t.port.SendHeartbeat(t.Local.ID)
	t.Metrics.IncHeartbeat()
}

// merge 每帧一次：网络到达速率与帧率绑定，而非 Tick 速率
func (t *TickLoop) merge(now time.Time) {
	if delta, ok := t.port.PollSnapshot(); ok {
		added := t.Roster.Merge(delta, now)
		t.Metrics.IncSnapshotMerged()
		if added > 0 {
			t.Metrics.AddPlayersAdded(added)
		}
	}
	if failed := t.Roster.InitPending(t.loader); len(failed) > 0 {
		t.Metrics.AddResourceFailures(len(failed))
	}
	if n := t.Roster.Evict(now, t.evictAfter); n > 0 {
		t.Metrics.AddPlayersEvicted(n)
	}
}

func (t *TickLoop) apply(e Event) {
	switch ev := e.(type) {
	case KeyEvent:
		if ev.Release {
			t.Input.Release(ev.Intent)
			return
		}
		t.Input.Press(ev.Intent, ev.At)
	case ConfigEvent:
		if ev.Speed != nil && *ev.Speed > 0 {
			t.speed = *ev.Speed
		}
		if ev.MaxTicksPerFrame != nil {
			t.Clock.MaxTicks = *ev.MaxTicksPerFrame
		}
		if ev.EvictAfter != nil {
			t.evictAfter = *ev.EvictAfter
		}
		t.storeSettings()
		t.log.Infof("config updated: speed=%.3f maxTicks=%d evictAfter=%s", t.speed, t.Clock.MaxTicks, t.evictAfter)
	case QuitEvent:
		t.stop = true
	}
}

func (t *TickLoop) reportFPS(elapsed time.Duration) {
	t.fpsFrames++
	t.fpsTime += elapsed
	if t.fpsTime < time.Second {
		return
	}
	fps := float64(t.fpsFrames) / t.fpsTime.Seconds()
	t.log.Debugf("FPS: %.1f | Frame Time: %.2f ms", fps, t.fpsTime.Seconds()*1000/float64(t.fpsFrames))
	t.view.FPS = fps
	t.fpsFrames = 0
	t.fpsTime = 0
}

func (t *TickLoop) storeSettings() {
	t.settings.Store(&Settings{Speed: t.speed, MaxTicksPerFrame: t.Clock.MaxTicks, EvictAfter: t.evictAfter})
}

// Settings 当前参数，可在任意 goroutine 调用
func (t *TickLoop) Settings() Settings {
	return *t.settings.Load()
}

// LatestView 最近一帧发布的视图；未开启 WithPublishedView 或尚未跑帧时返回 false
func (t *TickLoop) LatestView() (View, bool) {
	v := t.published.Load()
	if v == nil {
		return View{}, false
	}
	return *v, true
}

// Run 协作式主循环：每次从 frames 取到时间点即执行一帧并交给 render
// ctx 结束或收到 QuitEvent 时返回；在途发送不等待
func (t *TickLoop) Run(ctx context.Context, frames <-chan time.Time, render func(View)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now, ok := <-frames:
			if !ok {
				return nil
			}
			v := t.Frame(now)
			if render != nil {
				render(v)
			}
			if t.stop {
				t.log.Info("stop requested, leaving tick loop")
				return nil
			}
		}
	}
}
