package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisPort 通过共享 Redis 的发布/订阅中继：
// 本地消息发布到 <channel>.input，权威端快照从 <channel>.state 订阅
type RedisPort struct {
	addr    string
	channel string

	rdb *redis.Client
	sub *redis.PubSub

	in  *snapshotInbox
	out *outbox

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	log       *zap.SugaredLogger
}

func NewRedisPort(addr, channel string, m *Metrics) *RedisPort {
	return &RedisPort{
		addr:    addr,
		channel: channel,
		in:      newSnapshotInbox(m),
		out:     newOutbox(m),
		log:     Log.With("transport", "redis", "channel", channel),
	}
}

func (p *RedisPort) InputChannel() string { return p.channel + ".input" }
func (p *RedisPort) StateChannel() string { return p.channel + ".state" }

func (p *RedisPort) Setup(ctx context.Context) error {
	p.rdb = redis.NewClient(&redis.Options{Addr: p.addr})
	if err := p.rdb.Ping(ctx).Err(); err != nil {
		_ = p.rdb.Close()
		return fmt.Errorf("redis setup %s: %w", p.addr, err)
	}
	p.sub = p.rdb.Subscribe(ctx, p.StateChannel())
	// 等待订阅确认，保证 Setup 返回后不会漏掉快照
	if _, err := p.sub.Receive(ctx); err != nil {
		_ = p.sub.Close()
		_ = p.rdb.Close()
		return fmt.Errorf("redis subscribe %s: %w", p.StateChannel(), err)
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())
	go p.readLoop(p.sub.Channel())
	go p.writeLoop()
	p.log.Infof("redis relay ready on %s", p.addr)
	return nil
}

func (p *RedisPort) SendMovement(id ClientID, x, y float64) {
	p.enqueue(MsgMove, MoveMessage{ID: id, X: x, Y: y})
}

func (p *RedisPort) SendHeartbeat(id ClientID) {
	p.enqueue(MsgHeartbeat, HeartbeatMessage{ID: id})
}

func (p *RedisPort) enqueue(t string, payload any) {
	b, err := Encode(t, payload)
	if err != nil {
		p.log.Errorw("encode", "type", t, "err", err)
		return
	}
	p.out.enqueue(b)
}

func (p *RedisPort) PollSnapshot() (Snapshot, bool) {
	return p.in.poll()
}

func (p *RedisPort) Close() error {
	if p.rdb == nil {
		return ErrSetupNotCalled
	}
	var err error
	p.closeOnce.Do(func() {
		p.cancel()
		_ = p.sub.Close()
		err = p.rdb.Close()
	})
	return err
}

func (p *RedisPort) readLoop(ch <-chan *redis.Message) {
	for msg := range ch {
		snap, ok, err := decodeStateJSON([]byte(msg.Payload))
		if err != nil {
			p.log.Debugw("bad state message", "err", err)
			continue
		}
		if ok {
			p.in.push(snap)
		}
	}
}

func (p *RedisPort) writeLoop() {
	for {
		select {
		case <-p.ctx.Done():
			return
		case b := <-p.out.ch:
			ctx, cancel := context.WithTimeout(p.ctx, time.Second)
			err := p.rdb.Publish(ctx, p.InputChannel(), b).Err()
			cancel()
			if err != nil && p.ctx.Err() == nil {
				p.log.Debugw("redis publish", "err", err)
			}
		}
	}
}
