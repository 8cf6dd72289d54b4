package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait = 5 * time.Second
	wsPongWait  = 60 * time.Second
)

// WSPort 通过 WebSocket 文本帧（JSON 信封）与权威端通信
type WSPort struct {
	url     string
	id      ClientID
	session string

	ws  *websocket.Conn
	in  *snapshotInbox
	out *outbox

	done      chan struct{}
	closeOnce sync.Once
	log       *zap.SugaredLogger
}

// NewWSPort rawURL 形如 ws://host:8080/ws；握手时附带 player 与 session 查询参数
func NewWSPort(rawURL string, id ClientID, session string, m *Metrics) *WSPort {
	return &WSPort{
		url:     rawURL,
		id:      id,
		session: session,
		in:      newSnapshotInbox(m),
		out:     newOutbox(m),
		done:    make(chan struct{}),
		log:     Log.With("transport", "ws", "session", session),
	}
}

func (p *WSPort) Setup(ctx context.Context) error {
	u, err := url.Parse(p.url)
	if err != nil {
		return fmt.Errorf("ws setup: %w", err)
	}
	q := u.Query()
	q.Set("player", strconv.Itoa(int(p.id)))
	if p.session != "" {
		q.Set("session", p.session)
	}
	u.RawQuery = q.Encode()

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("ws setup %s: %w", p.url, err)
	}
	p.ws = ws
	go p.writePump()
	go p.readPump()
	p.log.Infof("websocket connected to %s", u.Redacted())
	return nil
}

func (p *WSPort) SendMovement(id ClientID, x, y float64) {
	p.enqueue(MsgMove, MoveMessage{ID: id, X: x, Y: y})
}

func (p *WSPort) SendHeartbeat(id ClientID) {
	p.enqueue(MsgHeartbeat, HeartbeatMessage{ID: id})
}

func (p *WSPort) enqueue(t string, payload any) {
	b, err := Encode(t, payload)
	if err != nil {
		p.log.Errorw("encode", "type", t, "err", err)
		return
	}
	p.out.enqueue(b)
}

func (p *WSPort) PollSnapshot() (Snapshot, bool) {
	return p.in.poll()
}

func (p *WSPort) Close() error {
	if p.ws == nil {
		return ErrSetupNotCalled
	}
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		_ = p.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		err = p.ws.Close()
	})
	return err
}

// writePump 独立协程，负责从发送队列写出到 WS
func (p *WSPort) writePump() {
	for {
		select {
		case <-p.done:
			return
		case msg := <-p.out.ch:
			p.ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := p.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				p.log.Warnw("websocket write failed", "err", err)
				return
			}
		}
	}
}

// readPump 读取权威端快照，交给 Tick 线程
func (p *WSPort) readPump() {
	p.ws.SetReadLimit(1 << 20) // 1MB
	p.ws.SetReadDeadline(time.Now().Add(wsPongWait))
	p.ws.SetPingHandler(func(data string) error {
		p.ws.SetReadDeadline(time.Now().Add(wsPongWait))
		return p.ws.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(wsWriteWait))
	})

	for {
		_, payload, err := p.ws.ReadMessage()
		if err != nil {
			select {
			case <-p.done:
			default:
				p.log.Warnw("websocket read stopped", "err", err)
			}
			return
		}
		p.ws.SetReadDeadline(time.Now().Add(wsPongWait))
		snap, ok, err := decodeStateJSON(payload)
		if err != nil {
			continue
		}
		if ok {
			p.in.push(snap)
		}
	}
}
