package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
)

// UDPPort 基于已连接 UDP 套接字的 NetworkPort，不做重传与确认
type UDPPort struct {
	addr string
	conn *net.UDPConn

	in  *snapshotInbox
	out *outbox

	done      chan struct{}
	closeOnce sync.Once
	log       *zap.SugaredLogger
}

func NewUDPPort(addr string, m *Metrics) *UDPPort {
	return &UDPPort{
		addr: addr,
		in:   newSnapshotInbox(m),
		out:  newOutbox(m),
		done: make(chan struct{}),
		log:  Log.With("transport", "udp"),
	}
}

func (p *UDPPort) Setup(ctx context.Context) error {
	var d net.Dialer
	c, err := d.DialContext(ctx, "udp", p.addr)
	if err != nil {
		return fmt.Errorf("udp setup %s: %w", p.addr, err)
	}
	p.conn = c.(*net.UDPConn)
	go p.readLoop()
	go p.writeLoop()
	p.log.Infof("udp associated with %s (local %s)", p.addr, p.conn.LocalAddr())
	return nil
}

func (p *UDPPort) SendMovement(id ClientID, x, y float64) {
	buf := &bytes.Buffer{}
	WriteMove(buf, id, x, y)
	p.out.enqueue(buf.Bytes())
}

func (p *UDPPort) SendHeartbeat(id ClientID) {
	buf := &bytes.Buffer{}
	WriteHeartbeat(buf, id)
	p.out.enqueue(buf.Bytes())
}

func (p *UDPPort) PollSnapshot() (Snapshot, bool) {
	return p.in.poll()
}

// LocalAddr 本地套接字地址（Setup 之后有效）
func (p *UDPPort) LocalAddr() net.Addr {
	if p.conn == nil {
		return nil
	}
	return p.conn.LocalAddr()
}

func (p *UDPPort) Close() error {
	if p.conn == nil {
		return ErrSetupNotCalled
	}
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		err = p.conn.Close()
	})
	return err
}

// readLoop 独立协程：解析 state 数据报后交给 Tick 线程
func (p *UDPPort) readLoop() {
	buf := make([]byte, 64*1024)
	for {
		n, err := p.conn.Read(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			// 对端未监听时会收到 ICMP 拒绝，属于瞬时缺席
			p.log.Debugw("udp read", "err", err)
			continue
		}
		snap, ok, err := ReadState(buf[:n])
		if err != nil {
			p.log.Debugw("bad datagram", "len", n, "err", err)
			continue
		}
		if ok {
			p.in.push(snap)
		}
	}
}

func (p *UDPPort) writeLoop() {
	for {
		select {
		case <-p.done:
			return
		case b := <-p.out.ch:
			if _, err := p.conn.Write(b); err != nil && !errors.Is(err, net.ErrClosed) {
				p.log.Debugw("udp write", "err", err)
			}
		}
	}
}
