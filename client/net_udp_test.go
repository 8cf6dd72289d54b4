package client

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"
)

func waitSnapshot(t *testing.T, p NetworkPort) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s, ok := p.PollSnapshot(); ok {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for snapshot")
	return nil
}

func TestUDPPortRoundTrip(t *testing.T) {
	srv, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer srv.Close()

	p := NewUDPPort(srv.LocalAddr().String(), &Metrics{})
	if err := p.Setup(context.Background()); err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer p.Close()

	p.SendMovement(5, 1.5, -2)
	p.SendHeartbeat(5)

	buf := make([]byte, 1500)
	_ = srv.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, caddr, err := srv.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("read move: %v", err)
	}
	mv, err := ReadMove(buf[:n])
	if err != nil || mv != (MoveMessage{ID: 5, X: 1.5, Y: -2}) {
		t.Fatalf("move = %+v err=%v", mv, err)
	}
	n, _, err = srv.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("read heartbeat: %v", err)
	}
	if hb, err := ReadHeartbeat(buf[:n]); err != nil || hb.ID != 5 {
		t.Fatalf("heartbeat = %+v err=%v", hb, err)
	}

	state := &bytes.Buffer{}
	WriteState(state, []PlayerState{{ID: 9, X: 0.5, Y: 0.25}})
	if _, err := srv.WriteToUDP(state.Bytes(), caddr); err != nil {
		t.Fatalf("write state: %v", err)
	}
	snap := waitSnapshot(t, p)
	if snap[9] != (Position{0.5, 0.25}) {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestUDPPortSetupFailsOnBadAddress(t *testing.T) {
	p := NewUDPPort("127.0.0.1:notaport", nil)
	if err := p.Setup(context.Background()); err == nil {
		t.Fatalf("expected setup error")
	}
	if err := p.Close(); err != ErrSetupNotCalled {
		t.Fatalf("close err = %v", err)
	}
}
