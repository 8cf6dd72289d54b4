package client

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestRedisPortRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	authority := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer authority.Close()

	p := NewRedisPort(mr.Addr(), "test", &Metrics{})
	inputs := authority.Subscribe(ctx, p.InputChannel())
	defer inputs.Close()
	if _, err := inputs.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := p.Setup(ctx); err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer p.Close()

	p.SendMovement(3, 1, 2)
	select {
	case msg := <-inputs.Channel():
		env, err := DecodeEnvelope([]byte(msg.Payload))
		if err != nil || env.T != MsgMove {
			t.Fatalf("envelope = %+v err=%v", env, err)
		}
		mv, err := DecodePayload[MoveMessage](env)
		if err != nil || mv != (MoveMessage{ID: 3, X: 1, Y: 2}) {
			t.Fatalf("move = %+v err=%v", mv, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for move")
	}

	st, _ := Encode(MsgState, NewStateMessage(Snapshot{8: {5, 6}}))
	if err := authority.Publish(ctx, p.StateChannel(), st).Err(); err != nil {
		t.Fatalf("publish: %v", err)
	}
	snap := waitSnapshot(t, p)
	if snap[8] != (Position{5, 6}) {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestRedisPortSetupFailsWithoutServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := NewRedisPort("127.0.0.1:1", "test", nil).Setup(ctx); err == nil {
		t.Fatalf("expected setup error")
	}
}
