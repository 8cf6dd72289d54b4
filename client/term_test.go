package client

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestTerminalKeysBecomeEvents(t *testing.T) {
	q := NewEventQueue(8)
	term := NewTerminal(DefaultTermConfig(), os.Stdin, &bytes.Buffer{}, q)
	term.readKeys(strings.NewReader("wDx q"))

	var got []Event
	q.Drain(func(e Event) { got = append(got, e) })
	if len(got) != 3 {
		t.Fatalf("events = %+v", got)
	}
	if k, ok := got[0].(KeyEvent); !ok || k.Intent != IntentUp {
		t.Fatalf("first = %+v", got[0])
	}
	if k, ok := got[1].(KeyEvent); !ok || k.Intent != IntentRight {
		t.Fatalf("second = %+v", got[1])
	}
	if _, ok := got[2].(QuitEvent); !ok {
		t.Fatalf("third = %+v", got[2])
	}
}

func TestTerminalRenderSkipsUnreadyPlayers(t *testing.T) {
	out := &bytes.Buffer{}
	cfg := TermConfig{Width: 20, Height: 10, Scale: 1}
	term := NewTerminal(cfg, os.Stdin, out, NewEventQueue(1))
	term.Render(View{
		LocalID: 1,
		Remotes: []RemoteView{
			{ID: 2, Position: Position{X: 2}, ResourceReady: true},
			{ID: 3, Position: Position{X: -2}},
		},
	})
	s := out.String()
	if strings.Count(s, "●") != 1 {
		t.Fatalf("expected only the ready remote on the canvas:\n%s", s)
	}
	if !strings.Contains(s, "(loading)") || !strings.Contains(s, "* 1:") {
		t.Fatalf("hud missing entries:\n%s", s)
	}
}
