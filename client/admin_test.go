package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDebugRosterReflectsLastFrame(t *testing.T) {
	port := &fakePort{snaps: []Snapshot{{7: {1, 2}}}}
	loop := NewTickLoop(testConfig(), 1, port, LoaderFunc(func(ClientID) error { return nil }), WithPublishedView())
	r := NewDebugRouter(loop)

	if rec := serve(t, r, http.MethodGet, "/roster", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("roster before first frame: %d", rec.Code)
	}

	loop.Frame(time.Unix(0, 0))
	rec := serve(t, r, http.MethodGet, "/roster", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("roster status = %d", rec.Code)
	}
	var body struct {
		Local   rosterEntry   `json:"local"`
		Players []rosterEntry `json:"players"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Local.ID != 1 || len(body.Players) != 1 {
		t.Fatalf("body = %+v", body)
	}
	if p := body.Players[0]; p.ID != 7 || p.X != 1 || p.Y != 2 || !p.ResourceReady {
		t.Fatalf("player = %+v", p)
	}
}

func TestDebugConfigUpdateGoesThroughEventQueue(t *testing.T) {
	loop := NewTickLoop(testConfig(), 1, &fakePort{}, nil)
	r := NewDebugRouter(loop)

	rec := serve(t, r, http.MethodPost, "/admin/config", `{"speed":0.5,"maxTicksPerFrame":3,"evictAfter":"2s"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	if loop.Settings().Speed == 0.5 {
		t.Fatalf("applied outside the tick thread")
	}

	loop.Frame(time.Unix(0, 0))
	rec = serve(t, r, http.MethodGet, "/admin/config", "")
	var s Settings
	if err := json.NewDecoder(rec.Body).Decode(&s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Speed != 0.5 || s.MaxTicksPerFrame != 3 || s.EvictAfter != 2*time.Second {
		t.Fatalf("settings = %+v", s)
	}
}

func TestDebugConfigRejectsBadInput(t *testing.T) {
	r := NewDebugRouter(NewTickLoop(testConfig(), 1, &fakePort{}, nil))
	for _, body := range []string{`{`, `{"speed":0}`, `{"evictAfter":"soon"}`} {
		if rec := serve(t, r, http.MethodPost, "/admin/config", body); rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d", body, rec.Code)
		}
	}
}

func TestDebugMetricsAndHealth(t *testing.T) {
	loop := NewTickLoop(testConfig(), 1, &fakePort{}, nil)
	loop.Frame(time.Unix(0, 0))
	loop.Frame(time.Unix(1, 0))
	r := NewDebugRouter(loop)

	rec := serve(t, r, http.MethodGet, "/metrics", "")
	var m map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m["frames"] != float64(2) || m["heartbeats"] != float64(64) {
		t.Fatalf("metrics = %v", m)
	}
	if rec := serve(t, r, http.MethodGet, "/healthz", ""); rec.Body.String() != "ok" {
		t.Fatalf("healthz = %q", rec.Body.String())
	}
	if rec := serve(t, r, http.MethodDelete, "/metrics", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE /metrics = %d", rec.Code)
	}
}
