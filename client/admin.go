package client

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// NewDebugRouter 调试接口：
// GET  /metrics       运行指标
// GET  /roster        最近一帧的本地与远端玩家
// GET  /admin/config  当前可热更新参数
// POST /admin/config  以 JSON 载荷更新部分字段（在下一帧由 Tick 线程生效）
// GET  /healthz
func NewDebugRouter(loop *TickLoop) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, loop.Metrics.Snapshot())
	}).Methods(http.MethodGet)
	r.HandleFunc("/roster", func(w http.ResponseWriter, _ *http.Request) {
		handleRoster(w, loop)
	}).Methods(http.MethodGet)
	r.HandleFunc("/admin/config", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, loop.Settings())
	}).Methods(http.MethodGet)
	r.HandleFunc("/admin/config", func(w http.ResponseWriter, req *http.Request) {
		handleConfigUpdate(w, req, loop)
	}).Methods(http.MethodPost)
	return r
}

type rosterEntry struct {
	ID            ClientID `json:"id"`
	X             float64  `json:"x"`
	Y             float64  `json:"y"`
	ResourceReady bool     `json:"resourceReady"`
}

func handleRoster(w http.ResponseWriter, loop *TickLoop) {
	v, ok := loop.LatestView()
	if !ok {
		http.Error(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}
	players := make([]rosterEntry, 0, len(v.Remotes))
	for _, p := range v.Remotes {
		players = append(players, rosterEntry{ID: p.ID, X: p.Position.X, Y: p.Position.Y, ResourceReady: p.ResourceReady})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"local":   rosterEntry{ID: v.LocalID, X: v.Local.X, Y: v.Local.Y, ResourceReady: true},
		"players": players,
	})
}

func handleConfigUpdate(w http.ResponseWriter, req *http.Request, loop *TickLoop) {
	var body struct {
		Speed            *float64 `json:"speed,omitempty"`
		MaxTicksPerFrame *int     `json:"maxTicksPerFrame,omitempty"`
		EvictAfter       *string  `json:"evictAfter,omitempty"` // time.ParseDuration 格式，如 "3s"
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if body.Speed != nil && *body.Speed <= 0 {
		http.Error(w, "speed must be > 0", http.StatusBadRequest)
		return
	}
	ev := ConfigEvent{Speed: body.Speed, MaxTicksPerFrame: body.MaxTicksPerFrame}
	if body.EvictAfter != nil {
		d, err := time.ParseDuration(*body.EvictAfter)
		if err != nil {
			http.Error(w, "invalid evictAfter", http.StatusBadRequest)
			return
		}
		ev.EvictAfter = &d
	}
	if !loop.Events().Push(ev) {
		http.Error(w, "event queue full", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
