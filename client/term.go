package client

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// TermConfig 终端渲染参数（由编排方传入，不使用全局状态）
type TermConfig struct {
	Width, Height int     // 画布字符数
	Scale         float64 // 世界单位 → 字符
	ClearEvery    int     // 每隔多少帧整屏清除一次，降低闪烁
}

func DefaultTermConfig() TermConfig {
	return TermConfig{Width: 60, Height: 20, Scale: 5, ClearEvery: 30}
}

var playerColors = []string{
	"\033[38;5;196m",
	"\033[38;5;39m",
	"\033[38;5;226m",
	"\033[38;5;46m",
	"\033[38;5;201m",
	"\033[38;5;214m",
	"\033[38;5;51m",
}

const resetColor = "\033[0m"

// Terminal 终端前端：raw 模式读取 WASD，按帧绘制玩家
type Terminal struct {
	cfg    TermConfig
	in     *os.File
	out    *bufio.Writer
	events *EventQueue

	oldState *term.State
	frame    int
}

func NewTerminal(cfg TermConfig, in *os.File, out io.Writer, events *EventQueue) *Terminal {
	return &Terminal{cfg: cfg, in: in, out: bufio.NewWriter(out), events: events}
}

// Start 切换到 raw 模式并启动读键协程；stdin 不是终端时仍读取但不切换模式
func (t *Terminal) Start() error {
	fd := int(t.in.Fd())
	if term.IsTerminal(fd) {
		st, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("terminal raw mode: %w", err)
		}
		t.oldState = st
	}
	go t.readKeys(t.in)
	return nil
}

// Restore 恢复终端原始模式
func (t *Terminal) Restore() {
	if t.oldState != nil {
		_ = term.Restore(int(t.in.Fd()), t.oldState)
		t.oldState = nil
	}
	fmt.Fprint(t.out, resetColor+"\r\n")
	t.out.Flush()
}

func keyIntent(b byte) (Intent, bool) {
	switch b {
	case 'w', 'W':
		return IntentUp, true
	case 's', 'S':
		return IntentDown, true
	case 'a', 'A':
		return IntentLeft, true
	case 'd', 'D':
		return IntentRight, true
	}
	return IntentNone, false
}

func (t *Terminal) readKeys(r io.Reader) {
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err != nil {
			return
		}
		if b == 'q' || b == 'Q' || b == 3 { // Ctrl+C 在 raw 模式下不产生信号
			t.events.Push(QuitEvent{})
			return
		}
		if in, ok := keyIntent(b); ok {
			t.events.Push(KeyEvent{Intent: in, At: time.Now()})
		}
	}
}

// Render 绘制一帧；未就绪的远端玩家不上画布，只在列表中标注
func (t *Terminal) Render(v View) {
	defer t.out.Flush()
	if t.cfg.ClearEvery > 0 && t.frame%t.cfg.ClearEvery == 0 {
		fmt.Fprint(t.out, "\033[2J")
	}
	t.frame++
	fmt.Fprint(t.out, "\033[H")
	fmt.Fprintf(t.out, "=== alchemy === id %d | FPS %.0f | players %d\r\n", v.LocalID, v.FPS, len(v.Remotes)+1)

	canvas := make([][]string, t.cfg.Height)
	for y := range canvas {
		canvas[y] = make([]string, t.cfg.Width)
		for x := range canvas[y] {
			canvas[y][x] = " "
		}
	}
	// 以本地玩家为视图中心
	plot := func(p Position, glyph string) {
		x := int((p.X-v.Local.X)*t.cfg.Scale) + t.cfg.Width/2
		y := t.cfg.Height/2 - int((p.Y-v.Local.Y)*t.cfg.Scale)
		if x < 0 || x >= t.cfg.Width || y < 0 || y >= t.cfg.Height {
			return
		}
		canvas[y][x] = glyph
	}
	for _, r := range v.Remotes {
		if !r.ResourceReady {
			continue
		}
		plot(r.Position, colorFor(r.ID)+"●"+resetColor)
	}
	plot(v.Local, "\033[1m⬤"+resetColor)

	border := "+" + strings.Repeat("-", t.cfg.Width) + "+\r\n"
	fmt.Fprint(t.out, border)
	for _, row := range canvas {
		fmt.Fprint(t.out, "|"+strings.Join(row, "")+"|\r\n")
	}
	fmt.Fprint(t.out, border)

	fmt.Fprintf(t.out, "* %d: X=%.2f Y=%.2f\033[K\r\n", v.LocalID, v.Local.X, v.Local.Y)
	for _, r := range v.Remotes {
		status := ""
		if !r.ResourceReady {
			status = " (loading)"
		}
		fmt.Fprintf(t.out, "%s  %d%s: X=%.2f Y=%.2f%s\033[K\r\n", colorFor(r.ID), r.ID, resetColor, r.Position.X, r.Position.Y, status)
	}
	fmt.Fprint(t.out, "\033[JW/A/S/D move, Q quit\r\n")
}

func colorFor(id ClientID) string {
	i := int(id) % len(playerColors)
	if i < 0 {
		i = -i
	}
	return playerColors[i]
}
