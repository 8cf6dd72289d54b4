package client

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 客户端配置：默认值 < .env < ALCHEMY_* 环境变量 < 命令行
type Config struct {
	Transport  string // udp | ws | redis
	ServerAddr string // udp: host:port；ws: ws://host/path；redis: host:port
	Channel    string // redis 频道前缀

	TickHz           int
	FrameHz          int
	MaxTicksPerFrame int
	Speed            float64
	EvictAfter       time.Duration
	HoldWindow       time.Duration

	SpritePath string
	LogFile    string
	DebugAddr  string // 为空则不启动调试 HTTP
	Headless   bool   // 不接管终端（无渲染、无键盘）
	Debug      bool   // Debug 级别日志
}

func DefaultConfig() Config {
	return Config{
		Transport:        "udp",
		ServerAddr:       "127.0.0.1:30000",
		Channel:          "alchemy",
		TickHz:           64,
		FrameHz:          60,
		MaxTicksPerFrame: 8,
		Speed:            0.10,
		EvictAfter:       5 * time.Second,
		HoldWindow:       150 * time.Millisecond,
		SpritePath:       "wizard.png",
		LogFile:          "client.log",
	}
}

// TickDuration 固定逻辑步长
func (c Config) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TickHz)
}

// MaxRateHz 逻辑步长与帧率的上限
const MaxRateHz = 10000

func (c Config) Validate() error {
	if c.TickHz <= 0 || c.TickHz > MaxRateHz {
		return fmt.Errorf("tick rate must be in 1..%d, got %d", MaxRateHz, c.TickHz)
	}
	if c.FrameHz <= 0 || c.FrameHz > MaxRateHz {
		return fmt.Errorf("frame rate must be in 1..%d, got %d", MaxRateHz, c.FrameHz)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("speed must be > 0, got %v", c.Speed)
	}
	// 终端没有抬起事件，按住窗口为 0 会让按键一直保持
	if !c.Headless && c.HoldWindow <= 0 {
		return fmt.Errorf("hold window must be > 0 with the terminal frontend, got %v", c.HoldWindow)
	}
	switch c.Transport {
	case "udp", "ws", "redis":
	default:
		return fmt.Errorf("%w: %q", ErrNoTransport, c.Transport)
	}
	return nil
}

// LoadConfig 依次叠加 .env、环境变量与命令行参数
// envFile 不存在时忽略
func LoadConfig(args []string, envFile string) (Config, error) {
	cfg := DefaultConfig()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	fs := flag.NewFlagSet("alchemy", flag.ContinueOnError)
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "network transport: udp, ws or redis")
	fs.StringVar(&cfg.ServerAddr, "server", cfg.ServerAddr, "authority address")
	fs.StringVar(&cfg.Channel, "channel", cfg.Channel, "redis channel prefix")
	fs.IntVar(&cfg.TickHz, "hz", cfg.TickHz, "fixed logical tick rate")
	fs.IntVar(&cfg.FrameHz, "fps", cfg.FrameHz, "frame rate")
	fs.IntVar(&cfg.MaxTicksPerFrame, "max-ticks", cfg.MaxTicksPerFrame, "max ticks per frame, 0 = unlimited")
	fs.Float64Var(&cfg.Speed, "speed", cfg.Speed, "movement per tick")
	fs.DurationVar(&cfg.EvictAfter, "evict-after", cfg.EvictAfter, "drop remote players silent for this long, 0 = never")
	fs.DurationVar(&cfg.HoldWindow, "hold", cfg.HoldWindow, "how long a key press counts as held")
	fs.StringVar(&cfg.SpritePath, "sprite", cfg.SpritePath, "player sprite image")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file path")
	fs.StringVar(&cfg.DebugAddr, "debug-addr", cfg.DebugAddr, "debug HTTP listen address, e.g. :6060")
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "run without terminal input and rendering")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "debug level logging")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("ALCHEMY_TRANSPORT", &c.Transport)
	str("ALCHEMY_SERVER", &c.ServerAddr)
	str("ALCHEMY_CHANNEL", &c.Channel)
	str("ALCHEMY_SPRITE", &c.SpritePath)
	str("ALCHEMY_LOG", &c.LogFile)
	str("ALCHEMY_DEBUG_ADDR", &c.DebugAddr)

	for _, e := range []struct {
		key string
		dst *int
	}{
		{"ALCHEMY_HZ", &c.TickHz},
		{"ALCHEMY_FPS", &c.FrameHz},
		{"ALCHEMY_MAX_TICKS", &c.MaxTicksPerFrame},
	} {
		if v, ok := lookup(e.key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = n
		}
	}
	if v, ok := lookup("ALCHEMY_SPEED"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ALCHEMY_SPEED: %w", err)
		}
		c.Speed = f
	}
	for _, e := range []struct {
		key string
		dst *time.Duration
	}{
		{"ALCHEMY_EVICT_AFTER", &c.EvictAfter},
		{"ALCHEMY_HOLD", &c.HoldWindow},
	} {
		if v, ok := lookup(e.key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = d
		}
	}
	for _, e := range []struct {
		key string
		dst *bool
	}{
		{"ALCHEMY_HEADLESS", &c.Headless},
		{"ALCHEMY_DEBUG", &c.Debug},
	} {
		if v, ok := lookup(e.key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = b
		}
	}
	return nil
}
