package client

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 全局 SugaredLogger；InitLogger 之前为 Nop，保证库内调用不为 nil
var Log = zap.NewNop().Sugar()

// LogOptions 日志输出选项
type LogOptions struct {
	File   string // 滚动日志文件路径
	Debug  bool   // 输出 Debug 级别（帧率、丢包等高频信息）
	Stderr bool   // Warn 及以上同时写 stderr；终端前端占用屏幕时应关闭
}

var logEncoderConfig = zapcore.EncoderConfig{
	TimeKey:       "ts",
	LevelKey:      "level",
	NameKey:       "logger",
	CallerKey:     "caller",
	MessageKey:    "msg",
	StacktraceKey: "stack",
	LineEnding:    zapcore.DefaultLineEnding,
	EncodeLevel:   zapcore.CapitalLevelEncoder,
	EncodeTime:    zapcore.ISO8601TimeEncoder,
	EncodeCaller:  zapcore.ShortCallerEncoder,
}

// NewLogger 按选项构建 logger：文件（10MB 滚动，保留 3 份 7 天）+ 可选 stderr
func NewLogger(opts LogOptions) *zap.Logger {
	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}
	enc := zapcore.NewConsoleEncoder(logEncoderConfig)

	var cores []zapcore.Core
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(lj), level))
	}
	if opts.Stderr {
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zapcore.WarnLevel))
	}
	if len(cores) == 0 {
		return zap.NewNop()
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Named("alchemy")
}

// InitLogger 替换全局 Log
func InitLogger(opts LogOptions) {
	Log = NewLogger(opts).Sugar()
}

// SyncLogger 清理和同步缓冲
func SyncLogger() {
	_ = Log.Sync()
}
