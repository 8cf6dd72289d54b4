package client

import (
	"fmt"

	"github.com/segmentio/ksuid"
)

// NewSession 本次进程的会话标识，用于日志关联与 ws 握手
func NewSession() string {
	return ksuid.New().String()
}

// NewPort 按配置选择传输实现
func NewPort(cfg Config, id ClientID, session string, m *Metrics) (NetworkPort, error) {
	switch cfg.Transport {
	case "udp":
		return NewUDPPort(cfg.ServerAddr, m), nil
	case "ws":
		return NewWSPort(cfg.ServerAddr, id, session, m), nil
	case "redis":
		return NewRedisPort(cfg.ServerAddr, cfg.Channel, m), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoTransport, cfg.Transport)
}
