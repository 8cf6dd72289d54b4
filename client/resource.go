package client

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"sync"
)

// ResourceLoader 为某个玩家初始化视觉资源；失败可重试，不应永久缓存失败
type ResourceLoader interface {
	Load(id ClientID) error
}

// LoaderFunc 适配普通函数
type LoaderFunc func(id ClientID) error

func (f LoaderFunc) Load(id ClientID) error { return f(id) }

// SpriteLoader 所有玩家共享同一张精灵图：首次成功解码后缓存，失败不缓存
type SpriteLoader struct {
	Path string

	mu     sync.Mutex
	sprite image.Image
}

func NewSpriteLoader(path string) *SpriteLoader {
	return &SpriteLoader{Path: path}
}

func (l *SpriteLoader) Load(id ClientID) error {
	_, err := l.Sprite()
	if err != nil {
		return fmt.Errorf("sprite for player %d: %w", id, err)
	}
	return nil
}

// Sprite 返回共享精灵图，未加载时尝试从磁盘解码
func (l *SpriteLoader) Sprite() (image.Image, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sprite != nil {
		return l.sprite, nil
	}
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", l.Path, err)
	}
	l.sprite = img
	return img, nil
}
