package client

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerWritesFileAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	l := NewLogger(LogOptions{File: path}).Sugar()
	l.Debugw("hidden", "k", 1)
	l.Infow("player joined roster", "player", 7)
	_ = l.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	s := string(b)
	if strings.Contains(s, "hidden") {
		t.Fatalf("debug line written at info level:\n%s", s)
	}
	if !strings.Contains(s, "INFO") || !strings.Contains(s, "player joined roster") || !strings.Contains(s, "alchemy") {
		t.Fatalf("log = %q", s)
	}
}

func TestNewLoggerWithoutOutputsIsNop(t *testing.T) {
	if l := NewLogger(LogOptions{}); l.Core().Enabled(0) {
		t.Fatalf("expected nop logger")
	}
}
