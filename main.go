package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alchemy/client"
)

// alchemy 客户端入口：建立网络端口，启动终端前端与固定步长主循环
func main() {
	cfg, err := client.LoadConfig(os.Args[1:], ".env")
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	// 使用第三方 zap 日志库写入日志文件（带滚动）
	client.InitLogger(client.LogOptions{File: cfg.LogFile, Debug: cfg.Debug, Stderr: cfg.Headless})
	defer client.SyncLogger()

	session := client.NewSession()
	id := client.NewClientID(nil)
	log := client.Log.With("session", session)
	metrics := &client.Metrics{}

	port, err := client.NewPort(cfg, id, session, metrics)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// 优雅退出（Ctrl+C / SIGTERM）
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	setupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = port.Setup(setupCtx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot reach authority via %s at %s: %v\n", cfg.Transport, cfg.ServerAddr, err)
		log.Fatalf("network setup: %v", err)
	}
	defer port.Close()

	loader := client.NewSpriteLoader(cfg.SpritePath)
	if err := loader.Load(id); err != nil {
		log.Warnf("Failed to load texture '%s': %v", cfg.SpritePath, err)
	}

	loop := client.NewTickLoop(cfg, id, port, loader,
		client.WithLogger(log),
		client.WithMetrics(metrics),
		client.WithPublishedView(),
	)

	if cfg.DebugAddr != "" {
		srv := &http.Server{Addr: cfg.DebugAddr, Handler: client.NewDebugRouter(loop)}
		go func() {
			log.Infof("debug http listening on %s", cfg.DebugAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("debug http: %v", err)
			}
		}()
		defer srv.Close()
	}

	var render func(client.View)
	if !cfg.Headless {
		tui := client.NewTerminal(client.DefaultTermConfig(), os.Stdin, os.Stdout, loop.Events())
		if err := tui.Start(); err != nil {
			log.Fatalf("terminal: %v", err)
		}
		defer tui.Restore()
		render = tui.Render
	}

	ticker := time.NewTicker(time.Second / time.Duration(cfg.FrameHz))
	defer ticker.Stop()

	log.Infof("client %d started: transport=%s server=%s tick=%s", id, cfg.Transport, cfg.ServerAddr, cfg.TickDuration())
	if err := loop.Run(ctx, ticker.C, render); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("tick loop: %v", err)
	}
	log.Info("Shutting down...")
}
