package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BlackJack-14/taskManager/internal/api"
	"github.com/BlackJack-14/taskManager/internal/config"
	"github.com/BlackJack-14/taskManager/internal/pkg/logger"
	"github.com/BlackJack-14/taskManager/internal/pkg/metrics"
	"github.com/BlackJack-14/taskManager/internal/store"

	"github.com/redis/go-redis/v9"
)

// main 是 API 服务的入口函数。
//
// 它负责：
// 1. 加载配置
// 2. 初始化日志
// 3. 构造内存 Store 与可选的 Redis 连接
// 4. 启动 HTTP 服务并处理优雅退出
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger := logger.NewDefault(cfg.App.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.App.EnablePresence {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			appLogger.Error("redis ping failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	st := store.NewStore()
	srv := api.NewServer(cfg, appLogger, st, rdb)
	srv.Tracker().StartRefresher(ctx, cfg.App.PresenceRefresh, metrics.ActiveUsers.Set)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTPAddr,
		Handler: srv.Router(),
	}

	go func() {
		appLogger.Info("api server listening", slog.String("addr", cfg.App.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server run failed", slog.String("error", err.Error()))
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutting down api server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http shutdown failed", slog.String("error", err.Error()))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			appLogger.Error("close redis failed", slog.String("error", err.Error()))
		}
	}
}
