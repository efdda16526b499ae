package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"flex-design-backend/internal/api"
	"flex-design-backend/internal/api/router"
	"flex-design-backend/internal/config"
	"flex-design-backend/internal/env"
	"flex-design-backend/internal/logger"
	"flex-design-backend/internal/queue"
	"flex-design-backend/internal/websocket"
)

const prefix = "/api/ws/v1"

func main() {
	if err := env.Require(env.ServerRequired...); err != nil {
		log.Fatal(err)
	}
	appLog, err := logger.New(env.Get(env.LogMode))
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer appLog.Sync()

	site, err := config.Load(env.Get(env.SiteConfigPath))
	if err != nil {
		appLog.Fatal("Site config load failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := api.BuildBackend(ctx, site, appLog)
	if err != nil {
		appLog.Fatal("Backend init failed", "error", err)
	}
	defer backend.Close()

	queueManager := queue.NewRequestQueueManager(env.GetInt(env.QueueSize, 10), env.GetInt(env.QueueWorkers, 10), appLog)

	hub := websocket.NewHub(appLog)
	go hub.Run(ctx)
	handler := websocket.NewHandler(hub, env.GetList(env.CORSAllowedOrigins, nil), appLog)

	server := api.NewAPIServer(
		env.GetOrDefault(env.WSListenAddr, ":83"),
		queueManager,
		backend,
		router.UtilsRoutes(prefix),
		router.WebsocketRoutes(prefix, handler),
	)

	if err := server.Run(ctx); err != nil {
		appLog.Error("Websocket server stopped", "error", err)
	}
}
