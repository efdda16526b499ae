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
)

const (
	clientPrefix = "/api/client/v1"
	adminPrefix  = "/api/admin/v1"
)

// The client server hosts both the signed-in portal and the admin dashboard.
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

	server := api.NewAPIServer(
		env.GetOrDefault(env.ClientListenAddr, ":81"),
		queueManager,
		backend,
		router.UtilsRoutes(clientPrefix),
		router.ProfileRoutes(clientPrefix),
		router.RequestPortalRoutes(clientPrefix),
		router.NotificationPortalRoutes(clientPrefix),
		router.SupportPortalRoutes(clientPrefix),

		router.UserAdminRoutes(adminPrefix),
		router.RequestAdminRoutes(adminPrefix),
		router.ContentAdminRoutes(adminPrefix),
		router.AnnouncementAdminRoutes(adminPrefix),
		router.SupportAdminRoutes(adminPrefix),
		router.SystemRoutes(adminPrefix),
	)

	if err := server.Run(ctx); err != nil {
		appLog.Error("Client server stopped", "error", err)
	}
}
