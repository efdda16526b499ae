package api

import (
	"context"
	"fmt"

	"flex-design-backend/internal/config"
	"flex-design-backend/internal/database"
	"flex-design-backend/internal/env"
	internaljwt "flex-design-backend/internal/jwt"
	"flex-design-backend/internal/logger"
	"flex-design-backend/internal/policy"
	"flex-design-backend/internal/realtime"
	announcementsvc "flex-design-backend/internal/service/announcement"
	authsvc "flex-design-backend/internal/service/auth"
	bannersvc "flex-design-backend/internal/service/banner"
	botsvc "flex-design-backend/internal/service/bot"
	contactsvc "flex-design-backend/internal/service/contact"
	notificationsvc "flex-design-backend/internal/service/notification"
	requestsvc "flex-design-backend/internal/service/request"
	supportsvc "flex-design-backend/internal/service/support"
	systemsvc "flex-design-backend/internal/service/system"
	visitorsvc "flex-design-backend/internal/service/visitor"
	"flex-design-backend/internal/storage"
)

// Backend holds the services every server binary routes to. It is built
// once in main and handed to the registrars.
type Backend struct {
	Site   *config.Site
	Policy *policy.AdminPolicy
	Tokens *internaljwt.Issuer
	Bus    realtime.Bus
	Log    *logger.Logger

	Auth          *authsvc.Service
	Bot           *botsvc.Service
	Support       *supportsvc.Service
	Requests      *requestsvc.Service
	Contact       *contactsvc.Service
	Banners       *bannersvc.Service
	Notifications *notificationsvc.Service
	Announcements *announcementsvc.Service
	Visitors      *visitorsvc.Service
	System        *systemsvc.Service

	closers []func() error
}

// BuildBackend connects DynamoDB, Redis and object storage from the
// environment and wires the services on top. Without AUTH_REDIS_URL refresh
// tokens live in memory; without REALTIME_REDIS_URL change signals stay in
// this process; without GCS_BUCKET banner uploads are disabled.
func BuildBackend(ctx context.Context, site *config.Site, log *logger.Logger) (*Backend, error) {
	if log == nil {
		log = logger.Nop()
	}
	b := &Backend{Site: site, Log: log}

	db, err := database.NewDatabase(ctx, database.ConfigFromEnv())
	if err != nil {
		return nil, err
	}

	var refresh internaljwt.RefreshStore
	if addr := env.Get(env.AuthRedisURL); addr != "" {
		store, err := internaljwt.NewRedisRefreshStore(ctx, addr, env.Get(env.AuthRedisPass))
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, store.Close)
		refresh = store
	} else {
		log.Warn("AUTH_REDIS_URL not set, refresh tokens are kept in memory")
		refresh = internaljwt.NewMemoryRefreshStore()
	}

	b.Tokens, err = internaljwt.NewIssuer(env.Get(env.UserSecretKey), env.Get(env.AdminSecretKey), refresh)
	if err != nil {
		b.Close()
		return nil, err
	}

	if addr := env.Get(env.RealtimeRedisURL); addr != "" {
		bus, err := realtime.NewRedisBus(ctx, addr, env.Get(env.RealtimeRedisPass), log)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Bus = bus
	} else {
		log.Warn("REALTIME_REDIS_URL not set, change signals stay in this process")
		b.Bus = realtime.NewMemoryBus()
	}
	b.closers = append(b.closers, b.Bus.Close)

	var blobs storage.BlobStore
	if cfg := storage.ConfigFromEnv(); cfg.Enabled() {
		store, err := storage.NewGCSStore(ctx, cfg, log)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("init object storage: %w", err)
		}
		b.closers = append(b.closers, store.Close)
		blobs = store
	} else {
		log.Warn("GCS_BUCKET not set, banner uploads are disabled")
	}

	b.wire(db, blobs)
	return b, nil
}

func (b *Backend) wire(db *database.Database, blobs storage.BlobStore) {
	b.Policy = policy.NewAdminPolicy(b.Site.Admins.SuperAdmin, b.Site.Admins.Emails)

	b.Auth = authsvc.New(db, b.Tokens, b.Policy, b.Site, b.Log)
	b.Auth.SetDefaultAdminPassword(env.Get(env.DefaultAdminPassword))

	b.Support = supportsvc.New(db, b.Bus, b.Policy, b.Site.Support, b.Log)
	b.Bot = botsvc.New(b.Site, b.Support)
	b.Notifications = notificationsvc.New(db, b.Bus, b.Log)
	b.Requests = requestsvc.New(db, b.Notifications, b.Site, b.Log)
	b.Contact = contactsvc.New(db, b.Log)
	b.Banners = bannersvc.New(db, blobs, b.Log)
	b.Announcements = announcementsvc.New(db, b.Bus, b.Log)
	b.Visitors = visitorsvc.New(db, b.Log)
	b.System = systemsvc.New(db, b.Bus, b.Log)
}

// Close releases connections in reverse order of creation.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			b.Log.Warn("Failed to close backend resource", "error", err)
		}
	}
	b.closers = nil
}
