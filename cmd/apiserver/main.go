package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/WilliamNavarro06/TCC-Nexus/internal/api"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/auth"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/config"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/directory"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/friends"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/inbox"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/message"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/messaging"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/notification"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/obs"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/presence"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/ratelimit"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/store"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/user"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := obs.NewLogger(cfg.Env)

	// --- PostgreSQL ---
	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	if err := store.Migrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	cancel()
	defer rdb.Close()

	// --- NATS (optional push channel) ---
	var publisher notification.Publisher
	if cfg.NATSEnabled {
		natsConfig := messaging.DefaultNATSConfig()
		natsConfig.URL = cfg.NATSURL
		natsClient, err := messaging.NewNATSClient(natsConfig)
		if err != nil {
			log.Fatalf("failed to connect to NATS: %v", err)
		}
		defer natsClient.Close()
		publisher = natsClient
	}

	notificationStore := notification.NewStore(db)
	server := &api.Server{
		Directory:         directory.NewStore(db),
		Messages:          message.NewStore(db),
		Notifications:     notificationStore,
		Dispatcher:        notification.NewDispatcher(notificationStore, publisher, logger),
		Users:             user.NewStore(db),
		Friends:           friends.NewStore(db),
		Presence:          presence.NewStore(rdb, cfg.PresenceWindow),
		Auth:              auth.NewStore(rdb, cfg.SessionTTL),
		Limiter:           ratelimit.NewLimiter(rdb),
		Logger:            logger,
		RequireFriendship: cfg.RequireFriendship,
		Probes: []api.Pinger{
			api.PingerFunc(db.Ping),
			api.PingerFunc(func() error { return rdb.Ping(context.Background()).Err() }),
		},
	}
	server.Inbox = inbox.NewView(db, server.Presence)

	logger.Info("nexus messaging API starting",
		"env", cfg.Env,
		"http_addr", cfg.HTTPAddr,
		"redis_addr", cfg.RedisAddr,
		"nats_enabled", cfg.NATSEnabled,
		"presence_window", cfg.PresenceWindow,
		"require_friendship", cfg.RequireFriendship)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(cfg.Env),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
