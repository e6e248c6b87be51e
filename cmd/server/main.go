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

	"wadash-backend/internal/api"
	"wadash-backend/internal/cache"
	"wadash-backend/internal/config"
	"wadash-backend/internal/handlers"
	"wadash-backend/internal/integrations/whatsapp"
	"wadash-backend/internal/services"
	"wadash-backend/internal/store/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.Println("Starting WhatsApp Dashboard Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Initialize Database Connection Pool
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	dbpool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Unable to create database connection pool: %v\n", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(dbCtx); err != nil {
		log.Fatalf("FATAL: Unable to ping database: %v\n", err)
	}
	log.Println("Database connection pool established and pinged successfully.")

	// 3. Initialize Dependencies (Store, Cache, Provider, Services, Handlers)
	pgStore := postgres.NewPostgresStore(dbpool)
	log.Println("Postgres store initialized.")

	var analyticsCache cache.AnalyticsCache
	if cfg.Cache.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.Addr})
		analyticsCache = cache.NewRedisCache(rdb, cfg.Cache.TTL)
		log.Println("Redis analytics cache initialized.")
	} else {
		log.Println("Redis analytics cache disabled (REDIS_ADDR not set).")
	}

	waClient := whatsapp.NewClient(cfg.WhatsApp)
	log.Println("WhatsApp client initialized.")

	messageService := services.NewMessageService(pgStore, waClient, cfg.WhatsApp.BusinessNumber, cfg.Dashboard.MessageFetchLimit)
	webhookService := services.NewWebhookService(pgStore, cfg.Webhook.VerifyToken)
	humanActivityService := services.NewHumanActivityService(pgStore)
	conversationService := services.NewConversationService(pgStore, analyticsCache, cfg.Dashboard.MessageFetchLimit)
	log.Println("Services initialized.")

	routerDeps := api.RouterDependencies{
		MessageHandlers:       handlers.NewMessageHandlers(messageService),
		WebhookHandlers:       handlers.NewWebhookHandlers(webhookService),
		HumanActivityHandlers: handlers.NewHumanActivityHandlers(humanActivityService),
		ConversationHandlers:  handlers.NewConversationHandlers(conversationService, pgStore),
		Config:                cfg,
	}
	router := api.NewRouter(routerDeps)
	log.Println("HTTP router configured.")

	// 4. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// Production hardening: Set timeouts to avoid Slowloris attacks
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
	}

	log.Println("Server shutdown complete.")
}
