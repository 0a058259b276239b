package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/yeremiapane/restaurant-ordering/config"
	"github.com/yeremiapane/restaurant-ordering/database"
	"github.com/yeremiapane/restaurant-ordering/events"
	"github.com/yeremiapane/restaurant-ordering/kds"
	"github.com/yeremiapane/restaurant-ordering/mq"
	"github.com/yeremiapane/restaurant-ordering/router"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Info(".env file not found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	utils.SetDevMode(cfg.IsDevelopment())
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
	}
	if cfg.SeedAdminEmail != "" {
		if err := database.SeedAdmin(db, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			utils.ErrorLogger.Fatalf("Failed to seed admin: %v", err)
		}
	}

	hub := kds.NewHub()
	publishers := events.Multi{hub}
	if cfg.AMQPURL != "" {
		broker, err := mq.Dial(cfg.AMQPURL)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to connect to broker: %v", err)
		}
		defer broker.Close()
		publishers = append(publishers, broker)
	}

	var sessions services.SessionStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if err := client.Ping(context.Background()).Err(); err != nil {
			utils.ErrorLogger.Fatalf("Failed to connect to redis: %v", err)
		}
		sessions = services.NewRedisSessionStore(client)
	} else {
		utils.ErrorLogger.Warn("REDIS_ADDR not set, sessions are kept in memory")
		sessions = services.NewMemorySessionStore()
	}

	r := router.SetupRouter(router.Deps{
		DB:                 db,
		Tokens:             utils.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL),
		Sessions:           sessions,
		Hub:                hub,
		Publisher:          publishers,
		CookieSecure:       cfg.CookieSecure,
		CORSOrigin:         cfg.CORSOrigin,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.InfoLogger.Infof("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Shutdown error: %v", err)
	}
}
