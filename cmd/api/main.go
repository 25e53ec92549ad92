package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"messenger/internal/bus"
	"messenger/internal/config"
	"messenger/internal/db"
	apihttp "messenger/internal/http"
	"messenger/internal/repository"
	"messenger/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
	if err := redisClient.Ping(ctxPing).Err(); err != nil {
		// El bus es best-effort: sin Redis el API sigue sirviendo escrituras
		// durables y lecturas; solo se pierde la entrega en vivo.
		logger.Warn("redis ping failed", zap.Error(err))
	}
	cancel()

	userRepo := repository.NewPgUserRepository(pool)
	sessionRepo := repository.NewPgSessionRepository(pool)
	publicRepo := repository.NewPgPublicMessageRepository(pool)
	privateRepo := repository.NewPgPrivateMessageRepository(pool)

	gate := service.NewSessionGate(sessionRepo)
	limiter := service.NewRedisLoginRateLimiter(
		redisClient,
		time.Duration(cfg.LoginWindowSeconds)*time.Second,
		cfg.LoginMaxAttempts,
	)
	userSvc := service.NewUserService(logger, userRepo, gate, limiter)
	messengerSvc := service.NewMessengerService(logger, publicRepo, privateRepo, bus.NewRedis(redisClient))

	userHandler := apihttp.NewUserHandler(logger, userRepo, userSvc, gate)
	msgHandler := apihttp.NewMessageHandler(logger, messengerSvc)
	router := apihttp.NewRouter(logger, gate, userHandler, msgHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting messenger api", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
