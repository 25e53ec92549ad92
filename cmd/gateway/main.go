package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"messenger/internal/bus"
	"messenger/internal/config"
	"messenger/internal/db"
	"messenger/internal/gateway"
	"messenger/internal/repository"
	"messenger/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
	if err := redisClient.Ping(ctxPing).Err(); err != nil {
		logger.Fatal("redis ping failed", zap.Error(err))
	}
	cancel()

	gate := service.NewSessionGate(repository.NewPgSessionRepository(pool))
	gw := gateway.New(logger, gate, bus.NewRedis(redisClient), time.Duration(cfg.AuthTimeoutSeconds)*time.Second)

	server := &http.Server{
		Addr:              ":" + cfg.GatewayPort,
		Handler:           gw.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down gateway")
		// Cerrar el cliente de Redis termina todas las suscripciones; cada
		// loop de conexion sale y cierra su socket.
		_ = redisClient.Close()
		_ = server.Close()
	}()

	logger.Info("starting notification gateway", zap.String("port", cfg.GatewayPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
