package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"messenger/internal/config"
)

// NewPool construye y devuelve un pool de conexiones configurado.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// El API y el gateway comparten la misma base; limites conservadores.
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	username      VARCHAR(16) UNIQUE NOT NULL,
	name          VARCHAR(32) NOT NULL,
	password_hash VARCHAR(100) NOT NULL,
	email         VARCHAR(100) UNIQUE NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS public_room_messages (
	id         BIGSERIAL PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users (id),
	body       TEXT NOT NULL,
	room_name  VARCHAR(100) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS user_chats (
	id          BIGSERIAL PRIMARY KEY,
	sender_id   BIGINT NOT NULL REFERENCES users (id),
	receiver_id BIGINT NOT NULL REFERENCES users (id),
	body        TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS sessions (
	token      VARCHAR(36) PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS idx_public_room_messages_created_at
		ON public_room_messages (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_user_chats_pair
		ON user_chats (sender_id, receiver_id, created_at)`,
}

// EnsureSchema crea las tablas si no existen. Lo ejecuta el API en el
// arranque; el gateway asume que el esquema ya esta presente. Un statement
// por Exec: el protocolo extendido de pgx no acepta comandos multiples.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
