package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"messenger/internal/domain"
)

// SessionRepository es el registro de sesiones activas. Exists es un point
// lookup; se llama en cada request privilegiado y en cada conexion del gateway.
type SessionRepository interface {
	Create(ctx context.Context, session domain.Session) error
	Exists(ctx context.Context, userID int64, token string) (bool, error)
	Delete(ctx context.Context, token string) error
}

type PgSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSessionRepository(pool *pgxpool.Pool) *PgSessionRepository {
	return &PgSessionRepository{pool: pool}
}

func (r *PgSessionRepository) Create(ctx context.Context, session domain.Session) error {
	const query = `
		INSERT INTO sessions (token, user_id, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.pool.Exec(ctx, query,
		session.Token,
		session.UserID,
		session.CreatedAt,
	)
	return err
}

func (r *PgSessionRepository) Exists(ctx context.Context, userID int64, token string) (bool, error) {
	const query = `
		SELECT 1
		FROM sessions
		WHERE token = $1 AND user_id = $2
	`
	var one int
	err := r.pool.QueryRow(ctx, query, token, userID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete es idempotente: borrar un token inexistente no es error.
func (r *PgSessionRepository) Delete(ctx context.Context, token string) error {
	const query = `DELETE FROM sessions WHERE token = $1`
	_, err := r.pool.Exec(ctx, query, token)
	return err
}
