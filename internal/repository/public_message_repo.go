package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"messenger/internal/domain"
)

// PublicMessageRepository es el ledger de la sala publica: append-only,
// ordenado por timestamp de commit.
type PublicMessageRepository interface {
	Append(ctx context.Context, userID int64, body, roomName string) (domain.PublicMessage, error)
	ReadAfter(ctx context.Context, after time.Time, limit, offset int) ([]domain.PublicMessageView, error)
}

type PgPublicMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgPublicMessageRepository(pool *pgxpool.Pool) *PgPublicMessageRepository {
	return &PgPublicMessageRepository{pool: pool}
}

// Append persiste el mensaje y devuelve la fila confirmada. El id lo asigna
// la secuencia de la tabla; el timestamp es reloj del servidor en UTC,
// truncado a segundos para que coincida con la granularidad del cursor.
func (r *PgPublicMessageRepository) Append(ctx context.Context, userID int64, body, roomName string) (domain.PublicMessage, error) {
	const query = `
		INSERT INTO public_room_messages (user_id, body, room_name, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	msg := domain.PublicMessage{
		UserID:    userID,
		Body:      body,
		RoomName:  roomName,
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}

	err := r.pool.QueryRow(ctx, query,
		msg.UserID,
		msg.Body,
		msg.RoomName,
		msg.Timestamp,
	).Scan(&msg.ID)
	if err != nil {
		return domain.PublicMessage{}, err
	}
	return msg, nil
}

// ReadAfter devuelve mensajes con timestamp estrictamente mayor a `after`,
// en orden ascendente, unidos con el nombre del autor. Lista vacia no es error.
func (r *PgPublicMessageRepository) ReadAfter(ctx context.Context, after time.Time, limit, offset int) ([]domain.PublicMessageView, error) {
	const query = `
		SELECT m.user_id, m.body, m.created_at, u.name
		FROM public_room_messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.created_at > $1
		ORDER BY m.created_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, after, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []domain.PublicMessageView
	for rows.Next() {
		var v domain.PublicMessageView
		if err := rows.Scan(&v.UserID, &v.Body, &v.Timestamp, &v.AuthorName); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
