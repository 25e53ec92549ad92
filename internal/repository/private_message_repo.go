package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"messenger/internal/domain"
)

// PrivateMessageRepository es el ledger de conversaciones entre pares. El
// scope es el par sin orden: las filas guardadas con cualquiera de las dos
// orientaciones (emisor, receptor) pertenecen a la misma conversacion.
type PrivateMessageRepository interface {
	Append(ctx context.Context, senderID, receiverID int64, body string) (domain.PrivateMessage, error)
	ReadBetween(ctx context.Context, userA, userB int64, after time.Time, limit, offset int) ([]domain.PrivateMessageView, error)
}

type PgPrivateMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgPrivateMessageRepository(pool *pgxpool.Pool) *PgPrivateMessageRepository {
	return &PgPrivateMessageRepository{pool: pool}
}

func (r *PgPrivateMessageRepository) Append(ctx context.Context, senderID, receiverID int64, body string) (domain.PrivateMessage, error) {
	const query = `
		INSERT INTO user_chats (sender_id, receiver_id, body, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	msg := domain.PrivateMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		Timestamp:  time.Now().UTC().Truncate(time.Second),
	}

	err := r.pool.QueryRow(ctx, query,
		msg.SenderID,
		msg.ReceiverID,
		msg.Body,
		msg.Timestamp,
	).Scan(&msg.ID)
	if err != nil {
		return domain.PrivateMessage{}, err
	}
	return msg, nil
}

// ReadBetween devuelve la conversacion del par (userA, userB) despues del
// cursor, sin importar quien emitio cada fila. Mismo resultado con el par
// invertido.
func (r *PgPrivateMessageRepository) ReadBetween(ctx context.Context, userA, userB int64, after time.Time, limit, offset int) ([]domain.PrivateMessageView, error) {
	const query = `
		SELECT c.sender_id, s.name, c.receiver_id, t.name, c.body, c.created_at
		FROM user_chats c
		JOIN users s ON s.id = c.sender_id
		JOIN users t ON t.id = c.receiver_id
		WHERE ((c.sender_id = $1 AND c.receiver_id = $2)
			OR (c.sender_id = $2 AND c.receiver_id = $1))
		  AND c.created_at > $3
		ORDER BY c.created_at ASC
		LIMIT $4 OFFSET $5
	`

	rows, err := r.pool.Query(ctx, query, userA, userB, after, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []domain.PrivateMessageView
	for rows.Next() {
		var v domain.PrivateMessageView
		if err := rows.Scan(&v.SenderID, &v.SenderName, &v.ReceiverID, &v.ReceiverName, &v.Body, &v.Timestamp); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
