package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"messenger/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	SearchByUsername(ctx context.Context, pattern string, limit, offset int) ([]domain.UserRef, error)
	ChatList(ctx context.Context, userID int64, limit, offset int) ([]domain.UserRef, error)
	Update(ctx context.Context, user domain.User) error
	Delete(ctx context.Context, id int64) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) (int64, error) {
	const query = `
		INSERT INTO users (username, name, password_hash, email, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	err := r.pool.QueryRow(ctx, query,
		user.Username,
		user.Name,
		user.PasswordHash,
		user.Email,
		user.CreatedAt,
	).Scan(&id)
	return id, err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	const query = `
		SELECT id, username, name, password_hash, email, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	const query = `
		SELECT id, username, name, password_hash, email, created_at
		FROM users
		WHERE username = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, username))
}

func (r *PgUserRepository) scanOne(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Name,
		&u.PasswordHash,
		&u.Email,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}
	return u, err
}

// SearchByUsername busca por subcadena, como el buscador de contactos.
func (r *PgUserRepository) SearchByUsername(ctx context.Context, pattern string, limit, offset int) ([]domain.UserRef, error) {
	const query = `
		SELECT id, username
		FROM users
		WHERE username LIKE '%' || $1 || '%'
		ORDER BY id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, pattern, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUserRefs(rows)
}

// ChatList lista los usuarios con los que userID tiene conversacion privada,
// en cualquiera de las dos direcciones.
func (r *PgUserRepository) ChatList(ctx context.Context, userID int64, limit, offset int) ([]domain.UserRef, error) {
	const query = `
		SELECT u.id, u.username
		FROM users u
		JOIN (
			SELECT sender_id AS peer FROM user_chats WHERE receiver_id = $1
			UNION
			SELECT receiver_id FROM user_chats WHERE sender_id = $1
		) c ON c.peer = u.id
		ORDER BY u.id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUserRefs(rows)
}

func (r *PgUserRepository) Update(ctx context.Context, user domain.User) error {
	const query = `
		UPDATE users
		SET username = $2, name = $3, password_hash = $4, email = $5
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Name,
		user.PasswordHash,
		user.Email,
	)
	return err
}

func (r *PgUserRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func scanUserRefs(rows pgx.Rows) ([]domain.UserRef, error) {
	var refs []domain.UserRef
	for rows.Next() {
		var ref domain.UserRef
		if err := rows.Scan(&ref.ID, &ref.Username); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
